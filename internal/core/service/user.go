package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"userdir/internal/core/domain"
	"userdir/internal/core/port"
	tel "userdir/internal/core/telemetry"
)

const serviceName = "user"

type UserService struct {
	repo      port.UserRepository
	telemetry port.Telemetry
}

func NewUserService(repo port.UserRepository, telemetry port.Telemetry) *UserService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserService{repo: repo, telemetry: telemetry}
}

func (us *UserService) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := us.telemetry.StartServiceSpan(ctx, serviceName, "list", nil)
	defer span.End()

	start := time.Now()
	users, err := us.repo.List(ctx)
	us.telemetry.RecordServiceOperation(ctx, serviceName, "list", time.Since(start), err)

	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))

	return users, nil
}

// Create mints a fresh id, ignoring any id carried by the payload.
func (us *UserService) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := us.telemetry.StartServiceSpan(ctx, serviceName, "create", nil)
	defer span.End()

	newUser := domain.User{
		ID:       uuid.New().String(),
		FullName: user.FullName,
		Email:    user.Email,
		Age:      user.Age,
		Gender:   user.Gender,
		Address:  user.Address,
	}

	start := time.Now()
	err := us.repo.Create(ctx, newUser)
	us.telemetry.RecordServiceOperation(ctx, serviceName, "create", time.Since(start), err)

	if err != nil {
		return domain.User{}, err
	}

	us.telemetry.RecordBusinessEvent(ctx, "user.created", "user", newUser.ID, nil)

	return newUser, nil
}

// Update overwrites every field of the row at user.ID and echoes the input.
// A missing row is not an error.
func (us *UserService) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := us.telemetry.StartServiceSpan(ctx, serviceName, "update",
		[]attribute.KeyValue{attribute.String("user.id", user.ID)})
	defer span.End()

	start := time.Now()
	err := us.repo.Update(ctx, user)
	us.telemetry.RecordServiceOperation(ctx, serviceName, "update", time.Since(start), err)

	if err != nil {
		return domain.User{}, err
	}

	us.telemetry.RecordBusinessEvent(ctx, "user.updated", "user", user.ID, nil)

	return user, nil
}

func (us *UserService) DeleteByID(ctx context.Context, id string) error {
	ctx, span := us.telemetry.StartServiceSpan(ctx, serviceName, "delete",
		[]attribute.KeyValue{attribute.String("user.id", id)})
	defer span.End()

	start := time.Now()
	err := us.repo.DeleteByID(ctx, id)
	us.telemetry.RecordServiceOperation(ctx, serviceName, "delete", time.Since(start), err)

	if err != nil {
		return err
	}

	us.telemetry.RecordBusinessEvent(ctx, "user.deleted", "user", id, nil)

	return nil
}
