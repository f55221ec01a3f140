package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.opentelemetry.io/otel/attribute"

	"userdir/internal/adapter/database"
	"userdir/internal/core/domain"
	"userdir/internal/core/port"
	tel "userdir/internal/core/telemetry"
)

const usersTable = "users"

var userColumns = []string{"id", "fullName", "email", "age", "gender", "address"}

type UserRepository struct {
	db        *database.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *database.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (ur *UserRepository) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	attrs = append(attrs,
		attribute.String("db.system", ur.db.Driver),
		attribute.String("db.table", usersTable),
	)

	ctx, span := ur.telemetry.StartRepositorySpan(ctx, operation, usersTable, attrs)
	start := time.Now()

	return ctx, func(err error) {
		ur.telemetry.RecordRepositoryOperation(ctx, operation, usersTable, time.Since(start), err)
		span.End()
	}
}

// List returns every row in store order. An empty table yields an empty, non-nil slice.
func (ur *UserRepository) List(ctx context.Context) (users []domain.User, err error) {
	ctx, finish := ur.startSpan(ctx, "list")
	defer func() { finish(err) }()

	query, args, err := ur.db.QueryBuilder.Select(userColumns...).From(usersTable).ToSql()
	if err != nil {
		return nil, err
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "list", usersTable, query, args)

	rows, err := ur.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users = make([]domain.User, 0)

	for rows.Next() {
		var user domain.User

		if err = rows.Scan(&user.ID, &user.FullName, &user.Email, &user.Age, &user.Gender, &user.Address); err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (err error) {
	ctx, finish := ur.startSpan(ctx, "create", attribute.String("user.id", user.ID))
	defer func() { finish(err) }()

	query, args, err := ur.db.QueryBuilder.Insert(usersTable).
		Columns(userColumns...).
		Values(user.ID, user.FullName, user.Email, user.Age, user.Gender, user.Address).
		ToSql()
	if err != nil {
		return err
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "create", usersTable, query, args)

	_, err = ur.db.ExecContext(ctx, query, args...)

	return err
}

// Update overwrites all columns of the row at user.ID. Zero affected rows is not an error.
func (ur *UserRepository) Update(ctx context.Context, user domain.User) (err error) {
	ctx, finish := ur.startSpan(ctx, "update", attribute.String("user.id", user.ID))
	defer func() { finish(err) }()

	query, args, err := ur.db.QueryBuilder.Update(usersTable).
		SetMap(user.ToMap()).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return err
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "update", usersTable, query, args)

	_, err = ur.db.ExecContext(ctx, query, args...)

	return err
}

func (ur *UserRepository) DeleteByID(ctx context.Context, id string) (err error) {
	ctx, finish := ur.startSpan(ctx, "delete", attribute.String("user.id", id))
	defer func() { finish(err) }()

	query, args, err := ur.db.QueryBuilder.Delete(usersTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	ur.telemetry.RecordRepositoryQuery(ctx, "delete", usersTable, query, args)

	_, err = ur.db.ExecContext(ctx, query, args...)

	return err
}

func (ur *UserRepository) Ping(ctx context.Context) error {
	return ur.db.PingContext(ctx)
}
