package port

import (
	"context"

	"userdir/internal/core/domain"
)

type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, user domain.User) error
	Update(ctx context.Context, user domain.User) error
	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	DeleteByID(ctx context.Context, id string) error
}
