package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-user-service/internal/domain/entity"
)

// UserRepository defines the persistence operations for users.
// Lookups return (nil, nil) when no row matches. Backend failures are
// reported as *entity.StorageError.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindAll returns every user, newest first.
	FindAll(ctx context.Context) ([]*entity.User, error)
	// Update replaces email and name of the row with u.ID(); *entity.NotFoundError if absent.
	Update(ctx context.Context, u *entity.User) (*entity.User, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
