package application

import (
	"context"

	"github.com/railbook-io/railbook/internal/account/domain"
)

// AccountRepository is the persistence port for accounts. Get returns
// ErrNotFound when no account exists for the email; Update and Delete
// report the number of rows affected.
type AccountRepository interface {
	Insert(ctx context.Context, a domain.Account) error
	Get(ctx context.Context, email string) (domain.Account, error)
	GetAll(ctx context.Context) ([]domain.Account, error)
	Update(ctx context.Context, a domain.Account) (int64, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) (int64, error)
	Delete(ctx context.Context, email string) (int64, error)
}
