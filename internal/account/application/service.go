package application

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/railbook-io/railbook/internal/account/domain"
	"github.com/railbook-io/railbook/internal/outcome"
)

// Port-level sentinels repositories translate driver errors into.
var (
	ErrNotFound  = errors.New("account not found")
	ErrDuplicate = errors.New("account already exists")
)

type Service struct {
	repo AccountRepository
}

func NewService(repo AccountRepository) *Service {
	return &Service{repo: repo}
}

// Register creates a new account with a hashed password. A duplicate
// email is a FAILURE, not an internal error.
func (s *Service) Register(ctx context.Context, a domain.Account, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return outcome.Wrap(outcome.InternalServerError, err)
	}
	a.PasswordHash = string(hash)

	if err := s.repo.Insert(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return outcome.FromCode(outcome.Failure)
		}
		return outcome.Wrap(outcome.Failure, err)
	}
	return nil
}

// Authenticate verifies credentials and returns the stored account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.Account, error) {
	a, err := s.repo.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Account{}, outcome.FromCode(outcome.Unauthorized)
		}
		return domain.Account{}, outcome.Wrap(outcome.Failure, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return domain.Account{}, outcome.FromCode(outcome.Unauthorized)
	}
	return a, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	a, err := s.repo.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Account{}, outcome.FromCode(outcome.NotFound)
		}
		return domain.Account{}, outcome.Wrap(outcome.Failure, err)
	}
	return a, nil
}

// GetAll returns every account; an empty set is NO_CONTENT.
func (s *Service) GetAll(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, outcome.Wrap(outcome.Failure, err)
	}
	if len(accounts) == 0 {
		return nil, outcome.FromCode(outcome.NoContent)
	}
	return accounts, nil
}

// Update rewrites an account's profile, matched by email. A zero-row
// update is a FAILURE.
func (s *Service) Update(ctx context.Context, a domain.Account) error {
	n, err := s.repo.Update(ctx, a)
	if err != nil {
		return outcome.Wrap(outcome.Failure, err)
	}
	if n == 0 {
		return outcome.FromCode(outcome.Failure)
	}
	return nil
}

// ChangePassword re-validates the current password before storing a
// new hash.
func (s *Service) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if _, err := s.Authenticate(ctx, email, oldPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return outcome.Wrap(outcome.InternalServerError, err)
	}
	n, err := s.repo.UpdatePassword(ctx, email, string(hash))
	if err != nil {
		return outcome.Wrap(outcome.Failure, err)
	}
	if n == 0 {
		return outcome.FromCode(outcome.Failure)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, email string) error {
	n, err := s.repo.Delete(ctx, email)
	if err != nil {
		return outcome.Wrap(outcome.Failure, err)
	}
	if n == 0 {
		return outcome.FromCode(outcome.Failure)
	}
	return nil
}
