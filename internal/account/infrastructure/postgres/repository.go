package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railbook-io/railbook/internal/account/application"
	"github.com/railbook-io/railbook/internal/account/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Insert(ctx context.Context, a domain.Account) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO users (mailid, pword, fname, lname, addr, phno, role)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.Email, a.PasswordHash, a.FirstName, a.LastName, a.Address, a.Phone, string(a.Role))
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return application.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, email string) (domain.Account, error) {
	var a domain.Account
	var role string
	err := r.pool.QueryRow(ctx, `SELECT mailid, pword, fname, lname, addr, phno, role
		FROM users WHERE mailid=$1`, email).
		Scan(&a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.Address, &a.Phone, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, application.ErrNotFound
		}
		return domain.Account{}, err
	}
	a.Role = domain.Role(role)
	return a, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT mailid, pword, fname, lname, addr, phno, role
		FROM users ORDER BY mailid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		var role string
		if err := rows.Scan(&a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.Address, &a.Phone, &role); err != nil {
			return nil, err
		}
		a.Role = domain.Role(role)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) Update(ctx context.Context, a domain.Account) (int64, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE users SET fname=$2, lname=$3, addr=$4, phno=$5
		WHERE mailid=$1`,
		a.Email, a.FirstName, a.LastName, a.Address, a.Phone)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repository) UpdatePassword(ctx context.Context, email, passwordHash string) (int64, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE users SET pword=$2 WHERE mailid=$1`, email, passwordHash)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repository) Delete(ctx context.Context, email string) (int64, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM users WHERE mailid=$1`, email)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
