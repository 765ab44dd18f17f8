package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railbook-io/railbook/internal/inventory/application"
	"github.com/railbook-io/railbook/internal/inventory/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Insert(ctx context.Context, t domain.Train) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO trains (tr_no, tr_name, from_stn, to_stn, total_seats, seats, fare)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.Number, t.Name, t.FromStation, t.ToStation, t.Capacity, t.Available, t.Fare)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return application.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, number int64) (domain.Train, error) {
	var t domain.Train
	err := r.pool.QueryRow(ctx, `SELECT tr_no, tr_name, from_stn, to_stn, total_seats, seats, fare
		FROM trains WHERE tr_no=$1`, number).
		Scan(&t.Number, &t.Name, &t.FromStation, &t.ToStation, &t.Capacity, &t.Available, &t.Fare)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Train{}, application.ErrNotFound
		}
		return domain.Train{}, err
	}
	return t, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]domain.Train, error) {
	rows, err := r.pool.Query(ctx, `SELECT tr_no, tr_name, from_stn, to_stn, total_seats, seats, fare
		FROM trains ORDER BY tr_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrains(rows)
}

func (r *Repository) GetBetweenStations(ctx context.Context, from, to string) ([]domain.Train, error) {
	rows, err := r.pool.Query(ctx, `SELECT tr_no, tr_name, from_stn, to_stn, total_seats, seats, fare
		FROM trains WHERE from_stn=$1 AND to_stn=$2 ORDER BY tr_no`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrains(rows)
}

func (r *Repository) Update(ctx context.Context, t domain.Train) (int64, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE trains
		SET tr_name=$2, from_stn=$3, to_stn=$4, total_seats=$5, seats=$6, fare=$7
		WHERE tr_no=$1`,
		t.Number, t.Name, t.FromStation, t.ToStation, t.Capacity, t.Available, t.Fare)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repository) Delete(ctx context.Context, number int64) (int64, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM trains WHERE tr_no=$1`, number)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// DebitSeats decrements available seats in one conditional statement.
// Zero rows affected means the train is missing or has fewer than the
// requested seats; concurrent debits can never drive seats negative.
func (r *Repository) DebitSeats(ctx context.Context, number int64, seats int) (int64, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE trains SET seats = seats - $2
		WHERE tr_no=$1 AND seats >= $2`, number, seats)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func scanTrains(rows pgx.Rows) ([]domain.Train, error) {
	var trains []domain.Train
	for rows.Next() {
		var t domain.Train
		if err := rows.Scan(&t.Number, &t.Name, &t.FromStation, &t.ToStation, &t.Capacity, &t.Available, &t.Fare); err != nil {
			return nil, err
		}
		trains = append(trains, t)
	}
	return trains, rows.Err()
}
