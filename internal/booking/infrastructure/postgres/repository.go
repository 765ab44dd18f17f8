package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railbook-io/railbook/internal/booking/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// SaveWithOutbox commits the history record and its event's outbox
// row in a single transaction so the relay never publishes a booking
// that was not persisted.
func (r *Repository) SaveWithOutbox(ctx context.Context, h domain.History, eventType string, payload []byte, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO history (transid, mailid, tr_no, date, from_stn, to_stn, seats, amount, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		h.TransactionID, h.Email, h.TrainNumber, h.JourneyDate, h.FromStation, h.ToStation, h.Seats, h.Amount, h.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,'pending')`,
		"booking", h.TransactionID, eventType, payload, traceparent)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) GetAllByAccount(ctx context.Context, email string) ([]domain.History, error) {
	rows, err := r.pool.Query(ctx, `SELECT transid, mailid, tr_no, date, from_stn, to_stn, seats, amount, created_at
		FROM history WHERE mailid=$1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.History
	for rows.Next() {
		var h domain.History
		if err := rows.Scan(&h.TransactionID, &h.Email, &h.TrainNumber, &h.JourneyDate, &h.FromStation, &h.ToStation, &h.Seats, &h.Amount, &h.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, h)
	}
	return records, rows.Err()
}
