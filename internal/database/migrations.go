package database

import "context"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		mailid TEXT PRIMARY KEY,
		pword  TEXT NOT NULL,
		fname  TEXT NOT NULL,
		lname  TEXT NOT NULL,
		addr   TEXT NOT NULL,
		phno   BIGINT NOT NULL,
		role   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trains (
		tr_no       BIGINT PRIMARY KEY,
		tr_name     TEXT NOT NULL,
		from_stn    TEXT NOT NULL,
		to_stn      TEXT NOT NULL,
		total_seats INTEGER NOT NULL CHECK (total_seats >= 0),
		seats       INTEGER NOT NULL CHECK (seats >= 0 AND seats <= total_seats),
		fare        DOUBLE PRECISION NOT NULL CHECK (fare >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS history (
		transid  TEXT PRIMARY KEY,
		mailid   TEXT NOT NULL,
		tr_no    BIGINT NOT NULL,
		date     TEXT NOT NULL,
		from_stn TEXT NOT NULL,
		to_stn   TEXT NOT NULL,
		seats    INTEGER NOT NULL,
		amount   DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS history_mailid_idx ON history (mailid)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id             BIGSERIAL PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id   TEXT NOT NULL,
		type           TEXT NOT NULL,
		payload        BYTEA NOT NULL,
		headers        JSONB,
		traceparent    TEXT,
		status         TEXT NOT NULL DEFAULT 'pending',
		relay_id       TEXT,
		lease_until    TIMESTAMPTZ,
		retry_count    INTEGER NOT NULL DEFAULT 0,
		last_error     TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate ensures all required tables exist. Statements are
// idempotent; a proper migration tool can take over later.
func (g *Gateway) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := g.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	g.log.Info("database schema ready")
	return nil
}
