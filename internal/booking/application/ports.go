package application

import (
	"context"
	"time"

	"github.com/railbook-io/railbook/internal/booking/domain"
)

// HistoryRepository persists booking records. SaveWithOutbox commits
// the history row and the event's outbox row in one transaction.
type HistoryRepository interface {
	SaveWithOutbox(ctx context.Context, h domain.History, eventType string, payload []byte, traceparent string) error
	GetAllByAccount(ctx context.Context, email string) ([]domain.History, error)
}

// Staging holds booking parameters between seat selection and
// confirmation, scoped per session token with a bounded TTL.
type Staging interface {
	Put(ctx context.Context, token string, p StagedBooking, ttl time.Duration) error
	Get(ctx context.Context, token string) (StagedBooking, bool, error)
	Clear(ctx context.Context, token string) error
}

// StagedBooking is the transient state captured by the Stage step.
type StagedBooking struct {
	TrainNumber int64  `json:"trainnumber"`
	Seats       int    `json:"seats"`
	Class       string `json:"class"`
	JourneyDate string `json:"journeydate"`
}
