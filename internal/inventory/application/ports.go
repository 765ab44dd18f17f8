package application

import (
	"context"

	"github.com/railbook-io/railbook/internal/inventory/domain"
)

// TrainRepository is the persistence port for trains. DebitSeats must
// be a single conditional update: it decrements available seats only
// when enough remain, and reports the rows affected so a zero result
// can be read as "insufficient seats" rather than as a store failure.
type TrainRepository interface {
	Insert(ctx context.Context, t domain.Train) error
	Get(ctx context.Context, number int64) (domain.Train, error)
	GetAll(ctx context.Context) ([]domain.Train, error)
	GetBetweenStations(ctx context.Context, from, to string) ([]domain.Train, error)
	Update(ctx context.Context, t domain.Train) (int64, error)
	Delete(ctx context.Context, number int64) (int64, error)
	DebitSeats(ctx context.Context, number int64, seats int) (int64, error)
}
