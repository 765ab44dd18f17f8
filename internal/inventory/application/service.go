package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/railbook-io/railbook/internal/inventory/domain"
	"github.com/railbook-io/railbook/internal/outcome"
)

var (
	ErrNotFound  = errors.New("train not found")
	ErrDuplicate = errors.New("train already exists")
)

// ErrInsufficientSeats carries the currently available count so the
// caller can surface it.
type ErrInsufficientSeats struct {
	Available int
}

func (e *ErrInsufficientSeats) Error() string {
	return fmt.Sprintf("Only %d Seats available", e.Available)
}

type Service struct {
	repo TrainRepository
}

func NewService(repo TrainRepository) *Service {
	return &Service{repo: repo}
}

// Add inserts a new train; a duplicate train number is a FAILURE.
func (s *Service) Add(ctx context.Context, t domain.Train) error {
	if !t.Valid() {
		return outcome.FromCode(outcome.BadRequest)
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return outcome.FromCode(outcome.Failure)
		}
		return outcome.Wrap(outcome.Failure, err)
	}
	return nil
}

func (s *Service) GetByNumber(ctx context.Context, number int64) (domain.Train, error) {
	t, err := s.repo.Get(ctx, number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Train{}, outcome.FromCode(outcome.NotFound)
		}
		return domain.Train{}, outcome.Wrap(outcome.Failure, err)
	}
	return t, nil
}

func (s *Service) GetAll(ctx context.Context) ([]domain.Train, error) {
	trains, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, outcome.Wrap(outcome.Failure, err)
	}
	if len(trains) == 0 {
		return nil, outcome.FromCode(outcome.NoContent)
	}
	return trains, nil
}

// GetBetweenStations filters by exact match on both station fields.
func (s *Service) GetBetweenStations(ctx context.Context, from, to string) ([]domain.Train, error) {
	trains, err := s.repo.GetBetweenStations(ctx, from, to)
	if err != nil {
		return nil, outcome.Wrap(outcome.Failure, err)
	}
	if len(trains) == 0 {
		return nil, outcome.FromCode(outcome.NoContent)
	}
	return trains, nil
}

// Update rewrites a train matched by number; zero rows is a FAILURE.
func (s *Service) Update(ctx context.Context, t domain.Train) error {
	if !t.Valid() {
		return outcome.FromCode(outcome.BadRequest)
	}
	n, err := s.repo.Update(ctx, t)
	if err != nil {
		return outcome.Wrap(outcome.Failure, err)
	}
	if n == 0 {
		return outcome.FromCode(outcome.Failure)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, number int64) error {
	n, err := s.repo.Delete(ctx, number)
	if err != nil {
		return outcome.Wrap(outcome.Failure, err)
	}
	if n == 0 {
		return outcome.FromCode(outcome.Failure)
	}
	return nil
}

// DebitSeats takes seats out of inventory as one conditional update.
// When the store reports zero rows the train either does not exist or
// has too few seats; the current count is re-read to tell the two
// apart and to report the shortfall.
func (s *Service) DebitSeats(ctx context.Context, number int64, seats int) error {
	if seats <= 0 {
		return outcome.FromCode(outcome.BadRequest)
	}
	n, err := s.repo.DebitSeats(ctx, number, seats)
	if err != nil {
		return outcome.Wrap(outcome.Failure, err)
	}
	if n > 0 {
		return nil
	}
	t, err := s.repo.Get(ctx, number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return outcome.New("Invalid Train Number")
		}
		return outcome.Wrap(outcome.Failure, err)
	}
	return outcome.New((&ErrInsufficientSeats{Available: t.Available}).Error())
}
