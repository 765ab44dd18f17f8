package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/railbook-io/railbook/internal/booking/domain"
	"github.com/railbook-io/railbook/internal/outcome"
)

type Service struct {
	repo HistoryRepository
}

func NewService(repo HistoryRepository) *Service {
	return &Service{repo: repo}
}

// CreateHistory assigns a fresh transaction id, persists the record
// together with its BookingCreated outbox row, and returns the
// enriched record.
func (s *Service) CreateHistory(ctx context.Context, h domain.History, traceparent string) (domain.History, error) {
	h.TransactionID = uuid.NewString()
	h.CreatedAt = time.Now().UTC()

	event := domain.BookingCreated{
		TransactionID: h.TransactionID,
		Email:         h.Email,
		TrainNumber:   h.TrainNumber,
		JourneyDate:   h.JourneyDate,
		Seats:         h.Seats,
		Amount:        h.Amount,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.History{}, outcome.Wrap(outcome.InternalServerError, err)
	}

	if err := s.repo.SaveWithOutbox(ctx, h, "BookingCreated", payload, traceparent); err != nil {
		return domain.History{}, outcome.Wrap(outcome.InternalServerError, err)
	}
	return h, nil
}

// GetAllByAccount lists a customer's bookings; none is NO_CONTENT.
func (s *Service) GetAllByAccount(ctx context.Context, email string) ([]domain.History, error) {
	records, err := s.repo.GetAllByAccount(ctx, email)
	if err != nil {
		return nil, outcome.Wrap(outcome.Failure, err)
	}
	if len(records) == 0 {
		return nil, outcome.FromCode(outcome.NoContent)
	}
	return records, nil
}
