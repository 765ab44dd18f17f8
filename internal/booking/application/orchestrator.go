package application

import (
	"context"
	"time"

	bookingdomain "github.com/railbook-io/railbook/internal/booking/domain"
	inventory "github.com/railbook-io/railbook/internal/inventory/application"
	"github.com/railbook-io/railbook/internal/outcome"
)

// StageTTL bounds how long staged booking parameters survive between
// seat selection and confirmation.
const StageTTL = 10 * time.Minute

// Orchestrator drives the staged booking workflow: stage the seat
// selection, debit inventory, persist the history record, clear the
// staged state. Staged parameters are keyed by session token, never
// shared across sessions.
type Orchestrator struct {
	inventory *inventory.Service
	booking   *Service
	staging   Staging
}

func NewOrchestrator(inv *inventory.Service, booking *Service, staging Staging) *Orchestrator {
	return &Orchestrator{inventory: inv, booking: booking, staging: staging}
}

// Stage records the seat selection for the session. The train must
// exist at staging time so an obviously bad selection fails early.
func (o *Orchestrator) Stage(ctx context.Context, token string, p StagedBooking) error {
	if p.Seats <= 0 || p.TrainNumber <= 0 {
		return outcome.FromCode(outcome.BadRequest)
	}
	if _, err := time.Parse("2006-01-02", p.JourneyDate); err != nil {
		return outcome.FromCode(outcome.BadRequest)
	}
	if _, err := o.inventory.GetByNumber(ctx, p.TrainNumber); err != nil {
		if outcome.IsCode(err, outcome.NotFound) {
			return outcome.New("Invalid Train Number")
		}
		return err
	}
	if err := o.staging.Put(ctx, token, p, StageTTL); err != nil {
		return outcome.Wrap(outcome.InternalServerError, err)
	}
	return nil
}

// Confirm consumes the staged parameters and runs the debit/commit
// sequence, returning the generated transaction id. A failed history
// insert after a successful debit is not compensated.
func (o *Orchestrator) Confirm(ctx context.Context, token, email, traceparent string) (string, error) {
	staged, ok, err := o.staging.Get(ctx, token)
	if err != nil {
		return "", outcome.Wrap(outcome.InternalServerError, err)
	}
	if !ok {
		return "", outcome.New("No Booking in Progress, Select a Train to Continue")
	}

	train, err := o.inventory.GetByNumber(ctx, staged.TrainNumber)
	if err != nil {
		if outcome.IsCode(err, outcome.NotFound) {
			return "", outcome.New("Invalid Train Number")
		}
		return "", err
	}

	if err := o.inventory.DebitSeats(ctx, staged.TrainNumber, staged.Seats); err != nil {
		if outcome.IsCode(err, outcome.Failure) {
			return "", outcome.New("Transaction Declined")
		}
		return "", err
	}

	record := bookingdomain.History{
		Email:       email,
		TrainNumber: train.Number,
		JourneyDate: staged.JourneyDate,
		FromStation: train.FromStation,
		ToStation:   train.ToStation,
		Seats:       staged.Seats,
		Amount:      train.Fare * float64(staged.Seats),
	}
	created, err := o.booking.CreateHistory(ctx, record, traceparent)
	if err != nil {
		return "", err
	}

	// The booking is committed; a failed clear leaves a staged entry
	// that dies with its TTL.
	_ = o.staging.Clear(ctx, token)

	return created.TransactionID, nil
}
