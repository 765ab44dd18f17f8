package domain

import "time"

// History is an immutable record of a completed booking. It is
// created exactly once, as the terminal step of a successful
// orchestration, and never updated or deleted.
type History struct {
	TransactionID string
	Email         string
	TrainNumber   int64
	JourneyDate   string
	FromStation   string
	ToStation     string
	Seats         int
	Amount        float64
	CreatedAt     time.Time
}
