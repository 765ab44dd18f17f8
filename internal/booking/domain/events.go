package domain

type BookingCreated struct {
	TransactionID string
	Email         string
	TrainNumber   int64
	JourneyDate   string
	Seats         int
	Amount        float64
}
