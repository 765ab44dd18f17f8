package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/railbook-io/railbook/internal/booking/domain"
	"github.com/railbook-io/railbook/pkg/tracing"
)

// Consumer tails the booking events topic for the notification/audit
// log. It is read-only: booking state lives in postgres, so replays
// are harmless.
type Consumer struct {
	log    *slog.Logger
	reader *kafka.Reader
	tracer trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:    log,
		reader: r,
		tracer: otel.Tracer("booking-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
		_, span := c.tracer.Start(msgCtx, "ConsumeBookingCreated")

		var ev domain.BookingCreated
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.log.Error("unmarshal failed", "err", err)
			span.End()
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		c.log.Info("booking confirmed",
			"transid", ev.TransactionID,
			"mailid", ev.Email,
			"tr_no", ev.TrainNumber,
			"seats", ev.Seats,
			"amount", ev.Amount,
		)
		span.End()
		_ = c.reader.CommitMessages(ctx, msg)
	}
}
