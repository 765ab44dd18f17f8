package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/railbook-io/railbook/internal/booking/application"
)

// Staging keeps staged booking parameters in Redis, one key per
// session token with a TTL. Two sessions can never observe each
// other's staged state.
type Staging struct {
	log *slog.Logger
	rdb *goredis.Client
}

func NewStaging(log *slog.Logger, rdb *goredis.Client) *Staging {
	return &Staging{log: log, rdb: rdb}
}

func stageKey(token string) string { return "stage:" + token }

func (s *Staging) Put(ctx context.Context, token string, p application.StagedBooking, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, stageKey(token), raw, ttl).Err()
}

func (s *Staging) Get(ctx context.Context, token string) (application.StagedBooking, bool, error) {
	raw, err := s.rdb.Get(ctx, stageKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return application.StagedBooking{}, false, nil
		}
		return application.StagedBooking{}, false, err
	}
	var p application.StagedBooking
	if err := json.Unmarshal(raw, &p); err != nil {
		return application.StagedBooking{}, false, err
	}
	return p, true, nil
}

func (s *Staging) Clear(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, stageKey(token)).Err()
}
