package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// OpenRedis dials the shared redis instance. One client serves the
// idempotency store, the domain event stream and the oracle price key.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:       addr,
		DB:         db,
		ClientName: "loan-ledger",
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}
