package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/redis/go-redis/v9"
)

const DefaultPriceKey = "oracle:price:collateral"

// RedisOracle reads the latest collateral quote posted by an external
// feeder (cmd/feeder, or any process writing the key). The value is an
// integer at the quote scale. A missing key is reported as a zero quote —
// the caller's non-positive check is the single rejection signal.
type RedisOracle struct {
	rdb *redis.Client
	key string
}

func NewRedisOracle(rdb *redis.Client, key string) *RedisOracle {
	if key == "" {
		key = DefaultPriceKey
	}
	return &RedisOracle{rdb: rdb, key: key}
}

func (o *RedisOracle) LatestPrice(ctx context.Context) (*big.Int, error) {
	raw, err := o.rdb.Get(ctx, o.key).Result()
	if errors.Is(err, redis.Nil) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	quote, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return nil, fmt.Errorf("oracle: malformed quote %q at %s", raw, o.key)
	}
	return quote, nil
}
