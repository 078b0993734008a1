package main

import (
	"context"
	"flag"
	"log"
	"math/big"
	"time"

	"github.com/joho/godotenv"

	"loan-ledger-backend/internal/config"
	"loan-ledger-backend/internal/infrastructure/cache"
)

// feeder publishes a collateral price quote for the liquidation sweep.
// The quote is a base-10 integer in quote base units (8 decimals), e.g.
// 200000000000 for 2000.00000000.
func main() {
	_ = godotenv.Load()

	price := flag.String("price", "", "quote in base units (required, base-10 integer)")
	flag.Parse()

	quote, ok := new(big.Int).SetString(*price, 10)
	if !ok {
		log.Fatalf("feeder: -price %q is not a base-10 integer", *price)
	}

	cfg := config.Load()
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Set(ctx, cfg.OraclePriceKey, quote.String(), 0).Err(); err != nil {
		log.Fatalf("feeder: %v", err)
	}
	log.Printf("feeder: posted %s to %s", quote, cfg.OraclePriceKey)
}
