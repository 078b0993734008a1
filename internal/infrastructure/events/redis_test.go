package events

import (
	"context"
	"encoding/json"
	"testing"

	domain "loan-ledger-backend/internal/domain/loan"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestStreamPublisher_AppendsNamedEntries(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	p := NewStreamPublisher(rdb, "")
	ctx := context.Background()

	if err := p.Publish(ctx, domain.LoanRequested{
		LoanID:           7,
		BorrowerID:       "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		CollateralAmount: 5,
		PrincipalAmount:  9,
	}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Publish(ctx, domain.LoanFunded{LoanID: 7, LenderID: "cccccccccccccccccccccccccccccccc"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	entries, err := rdb.XRange(ctx, DefaultStream, "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("stream has %d entries, want 2", len(entries))
	}
	if got := entries[0].Values["event"]; got != "loan.requested" {
		t.Fatalf("first event = %v", got)
	}

	var ev domain.LoanRequested
	if err := json.Unmarshal([]byte(entries[0].Values["payload"].(string)), &ev); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ev.LoanID != 7 || ev.PrincipalAmount != 9 {
		t.Fatalf("payload round-trip: %+v", ev)
	}
}
