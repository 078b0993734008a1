package id

import (
	"crypto/rand"
	"encoding/hex"
)

// NewActorID returns a fresh actor identity: exactly 32 lowercase hex
// characters, no separators or prefixes. Borrowers, lenders and ledger
// accounts all share this format.
func NewActorID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
