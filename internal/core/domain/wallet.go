package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds one account's point balance. Exactly one wallet exists
// per account; it is created lazily with balance 0 on the first scan or
// award. The balance always equals the sum of the wallet's ledger
// entries: every mutation is paired with exactly one LedgerEntry
// inside the same database transaction.
type Wallet struct {
	ID          uuid.UUID `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	Balance     int       `json:"balance"`
	LastUpdated time.Time `json:"last_updated"`
}
