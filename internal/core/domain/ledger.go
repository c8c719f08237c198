package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind classifies a balance-affecting ledger entry.
type EntryKind string

const (
	EntryKindEarn       EntryKind = "earn"
	EntryKindSpend      EntryKind = "spend"
	EntryKindTransfer   EntryKind = "transfer"
	EntryKindRefund     EntryKind = "refund"
	EntryKindAdjustment EntryKind = "adjustment"
)

// LedgerEntry is an immutable, append-only record of a wallet balance
// change. Amount is signed: earns are positive, spends negative.
type LedgerEntry struct {
	ID          uuid.UUID `json:"id"`
	WalletID    uuid.UUID `json:"wallet_id"`
	Amount      int       `json:"amount"`
	Kind        EntryKind `json:"transaction_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Icon returns the display icon for the entry kind.
func (e *LedgerEntry) Icon() string {
	switch e.Kind {
	case EntryKindEarn:
		return "🌟"
	case EntryKindSpend:
		return "💸"
	case EntryKindTransfer:
		return "🔄"
	case EntryKindRefund:
		return "↩️"
	case EntryKindAdjustment:
		return "⚖️"
	default:
		return "💰"
	}
}

// Color returns the display color class for the entry kind.
func (e *LedgerEntry) Color() string {
	if e.Kind == EntryKindEarn {
		return "text-green-500"
	}
	return "text-red-500"
}
