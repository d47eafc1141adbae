// Package transaction defines the double-entry transaction model and its
// lifecycle state machine.
package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/types"
)

// Status is the lifecycle state of a transaction.
//
// The only legal transitions are PENDING → POSTED → VOIDED. No transition
// skips a state and none is reversible; corrections are new transactions.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPosted  Status = "POSTED"
	StatusVoided  Status = "VOIDED"
)

// Transaction is a balanced set of entries against a tenant's accounts.
// Once POSTED it is immutable apart from the transition to VOIDED.
type Transaction struct {
	types.Entity
	ID          id.TransactionID `json:"id"`
	TenantID    string           `json:"tenant_id"`
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	Reference   string           `json:"reference,omitempty"`
	ServiceType string           `json:"service_type,omitempty"` // care service the activity belongs to, drives tax exemptions
	Status      Status           `json:"status"`
	Entries     []Entry          `json:"entries"`

	// TaxCode/TaxAmount record the tax the producer declared when it built
	// the transaction. The compliance engine cross-checks them against a
	// fresh calculation.
	TaxCode   string          `json:"tax_code,omitempty"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

// Entry is one row of a transaction: the debit or credit side against a
// single account. Exactly one of Debit/Credit is non-zero.
type Entry struct {
	ID          id.EntryID      `json:"id"`
	AccountID   id.AccountID    `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// Delta returns the signed balance effect of the entry: debit - credit.
func (e Entry) Delta() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// TotalDebits sums the debit side of all entries.
func (t *Transaction) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		total = total.Add(e.Debit)
	}
	return total
}

// TotalCredits sums the credit side of all entries.
func (t *Transaction) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		total = total.Add(e.Credit)
	}
	return total
}

// Balanced reports whether total debits equal total credits.
func (t *Transaction) Balanced() bool {
	return t.TotalDebits().Equal(t.TotalCredits())
}

// Amount is the transaction's magnitude: the debit-side total. For a
// balanced transaction this equals the credit-side total and is the basis
// used for tax calculation.
func (t *Transaction) Amount() decimal.Decimal {
	return t.TotalDebits()
}

// Touches reports whether the transaction has an entry against accountID.
func (t *Transaction) Touches(accountID id.AccountID) bool {
	for _, e := range t.Entries {
		if e.AccountID == accountID {
			return true
		}
	}
	return false
}

// EntryDelta returns the combined signed effect of the transaction on one
// account, summed across all entries referencing it.
func (t *Transaction) EntryDelta(accountID id.AccountID) decimal.Decimal {
	delta := decimal.Zero
	for _, e := range t.Entries {
		if e.AccountID == accountID {
			delta = delta.Add(e.Delta())
		}
	}
	return delta
}

// NewEntry holds the caller-supplied fields of an entry at creation time.
type NewEntry struct {
	AccountID   id.AccountID
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// ListOpts filters transaction scans. Zero times mean an open bound.
type ListOpts struct {
	StartDate time.Time
	EndDate   time.Time
	Status    Status // zero value = all statuses
	AccountID id.AccountID
	Limit     int
	Offset    int
}

// HistoryOpts controls a per-account history window.
type HistoryOpts struct {
	StartDate time.Time // zero = from the beginning
	EndDate   time.Time // zero = unbounded
	Page      int       // 1-based; 0 is treated as 1
	Limit     int       // 0 = no page limit
}

// History is the result of an account history query: the balance going into
// the window, the POSTED transactions inside it in ascending date order, and
// the balance after folding their deltas onto the opening balance.
type History struct {
	AccountID      id.AccountID    `json:"account_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Transactions   []*Transaction  `json:"transactions"`
	RunningBalance []decimal.Decimal `json:"running_balance"` // balance after each returned transaction
	Page           int             `json:"page"`
	Limit          int             `json:"limit"`
	Total          int             `json:"total"` // windowed transactions before paging
}
