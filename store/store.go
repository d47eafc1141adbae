// Package store defines the storage interface for the ledger engine.
//
// Consistency contract: ApplyPosting is a single all-or-nothing unit of
// work. Every balance delta and the status flip commit together or not at
// all, with the status flip guarded by an expected-status compare-and-swap
// so concurrent postings of the same transaction serialize (the loser
// observes a state error). Reads are snapshot-consistent in every shipped
// implementation: the memory store serves reads under the same lock that
// guards postings, and the SQL stores read inside single statements or
// read transactions.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/tax"
	"github.com/carebridge/ledger/transaction"
)

// BalanceDelta is one account's signed balance adjustment within a posting.
type BalanceDelta struct {
	AccountID id.AccountID
	Delta     decimal.Decimal
}

// Posting is the atomic unit of work for posting or voiding a transaction:
// apply every delta, then flip the transaction status from FromStatus to
// ToStatus. Implementations must fail the whole posting with the engine's
// state error if the transaction is not currently in FromStatus.
type Posting struct {
	TransactionID id.TransactionID
	FromStatus    transaction.Status
	ToStatus      transaction.Status
	Deltas        []BalanceDelta
	AppliedAt     time.Time
}

// Store is the unified storage interface for all ledger entities.
// All methods are tenant-scoped; implementations must never return records
// belonging to another tenant.
type Store interface {
	// Account methods
	CreateAccount(ctx context.Context, a *account.Account) error
	GetAccount(ctx context.Context, tenantID string, accountID id.AccountID) (*account.Account, error)
	GetAccountByCode(ctx context.Context, tenantID, code string) (*account.Account, error)
	ListAccounts(ctx context.Context, tenantID string, opts account.ListOpts) ([]*account.Account, error)
	UpdateAccount(ctx context.Context, a *account.Account) error

	// Transaction methods
	CreateTransaction(ctx context.Context, t *transaction.Transaction) error
	GetTransaction(ctx context.Context, tenantID string, txnID id.TransactionID) (*transaction.Transaction, error)
	ListTransactions(ctx context.Context, tenantID string, opts transaction.ListOpts) ([]*transaction.Transaction, error)
	ApplyPosting(ctx context.Context, tenantID string, p Posting) error

	// Report snapshots
	SaveReport(ctx context.Context, r *report.Report) error
	GetReport(ctx context.Context, tenantID string, reportID id.ReportID) (*report.Report, error)
	ListReports(ctx context.Context, tenantID string, opts report.ListOpts) ([]*report.Report, error)

	// Tax records
	SaveTaxRegistration(ctx context.Context, reg *tax.Registration) error
	GetTaxRegistration(ctx context.Context, tenantID string) (*tax.Registration, error)
	SaveTaxRate(ctx context.Context, rate *tax.Rate) error
	ListTaxRates(ctx context.Context, tenantID string) ([]*tax.Rate, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
