package ledger

import (
	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/compliance"
	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/transaction"
	"github.com/carebridge/ledger/types"
)

// Re-export common types for convenience so embedders don't have to import
// every subpackage.

// Account is re-exported from the account package.
type Account = account.Account

// AccountType is re-exported from the account package.
type AccountType = account.Type

// Transaction is re-exported from the transaction package.
type Transaction = transaction.Transaction

// Entry is re-exported from the transaction package.
type Entry = transaction.Entry

// ComplianceResult is re-exported from the compliance package.
type ComplianceResult = compliance.Result

// Report is re-exported from the report package.
type Report = report.Report

// Entity is re-exported from the types package.
type Entity = types.Entity

// Account type constants.
const (
	Asset     = account.TypeAsset
	Liability = account.TypeLiability
	Equity    = account.TypeEquity
	Revenue   = account.TypeRevenue
	Expense   = account.TypeExpense
)

// Transaction status constants.
const (
	Pending = transaction.StatusPending
	Posted  = transaction.StatusPosted
	Voided  = transaction.StatusVoided
)

// NewEntity is re-exported from the types package.
var NewEntity = types.NewEntity
