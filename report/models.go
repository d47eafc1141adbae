// Package report defines financial report snapshots and their structured
// payloads. The engine emits structured data only; rendering to CSV, PDF or
// spreadsheets belongs to external consumers.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/id"
)

// Type enumerates the reports the engine can generate.
type Type string

const (
	TypeProfitLoss      Type = "PROFIT_LOSS"
	TypeBalanceSheet    Type = "BALANCE_SHEET"
	TypeCashFlow        Type = "CASH_FLOW"
	TypeAgedReceivables Type = "AGED_RECEIVABLES"
	TypeAgedPayables    Type = "AGED_PAYABLES"
	TypeTrialBalance    Type = "TRIAL_BALANCE"
)

// Valid reports whether t is a known report type.
func (t Type) Valid() bool {
	switch t {
	case TypeProfitLoss, TypeBalanceSheet, TypeCashFlow,
		TypeAgedReceivables, TypeAgedPayables, TypeTrialBalance:
		return true
	}
	return false
}

// Report is an immutable, timestamped snapshot. Reports are persisted on
// generation and never recomputed in place; a fresh run creates a new
// snapshot with a new ID.
type Report struct {
	ID          id.ReportID `json:"id"`
	TenantID    string      `json:"tenant_id"`
	Type        Type        `json:"type"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	GeneratedAt time.Time   `json:"generated_at"`
	Data        any         `json:"data"` // one of the payload structs below
}

// Params selects what GenerateReport produces.
type Params struct {
	Type      Type
	StartDate time.Time
	EndDate   time.Time
}

// AccountLine is one account's contribution to a report section.
type AccountLine struct {
	AccountID id.AccountID    `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// ProfitLoss nets revenue and expense movement within the period.
type ProfitLoss struct {
	Revenue      []AccountLine   `json:"revenue"`
	Expenses     []AccountLine   `json:"expenses"`
	RevenueTotal decimal.Decimal `json:"revenue_total"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
	NetIncome    decimal.Decimal `json:"net_income"`
}

// BalanceSheet is the as-of-date position. For a consistent ledger,
// Assets = Liabilities + Equity.
type BalanceSheet struct {
	AsOf             time.Time       `json:"as_of"`
	Assets           []AccountLine   `json:"assets"`
	Liabilities      []AccountLine   `json:"liabilities"`
	Equity           []AccountLine   `json:"equity"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
}

// CashFlowActivity buckets cash movement by activity class.
type CashFlowActivity string

const (
	ActivityOperating CashFlowActivity = "operating"
	ActivityInvesting CashFlowActivity = "investing"
	ActivityFinancing CashFlowActivity = "financing"
)

// CashFlow summarizes movement through cash accounts over the period.
type CashFlow struct {
	Operating   decimal.Decimal `json:"operating"`
	Investing   decimal.Decimal `json:"investing"`
	Financing   decimal.Decimal `json:"financing"`
	NetCashFlow decimal.Decimal `json:"net_cash_flow"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
	ClosingCash decimal.Decimal `json:"closing_cash"`
}

// TrialBalanceRow is one account's signed balance split into debit/credit
// columns. Positive balances land in Debit, negative balances in Credit as
// their absolute value.
type TrialBalanceRow struct {
	AccountID id.AccountID    `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalance confirms total debits equal total credits across all
// accounts. Equality is a ledger invariant, not merely an expectation.
type TrialBalance struct {
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"total_debits"`
	TotalCredits decimal.Decimal   `json:"total_credits"`
}

// ListOpts filters persisted report snapshots.
type ListOpts struct {
	Type   Type
	Limit  int
	Offset int
}
