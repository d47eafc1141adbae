// Package account defines the chart-of-accounts model.
package account

import (
	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/types"
)

// Type classifies accounts in the chart of accounts.
type Type string

const (
	TypeAsset     Type = "ASSET"
	TypeLiability Type = "LIABILITY"
	TypeEquity    Type = "EQUITY"
	TypeRevenue   Type = "REVENUE"
	TypeExpense   Type = "EXPENSE"
)

// Valid reports whether t is one of the five account types.
func (t Type) Valid() bool {
	switch t {
	case TypeAsset, TypeLiability, TypeEquity, TypeRevenue, TypeExpense:
		return true
	}
	return false
}

// Account is one node in a tenant's hierarchical chart of accounts.
//
// Balance carries the signed convention balance = Σ(debit - credit) over
// every POSTED transaction touching the account, net of voids. Credit-normal
// types (LIABILITY, EQUITY, REVENUE) therefore go negative as they grow.
// That sign is part of the contract and is never normalized away.
//
// Balance is derived state: it is mutated only by the ledger engine during
// post/void, never written by callers.
type Account struct {
	types.Entity
	ID          id.AccountID    `json:"id"`
	TenantID    string          `json:"tenant_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Type        Type            `json:"type"`
	ParentID    id.AccountID    `json:"parent_id,omitempty"` // Nil for top-level accounts
	Balance     decimal.Decimal `json:"balance"`
	Region      string          `json:"region"`
	Description string          `json:"description,omitempty"`
}

// IsCreditNormal reports whether the account type grows on the credit side.
func (a *Account) IsCreditNormal() bool {
	switch a.Type {
	case TypeLiability, TypeEquity, TypeRevenue:
		return true
	}
	return false
}

// CreateOpts holds parameters for creating an account.
type CreateOpts struct {
	Code        string
	Name        string
	Type        Type
	ParentID    id.AccountID // optional
	Description string
}

// UpdateOpts is an explicit partial update. Nil fields are left untouched.
// Balance is deliberately absent: it is derived and never assignable.
type UpdateOpts struct {
	Name        *string
	Description *string
	ParentID    *id.AccountID
}

// ListOpts filters ListAccounts.
type ListOpts struct {
	Type     Type         // zero value = all types
	ParentID id.AccountID // Nil = no parent filter
	Search   string       // substring match on code or name
	Limit    int
	Offset   int
}
