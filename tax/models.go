// Package tax defines tax calculation and registration records.
package tax

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/types"
)

// Calculation is the computed tax for one tax code on a transaction.
type Calculation struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`   // percentage
	Basis  decimal.Decimal `json:"basis"`  // amount the rate applies to
	Amount decimal.Decimal `json:"amount"` // basis × rate / 100, 2dp
}

// Registration records that a tenant is registered for tax in its region.
type Registration struct {
	types.Entity
	ID                 id.TaxRegistrationID `json:"id"`
	TenantID           string               `json:"tenant_id"`
	RegistrationNumber string               `json:"registration_number"`
	Region             string               `json:"region"`
	EffectiveFrom      time.Time            `json:"effective_from"`
}

// Rate is a tenant-configured tax rate, validated against the region's
// mandated rate by ValidateSettings.
type Rate struct {
	types.Entity
	ID       id.TaxRateID    `json:"id"`
	TenantID string          `json:"tenant_id"`
	Code     string          `json:"code"`
	Rate     decimal.Decimal `json:"rate"`
}

// ReportLine accumulates one tax code across a reporting period.
type ReportLine struct {
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Rate             decimal.Decimal `json:"rate"`
	TaxableAmount    decimal.Decimal `json:"taxable_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	TransactionCount int             `json:"transaction_count"`
}

// Report is the structured tax report for a period.
type Report struct {
	TenantID  string          `json:"tenant_id"`
	Region    string          `json:"region"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Lines     []ReportLine    `json:"lines"`
	Summary   Summary         `json:"summary"`
}

// Summary is the whole-period rollup of a tax report.
type Summary struct {
	TotalTaxable     decimal.Decimal `json:"total_taxable"`
	TotalTax         decimal.Decimal `json:"total_tax"`
	TransactionCount int             `json:"transaction_count"`
}
