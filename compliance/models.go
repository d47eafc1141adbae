// Package compliance defines advisory validation results and report types.
//
// Compliance findings are data, never errors: validation returns an issue
// list and posting proceeds unless the caller (or a registered gate hook)
// chooses to block on it.
package compliance

import "time"

// Result is the outcome of validating a single transaction.
type Result struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ChecklistItem tracks one region-mandated report in a compliance report.
type ChecklistItem struct {
	Report    string `json:"report"`
	Generated bool   `json:"generated"`
}

// Report bundles a period's compliance posture.
type Report struct {
	TenantID        string          `json:"tenant_id"`
	Region          string          `json:"region"`
	Regulator       string          `json:"regulator"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Checklist       []ChecklistItem `json:"checklist"`
	TaxIssues       []string        `json:"tax_issues"`
	ChartAdherence  ChartAdherence  `json:"chart_adherence"`
	Recommendations []string        `json:"recommendations"`
}

// ChartAdherence summarizes how well the tenant's accounts conform to the
// regional chart-of-accounts standard.
type ChartAdherence struct {
	AccountsChecked int      `json:"accounts_checked"`
	Conforming      int      `json:"conforming"`
	NonConformities []string `json:"non_conformities"`
}
