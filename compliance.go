package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/compliance"
	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/transaction"
)

// taxTolerance is the maximum accepted difference between a declared tax
// amount and a recomputed one.
var taxTolerance = decimal.NewFromFloat(0.01)

// ValidateTransaction evaluates a transaction against the region's rules
// and returns advisory findings. It never fails a transaction outright:
// findings are data, and posting proceeds regardless unless the caller or
// a registered ComplianceGate hook acts on them.
//
// Checks: structural balance, fiscal-year window, chart-of-accounts
// conformance, and a declared-vs-recomputed tax cross-check.
func (l *Ledger) ValidateTransaction(ctx context.Context, txn *transaction.Transaction) (compliance.Result, error) {
	var issues []string

	// Structural safety net mirroring the creation-time invariant.
	if !txn.Balanced() {
		issues = append(issues, fmt.Sprintf("transaction is unbalanced: debits %s, credits %s",
			txn.TotalDebits().StringFixed(2), txn.TotalCredits().StringFixed(2)))
	}

	// Fiscal-year window. If now precedes this calendar year's fiscal start
	// the window began last year; it always spans exactly one year less a day.
	fyStart, fyEnd := l.region.FiscalYear.WindowAt(l.now())
	if txn.Date.Before(fyStart) || txn.Date.After(fyEnd) {
		issues = append(issues, fmt.Sprintf("transaction date %s is outside the current fiscal year (%s to %s)",
			txn.Date.Format("2006-01-02"), fyStart.Format("2006-01-02"), fyEnd.Format("2006-01-02")))
	}

	// Chart-of-accounts conformance.
	for _, e := range txn.Entries {
		a, err := l.store.GetAccount(ctx, l.tenantID, e.AccountID)
		if err != nil {
			issues = append(issues, fmt.Sprintf("entry references unknown account %s", e.AccountID))
			continue
		}
		entry, ok := l.region.Standard.ChartOfAccounts[a.Code]
		if !ok {
			issues = append(issues, fmt.Sprintf("account %s (%s) is not in the %s chart of accounts",
				a.Code, a.Name, l.region.Standard.Name))
			continue
		}
		if entry.Type != a.Type {
			issues = append(issues, fmt.Sprintf("account %s is typed %s but the %s standard defines it as %s",
				a.Code, a.Type, l.region.Standard.Name, entry.Type))
		}
	}

	// Tax cross-check, only when the producer declared tax.
	if txn.TaxCode != "" || !txn.TaxAmount.IsZero() {
		calcs, err := l.CalculateTransactionTax(ctx, txn)
		if err != nil {
			return compliance.Result{}, err
		}

		expected := decimal.Zero
		if txn.TaxCode != "" {
			if calc, ok := calcs[txn.TaxCode]; ok {
				expected = calc.Amount
			}
		} else {
			for _, calc := range calcs {
				expected = expected.Add(calc.Amount)
			}
		}

		if txn.TaxAmount.Sub(expected).Abs().GreaterThan(taxTolerance) {
			issues = append(issues, fmt.Sprintf("declared tax %s differs from calculated tax %s",
				txn.TaxAmount.StringFixed(2), expected.StringFixed(2)))
		}
	}

	return compliance.Result{Valid: len(issues) == 0, Issues: issues}, nil
}

// mandatoryReportTypes maps region-mandated filing names onto the report
// snapshot types that evidence them.
var mandatoryReportTypes = map[string][]report.Type{
	"annual-accounts":                {report.TypeBalanceSheet, report.TypeProfitLoss},
	"vat-return":                     {report.TypeProfitLoss},
	"cqc-market-oversight":           {report.TypeBalanceSheet},
	"care-inspectorate-annual-return": {report.TypeBalanceSheet},
	"ciw-annual-return":              {report.TypeBalanceSheet},
	"rqia-annual-return":             {report.TypeBalanceSheet},
	"hiqa-annual-return":             {report.TypeBalanceSheet},
}

// GenerateComplianceReport bundles the tenant's compliance posture for a
// period: the mandatory-report checklist, tax configuration findings,
// chart-of-accounts adherence and recommendations.
func (l *Ledger) GenerateComplianceReport(ctx context.Context, startDate, endDate time.Time) (*compliance.Report, error) {
	snapshots, err := l.store.ListReports(ctx, l.tenantID, report.ListOpts{})
	if err != nil {
		return nil, err
	}
	generated := make(map[report.Type]bool)
	for _, s := range snapshots {
		if s.GeneratedAt.Before(startDate) || s.GeneratedAt.After(endDate) {
			continue
		}
		generated[s.Type] = true
	}

	rpt := &compliance.Report{
		TenantID:  l.tenantID,
		Region:    string(l.region.Code),
		Regulator: l.region.Regulator,
		StartDate: startDate,
		EndDate:   endDate,
	}

	for _, name := range l.region.Reporting.MandatoryReports {
		item := compliance.ChecklistItem{Report: name}
		types, known := mandatoryReportTypes[name]
		if known {
			item.Generated = true
			for _, rt := range types {
				if !generated[rt] {
					item.Generated = false
					break
				}
			}
		}
		rpt.Checklist = append(rpt.Checklist, item)
	}

	taxIssues, err := l.ValidateTaxSettings(ctx)
	if err != nil {
		return nil, err
	}
	rpt.TaxIssues = taxIssues

	accounts, err := l.store.ListAccounts(ctx, l.tenantID, accountListAll)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		rpt.ChartAdherence.AccountsChecked++
		entry, ok := l.region.Standard.ChartOfAccounts[a.Code]
		switch {
		case !ok:
			rpt.ChartAdherence.NonConformities = append(rpt.ChartAdherence.NonConformities,
				fmt.Sprintf("account %s (%s) is not in the %s chart of accounts", a.Code, a.Name, l.region.Standard.Name))
		case entry.Type != a.Type:
			rpt.ChartAdherence.NonConformities = append(rpt.ChartAdherence.NonConformities,
				fmt.Sprintf("account %s is typed %s, standard defines %s", a.Code, a.Type, entry.Type))
		default:
			rpt.ChartAdherence.Conforming++
		}
	}

	if len(rpt.TaxIssues) > 0 {
		rpt.Recommendations = append(rpt.Recommendations,
			"resolve tax configuration issues before the next filing")
	}
	if len(rpt.ChartAdherence.NonConformities) > 0 {
		rpt.Recommendations = append(rpt.Recommendations,
			fmt.Sprintf("align account codes and types with the %s chart of accounts", l.region.Standard.Name))
	}
	for _, item := range rpt.Checklist {
		if !item.Generated {
			rpt.Recommendations = append(rpt.Recommendations,
				"generate the outstanding mandatory reports before period close")
			break
		}
	}

	return rpt, nil
}
