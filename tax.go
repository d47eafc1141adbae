package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/tax"
	"github.com/carebridge/ledger/transaction"
	"github.com/carebridge/ledger/types"
)

var oneHundred = decimal.NewFromInt(100)

// CalculateTransactionTax computes the applicable taxes for a transaction
// from the region's tax table. A tax does not apply when the transaction's
// service type is on its exemption list, or when the tax defines a revenue
// threshold and the tenant's trailing-12-month revenue is below it.
// Inapplicable taxes are absent from the result, not zero-amount entries.
//
// The basis is the transaction amount; amount = basis × rate / 100,
// rounded to two decimal places.
func (l *Ledger) CalculateTransactionTax(ctx context.Context, txn *transaction.Transaction) (map[string]tax.Calculation, error) {
	return l.calculateTransactionTax(ctx, txn, l.trailingRevenueOnce())
}

// trailingRevenueOnce returns a lookup that computes TrailingRevenue on
// first use and replays the figure on later calls. Callers that evaluate
// many transactions share one lookup so the threshold check costs a single
// ledger scan.
func (l *Ledger) trailingRevenueOnce() func(context.Context) (decimal.Decimal, error) {
	var (
		value    decimal.Decimal
		computed bool
	)
	return func(ctx context.Context) (decimal.Decimal, error) {
		if !computed {
			rev, err := l.TrailingRevenue(ctx)
			if err != nil {
				return decimal.Zero, err
			}
			value, computed = rev, true
		}
		return value, nil
	}
}

func (l *Ledger) calculateTransactionTax(ctx context.Context, txn *transaction.Transaction, trailing func(context.Context) (decimal.Decimal, error)) (map[string]tax.Calculation, error) {
	result := make(map[string]tax.Calculation)

	for _, t := range l.region.Taxes {
		if t.Exempts(txn.ServiceType) {
			continue
		}

		if t.Threshold.IsPositive() {
			rev, err := trailing(ctx)
			if err != nil {
				return nil, err
			}
			if rev.LessThan(t.Threshold) {
				continue
			}
		}

		basis := txn.Amount()
		result[t.Code] = tax.Calculation{
			Code:   t.Code,
			Name:   t.Name,
			Rate:   t.Rate,
			Basis:  basis,
			Amount: basis.Mul(t.Rate).Div(oneHundred).Round(2),
		}
	}

	return result, nil
}

// TrailingRevenue sums the tenant's POSTED revenue over the twelve months
// ending now: credits minus debits across REVENUE accounts, reported as a
// positive figure.
func (l *Ledger) TrailingRevenue(ctx context.Context) (decimal.Decimal, error) {
	now := l.now()
	revenueAccounts, err := l.revenueAccountSet(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	txns, err := l.store.ListTransactions(ctx, l.tenantID, transaction.ListOpts{
		StartDate: now.AddDate(-1, 0, 0),
		EndDate:   now,
		Status:    transaction.StatusPosted,
	})
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, t := range txns {
		for _, e := range t.Entries {
			if revenueAccounts[e.AccountID] {
				// Revenue grows on the credit side; report it positive.
				total = total.Add(e.Credit.Sub(e.Debit))
			}
		}
	}
	return total, nil
}

func (l *Ledger) revenueAccountSet(ctx context.Context) (map[id.AccountID]bool, error) {
	accounts, err := l.store.ListAccounts(ctx, l.tenantID, account.ListOpts{Type: account.TypeRevenue})
	if err != nil {
		return nil, err
	}
	set := make(map[id.AccountID]bool, len(accounts))
	for _, a := range accounts {
		set[a.ID] = true
	}
	return set, nil
}

// GenerateTaxReport scans POSTED transactions in the period and accumulates
// per-tax-code taxable amounts, tax amounts and transaction counts, plus an
// overall summary.
func (l *Ledger) GenerateTaxReport(ctx context.Context, startDate, endDate time.Time) (*tax.Report, error) {
	txns, err := l.store.ListTransactions(ctx, l.tenantID, transaction.ListOpts{
		StartDate: startDate,
		EndDate:   endDate,
		Status:    transaction.StatusPosted,
	})
	if err != nil {
		return nil, err
	}

	lines := make(map[string]*tax.ReportLine)
	summary := tax.Summary{
		TotalTaxable: decimal.Zero,
		TotalTax:     decimal.Zero,
	}

	// One trailing-revenue figure covers the whole scan.
	trailing := l.trailingRevenueOnce()

	for _, t := range txns {
		calcs, err := l.calculateTransactionTax(ctx, t, trailing)
		if err != nil {
			return nil, err
		}
		if len(calcs) == 0 {
			continue
		}
		summary.TransactionCount++

		for code, calc := range calcs {
			line, ok := lines[code]
			if !ok {
				line = &tax.ReportLine{
					Code:          code,
					Name:          calc.Name,
					Rate:          calc.Rate,
					TaxableAmount: decimal.Zero,
					TaxAmount:     decimal.Zero,
				}
				lines[code] = line
			}
			line.TaxableAmount = line.TaxableAmount.Add(calc.Basis)
			line.TaxAmount = line.TaxAmount.Add(calc.Amount)
			line.TransactionCount++

			summary.TotalTaxable = summary.TotalTaxable.Add(calc.Basis)
			summary.TotalTax = summary.TotalTax.Add(calc.Amount)
		}
	}

	rpt := &tax.Report{
		TenantID:  l.tenantID,
		Region:    string(l.region.Code),
		StartDate: startDate,
		EndDate:   endDate,
		Summary:   summary,
	}
	// Region tax order keeps report lines deterministic.
	for _, t := range l.region.Taxes {
		if line, ok := lines[t.Code]; ok {
			rpt.Lines = append(rpt.Lines, *line)
		}
	}
	return rpt, nil
}

// ValidateTaxSettings checks the tenant's tax setup against the region:
// a tax registration must be on file and every region-mandated tax code
// must have a configured rate equal to the region's rate. Findings come
// back as human-readable issues; an empty slice means fully configured.
func (l *Ledger) ValidateTaxSettings(ctx context.Context) ([]string, error) {
	var issues []string

	if _, err := l.store.GetTaxRegistration(ctx, l.tenantID); err != nil {
		if !errors.Is(err, ErrRegistrationNotFound) {
			return nil, err
		}
		issues = append(issues, fmt.Sprintf("no tax registration on file for region %s", l.region.Code))
	}

	rates, err := l.store.ListTaxRates(ctx, l.tenantID)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*tax.Rate, len(rates))
	for _, r := range rates {
		byCode[r.Code] = r
	}

	for _, t := range l.region.Taxes {
		configured, ok := byCode[t.Code]
		if !ok {
			issues = append(issues, fmt.Sprintf("tax %s (%s) has no configured rate", t.Code, t.Name))
			continue
		}
		if !configured.Rate.Equal(t.Rate) {
			issues = append(issues, fmt.Sprintf("tax %s rate is %s%%, region mandates %s%%",
				t.Code, configured.Rate.String(), t.Rate.String()))
		}
	}

	return issues, nil
}

// RegisterForTax records the tenant's tax registration.
func (l *Ledger) RegisterForTax(ctx context.Context, registrationNumber string) (*tax.Registration, error) {
	reg := &tax.Registration{
		Entity:             types.NewEntityAt(l.now()),
		ID:                 id.NewTaxRegistrationID(),
		TenantID:           l.tenantID,
		RegistrationNumber: registrationNumber,
		Region:             string(l.region.Code),
		EffectiveFrom:      l.now().UTC(),
	}
	if err := l.store.SaveTaxRegistration(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// ConfigureTaxRate records a tenant-configured rate for a tax code.
func (l *Ledger) ConfigureTaxRate(ctx context.Context, code string, rate decimal.Decimal) (*tax.Rate, error) {
	r := &tax.Rate{
		Entity:   types.NewEntityAt(l.now()),
		ID:       id.NewTaxRateID(),
		TenantID: l.tenantID,
		Code:     code,
		Rate:     rate,
	}
	if err := l.store.SaveTaxRate(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
