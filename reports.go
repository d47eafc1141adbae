package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/transaction"
)

// GenerateReport builds the requested report over already-posted data and
// persists it as an immutable, timestamped snapshot. Snapshots are never
// recomputed in place: generating the same report again creates a new one.
func (l *Ledger) GenerateReport(ctx context.Context, params report.Params) (*report.Report, error) {
	if !params.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReportType, params.Type)
	}

	var (
		data any
		err  error
	)
	switch params.Type {
	case report.TypeProfitLoss:
		data, err = l.buildProfitLoss(ctx, params.StartDate, params.EndDate)
	case report.TypeBalanceSheet:
		data, err = l.buildBalanceSheet(ctx, params.EndDate)
	case report.TypeCashFlow:
		data, err = l.buildCashFlow(ctx, params.StartDate, params.EndDate)
	case report.TypeAgedReceivables:
		data, err = l.buildAging(ctx, l.receivables, params.EndDate)
	case report.TypeAgedPayables:
		data, err = l.buildAging(ctx, l.payables, params.EndDate)
	case report.TypeTrialBalance:
		data, err = l.TrialBalance(ctx)
	}
	if err != nil {
		return nil, err
	}

	rpt := &report.Report{
		ID:          id.NewReportID(),
		TenantID:    l.tenantID,
		Type:        params.Type,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		GeneratedAt: l.now().UTC(),
		Data:        data,
	}
	if err := l.store.SaveReport(ctx, rpt); err != nil {
		return nil, err
	}
	l.hooks.EmitReport(ctx, rpt)

	l.logger.Info("report generated",
		"report_id", rpt.ID.String(),
		"tenant_id", l.tenantID,
		"type", string(rpt.Type),
	)
	return rpt, nil
}

// GetReport returns a persisted report snapshot.
func (l *Ledger) GetReport(ctx context.Context, reportID id.ReportID) (*report.Report, error) {
	return l.store.GetReport(ctx, l.tenantID, reportID)
}

// ListReports returns persisted report snapshots matching opts.
func (l *Ledger) ListReports(ctx context.Context, opts report.ListOpts) ([]*report.Report, error) {
	return l.store.ListReports(ctx, l.tenantID, opts)
}

// accountDeltas folds POSTED transactions into per-account signed movement
// (Σ debit - credit) over [startDate, endDate]; zero bounds are open.
func (l *Ledger) accountDeltas(ctx context.Context, startDate, endDate time.Time) (map[id.AccountID]decimal.Decimal, error) {
	txns, err := l.store.ListTransactions(ctx, l.tenantID, transaction.ListOpts{
		StartDate: startDate,
		EndDate:   endDate,
		Status:    transaction.StatusPosted,
	})
	if err != nil {
		return nil, err
	}

	deltas := make(map[id.AccountID]decimal.Decimal)
	for _, t := range txns {
		for _, e := range t.Entries {
			deltas[e.AccountID] = deltas[e.AccountID].Add(e.Delta())
		}
	}
	return deltas, nil
}

func (l *Ledger) buildProfitLoss(ctx context.Context, startDate, endDate time.Time) (*report.ProfitLoss, error) {
	deltas, err := l.accountDeltas(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	accounts, err := l.store.ListAccounts(ctx, l.tenantID, accountListAll)
	if err != nil {
		return nil, err
	}
	sortByCode(accounts)

	pl := &report.ProfitLoss{
		RevenueTotal: decimal.Zero,
		ExpenseTotal: decimal.Zero,
	}
	for _, a := range accounts {
		delta, ok := deltas[a.ID]
		if !ok || delta.IsZero() {
			continue
		}
		switch a.Type {
		case account.TypeRevenue:
			// Revenue movement is credit-heavy, so the signed delta is
			// negative; present the positive figure.
			amount := delta.Neg()
			pl.Revenue = append(pl.Revenue, line(a, amount))
			pl.RevenueTotal = pl.RevenueTotal.Add(amount)
		case account.TypeExpense:
			pl.Expenses = append(pl.Expenses, line(a, delta))
			pl.ExpenseTotal = pl.ExpenseTotal.Add(delta)
		}
	}
	pl.NetIncome = pl.RevenueTotal.Sub(pl.ExpenseTotal)
	return pl, nil
}

func (l *Ledger) buildBalanceSheet(ctx context.Context, asOf time.Time) (*report.BalanceSheet, error) {
	// As-of position: every POSTED transaction dated on or before asOf.
	deltas, err := l.accountDeltas(ctx, time.Time{}, asOf)
	if err != nil {
		return nil, err
	}
	accounts, err := l.store.ListAccounts(ctx, l.tenantID, accountListAll)
	if err != nil {
		return nil, err
	}
	sortByCode(accounts)

	bs := &report.BalanceSheet{
		AsOf:             asOf,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	retained := decimal.Zero

	for _, a := range accounts {
		delta, ok := deltas[a.ID]
		if !ok || delta.IsZero() {
			continue
		}
		switch a.Type {
		case account.TypeAsset:
			bs.Assets = append(bs.Assets, line(a, delta))
			bs.TotalAssets = bs.TotalAssets.Add(delta)
		case account.TypeLiability:
			amount := delta.Neg()
			bs.Liabilities = append(bs.Liabilities, line(a, amount))
			bs.TotalLiabilities = bs.TotalLiabilities.Add(amount)
		case account.TypeEquity:
			amount := delta.Neg()
			bs.Equity = append(bs.Equity, line(a, amount))
			bs.TotalEquity = bs.TotalEquity.Add(amount)
		case account.TypeRevenue:
			retained = retained.Add(delta.Neg())
		case account.TypeExpense:
			retained = retained.Sub(delta)
		}
	}

	// Undistributed profit keeps the equation assets = liabilities + equity
	// closed before a formal year-end close posts it to retained earnings.
	if !retained.IsZero() {
		bs.Equity = append(bs.Equity, report.AccountLine{
			Code:   "",
			Name:   "Current Period Earnings",
			Amount: retained,
		})
		bs.TotalEquity = bs.TotalEquity.Add(retained)
	}

	return bs, nil
}

func (l *Ledger) buildCashFlow(ctx context.Context, startDate, endDate time.Time) (*report.CashFlow, error) {
	accounts, err := l.store.ListAccounts(ctx, l.tenantID, accountListAll)
	if err != nil {
		return nil, err
	}
	codes := make(map[id.AccountID]string, len(accounts))
	cash := make(map[id.AccountID]bool)
	for _, a := range accounts {
		codes[a.ID] = a.Code
		if strings.HasPrefix(a.Code, l.cashPrefix) {
			cash[a.ID] = true
		}
	}

	txns, err := l.store.ListTransactions(ctx, l.tenantID, transaction.ListOpts{
		Status: transaction.StatusPosted,
	})
	if err != nil {
		return nil, err
	}

	cf := &report.CashFlow{
		Operating:   decimal.Zero,
		Investing:   decimal.Zero,
		Financing:   decimal.Zero,
		NetCashFlow: decimal.Zero,
		OpeningCash: decimal.Zero,
		ClosingCash: decimal.Zero,
	}

	for _, t := range txns {
		cashDelta := decimal.Zero
		counterCode := ""
		for _, e := range t.Entries {
			if cash[e.AccountID] {
				cashDelta = cashDelta.Add(e.Delta())
			} else if counterCode == "" {
				counterCode = codes[e.AccountID]
			}
		}
		if cashDelta.IsZero() {
			continue
		}

		if !startDate.IsZero() && t.Date.Before(startDate) {
			cf.OpeningCash = cf.OpeningCash.Add(cashDelta)
			continue
		}
		if !endDate.IsZero() && t.Date.After(endDate) {
			continue
		}

		switch l.classify(counterCode) {
		case report.ActivityInvesting:
			cf.Investing = cf.Investing.Add(cashDelta)
		case report.ActivityFinancing:
			cf.Financing = cf.Financing.Add(cashDelta)
		default:
			cf.Operating = cf.Operating.Add(cashDelta)
		}
		cf.NetCashFlow = cf.NetCashFlow.Add(cashDelta)
	}

	cf.ClosingCash = cf.OpeningCash.Add(cf.NetCashFlow)
	return cf, nil
}

func (l *Ledger) buildAging(ctx context.Context, src OpenItemSource, asOf time.Time) (*report.Aging, error) {
	if src == nil {
		aging := report.AgeItems(nil, asOf)
		return &aging, nil
	}
	items, err := src(ctx, asOf)
	if err != nil {
		return nil, err
	}
	aging := report.AgeItems(items, asOf)
	return &aging, nil
}

func line(a *account.Account, amount decimal.Decimal) report.AccountLine {
	return report.AccountLine{
		AccountID: a.ID,
		Code:      a.Code,
		Name:      a.Name,
		Amount:    amount,
	}
}

func sortByCode(accounts []*account.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Code < accounts[j].Code
	})
}
