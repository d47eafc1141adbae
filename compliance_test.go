package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/ledger"
	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/hook"
	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/transaction"
)

func TestValidateTransactionFiscalYear(t *testing.T) {
	// England's fiscal year runs 1 April to 31 March.
	tests := []struct {
		name    string
		now     time.Time
		txnDate time.Time
		inYear  bool
	}{
		{
			name:    "march date before april rollover",
			now:     time.Date(2024, time.March, 31, 10, 0, 0, 0, time.UTC),
			txnDate: time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
			inYear:  true, // window is 2023-04-01 .. 2024-03-31
		},
		{
			name:    "march date after april rollover",
			now:     time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC),
			txnDate: time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
			inYear:  false, // window rolled to 2024-04-01 .. 2025-03-31
		},
		{
			name:    "first day of new fiscal year",
			now:     time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC),
			txnDate: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			inYear:  true,
		},
		{
			name:    "last day of fiscal year",
			now:     time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC),
			txnDate: time.Date(2025, time.March, 31, 23, 0, 0, 0, time.UTC),
			inYear:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t, ledger.WithClock(func() time.Time { return tt.now }))
			chart := seedChart(t, l)
			ctx := context.Background()

			txn, err := l.CreateTransaction(ctx, ledger.CreateTransactionOpts{
				Date: tt.txnDate,
				Entries: []transaction.NewEntry{
					{AccountID: chart["1000"].ID, Debit: dec("10")},
					{AccountID: chart["4000"].ID, Credit: dec("10")},
				},
			})
			require.NoError(t, err)

			result, err := l.ValidateTransaction(ctx, txn)
			require.NoError(t, err)
			if tt.inYear {
				assert.True(t, result.Valid, "unexpected issues: %v", result.Issues)
			} else {
				assert.False(t, result.Valid)
				require.Len(t, result.Issues, 1)
				assert.Contains(t, result.Issues[0], "fiscal year")
			}
		})
	}
}

func TestValidateTransactionChartConformance(t *testing.T) {
	l := newTestLedger(t)
	chart := seedChart(t, l)
	ctx := context.Background()

	// 6000 is not in the FRS 102 chart; 1000 is typed ASSET there.
	offChart, err := l.CreateAccount(ctx, account.CreateOpts{
		Code: "6000", Name: "Sundry", Type: account.TypeExpense,
	})
	require.NoError(t, err)

	txn, err := l.CreateTransaction(ctx, ledger.CreateTransactionOpts{
		Date: testNow,
		Entries: []transaction.NewEntry{
			{AccountID: offChart.ID, Debit: dec("10")},
			{AccountID: chart["1000"].ID, Credit: dec("10")},
		},
	})
	require.NoError(t, err)

	result, err := l.ValidateTransaction(ctx, txn)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0], "6000")
}

func TestValidateTransactionTaxCrossCheck(t *testing.T) {
	l := newTestLedger(t)
	chart := seedChart(t, l)
	ctx := context.Background()

	// Cross the VAT threshold so the recomputation yields a non-zero figure.
	postSimple(t, l, testNow.AddDate(0, -1, 0), chart["1000"], chart["4200"], dec("100000"))

	makeTxn := func(declared string) *transaction.Transaction {
		txn, err := l.CreateTransaction(ctx, ledger.CreateTransactionOpts{
			Date:        testNow,
			ServiceType: "equipment-hire",
			TaxCode:     "VAT",
			TaxAmount:   dec(declared),
			Entries: []transaction.NewEntry{
				{AccountID: chart["1000"].ID, Debit: dec("100")},
				{AccountID: chart["4200"].ID, Credit: dec("100")},
			},
		})
		require.NoError(t, err)
		return txn
	}

	// 100 × 20% = 20. Declaring 20 passes, declaring 15 is flagged.
	good, err := l.ValidateTransaction(ctx, makeTxn("20"))
	require.NoError(t, err)
	assert.True(t, good.Valid, "unexpected issues: %v", good.Issues)

	bad, err := l.ValidateTransaction(ctx, makeTxn("15"))
	require.NoError(t, err)
	assert.False(t, bad.Valid)
	require.Len(t, bad.Issues, 1)
	assert.Contains(t, bad.Issues[0], "declared tax")
}

func TestValidationIsAdvisoryByDefault(t *testing.T) {
	l := newTestLedger(t)
	chart := seedChart(t, l)
	ctx := context.Background()

	// Dated outside the fiscal year: a finding, but not a block.
	outside := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	txn, err := l.CreateTransaction(ctx, ledger.CreateTransactionOpts{
		Date: outside,
		Entries: []transaction.NewEntry{
			{AccountID: chart["1000"].ID, Debit: dec("10")},
			{AccountID: chart["4000"].ID, Credit: dec("10")},
		},
	})
	require.NoError(t, err)

	result, err := l.ValidateTransaction(ctx, txn)
	require.NoError(t, err)
	require.False(t, result.Valid)

	_, err = l.PostTransaction(ctx, txn.ID)
	require.NoError(t, err)
}

func TestComplianceGateBlocksPosting(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Hooks().Register(hook.NewComplianceGate(l.ValidateTransaction)))
	chart := seedChart(t, l)
	ctx := context.Background()

	outside := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	txn, err := l.CreateTransaction(ctx, ledger.CreateTransactionOpts{
		Date: outside,
		Entries: []transaction.NewEntry{
			{AccountID: chart["1000"].ID, Debit: dec("10")},
			{AccountID: chart["4000"].ID, Credit: dec("10")},
		},
	})
	require.NoError(t, err)

	_, err = l.PostTransaction(ctx, txn.ID)
	var blocked *hook.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "compliance-gate", blocked.Hook)

	// The veto happened before any mutation.
	got, err := l.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusPending, got.Status)
	cash, err := l.GetAccount(ctx, chart["1000"].ID)
	require.NoError(t, err)
	assert.True(t, cash.Balance.IsZero())
}

func TestGenerateComplianceReport(t *testing.T) {
	l := newTestLedger(t)
	chart := seedChart(t, l)
	ctx := context.Background()

	_, err := l.CreateAccount(ctx, account.CreateOpts{
		Code: "6000", Name: "Sundry", Type: account.TypeExpense,
	})
	require.NoError(t, err)

	postSimple(t, l, testNow, chart["1000"], chart["4000"], dec("100"))

	// Evidence for annual-accounts: both a balance sheet and a P&L snapshot.
	_, err = l.GenerateReport(ctx, report.Params{
		Type: report.TypeBalanceSheet, EndDate: testNow,
	})
	require.NoError(t, err)
	_, err = l.GenerateReport(ctx, report.Params{
		Type: report.TypeProfitLoss, StartDate: testNow.AddDate(0, -3, 0), EndDate: testNow,
	})
	require.NoError(t, err)

	rpt, err := l.GenerateComplianceReport(ctx, testNow.AddDate(0, 0, -1), testNow.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, "Care Quality Commission (CQC)", rpt.Regulator)
	require.Len(t, rpt.Checklist, 3)
	byName := make(map[string]bool, len(rpt.Checklist))
	for _, item := range rpt.Checklist {
		byName[item.Report] = item.Generated
	}
	assert.True(t, byName["annual-accounts"])
	assert.True(t, byName["vat-return"])
	assert.True(t, byName["cqc-market-oversight"])

	// 17 chart accounts conform, the sundry account does not.
	assert.Equal(t, 18, rpt.ChartAdherence.AccountsChecked)
	assert.Equal(t, 17, rpt.ChartAdherence.Conforming)
	require.Len(t, rpt.ChartAdherence.NonConformities, 1)
	assert.Contains(t, rpt.ChartAdherence.NonConformities[0], "6000")

	// No registration and no configured rate.
	assert.Len(t, rpt.TaxIssues, 2)
	assert.NotEmpty(t, rpt.Recommendations)
}
