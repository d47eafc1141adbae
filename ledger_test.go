package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/ledger"
	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/region"
	"github.com/carebridge/ledger/store/memory"
	"github.com/carebridge/ledger/transaction"
)

// testNow is pinned mid fiscal year for england (2024-04-01 to 2025-03-31).
var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T, opts ...ledger.Option) *ledger.Ledger {
	t.Helper()

	opts = append([]ledger.Option{ledger.WithClock(func() time.Time { return testNow })}, opts...)
	l, err := ledger.New(memory.New(), ledger.Config{
		TenantID: "sunrise-care",
		Region:   region.England,
	}, opts...)
	require.NoError(t, err)
	require.NoError(t, l.Start(context.Background()))
	return l
}

// seedChart seeds the regional standard chart and indexes accounts by code.
func seedChart(t *testing.T, l *ledger.Ledger) map[string]*account.Account {
	t.Helper()

	created, err := l.SeedStandardChart(context.Background())
	require.NoError(t, err)
	byCode := make(map[string]*account.Account, len(created))
	for _, a := range created {
		byCode[a.Code] = a
	}
	return byCode
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// postSimple creates and posts a two-entry transaction on the given date.
func postSimple(t *testing.T, l *ledger.Ledger, date time.Time, debitAcct, creditAcct *account.Account, amount decimal.Decimal) *transaction.Transaction {
	t.Helper()

	ctx := context.Background()
	txn, err := l.CreateTransaction(ctx, ledger.CreateTransactionOpts{
		Date:        date,
		Description: "test posting",
		Entries: []transaction.NewEntry{
			{AccountID: debitAcct.ID, Debit: amount},
			{AccountID: creditAcct.ID, Credit: amount},
		},
	})
	require.NoError(t, err)

	posted, err := l.PostTransaction(ctx, txn.ID)
	require.NoError(t, err)
	return posted
}

func TestNewRequiresTenant(t *testing.T) {
	_, err := ledger.New(memory.New(), ledger.Config{Region: region.England})
	require.Error(t, err)
}

func TestNewRejectsUnknownRegion(t *testing.T) {
	_, err := ledger.New(memory.New(), ledger.Config{
		TenantID: "sunrise-care",
		Region:   region.Code("atlantis"),
	})
	require.ErrorIs(t, err, ledger.ErrConfigNotFound)
}

func TestRegionBoundAtConstruction(t *testing.T) {
	l := newTestLedger(t)
	rc := l.Region()
	require.Equal(t, region.England, rc.Code)
	require.Equal(t, "GBP", rc.Currency)
	require.Len(t, rc.Taxes, 1)
	require.Equal(t, "VAT", rc.Taxes[0].Code)
}
