package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/ledger"
	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/id"
)

func TestCreateAccountStartsAtZero(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	a, err := l.CreateAccount(ctx, account.CreateOpts{
		Code: "1000",
		Name: "Cash at Bank",
		Type: account.TypeAsset,
	})
	require.NoError(t, err)
	assert.True(t, a.Balance.IsZero())
	assert.Equal(t, "england", a.Region)
	assert.True(t, a.ParentID.IsNil())
}

func TestCreateAccountValidation(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	t.Run("missing code", func(t *testing.T) {
		_, err := l.CreateAccount(ctx, account.CreateOpts{Name: "Cash", Type: account.TypeAsset})
		require.Error(t, err)
	})

	t.Run("bad type", func(t *testing.T) {
		_, err := l.CreateAccount(ctx, account.CreateOpts{Code: "9000", Name: "Mystery", Type: "GOODWILL"})
		require.ErrorIs(t, err, ledger.ErrInvalidAccountType)
	})

	t.Run("unknown parent", func(t *testing.T) {
		_, err := l.CreateAccount(ctx, account.CreateOpts{
			Code:     "1010",
			Name:     "Petty Cash",
			Type:     account.TypeAsset,
			ParentID: id.NewAccountID(),
		})
		require.ErrorIs(t, err, ledger.ErrParentNotFound)
	})

	t.Run("duplicate code", func(t *testing.T) {
		_, err := l.CreateAccount(ctx, account.CreateOpts{Code: "1000", Name: "Cash", Type: account.TypeAsset})
		require.NoError(t, err)
		_, err = l.CreateAccount(ctx, account.CreateOpts{Code: "1000", Name: "Cash Again", Type: account.TypeAsset})
		require.ErrorIs(t, err, ledger.ErrDuplicateCode)
	})
}

func TestAccountHierarchy(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	parent, err := l.CreateAccount(ctx, account.CreateOpts{
		Code: "1000", Name: "Current Assets", Type: account.TypeAsset,
	})
	require.NoError(t, err)

	child, err := l.CreateAccount(ctx, account.CreateOpts{
		Code: "1010", Name: "Petty Cash", Type: account.TypeAsset, ParentID: parent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, child.ParentID)

	children, err := l.ListAccounts(ctx, account.ListOpts{ParentID: parent.ID})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)
}

func TestUpdateAccountPartial(t *testing.T) {
	l := newTestLedger(t)
	chart := seedChart(t, l)
	ctx := context.Background()
	cash := chart["1000"]

	// Give the account a balance to prove updates cannot clobber it.
	postSimple(t, l, testNow, cash, chart["4000"], dec("40"))

	name := "Main Operating Account"
	updated, err := l.UpdateAccount(ctx, cash.ID, account.UpdateOpts{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, cash.Code, updated.Code)

	got, err := l.GetAccount(ctx, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.True(t, got.Balance.Equal(dec("40")), "balance = %s", got.Balance)

	t.Run("unknown parent", func(t *testing.T) {
		ghost := id.NewAccountID()
		_, err := l.UpdateAccount(ctx, cash.ID, account.UpdateOpts{ParentID: &ghost})
		require.ErrorIs(t, err, ledger.ErrParentNotFound)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := l.UpdateAccount(ctx, id.NewAccountID(), account.UpdateOpts{Name: &name})
		require.ErrorIs(t, err, ledger.ErrAccountNotFound)
	})
}

func TestListAccountsSearchAndType(t *testing.T) {
	l := newTestLedger(t)
	seedChart(t, l)
	ctx := context.Background()

	revenue, err := l.ListAccounts(ctx, account.ListOpts{Type: account.TypeRevenue})
	require.NoError(t, err)
	require.Len(t, revenue, 3)
	for _, a := range revenue {
		assert.Equal(t, account.TypeRevenue, a.Type)
	}

	byName, err := l.ListAccounts(ctx, account.ListOpts{Search: "nursing"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "4100", byName[0].Code)

	byCode, err := l.ListAccounts(ctx, account.ListOpts{Search: "52"})
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, "Catering", byCode[0].Name)
}

func TestSeedStandardChart(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	created, err := l.SeedStandardChart(ctx)
	require.NoError(t, err)
	assert.Len(t, created, 17)

	// Seeding is idempotent: existing codes are skipped.
	again, err := l.SeedStandardChart(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	entry, ok := l.StandardChartEntry("1000")
	require.True(t, ok)
	assert.Equal(t, "Cash at Bank", entry.Name)
	assert.Equal(t, account.TypeAsset, entry.Type)
}
