package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/ledger"
	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/store"
	"github.com/carebridge/ledger/store/memory"
	"github.com/carebridge/ledger/transaction"
	"github.com/carebridge/ledger/types"
)

const tenant = "sunrise-care"

func newAccount(code string, typ account.Type) *account.Account {
	return &account.Account{
		Entity:   types.NewEntity(),
		ID:       id.NewAccountID(),
		TenantID: tenant,
		Code:     code,
		Name:     "account " + code,
		Type:     typ,
		Balance:  decimal.Zero,
		Region:   "england",
	}
}

func newTxn(debitAcct, creditAcct id.AccountID, amount decimal.Decimal) *transaction.Transaction {
	return &transaction.Transaction{
		Entity:   types.NewEntity(),
		ID:       id.NewTransactionID(),
		TenantID: tenant,
		Date:     time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		Status:   transaction.StatusPending,
		Entries: []transaction.Entry{
			{ID: id.NewEntryID(), AccountID: debitAcct, Debit: amount},
			{ID: id.NewEntryID(), AccountID: creditAcct, Credit: amount},
		},
	}
}

func posting(t *transaction.Transaction) store.Posting {
	deltas := make([]store.BalanceDelta, 0, len(t.Entries))
	for _, e := range t.Entries {
		deltas = append(deltas, store.BalanceDelta{AccountID: e.AccountID, Delta: e.Delta()})
	}
	return store.Posting{
		TransactionID: t.ID,
		FromStatus:    transaction.StatusPending,
		ToStatus:      transaction.StatusPosted,
		Deltas:        deltas,
		AppliedAt:     time.Now().UTC(),
	}
}

func TestApplyPostingOnceOnly(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	cash := newAccount("1000", account.TypeAsset)
	revenue := newAccount("4000", account.TypeRevenue)
	require.NoError(t, s.CreateAccount(ctx, cash))
	require.NoError(t, s.CreateAccount(ctx, revenue))

	txn := newTxn(cash.ID, revenue.ID, decimal.NewFromInt(100))
	require.NoError(t, s.CreateTransaction(ctx, txn))

	require.NoError(t, s.ApplyPosting(ctx, tenant, posting(txn)))
	err := s.ApplyPosting(ctx, tenant, posting(txn))
	require.ErrorIs(t, err, ledger.ErrInvalidState)

	got, err := s.GetAccount(ctx, tenant, cash.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(100)), "balance = %s", got.Balance)
}

func TestApplyPostingConcurrent(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	cash := newAccount("1000", account.TypeAsset)
	revenue := newAccount("4000", account.TypeRevenue)
	require.NoError(t, s.CreateAccount(ctx, cash))
	require.NoError(t, s.CreateAccount(ctx, revenue))

	txn := newTxn(cash.ID, revenue.ID, decimal.NewFromInt(100))
	require.NoError(t, s.CreateTransaction(ctx, txn))

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.ApplyPosting(ctx, tenant, posting(txn))
		}(i)
	}
	wg.Wait()

	// Exactly one racer wins the status compare-and-swap.
	var won int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, ledger.ErrInvalidState)
		}
	}
	assert.Equal(t, 1, won)

	got, err := s.GetAccount(ctx, tenant, cash.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(100)),
		"balance applied %d times", won)
}

func TestReadsAreSnapshotConsistent(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	// Disjoint transactions over disjoint account pairs, posted in parallel
	// while a reader keeps summing balances. Each posting moves +amount and
	// -amount together, so every observed snapshot must net to zero.
	const pairs = 8
	txns := make([]*transaction.Transaction, 0, pairs)
	for i := 0; i < pairs; i++ {
		debit := newAccount(fmt.Sprintf("1%03d", i), account.TypeAsset)
		credit := newAccount(fmt.Sprintf("4%03d", i), account.TypeRevenue)
		require.NoError(t, s.CreateAccount(ctx, debit))
		require.NoError(t, s.CreateAccount(ctx, credit))

		txn := newTxn(debit.ID, credit.ID, decimal.NewFromInt(int64(100*(i+1))))
		require.NoError(t, s.CreateTransaction(ctx, txn))
		txns = append(txns, txn)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(txns))
	for i, txn := range txns {
		wg.Add(1)
		go func(i int, txn *transaction.Transaction) {
			defer wg.Done()
			errs[i] = s.ApplyPosting(ctx, tenant, posting(txn))
		}(i, txn)
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for finished := false; !finished; {
		select {
		case <-done:
			finished = true
		default:
		}

		accounts, err := s.ListAccounts(ctx, tenant, account.ListOpts{})
		require.NoError(t, err)
		sum := decimal.Zero
		for _, a := range accounts {
			sum = sum.Add(a.Balance)
		}
		require.True(t, sum.IsZero(), "mid-posting snapshot nets to %s", sum)
	}

	for i, err := range errs {
		require.NoError(t, err, "posting %d", i)
	}
	for i, txn := range txns {
		got, err := s.GetAccount(ctx, tenant, txn.Entries[0].AccountID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(int64(100*(i+1)))),
			"balance = %s", got.Balance)
	}
}

func TestApplyPostingUnknownTransaction(t *testing.T) {
	s := memory.New()
	err := s.ApplyPosting(context.Background(), tenant, store.Posting{
		TransactionID: id.NewTransactionID(),
		FromStatus:    transaction.StatusPending,
		ToStatus:      transaction.StatusPosted,
	})
	require.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestApplyPostingMissingAccountLeavesStateIntact(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	cash := newAccount("1000", account.TypeAsset)
	require.NoError(t, s.CreateAccount(ctx, cash))

	// Credit side references an account that was never created.
	txn := newTxn(cash.ID, id.NewAccountID(), decimal.NewFromInt(50))
	require.NoError(t, s.CreateTransaction(ctx, txn))

	err := s.ApplyPosting(ctx, tenant, posting(txn))
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)

	// All-or-nothing: the known account is untouched and the status held.
	got, err := s.GetAccount(ctx, tenant, cash.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())

	kept, err := s.GetTransaction(ctx, tenant, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusPending, kept.Status)
}

func TestTenantIsolation(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	cash := newAccount("1000", account.TypeAsset)
	require.NoError(t, s.CreateAccount(ctx, cash))

	_, err := s.GetAccount(ctx, "other-tenant", cash.ID)
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)

	listed, err := s.ListAccounts(ctx, "other-tenant", account.ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	revenue := newAccount("4000", account.TypeRevenue)
	require.NoError(t, s.CreateAccount(ctx, revenue))
	txn := newTxn(cash.ID, revenue.ID, decimal.NewFromInt(10))
	require.NoError(t, s.CreateTransaction(ctx, txn))

	_, err = s.GetTransaction(ctx, "other-tenant", txn.ID)
	require.ErrorIs(t, err, ledger.ErrTransactionNotFound)

	err = s.ApplyPosting(ctx, "other-tenant", posting(txn))
	require.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestDuplicateCodePerTenant(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	require.NoError(t, s.CreateAccount(ctx, newAccount("1000", account.TypeAsset)))
	err := s.CreateAccount(ctx, newAccount("1000", account.TypeAsset))
	require.ErrorIs(t, err, ledger.ErrDuplicateCode)

	// Same code under another tenant is fine.
	other := newAccount("1000", account.TypeAsset)
	other.TenantID = "other-tenant"
	require.NoError(t, s.CreateAccount(ctx, other))
}

func TestUpdateAccountPreservesBalance(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	cash := newAccount("1000", account.TypeAsset)
	revenue := newAccount("4000", account.TypeRevenue)
	require.NoError(t, s.CreateAccount(ctx, cash))
	require.NoError(t, s.CreateAccount(ctx, revenue))

	txn := newTxn(cash.ID, revenue.ID, decimal.NewFromInt(75))
	require.NoError(t, s.CreateTransaction(ctx, txn))
	require.NoError(t, s.ApplyPosting(ctx, tenant, posting(txn)))

	// A stale caller copy with a zero balance must not reset it.
	stale := *cash
	stale.Name = "Renamed"
	stale.Balance = decimal.Zero
	require.NoError(t, s.UpdateAccount(ctx, &stale))

	got, err := s.GetAccount(ctx, tenant, cash.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(75)), "balance = %s", got.Balance)
}

func TestCloneOnRead(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	cash := newAccount("1000", account.TypeAsset)
	require.NoError(t, s.CreateAccount(ctx, cash))

	got, err := s.GetAccount(ctx, tenant, cash.ID)
	require.NoError(t, err)
	got.Balance = decimal.NewFromInt(999999)
	got.Name = "mutated"

	fresh, err := s.GetAccount(ctx, tenant, cash.ID)
	require.NoError(t, err)
	assert.True(t, fresh.Balance.IsZero())
	assert.NotEqual(t, "mutated", fresh.Name)
}

func TestPingAfterClose(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
	require.ErrorIs(t, s.Ping(context.Background()), ledger.ErrStoreClosed)
}
