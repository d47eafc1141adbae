package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/store"
	"github.com/carebridge/ledger/transaction"
	"github.com/carebridge/ledger/types"
)

// CreateTransactionOpts holds the caller-supplied fields of a transaction.
type CreateTransactionOpts struct {
	Date        time.Time
	Description string
	Entries     []transaction.NewEntry
	Reference   string
	ServiceType string

	// Declared tax, cross-checked by the compliance engine.
	TaxCode   string
	TaxAmount decimal.Decimal
}

// CreateTransaction validates and persists a transaction in PENDING state.
// Total debits must equal total credits and every entry must carry exactly
// one non-zero side; on any violation nothing is persisted. Account
// balances are untouched until PostTransaction.
func (l *Ledger) CreateTransaction(ctx context.Context, opts CreateTransactionOpts) (*transaction.Transaction, error) {
	if len(opts.Entries) == 0 {
		return nil, ErrNoEntries
	}

	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	entries := make([]transaction.Entry, 0, len(opts.Entries))

	for i, ne := range opts.Entries {
		if ne.Debit.IsNegative() || ne.Credit.IsNegative() {
			return nil, fmt.Errorf("%w: entry %d", ErrNegativeAmount, i)
		}

		hasDebit := !ne.Debit.IsZero()
		hasCredit := !ne.Credit.IsZero()
		if hasDebit == hasCredit {
			return nil, fmt.Errorf("%w: entry %d", ErrEntrySides, i)
		}

		if _, err := l.store.GetAccount(ctx, l.tenantID, ne.AccountID); err != nil {
			return nil, fmt.Errorf("%w: entry %d references %s", ErrAccountNotFound, i, ne.AccountID)
		}

		totalDebits = totalDebits.Add(ne.Debit)
		totalCredits = totalCredits.Add(ne.Credit)

		entries = append(entries, transaction.Entry{
			ID:          id.NewEntryID(),
			AccountID:   ne.AccountID,
			Debit:       ne.Debit,
			Credit:      ne.Credit,
			Description: ne.Description,
		})
	}

	if !totalDebits.Equal(totalCredits) {
		return nil, fmt.Errorf("%w: debits %s, credits %s",
			ErrUnbalancedTransaction, totalDebits.StringFixed(2), totalCredits.StringFixed(2))
	}

	t := &transaction.Transaction{
		Entity:      types.NewEntityAt(l.now()),
		ID:          id.NewTransactionID(),
		TenantID:    l.tenantID,
		Date:        opts.Date,
		Description: opts.Description,
		Reference:   opts.Reference,
		ServiceType: opts.ServiceType,
		Status:      transaction.StatusPending,
		Entries:     entries,
		TaxCode:     opts.TaxCode,
		TaxAmount:   opts.TaxAmount,
	}

	if err := l.store.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}

	l.logger.Debug("transaction created",
		"transaction_id", t.ID.String(),
		"amount", totalDebits.String(),
		"entries", len(entries),
	)
	return t, nil
}

// GetTransaction returns a tenant transaction by ID.
func (l *Ledger) GetTransaction(ctx context.Context, txnID id.TransactionID) (*transaction.Transaction, error) {
	return l.store.GetTransaction(ctx, l.tenantID, txnID)
}

// ListTransactions returns tenant transactions matching opts.
func (l *Ledger) ListTransactions(ctx context.Context, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	return l.store.ListTransactions(ctx, l.tenantID, opts)
}

// PostTransaction applies a PENDING transaction to account balances and
// marks it POSTED. Every balance delta and the status flip commit as one
// unit of work; a concurrent post of the same transaction loses the
// status compare-and-swap inside the store and observes ErrInvalidState.
func (l *Ledger) PostTransaction(ctx context.Context, txnID id.TransactionID) (*transaction.Transaction, error) {
	t, err := l.store.GetTransaction(ctx, l.tenantID, txnID)
	if err != nil {
		return nil, err
	}
	if t.Status != transaction.StatusPending {
		return nil, fmt.Errorf("%w: cannot post %s transaction %s", ErrInvalidState, t.Status, txnID)
	}

	if err := l.hooks.EmitBeforePosted(ctx, t); err != nil {
		return nil, err
	}

	if err := l.store.ApplyPosting(ctx, l.tenantID, store.Posting{
		TransactionID: txnID,
		FromStatus:    transaction.StatusPending,
		ToStatus:      transaction.StatusPosted,
		Deltas:        entryDeltas(t, false),
		AppliedAt:     l.now().UTC(),
	}); err != nil {
		return nil, err
	}

	t.Status = transaction.StatusPosted
	t.UpdatedAt = l.now().UTC()
	l.hooks.EmitPosted(ctx, t)

	l.logger.Info("transaction posted",
		"transaction_id", t.ID.String(),
		"tenant_id", l.tenantID,
		"amount", t.Amount().String(),
	)
	return t, nil
}

// VoidTransaction reverses a POSTED transaction by applying the exact
// inverse of every entry and marks it VOIDED. Voided transactions remain
// in the ledger for audit and can never be reposted or re-voided.
func (l *Ledger) VoidTransaction(ctx context.Context, txnID id.TransactionID) (*transaction.Transaction, error) {
	t, err := l.store.GetTransaction(ctx, l.tenantID, txnID)
	if err != nil {
		return nil, err
	}
	if t.Status != transaction.StatusPosted {
		return nil, fmt.Errorf("%w: cannot void %s transaction %s", ErrInvalidState, t.Status, txnID)
	}

	if err := l.store.ApplyPosting(ctx, l.tenantID, store.Posting{
		TransactionID: txnID,
		FromStatus:    transaction.StatusPosted,
		ToStatus:      transaction.StatusVoided,
		Deltas:        entryDeltas(t, true),
		AppliedAt:     l.now().UTC(),
	}); err != nil {
		return nil, err
	}

	t.Status = transaction.StatusVoided
	t.UpdatedAt = l.now().UTC()
	l.hooks.EmitVoided(ctx, t)

	l.logger.Info("transaction voided",
		"transaction_id", t.ID.String(),
		"tenant_id", l.tenantID,
	)
	return t, nil
}

// entryDeltas builds the balance adjustments for a posting. Inverted for
// voids: balance -= (debit - credit) per entry.
func entryDeltas(t *transaction.Transaction, invert bool) []store.BalanceDelta {
	deltas := make([]store.BalanceDelta, 0, len(t.Entries))
	for _, e := range t.Entries {
		d := e.Delta()
		if invert {
			d = d.Neg()
		}
		deltas = append(deltas, store.BalanceDelta{AccountID: e.AccountID, Delta: d})
	}
	return deltas
}

// TrialBalance splits every account's signed balance into a debit column
// (positive balances) and a credit column (negative balances, reported as
// absolute values). For a correctly operating ledger TotalDebits always
// equals TotalCredits.
func (l *Ledger) TrialBalance(ctx context.Context) (*report.TrialBalance, error) {
	accounts, err := l.store.ListAccounts(ctx, l.tenantID, accountListAll)
	if err != nil {
		return nil, err
	}

	tb := &report.TrialBalance{
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	for _, a := range accounts {
		row := report.TrialBalanceRow{
			AccountID: a.ID,
			Code:      a.Code,
			Name:      a.Name,
			Debit:     decimal.Zero,
			Credit:    decimal.Zero,
		}
		if a.Balance.IsPositive() {
			row.Debit = a.Balance
		} else if a.Balance.IsNegative() {
			row.Credit = a.Balance.Abs()
		}
		tb.TotalDebits = tb.TotalDebits.Add(row.Debit)
		tb.TotalCredits = tb.TotalCredits.Add(row.Credit)
		tb.Rows = append(tb.Rows, row)
	}

	return tb, nil
}

// AccountTransactions returns an account's history: the opening balance as
// of just before the window, the POSTED transactions touching it within the
// window in ascending date order (paged), and the closing balance from
// folding (debit - credit) over them. A page's opening balance includes
// every windowed transaction before the page, so consecutive pages chain.
func (l *Ledger) AccountTransactions(ctx context.Context, accountID id.AccountID, opts transaction.HistoryOpts) (*transaction.History, error) {
	if _, err := l.store.GetAccount(ctx, l.tenantID, accountID); err != nil {
		return nil, err
	}

	all, err := l.store.ListTransactions(ctx, l.tenantID, transaction.ListOpts{
		AccountID: accountID,
		Status:    transaction.StatusPosted,
	})
	if err != nil {
		return nil, err
	}
	sortByDate(all)

	opening := decimal.Zero
	windowed := make([]*transaction.Transaction, 0, len(all))
	for _, t := range all {
		if !opts.StartDate.IsZero() && t.Date.Before(opts.StartDate) {
			opening = opening.Add(t.EntryDelta(accountID))
			continue
		}
		if !opts.EndDate.IsZero() && t.Date.After(opts.EndDate) {
			continue
		}
		windowed = append(windowed, t)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit

	start := 0
	end := len(windowed)
	if limit > 0 {
		start = (page - 1) * limit
		if start > len(windowed) {
			start = len(windowed)
		}
		end = start + limit
		if end > len(windowed) {
			end = len(windowed)
		}
	}

	for _, t := range windowed[:start] {
		opening = opening.Add(t.EntryDelta(accountID))
	}

	h := &transaction.History{
		AccountID:      accountID,
		OpeningBalance: opening,
		ClosingBalance: opening,
		Page:           page,
		Limit:          limit,
		Total:          len(windowed),
	}
	for _, t := range windowed[start:end] {
		h.ClosingBalance = h.ClosingBalance.Add(t.EntryDelta(accountID))
		h.Transactions = append(h.Transactions, t)
		h.RunningBalance = append(h.RunningBalance, h.ClosingBalance)
	}

	return h, nil
}

// sortByDate orders transactions by date ascending, breaking ties on
// creation time and then ID for a stable order.
func sortByDate(txns []*transaction.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		if !txns[i].CreatedAt.Equal(txns[j].CreatedAt) {
			return txns[i].CreatedAt.Before(txns[j].CreatedAt)
		}
		return txns[i].ID.String() < txns[j].ID.String()
	})
}
