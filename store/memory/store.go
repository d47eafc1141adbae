// Package memory provides an in-memory Store for tests and embedding.
//
// A single RWMutex guards all state: postings take the write lock, reads
// take the read lock, so reads are snapshot-consistent with respect to
// postings: a reader never observes a posting's balance deltas without its
// status flip or vice versa.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/carebridge/ledger"
	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/store"
	"github.com/carebridge/ledger/tax"
	"github.com/carebridge/ledger/transaction"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store is a mutex-guarded in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	accounts      map[string]*account.Account
	transactions  map[string]*transaction.Transaction
	reports       map[string]*report.Report
	registrations map[string]*tax.Registration // keyed by tenant
	rates         []*tax.Rate

	closed bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		accounts:      make(map[string]*account.Account),
		transactions:  make(map[string]*transaction.Transaction),
		reports:       make(map[string]*report.Report),
		registrations: make(map[string]*tax.Registration),
	}
}

// ──────────────────────────────────────────────────
// Accounts
// ──────────────────────────────────────────────────

func (s *Store) CreateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.TenantID == a.TenantID && existing.Code == a.Code {
			return ledger.ErrDuplicateCode
		}
	}
	s.accounts[a.ID.String()] = cloneAccount(a)
	return nil
}

func (s *Store) GetAccount(_ context.Context, tenantID string, accountID id.AccountID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[accountID.String()]
	if !ok || a.TenantID != tenantID {
		return nil, ledger.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (s *Store) GetAccountByCode(_ context.Context, tenantID, code string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.TenantID == tenantID && a.Code == code {
			return cloneAccount(a), nil
		}
	}
	return nil, ledger.ErrAccountNotFound
}

func (s *Store) ListAccounts(_ context.Context, tenantID string, opts account.ListOpts) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*account.Account, 0)
	for _, a := range s.accounts {
		if a.TenantID != tenantID {
			continue
		}
		if opts.Type != "" && a.Type != opts.Type {
			continue
		}
		if !opts.ParentID.IsNil() && a.ParentID != opts.ParentID {
			continue
		}
		if opts.Search != "" && !matchesSearch(a, opts.Search) {
			continue
		}
		result = append(result, cloneAccount(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[a.ID.String()]
	if !ok || existing.TenantID != a.TenantID {
		return ledger.ErrAccountNotFound
	}

	// Balance is derived state owned by ApplyPosting; an update never
	// carries it, whatever the caller put in the struct.
	updated := cloneAccount(a)
	updated.Balance = existing.Balance
	s.accounts[a.ID.String()] = updated
	return nil
}

func matchesSearch(a *account.Account, search string) bool {
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(a.Code), q) ||
		strings.Contains(strings.ToLower(a.Name), q)
}

// ──────────────────────────────────────────────────
// Transactions
// ──────────────────────────────────────────────────

func (s *Store) CreateTransaction(_ context.Context, t *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[t.ID.String()]; exists {
		return ledger.ErrInvalidState
	}
	s.transactions[t.ID.String()] = cloneTransaction(t)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, tenantID string, txnID id.TransactionID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[txnID.String()]
	if !ok || t.TenantID != tenantID {
		return nil, ledger.ErrTransactionNotFound
	}
	return cloneTransaction(t), nil
}

func (s *Store) ListTransactions(_ context.Context, tenantID string, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*transaction.Transaction, 0)
	for _, t := range s.transactions {
		if t.TenantID != tenantID {
			continue
		}
		if !opts.StartDate.IsZero() && t.Date.Before(opts.StartDate) {
			continue
		}
		if !opts.EndDate.IsZero() && t.Date.After(opts.EndDate) {
			continue
		}
		if opts.Status != "" && t.Status != opts.Status {
			continue
		}
		if !opts.AccountID.IsNil() && !t.Touches(opts.AccountID) {
			continue
		}
		result = append(result, cloneTransaction(t))
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID.String() < result[j].ID.String()
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

// ApplyPosting applies every balance delta and flips the transaction status
// as one unit under the write lock. The expected-status check makes
// concurrent postings of the same transaction mutually exclusive: the loser
// finds the status already flipped and fails with no balance change.
func (s *Store) ApplyPosting(_ context.Context, tenantID string, p store.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[p.TransactionID.String()]
	if !ok || t.TenantID != tenantID {
		return ledger.ErrTransactionNotFound
	}
	if t.Status != p.FromStatus {
		return ledger.ErrInvalidState
	}

	// Verify every account before touching any balance.
	touched := make([]*account.Account, len(p.Deltas))
	for i, d := range p.Deltas {
		a, ok := s.accounts[d.AccountID.String()]
		if !ok || a.TenantID != tenantID {
			return ledger.ErrAccountNotFound
		}
		touched[i] = a
	}

	for i, d := range p.Deltas {
		touched[i].Balance = touched[i].Balance.Add(d.Delta)
		touched[i].UpdatedAt = p.AppliedAt
	}
	t.Status = p.ToStatus
	t.UpdatedAt = p.AppliedAt
	return nil
}

// ──────────────────────────────────────────────────
// Reports
// ──────────────────────────────────────────────────

func (s *Store) SaveReport(_ context.Context, r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *r
	s.reports[r.ID.String()] = &saved
	return nil
}

func (s *Store) GetReport(_ context.Context, tenantID string, reportID id.ReportID) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[reportID.String()]
	if !ok || r.TenantID != tenantID {
		return nil, ledger.ErrReportNotFound
	}
	found := *r
	return &found, nil
}

func (s *Store) ListReports(_ context.Context, tenantID string, opts report.ListOpts) ([]*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*report.Report, 0)
	for _, r := range s.reports {
		if r.TenantID != tenantID {
			continue
		}
		if opts.Type != "" && r.Type != opts.Type {
			continue
		}
		found := *r
		result = append(result, &found)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GeneratedAt.Before(result[j].GeneratedAt)
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Tax records
// ──────────────────────────────────────────────────

func (s *Store) SaveTaxRegistration(_ context.Context, reg *tax.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *reg
	s.registrations[reg.TenantID] = &saved
	return nil
}

func (s *Store) GetTaxRegistration(_ context.Context, tenantID string) (*tax.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.registrations[tenantID]
	if !ok {
		return nil, ledger.ErrRegistrationNotFound
	}
	found := *reg
	return &found, nil
}

func (s *Store) SaveTaxRate(_ context.Context, rate *tax.Rate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *rate
	for i, existing := range s.rates {
		if existing.TenantID == rate.TenantID && existing.Code == rate.Code {
			s.rates[i] = &saved
			return nil
		}
	}
	s.rates = append(s.rates, &saved)
	return nil
}

func (s *Store) ListTaxRates(_ context.Context, tenantID string) ([]*tax.Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*tax.Rate, 0)
	for _, r := range s.rates {
		if r.TenantID == tenantID {
			found := *r
			result = append(result, &found)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Core
// ──────────────────────────────────────────────────

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ledger.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func cloneAccount(a *account.Account) *account.Account {
	c := *a
	return &c
}

func cloneTransaction(t *transaction.Transaction) *transaction.Transaction {
	c := *t
	c.Entries = make([]transaction.Entry, len(t.Entries))
	copy(c.Entries, t.Entries)
	return &c
}

func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
