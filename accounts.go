package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/region"
	"github.com/carebridge/ledger/types"
)

// accountListAll matches every tenant account.
var accountListAll = account.ListOpts{}

// CreateAccount adds an account to the tenant's chart of accounts. The
// opening balance is always zero; balances change only through posting.
func (l *Ledger) CreateAccount(ctx context.Context, opts account.CreateOpts) (*account.Account, error) {
	if opts.Code == "" || opts.Name == "" {
		return nil, fmt.Errorf("ledger: account code and name are required")
	}
	if !opts.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccountType, opts.Type)
	}

	if !opts.ParentID.IsNil() {
		if _, err := l.store.GetAccount(ctx, l.tenantID, opts.ParentID); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrParentNotFound, opts.ParentID)
		}
	}

	a := &account.Account{
		Entity:      types.NewEntityAt(l.now()),
		ID:          id.NewAccountID(),
		TenantID:    l.tenantID,
		Code:        opts.Code,
		Name:        opts.Name,
		Type:        opts.Type,
		ParentID:    opts.ParentID,
		Balance:     decimal.Zero,
		Region:      string(l.region.Code),
		Description: opts.Description,
	}

	if err := l.store.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	l.logger.Debug("account created",
		"account_id", a.ID.String(),
		"code", a.Code,
		"type", string(a.Type),
	)
	return a, nil
}

// GetAccount returns a tenant account by ID.
func (l *Ledger) GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error) {
	return l.store.GetAccount(ctx, l.tenantID, accountID)
}

// ListAccounts returns tenant accounts matching opts. Search matches code
// or name substrings.
func (l *Ledger) ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error) {
	return l.store.ListAccounts(ctx, l.tenantID, opts)
}

// UpdateAccount applies an explicit partial update. Balance is not part of
// UpdateOpts: it is derived from posted transactions and can never be
// assigned from outside the engine.
func (l *Ledger) UpdateAccount(ctx context.Context, accountID id.AccountID, opts account.UpdateOpts) (*account.Account, error) {
	a, err := l.store.GetAccount(ctx, l.tenantID, accountID)
	if err != nil {
		return nil, err
	}

	if opts.Name != nil {
		a.Name = *opts.Name
	}
	if opts.Description != nil {
		a.Description = *opts.Description
	}
	if opts.ParentID != nil {
		if !opts.ParentID.IsNil() {
			if _, err := l.store.GetAccount(ctx, l.tenantID, *opts.ParentID); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrParentNotFound, *opts.ParentID)
			}
		}
		a.ParentID = *opts.ParentID
	}
	a.UpdatedAt = l.now().UTC()

	if err := l.store.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// SeedStandardChart creates one account per entry in the region's
// chart-of-accounts standard. Codes that already exist are skipped, so
// seeding is safe to repeat on an existing ledger.
func (l *Ledger) SeedStandardChart(ctx context.Context) ([]*account.Account, error) {
	created := make([]*account.Account, 0, len(l.region.Standard.ChartOfAccounts))

	for _, code := range l.region.Standard.SortedCodes() {
		entry := l.region.Standard.ChartOfAccounts[code]
		if _, err := l.store.GetAccountByCode(ctx, l.tenantID, code); err == nil {
			continue
		}

		a, err := l.CreateAccount(ctx, account.CreateOpts{
			Code:        code,
			Name:        entry.Name,
			Type:        entry.Type,
			Description: entry.Category,
		})
		if err != nil {
			return created, fmt.Errorf("seeding account %s: %w", code, err)
		}
		created = append(created, a)
	}
	return created, nil
}

// StandardChartEntry looks up an account code in the region's standard.
func (l *Ledger) StandardChartEntry(code string) (region.ChartEntry, bool) {
	entry, ok := l.region.Standard.ChartOfAccounts[code]
	return entry, ok
}
