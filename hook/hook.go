// Package hook provides an extensible hook system for the ledger engine.
// Hooks attach host behavior to lifecycle events: audit trails, notification
// fan-out, or gating a post on compliance findings.
package hook

import (
	"context"
	"fmt"
	"strings"

	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/transaction"
)

// Hook is the base interface all hooks implement.
type Hook interface {
	Name() string
}

// BeforeTransactionPosted runs before balances are mutated. Returning an
// error vetoes the post: no balance changes and no status flip happen.
type BeforeTransactionPosted interface {
	Hook
	BeforeTransactionPosted(ctx context.Context, txn *transaction.Transaction) error
}

// OnTransactionPosted runs after a transaction is posted. Errors are logged,
// never propagated: the post has already committed.
type OnTransactionPosted interface {
	Hook
	OnTransactionPosted(ctx context.Context, txn *transaction.Transaction) error
}

// OnTransactionVoided runs after a transaction is voided.
type OnTransactionVoided interface {
	Hook
	OnTransactionVoided(ctx context.Context, txn *transaction.Transaction) error
}

// OnReportGenerated runs after a report snapshot is persisted.
type OnReportGenerated interface {
	Hook
	OnReportGenerated(ctx context.Context, rpt *report.Report) error
}

// BlockedError is returned from a post when a BeforeTransactionPosted hook
// vetoed it.
type BlockedError struct {
	Hook   string
	Issues []string
}

func (e *BlockedError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("hook: post blocked by %s", e.Hook)
	}
	return fmt.Sprintf("hook: post blocked by %s: %s", e.Hook, strings.Join(e.Issues, "; "))
}
