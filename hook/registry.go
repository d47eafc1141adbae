package hook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/transaction"
)

// Registry manages registered hooks and dispatches lifecycle events.
// Interface lists are cached at registration time so dispatch is a slice
// walk, not a type switch per event.
type Registry struct {
	mu     sync.RWMutex
	hooks  []Hook
	logger *slog.Logger

	beforePosted []BeforeTransactionPosted
	onPosted     []OnTransactionPosted
	onVoided     []OnTransactionVoided
	onReport     []OnReportGenerated
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// WithLogger sets the logger used for observer-hook failures.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a hook and caches its interfaces.
func (r *Registry) Register(h Hook) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.hooks {
		if existing.Name() == h.Name() {
			return fmt.Errorf("hook: duplicate registration: %s", h.Name())
		}
	}
	r.hooks = append(r.hooks, h)

	if v, ok := h.(BeforeTransactionPosted); ok {
		r.beforePosted = append(r.beforePosted, v)
	}
	if v, ok := h.(OnTransactionPosted); ok {
		r.onPosted = append(r.onPosted, v)
	}
	if v, ok := h.(OnTransactionVoided); ok {
		r.onVoided = append(r.onVoided, v)
	}
	if v, ok := h.(OnReportGenerated); ok {
		r.onReport = append(r.onReport, v)
	}
	return nil
}

// Names returns the names of all registered hooks.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.hooks))
	for i, h := range r.hooks {
		names[i] = h.Name()
	}
	return names
}

// EmitBeforePosted runs veto hooks in registration order. The first error
// stops dispatch and aborts the post.
func (r *Registry) EmitBeforePosted(ctx context.Context, txn *transaction.Transaction) error {
	r.mu.RLock()
	hooks := r.beforePosted
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.BeforeTransactionPosted(ctx, txn); err != nil {
			return err
		}
	}
	return nil
}

// EmitPosted notifies observers of a committed post.
func (r *Registry) EmitPosted(ctx context.Context, txn *transaction.Transaction) {
	r.mu.RLock()
	hooks := r.onPosted
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnTransactionPosted(ctx, txn); err != nil {
			r.logger.Error("hook failed", "hook", h.Name(), "event", "transaction_posted", "error", err)
		}
	}
}

// EmitVoided notifies observers of a committed void.
func (r *Registry) EmitVoided(ctx context.Context, txn *transaction.Transaction) {
	r.mu.RLock()
	hooks := r.onVoided
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnTransactionVoided(ctx, txn); err != nil {
			r.logger.Error("hook failed", "hook", h.Name(), "event", "transaction_voided", "error", err)
		}
	}
}

// EmitReport notifies observers of a persisted report snapshot.
func (r *Registry) EmitReport(ctx context.Context, rpt *report.Report) {
	r.mu.RLock()
	hooks := r.onReport
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := h.OnReportGenerated(ctx, rpt); err != nil {
			r.logger.Error("hook failed", "hook", h.Name(), "event", "report_generated", "error", err)
		}
	}
}
