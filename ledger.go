package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carebridge/ledger/hook"
	"github.com/carebridge/ledger/region"
	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/store"
)

// Ledger is a tenant-scoped double-entry accounting engine.
//
// One Ledger serves one tenant in one region: tenant identity and regional
// configuration are explicit construction-time dependencies, not ambient
// state captured from calls. Regional configuration is resolved in New and
// a bad region code fails there, never lazily.
type Ledger struct {
	store  store.Store
	hooks  *hook.Registry
	logger *slog.Logger

	tenantID string
	region   *region.Config

	now func() time.Time

	cashPrefix  string
	classify    report.CashClassifier
	receivables OpenItemSource
	payables    OpenItemSource
}

// Config holds the mandatory construction parameters.
type Config struct {
	TenantID string
	Region   region.Code
}

// OpenItemSource supplies outstanding receivable or payable items from the
// subsystem that owns them (invoicing, payments). The core only buckets.
type OpenItemSource func(ctx context.Context, asOf time.Time) ([]report.OpenItem, error)

// New creates a Ledger for one tenant/region. It fails with
// ErrConfigNotFound for an unrecognized region code.
func New(s store.Store, cfg Config, opts ...Option) (*Ledger, error) {
	if cfg.TenantID == "" {
		return nil, fmt.Errorf("ledger: tenant id is required")
	}

	rc, err := region.Load(cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, cfg.Region)
	}

	l := &Ledger{
		store:      s,
		hooks:      hook.NewRegistry(),
		logger:     slog.Default(),
		tenantID:   cfg.TenantID,
		region:     rc,
		now:        time.Now,
		cashPrefix: "10",
		classify:   report.DefaultCashClassifier,
	}

	for _, opt := range opts {
		opt(l)
	}
	l.hooks.WithLogger(l.logger)

	return l, nil
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithClock injects the time source used for fiscal-year evaluation,
// trailing-revenue windows and report timestamps. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithHook registers a lifecycle hook.
func WithHook(h hook.Hook) Option {
	return func(l *Ledger) {
		if err := l.hooks.Register(h); err != nil {
			l.logger.Warn("hook registration skipped", "hook", h.Name(), "error", err)
		}
	}
}

// WithCashAccountPrefix sets the account-code prefix that marks cash
// accounts for cash-flow reporting. Default "10".
func WithCashAccountPrefix(prefix string) Option {
	return func(l *Ledger) {
		l.cashPrefix = prefix
	}
}

// WithCashClassifier replaces the activity classifier used by cash-flow
// reports.
func WithCashClassifier(c report.CashClassifier) Option {
	return func(l *Ledger) {
		l.classify = c
	}
}

// WithReceivablesSource wires the producer of outstanding receivables for
// aged-receivables reports.
func WithReceivablesSource(src OpenItemSource) Option {
	return func(l *Ledger) {
		l.receivables = src
	}
}

// WithPayablesSource wires the producer of outstanding payables for
// aged-payables reports.
func WithPayablesSource(src OpenItemSource) Option {
	return func(l *Ledger) {
		l.payables = src
	}
}

// Start prepares storage (runs migrations).
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	l.logger.Info("ledger started",
		"tenant_id", l.tenantID,
		"region", string(l.region.Code),
		"currency", l.region.Currency,
	)
	return nil
}

// Close releases storage resources.
func (l *Ledger) Close() error {
	return l.store.Close()
}

// TenantID returns the tenant this engine serves.
func (l *Ledger) TenantID() string { return l.tenantID }

// Region returns the immutable regional configuration bound at construction.
func (l *Ledger) Region() *region.Config { return l.region }

// Hooks returns the hook registry for host integration.
func (l *Ledger) Hooks() *hook.Registry { return l.hooks }
