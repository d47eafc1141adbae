package hook

import (
	"context"
	"log/slog"

	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/transaction"
)

// AuditLogger writes a structured audit record for every post, void and
// report generation. Voided transactions stay in the ledger for audit; this
// hook gives the host a matching log trail.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an audit hook writing to logger.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// Name implements Hook.
func (a *AuditLogger) Name() string { return "audit-logger" }

// OnTransactionPosted implements OnTransactionPosted.
func (a *AuditLogger) OnTransactionPosted(_ context.Context, txn *transaction.Transaction) error {
	a.logger.Info("audit: transaction posted",
		"transaction_id", txn.ID.String(),
		"tenant_id", txn.TenantID,
		"date", txn.Date,
		"amount", txn.Amount().String(),
		"entries", len(txn.Entries),
	)
	return nil
}

// OnTransactionVoided implements OnTransactionVoided.
func (a *AuditLogger) OnTransactionVoided(_ context.Context, txn *transaction.Transaction) error {
	a.logger.Info("audit: transaction voided",
		"transaction_id", txn.ID.String(),
		"tenant_id", txn.TenantID,
		"amount", txn.Amount().String(),
	)
	return nil
}

// OnReportGenerated implements OnReportGenerated.
func (a *AuditLogger) OnReportGenerated(_ context.Context, rpt *report.Report) error {
	a.logger.Info("audit: report generated",
		"report_id", rpt.ID.String(),
		"tenant_id", rpt.TenantID,
		"type", string(rpt.Type),
		"generated_at", rpt.GeneratedAt,
	)
	return nil
}
