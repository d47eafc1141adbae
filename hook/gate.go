package hook

import (
	"context"

	"github.com/carebridge/ledger/compliance"
	"github.com/carebridge/ledger/transaction"
)

// Validator produces compliance findings for a transaction. The ledger
// engine's ValidateTransaction method satisfies this signature.
type Validator func(ctx context.Context, txn *transaction.Transaction) (compliance.Result, error)

// ComplianceGate turns advisory compliance findings into a hard block on
// posting. It is never registered by default: deployments that want
// advisory-only behavior simply leave it out.
type ComplianceGate struct {
	validate Validator
}

// NewComplianceGate creates a gate backed by the given validator.
func NewComplianceGate(validate Validator) *ComplianceGate {
	return &ComplianceGate{validate: validate}
}

// Name implements Hook.
func (g *ComplianceGate) Name() string { return "compliance-gate" }

// BeforeTransactionPosted implements BeforeTransactionPosted. A validation
// failure (issues present) vetoes the post with a BlockedError carrying the
// issue list.
func (g *ComplianceGate) BeforeTransactionPosted(ctx context.Context, txn *transaction.Transaction) error {
	result, err := g.validate(ctx, txn)
	if err != nil {
		return err
	}
	if !result.Valid {
		return &BlockedError{Hook: g.Name(), Issues: result.Issues}
	}
	return nil
}
