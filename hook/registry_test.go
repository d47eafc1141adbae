package hook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/ledger/compliance"
	"github.com/carebridge/ledger/hook"
	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/transaction"
)

type recorder struct {
	name    string
	vetoErr error

	beforePosted int
	posted       int
	voided       int
	reports      int
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) BeforeTransactionPosted(context.Context, *transaction.Transaction) error {
	r.beforePosted++
	return r.vetoErr
}

func (r *recorder) OnTransactionPosted(context.Context, *transaction.Transaction) error {
	r.posted++
	return nil
}

func (r *recorder) OnTransactionVoided(context.Context, *transaction.Transaction) error {
	r.voided++
	return nil
}

func (r *recorder) OnReportGenerated(context.Context, *report.Report) error {
	r.reports++
	return nil
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	reg := hook.NewRegistry()
	require.NoError(t, reg.Register(&recorder{name: "audit"}))
	require.Error(t, reg.Register(&recorder{name: "audit"}))
	assert.Equal(t, []string{"audit"}, reg.Names())
}

func TestEmitDispatchesToObservers(t *testing.T) {
	reg := hook.NewRegistry()
	r := &recorder{name: "audit"}
	require.NoError(t, reg.Register(r))

	ctx := context.Background()
	txn := &transaction.Transaction{}

	require.NoError(t, reg.EmitBeforePosted(ctx, txn))
	reg.EmitPosted(ctx, txn)
	reg.EmitVoided(ctx, txn)
	reg.EmitReport(ctx, &report.Report{})

	assert.Equal(t, 1, r.beforePosted)
	assert.Equal(t, 1, r.posted)
	assert.Equal(t, 1, r.voided)
	assert.Equal(t, 1, r.reports)
}

func TestEmitBeforePostedStopsOnVeto(t *testing.T) {
	reg := hook.NewRegistry()
	veto := errors.New("not today")
	first := &recorder{name: "gate", vetoErr: veto}
	second := &recorder{name: "late"}
	require.NoError(t, reg.Register(first))
	require.NoError(t, reg.Register(second))

	err := reg.EmitBeforePosted(context.Background(), &transaction.Transaction{})
	require.ErrorIs(t, err, veto)
	assert.Equal(t, 1, first.beforePosted)
	assert.Zero(t, second.beforePosted)
}

func TestComplianceGate(t *testing.T) {
	t.Run("clean result passes", func(t *testing.T) {
		gate := hook.NewComplianceGate(func(context.Context, *transaction.Transaction) (compliance.Result, error) {
			return compliance.Result{Valid: true}, nil
		})
		require.NoError(t, gate.BeforeTransactionPosted(context.Background(), &transaction.Transaction{}))
	})

	t.Run("findings veto with issue list", func(t *testing.T) {
		gate := hook.NewComplianceGate(func(context.Context, *transaction.Transaction) (compliance.Result, error) {
			return compliance.Result{Valid: false, Issues: []string{"outside fiscal year"}}, nil
		})
		err := gate.BeforeTransactionPosted(context.Background(), &transaction.Transaction{})

		var blocked *hook.BlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Equal(t, "compliance-gate", blocked.Hook)
		assert.Contains(t, blocked.Error(), "outside fiscal year")
	})

	t.Run("validator error propagates", func(t *testing.T) {
		boom := errors.New("store down")
		gate := hook.NewComplianceGate(func(context.Context, *transaction.Transaction) (compliance.Result, error) {
			return compliance.Result{}, boom
		})
		err := gate.BeforeTransactionPosted(context.Background(), &transaction.Transaction{})
		require.ErrorIs(t, err, boom)
	})
}
