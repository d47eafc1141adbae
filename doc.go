// Package ledger provides an embeddable double-entry accounting engine for
// multi-tenant care platforms.
//
// Ledger is designed as a library, not a service. Import it directly into
// your application and give it a store. It provides:
//
//   - A hierarchical, tenant-scoped chart of accounts
//   - Double-entry transactions with a PENDING → POSTED → VOIDED lifecycle
//   - Atomic posting: balance mutations and the status flip commit together
//   - Region-specific tax calculation driven purely by configuration data
//   - Advisory compliance validation against regional accounting rules
//   - Financial reporting: P&L, balance sheet, cash flow, aged items
//
// # Quick Start
//
// Create a ledger instance per tenant with your preferred store:
//
//	import (
//	    "github.com/carebridge/ledger"
//	    "github.com/carebridge/ledger/region"
//	    "github.com/carebridge/ledger/store/memory"
//	)
//
//	l, err := ledger.New(memory.New(), ledger.Config{
//	    TenantID: "sunrise-care",
//	    Region:   region.England,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Close()
//
// # Core Concepts
//
// Transactions are created balanced and pending, then posted:
//
//	txn, err := l.CreateTransaction(ctx, ledger.CreateTransactionOpts{
//	    Date:        time.Now(),
//	    Description: "March residential fees",
//	    Entries: []transaction.NewEntry{
//	        {AccountID: bank.ID, Debit: decimal.NewFromInt(1000)},
//	        {AccountID: revenue.ID, Credit: decimal.NewFromInt(1000)},
//	    },
//	})
//	txn, err = l.PostTransaction(ctx, txn.ID)
//
// Account balances carry the signed convention balance = Σ(debit - credit),
// so credit-normal accounts (liability, equity, revenue) grow negative. The
// trial balance splits those signs back into the familiar two columns.
//
// Voiding applies the exact inverse of a posted transaction and keeps it in
// the ledger for audit:
//
//	txn, err = l.VoidTransaction(ctx, txn.ID)
//
// # Regions
//
// Each jurisdiction (england, scotland, wales, belfast, dublin) is a data
// file: currency, tax rules, chart-of-accounts standard, fiscal year and
// mandatory filings. Adding a jurisdiction is additive configuration, not
// new code paths. An unknown region code fails at construction.
//
// # Compliance
//
// Compliance findings are advisory by default: ValidateTransaction returns
// an issue list and never blocks. Deployments that need hard gating
// register the shipped hook:
//
//	l, err := ledger.New(st, cfg)
//	err = l.Hooks().Register(hook.NewComplianceGate(l.ValidateTransaction))
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	acct_01h2xcejqtf2nbrexx3vqjhp41  // Account ID
//	txn_01h2xcejqtf2nbrexx3vqjhp41   // Transaction ID
//	rpt_01h455vb4pex5vsknk084sn02q   // Report snapshot ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package ledger
