package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_accounts",
		sql: `
CREATE TABLE IF NOT EXISTS ledger_accounts (
    id          TEXT PRIMARY KEY,
    tenant_id   TEXT NOT NULL,
    code        TEXT NOT NULL,
    name        TEXT NOT NULL,
    type        TEXT NOT NULL,
    parent_id   TEXT NOT NULL DEFAULT '',
    balance     TEXT NOT NULL DEFAULT '0',
    region      TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    UNIQUE (tenant_id, code)
);
CREATE INDEX IF NOT EXISTS idx_ledger_accounts_tenant ON ledger_accounts (tenant_id);`,
	},
	{
		version: 2,
		name:    "create_transactions",
		sql: `
CREATE TABLE IF NOT EXISTS ledger_transactions (
    id           TEXT PRIMARY KEY,
    tenant_id    TEXT NOT NULL,
    date         TEXT NOT NULL,
    description  TEXT NOT NULL,
    reference    TEXT NOT NULL DEFAULT '',
    service_type TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL,
    tax_code     TEXT NOT NULL DEFAULT '',
    tax_amount   TEXT NOT NULL DEFAULT '0',
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ledger_transactions_tenant_date
    ON ledger_transactions (tenant_id, date);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id             TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL REFERENCES ledger_transactions (id),
    account_id     TEXT NOT NULL REFERENCES ledger_accounts (id),
    position       INTEGER NOT NULL,
    debit          TEXT NOT NULL DEFAULT '0',
    credit         TEXT NOT NULL DEFAULT '0',
    description    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_txn ON ledger_entries (transaction_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_account ON ledger_entries (account_id);`,
	},
	{
		version: 3,
		name:    "create_reports",
		sql: `
CREATE TABLE IF NOT EXISTS ledger_reports (
    id           TEXT PRIMARY KEY,
    tenant_id    TEXT NOT NULL,
    type         TEXT NOT NULL,
    start_date   TEXT NOT NULL,
    end_date     TEXT NOT NULL,
    generated_at TEXT NOT NULL,
    data         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ledger_reports_tenant_type
    ON ledger_reports (tenant_id, type);`,
	},
	{
		version: 4,
		name:    "create_tax_records",
		sql: `
CREATE TABLE IF NOT EXISTS ledger_tax_registrations (
    id                  TEXT NOT NULL,
    tenant_id           TEXT PRIMARY KEY,
    registration_number TEXT NOT NULL,
    region              TEXT NOT NULL,
    effective_from      TEXT NOT NULL,
    created_at          TEXT NOT NULL,
    updated_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_tax_rates (
    id         TEXT NOT NULL,
    tenant_id  TEXT NOT NULL,
    code       TEXT NOT NULL,
    rate       TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (tenant_id, code)
);`,
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS ledger_schema_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: migration table: %w", err)
	}

	var current int
	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM ledger_schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: migration version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("ledger/sqlite: begin migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("ledger/sqlite: migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_schema_migrations (version, name) VALUES (?, ?)`,
			m.version, m.name); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("ledger/sqlite: record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("ledger/sqlite: commit migration %d: %w", m.version, err)
		}
	}
	return nil
}
