package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migration is one ordered schema step. Steps are applied once, in order,
// tracked in ledger_schema_migrations.
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
    parent_id   TEXT,
    balance     NUMERIC(20, 4) NOT NULL DEFAULT 0,
    region      TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL,
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
    date         TIMESTAMPTZ NOT NULL,
    description  TEXT NOT NULL,
    reference    TEXT NOT NULL DEFAULT '',
    service_type TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL,
    tax_code     TEXT NOT NULL DEFAULT '',
    tax_amount   NUMERIC(20, 4) NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ledger_transactions_tenant_date
    ON ledger_transactions (tenant_id, date);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id             TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL REFERENCES ledger_transactions (id),
    account_id     TEXT NOT NULL REFERENCES ledger_accounts (id),
    position       INT NOT NULL,
    debit          NUMERIC(20, 4) NOT NULL DEFAULT 0,
    credit         NUMERIC(20, 4) NOT NULL DEFAULT 0,
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
    start_date   TIMESTAMPTZ,
    end_date     TIMESTAMPTZ,
    generated_at TIMESTAMPTZ NOT NULL,
    data         JSONB NOT NULL
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
    effective_from      TIMESTAMPTZ NOT NULL,
    created_at          TIMESTAMPTZ NOT NULL,
    updated_at          TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_tax_rates (
    id         TEXT NOT NULL,
    tenant_id  TEXT NOT NULL,
    code       TEXT NOT NULL,
    rate       NUMERIC(10, 4) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (tenant_id, code)
);`,
	},
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS ledger_schema_migrations (
    version    INT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("ledger/postgres: migration table: %w", err)
	}

	var current int
	err = pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM ledger_schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("ledger/postgres: migration version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("ledger/postgres: begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			tx.Rollback(ctx) //nolint:errcheck
			return fmt.Errorf("ledger/postgres: migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO ledger_schema_migrations (version, name) VALUES ($1, $2)`,
			m.version, m.name); err != nil {
			tx.Rollback(ctx) //nolint:errcheck
			return fmt.Errorf("ledger/postgres: record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("ledger/postgres: commit migration %d: %w", m.version, err)
		}
	}
	return nil
}
