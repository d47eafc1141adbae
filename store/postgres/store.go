// Package postgres provides a PostgreSQL Store backed by pgx.
//
// ApplyPosting runs inside a database transaction with the transaction row
// locked (SELECT ... FOR UPDATE), so balance deltas and the status flip
// commit atomically and concurrent postings of the same transaction
// serialize on the row lock.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/carebridge/ledger"
	"github.com/carebridge/ledger/account"
	"github.com/carebridge/ledger/id"
	"github.com/carebridge/ledger/report"
	"github.com/carebridge/ledger/store"
	"github.com/carebridge/ledger/tax"
	"github.com/carebridge/ledger/transaction"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store over an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool from a connection string and wraps it in a Store.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: connect: %w", err)
	}
	return New(pool), nil
}

// Pool returns the underlying pool for direct access.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return migrate(ctx, s.pool)
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// ──────────────────────────────────────────────────
// Accounts
// ──────────────────────────────────────────────────

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO ledger_accounts
    (id, tenant_id, code, name, type, parent_id, balance, region, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.TenantID, a.Code, a.Name, string(a.Type), a.ParentID,
		a.Balance.String(), a.Region, a.Description, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.ErrDuplicateCode
		}
		return fmt.Errorf("ledger/postgres: create account: %w", err)
	}
	return nil
}

const accountColumns = `id, tenant_id, code, name, type, parent_id, balance::text, region, description, created_at, updated_at`

func (s *Store) GetAccount(ctx context.Context, tenantID string, accountID id.AccountID) (*account.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM ledger_accounts WHERE id = $1 AND tenant_id = $2`,
		accountID, tenantID)
	return scanAccount(row)
}

func (s *Store) GetAccountByCode(ctx context.Context, tenantID, code string) (*account.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM ledger_accounts WHERE tenant_id = $1 AND code = $2`,
		tenantID, code)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context, tenantID string, opts account.ListOpts) ([]*account.Account, error) {
	var (
		where = []string{"tenant_id = $1"}
		args  = []any{tenantID}
	)
	if opts.Type != "" {
		args = append(args, string(opts.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if !opts.ParentID.IsNil() {
		args = append(args, opts.ParentID)
		where = append(where, fmt.Sprintf("parent_id = $%d", len(args)))
	}
	if opts.Search != "" {
		args = append(args, "%"+strings.ToLower(opts.Search)+"%")
		where = append(where, fmt.Sprintf("(lower(code) LIKE $%d OR lower(name) LIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY code`
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", opts.Limit, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: list accounts: %w", err)
	}
	defer rows.Close()

	var result []*account.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	// Balance is excluded: only ApplyPosting writes it.
	tag, err := s.pool.Exec(ctx, `
UPDATE ledger_accounts
SET name = $1, description = $2, parent_id = $3, updated_at = $4
WHERE id = $5 AND tenant_id = $6`,
		a.Name, a.Description, a.ParentID, a.UpdatedAt, a.ID, a.TenantID)
	if err != nil {
		return fmt.Errorf("ledger/postgres: update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var (
		a       account.Account
		typ     string
		balance string
	)
	err := row.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &typ, &a.ParentID,
		&balance, &a.Region, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: scan account: %w", err)
	}
	a.Type = account.Type(typ)
	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse balance %q: %w", balance, err)
	}
	return &a, nil
}

// ──────────────────────────────────────────────────
// Transactions
// ──────────────────────────────────────────────────

func (s *Store) CreateTransaction(ctx context.Context, t *transaction.Transaction) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger/postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, `
INSERT INTO ledger_transactions
    (id, tenant_id, date, description, reference, service_type, status, tax_code, tax_amount, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.TenantID, t.Date, t.Description, t.Reference, t.ServiceType,
		string(t.Status), t.TaxCode, t.TaxAmount.String(), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ledger/postgres: create transaction: %w", err)
	}

	for i, e := range t.Entries {
		_, err = tx.Exec(ctx, `
INSERT INTO ledger_entries (id, transaction_id, account_id, position, debit, credit, description)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, t.ID, e.AccountID, i, e.Debit.String(), e.Credit.String(), e.Description)
		if err != nil {
			return fmt.Errorf("ledger/postgres: create entry: %w", err)
		}
	}

	return tx.Commit(ctx)
}

const transactionColumns = `id, tenant_id, date, description, reference, service_type, status, tax_code, tax_amount::text, created_at, updated_at`

func (s *Store) GetTransaction(ctx context.Context, tenantID string, txnID id.TransactionID) (*transaction.Transaction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM ledger_transactions WHERE id = $1 AND tenant_id = $2`,
		txnID, tenantID)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadEntries(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, tenantID string, opts transaction.ListOpts) ([]*transaction.Transaction, error) {
	var (
		where = []string{"tenant_id = $1"}
		args  = []any{tenantID}
	)
	if !opts.StartDate.IsZero() {
		args = append(args, opts.StartDate)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !opts.EndDate.IsZero() {
		args = append(args, opts.EndDate)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if !opts.AccountID.IsNil() {
		args = append(args, opts.AccountID)
		where = append(where, fmt.Sprintf(
			"id IN (SELECT transaction_id FROM ledger_entries WHERE account_id = $%d)", len(args)))
	}

	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY date, id`
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", opts.Limit, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: list transactions: %w", err)
	}
	defer rows.Close()

	var result []*transaction.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range result {
		if err := s.loadEntries(ctx, t); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Store) loadEntries(ctx context.Context, t *transaction.Transaction) error {
	rows, err := s.pool.Query(ctx, `
SELECT id, account_id, debit::text, credit::text, description
FROM ledger_entries WHERE transaction_id = $1 ORDER BY position`, t.ID)
	if err != nil {
		return fmt.Errorf("ledger/postgres: load entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e             transaction.Entry
			debit, credit string
		)
		if err := rows.Scan(&e.ID, &e.AccountID, &debit, &credit, &e.Description); err != nil {
			return fmt.Errorf("ledger/postgres: scan entry: %w", err)
		}
		if e.Debit, err = decimal.NewFromString(debit); err != nil {
			return fmt.Errorf("ledger/postgres: parse debit %q: %w", debit, err)
		}
		if e.Credit, err = decimal.NewFromString(credit); err != nil {
			return fmt.Errorf("ledger/postgres: parse credit %q: %w", credit, err)
		}
		t.Entries = append(t.Entries, e)
	}
	return rows.Err()
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var (
		t         transaction.Transaction
		status    string
		taxAmount string
	)
	err := row.Scan(&t.ID, &t.TenantID, &t.Date, &t.Description, &t.Reference,
		&t.ServiceType, &status, &t.TaxCode, &taxAmount, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: scan transaction: %w", err)
	}
	t.Status = transaction.Status(status)
	t.TaxAmount, err = decimal.NewFromString(taxAmount)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: parse tax amount %q: %w", taxAmount, err)
	}
	return &t, nil
}

// ApplyPosting locks the transaction row, verifies the expected status,
// applies every delta and flips the status, all in one database
// transaction.
func (s *Store) ApplyPosting(ctx context.Context, tenantID string, p store.Posting) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ledger/postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM ledger_transactions WHERE id = $1 AND tenant_id = $2 FOR UPDATE`,
		p.TransactionID, tenantID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.ErrTransactionNotFound
	}
	if err != nil {
		return fmt.Errorf("ledger/postgres: lock transaction: %w", err)
	}
	if transaction.Status(status) != p.FromStatus {
		return ledger.ErrInvalidState
	}

	for _, d := range p.Deltas {
		tag, err := tx.Exec(ctx, `
UPDATE ledger_accounts
SET balance = balance + $1::numeric, updated_at = $2
WHERE id = $3 AND tenant_id = $4`,
			d.Delta.String(), p.AppliedAt, d.AccountID, tenantID)
		if err != nil {
			return fmt.Errorf("ledger/postgres: apply delta: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ledger.ErrAccountNotFound
		}
	}

	_, err = tx.Exec(ctx, `
UPDATE ledger_transactions SET status = $1, updated_at = $2 WHERE id = $3`,
		string(p.ToStatus), p.AppliedAt, p.TransactionID)
	if err != nil {
		return fmt.Errorf("ledger/postgres: flip status: %w", err)
	}

	return tx.Commit(ctx)
}

// ──────────────────────────────────────────────────
// Reports
// ──────────────────────────────────────────────────

func (s *Store) SaveReport(ctx context.Context, r *report.Report) error {
	data, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("ledger/postgres: marshal report data: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO ledger_reports (id, tenant_id, type, start_date, end_date, generated_at, data)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.TenantID, string(r.Type), r.StartDate, r.EndDate, r.GeneratedAt, data)
	if err != nil {
		return fmt.Errorf("ledger/postgres: save report: %w", err)
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, tenantID string, reportID id.ReportID) (*report.Report, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id, tenant_id, type, start_date, end_date, generated_at, data
FROM ledger_reports WHERE id = $1 AND tenant_id = $2`, reportID, tenantID)
	return scanReport(row)
}

func (s *Store) ListReports(ctx context.Context, tenantID string, opts report.ListOpts) ([]*report.Report, error) {
	var (
		where = []string{"tenant_id = $1"}
		args  = []any{tenantID}
	)
	if opts.Type != "" {
		args = append(args, string(opts.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}

	query := `SELECT id, tenant_id, type, start_date, end_date, generated_at, data
FROM ledger_reports WHERE ` + strings.Join(where, " AND ") + ` ORDER BY generated_at`
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", opts.Limit, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: list reports: %w", err)
	}
	defer rows.Close()

	var result []*report.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func scanReport(row rowScanner) (*report.Report, error) {
	var (
		r    report.Report
		typ  string
		data []byte
	)
	err := row.Scan(&r.ID, &r.TenantID, &typ, &r.StartDate, &r.EndDate, &r.GeneratedAt, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: scan report: %w", err)
	}
	r.Type = report.Type(typ)
	// Persisted payloads come back as raw JSON; consumers decode into the
	// payload struct matching r.Type.
	r.Data = json.RawMessage(data)
	return &r, nil
}

// ──────────────────────────────────────────────────
// Tax records
// ──────────────────────────────────────────────────

func (s *Store) SaveTaxRegistration(ctx context.Context, reg *tax.Registration) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO ledger_tax_registrations
    (id, tenant_id, registration_number, region, effective_from, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (tenant_id) DO UPDATE
SET registration_number = EXCLUDED.registration_number,
    region = EXCLUDED.region,
    effective_from = EXCLUDED.effective_from,
    updated_at = EXCLUDED.updated_at`,
		reg.ID, reg.TenantID, reg.RegistrationNumber, reg.Region,
		reg.EffectiveFrom, reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ledger/postgres: save tax registration: %w", err)
	}
	return nil
}

func (s *Store) GetTaxRegistration(ctx context.Context, tenantID string) (*tax.Registration, error) {
	var reg tax.Registration
	err := s.pool.QueryRow(ctx, `
SELECT id, tenant_id, registration_number, region, effective_from, created_at, updated_at
FROM ledger_tax_registrations WHERE tenant_id = $1`, tenantID).
		Scan(&reg.ID, &reg.TenantID, &reg.RegistrationNumber, &reg.Region,
			&reg.EffectiveFrom, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: get tax registration: %w", err)
	}
	return &reg, nil
}

func (s *Store) SaveTaxRate(ctx context.Context, rate *tax.Rate) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO ledger_tax_rates (id, tenant_id, code, rate, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (tenant_id, code) DO UPDATE
SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at`,
		rate.ID, rate.TenantID, rate.Code, rate.Rate.String(), rate.CreatedAt, rate.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ledger/postgres: save tax rate: %w", err)
	}
	return nil
}

func (s *Store) ListTaxRates(ctx context.Context, tenantID string) ([]*tax.Rate, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, tenant_id, code, rate::text, created_at, updated_at
FROM ledger_tax_rates WHERE tenant_id = $1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ledger/postgres: list tax rates: %w", err)
	}
	defer rows.Close()

	var result []*tax.Rate
	for rows.Next() {
		var (
			r       tax.Rate
			rateStr string
		)
		if err := rows.Scan(&r.ID, &r.TenantID, &r.Code, &rateStr, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ledger/postgres: scan tax rate: %w", err)
		}
		if r.Rate, err = decimal.NewFromString(rateStr); err != nil {
			return nil, fmt.Errorf("ledger/postgres: parse rate %q: %w", rateStr, err)
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	// 23505 is unique_violation.
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
