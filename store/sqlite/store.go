// Package sqlite provides a file-backed Store for single-node deployments.
//
// It uses the pure-Go modernc.org/sqlite driver, so no cgo is required.
// Amounts are stored as TEXT and parsed back into decimals; SQLite's
// floating-point affinity would silently corrupt them otherwise.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

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

// Store implements store.Store on SQLite.
type Store struct {
	db *sql.DB
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: open: %w", err)
	}
	// SQLite allows one writer; serialize access through a single
	// connection so concurrent postings queue instead of failing with
	// SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return New(db), nil
}

// DB returns the underlying handle for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return migrate(ctx, s.db)
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// Accounts
// ──────────────────────────────────────────────────

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO ledger_accounts
    (id, tenant_id, code, name, type, parent_id, balance, region, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.TenantID, a.Code, a.Name, string(a.Type), a.ParentID.String(),
		a.Balance.String(), a.Region, a.Description,
		a.CreatedAt.Format(time.RFC3339Nano), a.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ledger.ErrDuplicateCode
		}
		return fmt.Errorf("ledger/sqlite: create account: %w", err)
	}
	return nil
}

const accountColumns = `id, tenant_id, code, name, type, parent_id, balance, region, description, created_at, updated_at`

func (s *Store) GetAccount(ctx context.Context, tenantID string, accountID id.AccountID) (*account.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM ledger_accounts WHERE id = ? AND tenant_id = ?`,
		accountID.String(), tenantID)
	return scanAccount(row)
}

func (s *Store) GetAccountByCode(ctx context.Context, tenantID, code string) (*account.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM ledger_accounts WHERE tenant_id = ? AND code = ?`,
		tenantID, code)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context, tenantID string, opts account.ListOpts) ([]*account.Account, error) {
	var (
		where = []string{"tenant_id = ?"}
		args  = []any{tenantID}
	)
	if opts.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(opts.Type))
	}
	if !opts.ParentID.IsNil() {
		where = append(where, "parent_id = ?")
		args = append(args, opts.ParentID.String())
	}
	if opts.Search != "" {
		where = append(where, "(lower(code) LIKE ? OR lower(name) LIKE ?)")
		q := "%" + strings.ToLower(opts.Search) + "%"
		args = append(args, q, q)
	}

	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY code`
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: list accounts: %w", err)
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
	res, err := s.db.ExecContext(ctx, `
UPDATE ledger_accounts
SET name = ?, description = ?, parent_id = ?, updated_at = ?
WHERE id = ? AND tenant_id = ?`,
		a.Name, a.Description, a.ParentID.String(),
		a.UpdatedAt.Format(time.RFC3339Nano), a.ID.String(), a.TenantID)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var (
		a                   account.Account
		rawID, rawParent    string
		typ, balance        string
		createdAt, updateAt string
	)
	err := row.Scan(&rawID, &a.TenantID, &a.Code, &a.Name, &typ, &rawParent,
		&balance, &a.Region, &a.Description, &createdAt, &updateAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: scan account: %w", err)
	}
	if a.ID, err = id.ParseWithPrefix(rawID, id.PrefixAccount); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse account id %q: %w", rawID, err)
	}
	if rawParent != "" {
		if a.ParentID, err = id.ParseWithPrefix(rawParent, id.PrefixAccount); err != nil {
			return nil, fmt.Errorf("ledger/sqlite: parse parent id %q: %w", rawParent, err)
		}
	}
	a.Type = account.Type(typ)
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse balance %q: %w", balance, err)
	}
	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse created_at: %w", err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339Nano, updateAt); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse updated_at: %w", err)
	}
	return &a, nil
}

// ──────────────────────────────────────────────────
// Transactions
// ──────────────────────────────────────────────────

func (s *Store) CreateTransaction(ctx context.Context, t *transaction.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
INSERT INTO ledger_transactions
    (id, tenant_id, date, description, reference, service_type, status, tax_code, tax_amount, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.TenantID, t.Date.Format(time.RFC3339Nano), t.Description,
		t.Reference, t.ServiceType, string(t.Status), t.TaxCode, t.TaxAmount.String(),
		t.CreatedAt.Format(time.RFC3339Nano), t.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("ledger/sqlite: create transaction: %w", err)
	}

	for i, e := range t.Entries {
		_, err = tx.ExecContext(ctx, `
INSERT INTO ledger_entries (id, transaction_id, account_id, position, debit, credit, description)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID.String(), t.ID.String(), e.AccountID.String(), i,
			e.Debit.String(), e.Credit.String(), e.Description)
		if err != nil {
			return fmt.Errorf("ledger/sqlite: create entry: %w", err)
		}
	}

	return tx.Commit()
}

const transactionColumns = `id, tenant_id, date, description, reference, service_type, status, tax_code, tax_amount, created_at, updated_at`

func (s *Store) GetTransaction(ctx context.Context, tenantID string, txnID id.TransactionID) (*transaction.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM ledger_transactions WHERE id = ? AND tenant_id = ?`,
		txnID.String(), tenantID)
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
		where = []string{"tenant_id = ?"}
		args  = []any{tenantID}
	)
	if !opts.StartDate.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, opts.StartDate.Format(time.RFC3339Nano))
	}
	if !opts.EndDate.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, opts.EndDate.Format(time.RFC3339Nano))
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opts.Status))
	}
	if !opts.AccountID.IsNil() {
		where = append(where, "id IN (SELECT transaction_id FROM ledger_entries WHERE account_id = ?)")
		args = append(args, opts.AccountID.String())
	}

	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY date, id`
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: list transactions: %w", err)
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
	rows, err := s.db.QueryContext(ctx, `
SELECT id, account_id, debit, credit, description
FROM ledger_entries WHERE transaction_id = ? ORDER BY position`, t.ID.String())
	if err != nil {
		return fmt.Errorf("ledger/sqlite: load entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e                            transaction.Entry
			rawID, rawAcct, debit, credit string
		)
		if err := rows.Scan(&rawID, &rawAcct, &debit, &credit, &e.Description); err != nil {
			return fmt.Errorf("ledger/sqlite: scan entry: %w", err)
		}
		if e.ID, err = id.ParseWithPrefix(rawID, id.PrefixEntry); err != nil {
			return fmt.Errorf("ledger/sqlite: parse entry id %q: %w", rawID, err)
		}
		if e.AccountID, err = id.ParseWithPrefix(rawAcct, id.PrefixAccount); err != nil {
			return fmt.Errorf("ledger/sqlite: parse account id %q: %w", rawAcct, err)
		}
		if e.Debit, err = decimal.NewFromString(debit); err != nil {
			return fmt.Errorf("ledger/sqlite: parse debit %q: %w", debit, err)
		}
		if e.Credit, err = decimal.NewFromString(credit); err != nil {
			return fmt.Errorf("ledger/sqlite: parse credit %q: %w", credit, err)
		}
		t.Entries = append(t.Entries, e)
	}
	return rows.Err()
}

func scanTransaction(row rowScanner) (*transaction.Transaction, error) {
	var (
		t                          transaction.Transaction
		rawID, date, status        string
		taxAmount, createdAt, updatedAt string
	)
	err := row.Scan(&rawID, &t.TenantID, &date, &t.Description, &t.Reference,
		&t.ServiceType, &status, &t.TaxCode, &taxAmount, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: scan transaction: %w", err)
	}
	if t.ID, err = id.ParseWithPrefix(rawID, id.PrefixTransaction); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse transaction id %q: %w", rawID, err)
	}
	if t.Date, err = time.Parse(time.RFC3339Nano, date); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse date: %w", err)
	}
	t.Status = transaction.Status(status)
	if t.TaxAmount, err = decimal.NewFromString(taxAmount); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse tax amount %q: %w", taxAmount, err)
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse updated_at: %w", err)
	}
	return &t, nil
}

// ApplyPosting verifies the expected status, applies every delta and flips
// the status inside one database transaction.
func (s *Store) ApplyPosting(ctx context.Context, tenantID string, p store.Posting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM ledger_transactions WHERE id = ? AND tenant_id = ?`,
		p.TransactionID.String(), tenantID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrTransactionNotFound
	}
	if err != nil {
		return fmt.Errorf("ledger/sqlite: read status: %w", err)
	}
	if transaction.Status(status) != p.FromStatus {
		return ledger.ErrInvalidState
	}

	appliedAt := p.AppliedAt.Format(time.RFC3339Nano)
	for _, d := range p.Deltas {
		// No numeric column to add into: read, add in decimal, write back.
		var balance string
		err = tx.QueryRowContext(ctx,
			`SELECT balance FROM ledger_accounts WHERE id = ? AND tenant_id = ?`,
			d.AccountID.String(), tenantID).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("ledger/sqlite: read balance: %w", err)
		}
		current, err := decimal.NewFromString(balance)
		if err != nil {
			return fmt.Errorf("ledger/sqlite: parse balance %q: %w", balance, err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE ledger_accounts SET balance = ?, updated_at = ? WHERE id = ?`,
			current.Add(d.Delta).String(), appliedAt, d.AccountID.String())
		if err != nil {
			return fmt.Errorf("ledger/sqlite: apply delta: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE ledger_transactions SET status = ?, updated_at = ? WHERE id = ?`,
		string(p.ToStatus), appliedAt, p.TransactionID.String())
	if err != nil {
		return fmt.Errorf("ledger/sqlite: flip status: %w", err)
	}

	return tx.Commit()
}

// ──────────────────────────────────────────────────
// Reports
// ──────────────────────────────────────────────────

func (s *Store) SaveReport(ctx context.Context, r *report.Report) error {
	data, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("ledger/sqlite: marshal report data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO ledger_reports (id, tenant_id, type, start_date, end_date, generated_at, data)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.TenantID, string(r.Type),
		r.StartDate.Format(time.RFC3339Nano), r.EndDate.Format(time.RFC3339Nano),
		r.GeneratedAt.Format(time.RFC3339Nano), string(data))
	if err != nil {
		return fmt.Errorf("ledger/sqlite: save report: %w", err)
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, tenantID string, reportID id.ReportID) (*report.Report, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, tenant_id, type, start_date, end_date, generated_at, data
FROM ledger_reports WHERE id = ? AND tenant_id = ?`, reportID.String(), tenantID)
	return scanReport(row)
}

func (s *Store) ListReports(ctx context.Context, tenantID string, opts report.ListOpts) ([]*report.Report, error) {
	var (
		where = []string{"tenant_id = ?"}
		args  = []any{tenantID}
	)
	if opts.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(opts.Type))
	}

	query := `SELECT id, tenant_id, type, start_date, end_date, generated_at, data
FROM ledger_reports WHERE ` + strings.Join(where, " AND ") + ` ORDER BY generated_at`
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: list reports: %w", err)
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
		r                               report.Report
		rawID, typ                      string
		startDate, endDate, generatedAt string
		data                            string
	)
	err := row.Scan(&rawID, &r.TenantID, &typ, &startDate, &endDate, &generatedAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: scan report: %w", err)
	}
	if r.ID, err = id.ParseWithPrefix(rawID, id.PrefixReport); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse report id %q: %w", rawID, err)
	}
	r.Type = report.Type(typ)
	if r.StartDate, err = time.Parse(time.RFC3339Nano, startDate); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse start_date: %w", err)
	}
	if r.EndDate, err = time.Parse(time.RFC3339Nano, endDate); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse end_date: %w", err)
	}
	if r.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse generated_at: %w", err)
	}
	// Persisted payloads come back as raw JSON; consumers decode into the
	// payload struct matching r.Type.
	r.Data = json.RawMessage(data)
	return &r, nil
}

// ──────────────────────────────────────────────────
// Tax records
// ──────────────────────────────────────────────────

func (s *Store) SaveTaxRegistration(ctx context.Context, reg *tax.Registration) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO ledger_tax_registrations
    (id, tenant_id, registration_number, region, effective_from, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (tenant_id) DO UPDATE
SET registration_number = excluded.registration_number,
    region = excluded.region,
    effective_from = excluded.effective_from,
    updated_at = excluded.updated_at`,
		reg.ID.String(), reg.TenantID, reg.RegistrationNumber, reg.Region,
		reg.EffectiveFrom.Format(time.RFC3339Nano),
		reg.CreatedAt.Format(time.RFC3339Nano), reg.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("ledger/sqlite: save tax registration: %w", err)
	}
	return nil
}

func (s *Store) GetTaxRegistration(ctx context.Context, tenantID string) (*tax.Registration, error) {
	var (
		reg                             tax.Registration
		rawID                           string
		effectiveFrom, createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, tenant_id, registration_number, region, effective_from, created_at, updated_at
FROM ledger_tax_registrations WHERE tenant_id = ?`, tenantID).
		Scan(&rawID, &reg.TenantID, &reg.RegistrationNumber, &reg.Region,
			&effectiveFrom, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: get tax registration: %w", err)
	}
	if reg.ID, err = id.ParseWithPrefix(rawID, id.PrefixTaxRegistration); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse registration id %q: %w", rawID, err)
	}
	if reg.EffectiveFrom, err = time.Parse(time.RFC3339Nano, effectiveFrom); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse effective_from: %w", err)
	}
	if reg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse created_at: %w", err)
	}
	if reg.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("ledger/sqlite: parse updated_at: %w", err)
	}
	return &reg, nil
}

func (s *Store) SaveTaxRate(ctx context.Context, rate *tax.Rate) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO ledger_tax_rates (id, tenant_id, code, rate, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (tenant_id, code) DO UPDATE
SET rate = excluded.rate, updated_at = excluded.updated_at`,
		rate.ID.String(), rate.TenantID, rate.Code, rate.Rate.String(),
		rate.CreatedAt.Format(time.RFC3339Nano), rate.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("ledger/sqlite: save tax rate: %w", err)
	}
	return nil
}

func (s *Store) ListTaxRates(ctx context.Context, tenantID string) ([]*tax.Rate, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, tenant_id, code, rate, created_at, updated_at
FROM ledger_tax_rates WHERE tenant_id = ? ORDER BY code`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ledger/sqlite: list tax rates: %w", err)
	}
	defer rows.Close()

	var result []*tax.Rate
	for rows.Next() {
		var (
			r                           tax.Rate
			rawID, rateStr              string
			createdAt, updatedAt        string
		)
		if err := rows.Scan(&rawID, &r.TenantID, &r.Code, &rateStr, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("ledger/sqlite: scan tax rate: %w", err)
		}
		if r.ID, err = id.ParseWithPrefix(rawID, id.PrefixTaxRate); err != nil {
			return nil, fmt.Errorf("ledger/sqlite: parse rate id %q: %w", rawID, err)
		}
		if r.Rate, err = decimal.NewFromString(rateStr); err != nil {
			return nil, fmt.Errorf("ledger/sqlite: parse rate %q: %w", rateStr, err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("ledger/sqlite: parse created_at: %w", err)
		}
		if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("ledger/sqlite: parse updated_at: %w", err)
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}
