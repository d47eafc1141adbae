package ledger

import "errors"

// Sentinel errors for the ledger engine's failure taxonomy.
//
// Structural and state errors propagate uncaught to the immediate caller:
// the operation did not happen and there is no local recovery. Compliance
// findings are never errors: they are returned as issue lists.
var (
	// Structural errors: the request itself is malformed and is rejected
	// before anything persists.
	ErrUnbalancedTransaction = errors.New("ledger: transaction debits do not equal credits")
	ErrEntrySides            = errors.New("ledger: entry must have exactly one of debit or credit")
	ErrNoEntries             = errors.New("ledger: transaction has no entries")
	ErrNegativeAmount        = errors.New("ledger: debit and credit amounts must not be negative")
	ErrParentNotFound        = errors.New("ledger: parent account not found")
	ErrDuplicateCode         = errors.New("ledger: account code already exists")
	ErrBalanceImmutable      = errors.New("ledger: account balance is derived and cannot be assigned")
	ErrInvalidAccountType    = errors.New("ledger: invalid account type")
	ErrInvalidReportType     = errors.New("ledger: invalid report type")

	// State errors: the entity exists but is not in a state that permits
	// the transition. Callers must re-check state before retrying.
	ErrInvalidState = errors.New("ledger: invalid transaction state for this operation")

	// Config errors: fatal for the tenant/region context, raised at
	// construction, never lazily.
	ErrConfigNotFound = errors.New("ledger: regional configuration not found")

	// Lookup errors
	ErrAccountNotFound      = errors.New("ledger: account not found")
	ErrTransactionNotFound  = errors.New("ledger: transaction not found")
	ErrReportNotFound       = errors.New("ledger: report not found")
	ErrRegistrationNotFound = errors.New("ledger: tax registration not found")

	// Store errors
	ErrStoreClosed = errors.New("ledger: store is closed")
)

// IsStructural reports whether err blocks an operation because the request
// itself was malformed.
func IsStructural(err error) bool {
	return errors.Is(err, ErrUnbalancedTransaction) ||
		errors.Is(err, ErrEntrySides) ||
		errors.Is(err, ErrNoEntries) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrParentNotFound) ||
		errors.Is(err, ErrDuplicateCode) ||
		errors.Is(err, ErrBalanceImmutable) ||
		errors.Is(err, ErrInvalidAccountType) ||
		errors.Is(err, ErrInvalidReportType)
}

// IsState reports whether err is a lifecycle state violation.
func IsState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsNotFound reports whether err is any missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrReportNotFound) ||
		errors.Is(err, ErrRegistrationNotFound) ||
		errors.Is(err, ErrConfigNotFound)
}
