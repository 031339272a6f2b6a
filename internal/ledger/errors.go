package ledger

import "errors"

// Kind buckets ledger failures so callers can map them to a response without
// matching individual sentinel errors
type Kind int

// Failure kinds
const (
	KindUnknown     Kind = iota // Not a ledger error
	KindNotFound                // Entity absent, archived, or owned by someone else
	KindInvalid                 // Intent violates a ledger rule
	KindConflict                // Uniqueness constraint hit
	KindTransient               // Atomic commit failed; safe to retry
	KindUnsupported             // Transaction type outside income/expense/transfer
)

// Error is a typed ledger failure with a stable machine-readable code
type Error struct {
	Code    string // Stable code, e.g. "SAME_WALLET_TRANSFER"
	Kind    Kind   // Failure bucket
	Message string // Human-readable description
	cause   error  // Underlying storage error, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying storage error for errors.Is/As
func (e *Error) Unwrap() error { return e.cause }

// Is matches two ledger errors by code, so wrapped transient errors still
// compare equal to the ErrTransient sentinel
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinel failures raised by the transaction engine and wallet ledger
var (
	ErrWalletNotFound         = &Error{Code: "WALLET_NOT_FOUND", Kind: KindNotFound, Message: "wallet not found"}
	ErrCategoryNotFound       = &Error{Code: "CATEGORY_NOT_FOUND", Kind: KindNotFound, Message: "category not found"}
	ErrGoalNotFound           = &Error{Code: "GOAL_NOT_FOUND", Kind: KindNotFound, Message: "goal not found"}
	ErrInvalidIncomeCategory  = &Error{Code: "INVALID_CATEGORY_TYPE_FOR_INCOME", Kind: KindInvalid, Message: "category is not an income category"}
	ErrInvalidExpenseCategory = &Error{Code: "INVALID_CATEGORY_TYPE_FOR_EXPENSE", Kind: KindInvalid, Message: "category is not an expense category"}
	ErrSameWalletTransfer     = &Error{Code: "SAME_WALLET_TRANSFER", Kind: KindInvalid, Message: "transfer source and destination wallets must differ"}
	ErrInvalidAmount          = &Error{Code: "INVALID_AMOUNT", Kind: KindInvalid, Message: "amount must be positive with at most 2 fractional digits"}
	ErrWalletHasEntries       = &Error{Code: "HAS_ENTRIES", Kind: KindInvalid, Message: "wallet has ledger entries"}
	ErrUnsupportedType        = &Error{Code: "UNSUPPORTED_TRANSACTION_TYPE", Kind: KindUnsupported, Message: "unsupported transaction type"}
	ErrTransient              = &Error{Code: "TRANSIENT", Kind: KindTransient, Message: "atomic commit failed"}
)

// transientErr wraps an unexpected storage failure as a retryable ledger error
func transientErr(cause error) error {
	return &Error{Code: ErrTransient.Code, Kind: KindTransient, Message: ErrTransient.Message, cause: cause}
}

// KindOf extracts the failure kind from err, or KindUnknown for non-ledger
// errors
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}
