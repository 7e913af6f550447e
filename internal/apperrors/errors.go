package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAccountNotFound indicates that a taxable account with the given ID does not exist.
	ErrAccountNotFound = errors.New("taxable account not found")

	// ErrLotNotFound indicates that a tax lot with the given ID does not exist.
	ErrLotNotFound = errors.New("tax lot not found")

	// ErrDispositionNotFound indicates that a disposition with the given ID does not exist.
	ErrDispositionNotFound = errors.New("tax lot disposition not found")

	// ErrWashSaleNotFound indicates that a wash sale record does not exist.
	ErrWashSaleNotFound = errors.New("wash sale not found")

	// ErrTaxableEventNotFound indicates that a taxable event record does not exist.
	ErrTaxableEventNotFound = errors.New("taxable event not found")

	// ErrForm1099BNotFound indicates no 1099-B record for the account and tax year.
	ErrForm1099BNotFound = errors.New("form 1099-B not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidQuantity indicates a non-positive acquisition or disposal
	// quantity. Rejected outright, never coerced.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInsufficientLots indicates that a sale requests more shares than the
	// ledger has recorded as owned across open lots. Fatal to that sale; a
	// sell is never partially matched.
	ErrInsufficientLots = errors.New("insufficient open lot quantity for sale")

	// ErrOverdisposal indicates a decrement larger than a lot's remaining
	// quantity. This is an internal consistency violation: it signals a bug
	// in matching, never silently clamped.
	ErrOverdisposal = errors.New("disposal exceeds lot remaining quantity")

	// ErrWashSaleWindowViolation indicates a replacement lot acquired outside
	// the 30-day window was linked to a wash sale. Rejected at construction.
	ErrWashSaleWindowViolation = errors.New("replacement lot outside wash sale window")

	// ErrDuplicateTaxableAccount indicates the portfolio already has tax
	// tracking enabled. At most one taxable account exists per portfolio.
	ErrDuplicateTaxableAccount = errors.New("portfolio already has a taxable account")

	// ErrSpecificLotsRequired indicates a SPECIFIC-method sale arrived without
	// caller-designated lots.
	ErrSpecificLotsRequired = errors.New("specific identification requires designated lots")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidTaxYear indicates a tax year outside the supported range.
	ErrInvalidTaxYear = errors.New("invalid tax year")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrieveAccounts     = errors.New("failed to retrieve taxable accounts")
	ErrFailedToRetrieveLots         = errors.New("failed to retrieve tax lots")
	ErrFailedToRetrieveDispositions = errors.New("failed to retrieve dispositions")
	ErrFailedToRetrieveWashSales    = errors.New("failed to retrieve wash sales")
	ErrFailedToRetrieveEvents       = errors.New("failed to retrieve taxable events")
	ErrFailedToRetrieveForm1099B    = errors.New("failed to retrieve form 1099-B")
	ErrFailedToProcessTransaction   = errors.New("failed to process transaction")
	ErrFailedToCalculateTotals      = errors.New("failed to calculate 1099-B totals")
	ErrFailedToScanWashSales        = errors.New("failed to scan for wash sales")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., a disposition references a lot that does not exist).
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)
