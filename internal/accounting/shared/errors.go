package shared

import "errors"

var (
	// ErrUnknownItem indicates the SKU has no item master record.
	ErrUnknownItem = errors.New("accounting: unknown item")
	// ErrInsufficientStock indicates FIFO layers cannot cover the requested quantity.
	ErrInsufficientStock = errors.New("accounting: insufficient stock")
	// ErrInvalidAmount indicates a non-positive quantity, price, or amount.
	ErrInvalidAmount = errors.New("accounting: amount must be positive")
	// ErrAccountRequired indicates a missing account code.
	ErrAccountRequired = errors.New("accounting: account code required")
	// ErrUnbalanced indicates debit != credit for a document.
	ErrUnbalanced = errors.New("accounting: posting lines must balance")
	// ErrMappingNotFound indicates account mapping missing.
	ErrMappingNotFound = errors.New("accounting: account mapping not found")
	// ErrDuplicateDocument indicates a document number collision.
	ErrDuplicateDocument = errors.New("accounting: document number already exists")
)
