package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
// These are generic errors that can be wrapped with additional context
var (
	// Catalog errors
	ErrProductNotFound    = errors.New("product not found")
	ErrDuplicateProduct   = errors.New("product already exists")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownSubcategory = errors.New("unknown subcategory for category")
	ErrInvalidPrice       = errors.New("price must not be negative")
	ErrInvalidUnit        = errors.New("unsupported measurement unit")
	ErrInvalidTitle       = errors.New("invalid product title")

	// Cart errors
	ErrDuplicateCartLine = errors.New("product already in cart")
	ErrNotInCart         = errors.New("product not in cart")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrDetachedCustomer  = errors.New("customer is not attached to a catalog")

	// Customer errors
	ErrCustomerExists     = errors.New("username already taken")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrMissingField       = errors.New("required field is empty")
	ErrInvalidUsername    = errors.New("username contains unsupported characters")
	ErrInvalidPassword    = errors.New("password must not start or end with whitespace")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing required configuration")
)

// MarketError provides structured error information with context
// It implements the error interface and supports error wrapping
type MarketError struct {
	Op      string // Operation that failed (e.g., "Customer.AddProductToCart")
	Kind    string // Error kind (e.g., "cart", "catalog", "storage", "config")
	ID      string // Optional ID of the entity involved (title, username, artifact)
	Message string // Human-readable message
	Err     error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *MarketError) Error() string {
	if e.Op != "" && e.Err != nil {
		if e.ID != "" {
			return fmt.Sprintf("%s [%s]: %v", e.Op, e.ID, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *MarketError) Unwrap() error {
	return e.Err
}

// NewMarketError creates a new MarketError
func NewMarketError(op, kind string, err error) *MarketError {
	return &MarketError{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

func opError(op, kind, id string, err error) *MarketError {
	return &MarketError{Op: op, Kind: kind, ID: id, Err: err}
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrNotInCart)
}

// IsValidationError reports whether err is a rejected mutation that left
// state unchanged.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrDuplicateProduct, ErrUnknownCategory, ErrUnknownSubcategory,
		ErrInvalidPrice, ErrInvalidUnit, ErrInvalidTitle,
		ErrDuplicateCartLine, ErrInvalidQuantity, ErrInsufficientStock,
		ErrEmptyCart, ErrCustomerExists, ErrMissingField, ErrInvalidUsername,
		ErrInvalidPassword,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}
