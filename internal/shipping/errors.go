package shipping

import "fmt"

// Error codes mirror the domain error codes to avoid a circular import.
// The handler layer maps these to HTTP status codes.
const (
	codeInternal    = "internal"
	codeInvalid     = "invalid"
	codeNotImpl     = "not_implemented"
	codeUnavailable = "unavailable"
)

// ShippingError represents a shipping-specific error with a code and message.
type ShippingError struct {
	Code    string
	Message string
}

func (e *ShippingError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *ShippingError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *ShippingError) ErrorMessage() string {
	return e.Message
}

func newShippingError(code, message string) *ShippingError {
	return &ShippingError{Code: code, Message: message}
}

var (
	// ErrNotImplemented is returned when a provider does not support a method.
	ErrNotImplemented = newShippingError(codeNotImpl, "Shipping method not implemented")

	// ErrMultiPackageNotSupported is returned when multiple packages are provided.
	ErrMultiPackageNotSupported = newShippingError(codeNotImpl, "Multi-package shipments not yet supported")

	// ErrNoPackages is returned when no packages are provided.
	ErrNoPackages = newShippingError(codeInvalid, "At least one package is required")

	// ErrOriginRequired is returned when origin address is missing.
	ErrOriginRequired = newShippingError(codeInvalid, "Origin address is required")

	// ErrStoreRequired is returned when the store id is missing.
	ErrStoreRequired = newShippingError(codeInvalid, "Store ID is required")

	// ErrNoRates is returned when no shipping rates are available.
	ErrNoRates = newShippingError(codeUnavailable, "No shipping rates available")

	// ErrMissingAPIKey is returned when the shipping provider API key is missing.
	ErrMissingAPIKey = newShippingError(codeInternal, "Shipping provider API key is required")

	// ErrCartNotRefreshed is returned when a cart is projected for shipping
	// without a completed refresh pass.
	ErrCartNotRefreshed = newShippingError(codeInvalid, "Cart must be refreshed before shipping projection")
)

// ErrInvalidAmount creates an error for invalid amount parsing.
func ErrInvalidAmount(amount string, err error) error {
	return &ShippingError{
		Code:    codeInvalid,
		Message: fmt.Sprintf("Invalid dollar amount %q: %v", amount, err),
	}
}
