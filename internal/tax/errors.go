package tax

// Error codes mirror the domain error codes to avoid a circular import.
// The handler layer maps these to HTTP status codes.
const (
	codeInvalid = "invalid"
)

// TaxError represents a tax-specific error with a code and message.
type TaxError struct {
	Code    string
	Message string
}

func (e *TaxError) Error() string {
	return e.Message
}

// ErrorCode returns the error code for HTTP status mapping.
func (e *TaxError) ErrorCode() string {
	return e.Code
}

// ErrorMessage returns the user-facing message.
func (e *TaxError) ErrorMessage() string {
	return e.Message
}

func newTaxError(code, message string) *TaxError {
	return &TaxError{Code: code, Message: message}
}

var (
	// ErrInvalidTaxRate is returned for rates outside [0, 1).
	ErrInvalidTaxRate = newTaxError(codeInvalid, "Tax rate must be between 0 and 1")
)
