package service

import (
	"github.com/dukerupert/vanir/internal/domain"
)

// Cart facade errors. Not-found and quantity errors are shared with the
// domain package so callers can match on a single sentinel.
var (
	// ErrInvalidSelection rejects an add whose attribute value is not a valid
	// option of the resolved product.
	ErrInvalidSelection = &domain.Error{
		Code:    domain.EINVALID,
		Message: "Attribute value is not valid for this product",
	}
)
