// Package api implements the JSON HTTP handlers for the Vanir cart API.
//
// Handlers translate between HTTP and the service layer only: request
// decoding and validation on the way in, view models and error-code mapping
// on the way out. Business rules live in internal/service and below.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/middleware"
	"github.com/dukerupert/vanir/internal/telemetry"
	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps a domain error onto an HTTP status and writes the
// structured error body. Internal details are logged, never sent to clients.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := middleware.ErrorCodeToHTTPStatus(code)

	logger := middleware.GetLogger(r.Context())
	if status >= 500 {
		logger.Error("request failed", "error", err, "code", code)

		var storeLabel string
		if store := domain.StoreFromContext(r.Context()); store != nil {
			storeLabel = domain.UUIDString(store.ID)
		}
		telemetry.CaptureError(err, storeLabel, map[string]interface{}{
			"path":   r.URL.Path,
			"method": r.Method,
		})
	} else {
		logger.Info("request rejected", "error", err, "code", code)
	}

	respondJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": domain.ErrorMessage(err),
		},
	})
}

// decodeAndValidate decodes the JSON request body into dst and runs struct
// validation. Returns a domain EINVALID error on failure.
func decodeAndValidate(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("", "Request body is not valid JSON")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.Invalid("", "Invalid value for field "+verrs[0].Field())
		}
		return domain.Invalid("", "Request validation failed")
	}
	return nil
}

// storeFromRequest pulls the resolved store out of the request context.
func storeFromRequest(r *http.Request) (*domain.Store, error) {
	return domain.MustStoreFromContext(r.Context())
}
