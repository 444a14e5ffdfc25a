package dto

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/civiplan/submission-service/internal/domain"
	"github.com/civiplan/submission-service/internal/domain/validation"
)

// ErrorResponse represents an RFC 9457 Problem Details response.
type ErrorResponse struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Status   int           `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Instance string        `json:"instance,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail represents a single field-level validation failure within an
// ErrorResponse. Target names the offending field, Code classifies the
// failure using the validation framework's code set.
type ErrorDetail struct {
	Target  string `json:"target,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates an RFC 9457 ErrorResponse from a domain error.
// The request is used to populate the instance field with the request URI.
// Validation errors contribute one ErrorDetail per failure leaf.
func NewErrorResponse(r *http.Request, err error) ErrorResponse {
	status := domainErrorToStatus(err)

	resp := ErrorResponse{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   err.Error(),
		Instance: r.RequestURI,
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		resp.Errors = validationLeavesToDetails(verr.Result.Leaves())
	}

	return resp
}

// WriteErrorResponse writes an RFC 9457 error response for the given domain
// error. It sets the Content-Type to application/problem+json, writes the
// appropriate HTTP status code, and marshals the error body as JSON.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	resp := NewErrorResponse(r, err)

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(resp.Status)

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		slog.ErrorContext(r.Context(), "failed to encode error response",
			slog.Any("error", encErr),
		)
	}
}

// domainErrorToStatus maps domain sentinel errors to HTTP status codes.
// A *validation.Error unwraps to the sentinel of its dominant failure code,
// so a mixed validation result lands on the most specific status.
func domainErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validationLeavesToDetails converts validation failure leaves to
// ErrorDetail entries, preserving the combinators' leaf order.
func validationLeavesToDetails(leaves []validation.Result) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(leaves))
	for _, leaf := range leaves {
		details = append(details, ErrorDetail{
			Target:  leaf.Target,
			Code:    string(leaf.Code),
			Message: leaf.Message,
		})
	}
	return details
}
