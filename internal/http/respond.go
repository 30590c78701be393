package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/checkout"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/domain"
	"github.com/BaoPhun/TreeStore-CustomerWeb/internal/payment"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: details,
	})
}

// respondFailure maps core errors onto HTTP statuses.
func respondFailure(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		status, code = http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, domain.ErrAuthRequired):
		status, code = http.StatusUnauthorized, "auth_required"
	case errors.Is(err, domain.ErrMissingIdentity):
		status, code = http.StatusUnauthorized, "missing_identity"
	case errors.Is(err, domain.ErrPromotionInvalid):
		status, code = http.StatusUnprocessableEntity, "promotion_invalid"
	case errors.Is(err, checkout.ErrEmptyCart):
		status, code = http.StatusBadRequest, "empty_cart"
	case errors.Is(err, checkout.ErrNoSession):
		status, code = http.StatusNotFound, "no_session"
	case errors.Is(err, checkout.ErrUnknownMethod):
		status, code = http.StatusBadRequest, "unknown_method"
	case errors.Is(err, checkout.IllegalTransitionError):
		status, code = http.StatusConflict, "illegal_transition"
	case errors.Is(err, payment.ErrCaptureActive),
		errors.Is(err, payment.ErrNoActiveCapture):
		status, code = http.StatusConflict, "capture_state"
	case errors.Is(err, domain.ErrBackendRejected):
		status, code = http.StatusBadGateway, "backend_rejected"
	case errors.Is(err, domain.ErrTransportFailure):
		status, code = http.StatusGatewayTimeout, "transport_failure"
	}
	respondError(w, status, code, err.Error())
}
