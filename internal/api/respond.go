package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shopnest-bff/internal/cart"
	"shopnest-bff/internal/checkout"
	"shopnest-bff/internal/resilience"
	"shopnest-bff/internal/services"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("JSON encode error", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: RequestIDFrom(r.Context())})
}

// decode reads a JSON body into dst and validates it when validate is set.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// fail maps domain and backend errors onto responses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		// client went away
		return
	}
	status, msg := http.StatusInternalServerError, "internal server error"

	var apiErr *services.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode < 500:
		status, msg = apiErr.StatusCode, apiErr.Detail
		if msg == "" {
			msg = http.StatusText(status)
		}
	case errors.As(err, &apiErr), errors.Is(err, resilience.ErrCircuitOpen):
		status, msg = http.StatusBadGateway, "marketplace service unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, "marketplace service timed out"
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrNoOwner), errors.Is(err, checkout.ErrInvalidRequest):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, cart.ErrItemNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, cart.ErrUnavailable), errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, cart.ErrConflict), errors.Is(err, checkout.ErrEmptyCart):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, context.Canceled):
		status, msg = http.StatusBadGateway, "marketplace service unavailable"
	default:
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			status, msg = http.StatusBadGateway, "marketplace service unavailable"
		}
	}

	if status >= 500 {
		h.log.Error("Request failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, r, status, msg)
}
