// Package handler exposes the storefront services over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"category-coupons/internal/middleware"
	"category-coupons/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to tell the client.
		return
	}
}

// writeError writes a model.ErrorResponse tagged with the request's
// correlation id.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	requestID := middleware.RequestIDFromContext(r.Context())
	logger.Error().
		Str("error", code).
		Str("message", message).
		Int("status", status).
		Str("request_id", requestID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: requestID,
	})
}

// writeServiceError maps an error returned by a service onto a response.
// Coupon rejections answer 422 with the coupon error code; domain errors
// answer 400 or 404; anything else is an internal error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var couponErr *model.CouponError
	if errors.As(err, &couponErr) {
		code := model.ErrCodeCouponInvalid
		if couponErr.Code == model.CouponErrNotExist {
			code = model.ErrCodeCouponNotFound
		}
		requestID := middleware.RequestIDFromContext(r.Context())
		logger.Info().
			Int("coupon_error_code", couponErr.Code).
			Str("request_id", requestID).
			Msg("coupon rejected")

		writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:           code,
			Message:         couponErr.Message,
			CouponErrorCode: couponErr.Code,
			CorrelationID:   requestID,
		})
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, r, domainStatus(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected service error")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

func domainStatus(code string) int {
	switch code {
	case model.ErrCodeCouponNotFound, model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON decodes the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
		return false
	}
	return true
}

// pathParam returns the path segment following prefix, without a trailing
// slash.
func pathParam(path, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, prefix), "/")
}
