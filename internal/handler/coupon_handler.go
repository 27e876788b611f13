package handler

import (
	"net/http"

	"category-coupons/internal/model"
	"category-coupons/internal/service"

	"github.com/rs/zerolog"
)

// CouponHandler handles coupon validation requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// Validate handles POST /api/coupons/validate requests. A coupon that
// cannot be applied answers 422 with its coupon error code.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.CouponValidationRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	application, err := h.service.Apply(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, application)
}
