package handlers

import (
	"errors"
	"net/http"

	"cassa-pos-services/internal/billing"
	"cassa-pos-services/pkg/response"

	"go.uber.org/zap"
)

func (h *Handler) AdminFeedbackList(w http.ResponseWriter, r *http.Request) {
	payments, err := billing.ListFeedback(r.Context(), h.DB)
	if err != nil {
		h.Logger.Error("feedback list failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load feedback")
		return
	}
	response.Success(w, payments)
}

func (h *Handler) AdminFeedbackDelete(w http.ResponseWriter, r *http.Request) {
	paymentID, err := readPathInt64(r, "paymentId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payment id")
		return
	}

	err = billing.DeleteFeedback(r.Context(), h.DB, paymentID)
	if errors.Is(err, billing.ErrPaymentNotFound) {
		response.Error(w, http.StatusNotFound, "PAYMENT_NOT_FOUND", "Payment not found")
		return
	}
	if err != nil {
		h.Logger.Error("feedback delete failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete feedback")
		return
	}
	response.Success(w, map[string]any{"paymentId": paymentID, "deleted": true})
}
