package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"cassa-pos-services/internal/billing"
	"cassa-pos-services/pkg/response"

	"go.uber.org/zap"
)

// AdminPaymentsUnnotified lists settled payments the counter has not yet
// acknowledged; the dashboard polls this for the payment toast.
func (h *Handler) AdminPaymentsUnnotified(w http.ResponseWriter, r *http.Request) {
	payments, err := billing.UnnotifiedPaid(r.Context(), h.DB)
	if err != nil {
		h.Logger.Error("unnotified payments read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load payments")
		return
	}
	response.Success(w, payments)
}

func (h *Handler) AdminPaymentAck(w http.ResponseWriter, r *http.Request) {
	paymentID, err := readPathInt64(r, "paymentId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payment id")
		return
	}

	err = billing.MarkNotified(r.Context(), h.DB, paymentID)
	if errors.Is(err, billing.ErrPaymentNotFound) {
		response.Error(w, http.StatusNotFound, "PAYMENT_NOT_FOUND", "Payment not found")
		return
	}
	if err != nil {
		h.Logger.Error("payment ack failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to acknowledge payment")
		return
	}
	response.Success(w, map[string]any{"paymentId": paymentID, "notified": true})
}

func (h *Handler) AdminPaymentBill(w http.ResponseWriter, r *http.Request) {
	paymentID, err := readPathInt64(r, "paymentId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payment id")
		return
	}

	bill, err := billing.BillForPayment(r.Context(), h.DB, paymentID)
	if errors.Is(err, billing.ErrPaymentNotFound) {
		response.Error(w, http.StatusNotFound, "PAYMENT_NOT_FOUND", "Payment not found")
		return
	}
	if err != nil {
		h.Logger.Error("payment bill read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load bill")
		return
	}

	// Opening the bill at the counter counts as seeing the payment.
	if err := billing.MarkNotified(r.Context(), h.DB, paymentID); err != nil {
		h.Logger.Warn("payment notify on view failed", zap.Error(err))
	}

	response.Success(w, bill)
}

func (h *Handler) AdminPaymentReceiptPDF(w http.ResponseWriter, r *http.Request) {
	paymentID, err := readPathInt64(r, "paymentId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payment id")
		return
	}

	bill, err := billing.BillForPayment(r.Context(), h.DB, paymentID)
	if errors.Is(err, billing.ErrPaymentNotFound) {
		response.Error(w, http.StatusNotFound, "PAYMENT_NOT_FOUND", "Payment not found")
		return
	}
	if err != nil {
		h.Logger.Error("payment bill read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load bill")
		return
	}

	pdf, err := billing.RenderReceiptPDF(bill, "Cassa")
	if err != nil {
		h.Logger.Error("receipt render failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%d.pdf", paymentID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf.Bytes())
}
