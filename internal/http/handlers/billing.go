package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cassa-pos-services/internal/billing"
	"cassa-pos-services/internal/queue"
	"cassa-pos-services/pkg/response"

	"go.uber.org/zap"
)

// TableBillGet prepares the visit's bill: every ordered item aggregated,
// current charges applied, and the open payment row upserted. Safe to call
// repeatedly; the amounts track the visit's orders until payment.
func (h *Handler) TableBillGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}

	bill, err := billing.PrepareBill(ctx, h.DB, tableNumber, visitToken)
	if errors.Is(err, billing.ErrNoOrders) {
		response.Error(w, http.StatusBadRequest, "NO_ORDERS", "Nothing has been ordered this visit")
		return
	}
	if err != nil {
		h.Logger.Error("bill prepare failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to prepare bill")
		return
	}
	response.Success(w, bill)
}

type billMethodRequest struct {
	Method string `json:"method"`
}

func (h *Handler) TableBillMethod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}

	var req billMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	req.Method = strings.ToUpper(strings.TrimSpace(req.Method))
	if !billing.ValidMethod(req.Method) {
		response.Error(w, http.StatusBadRequest, "INVALID_METHOD", "Payment method must be CASH or ONLINE")
		return
	}

	updated, err := billing.SetMethod(ctx, h.DB, tableNumber, visitToken, req.Method)
	if err != nil {
		h.Logger.Error("bill method update failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to set payment method")
		return
	}
	if !updated {
		response.Error(w, http.StatusNotFound, "PAYMENT_NOT_FOUND", "No bill has been prepared this visit")
		return
	}
	response.Success(w, map[string]any{"method": req.Method})
}

// TableBillConfirm settles the visit's payment and ends the visit: the cart
// session is dropped so the next customer at the table starts clean.
func (h *Handler) TableBillConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}

	var req billMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	req.Method = strings.ToUpper(strings.TrimSpace(req.Method))
	if !billing.ValidMethod(req.Method) {
		response.Error(w, http.StatusBadRequest, "INVALID_METHOD", "Payment method must be CASH or ONLINE")
		return
	}

	payment, err := billing.ConfirmPayment(ctx, h.DB, tableNumber, visitToken, req.Method)
	if err != nil {
		h.Logger.Error("payment confirm failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to confirm payment")
		return
	}

	if payment != nil {
		if err := h.carts.Clear(ctx, h.DB, visitToken); err != nil {
			h.Logger.Warn("cart clear after payment failed", zap.Error(err))
		}
		queue.Publish(ctx, h.Queue, h.Logger, queue.OrderEvent{
			Type:        queue.RouteBillPaid,
			PaymentID:   payment.ID,
			TableNumber: tableNumber,
			Total:       payment.Total,
		})
	}

	response.Success(w, map[string]any{"paid": payment != nil})
}

type billFeedbackRequest struct {
	Rating   *int32 `json:"rating"`
	Feedback string `json:"feedback"`
}

func (h *Handler) TableBillFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}

	var req billFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		response.Error(w, http.StatusBadRequest, "INVALID_RATING", "Rating must be between 1 and 5")
		return
	}

	err := billing.RecordFeedback(ctx, h.DB, tableNumber, visitToken, req.Rating, strings.TrimSpace(req.Feedback))
	if errors.Is(err, billing.ErrPaymentNotFound) {
		response.Error(w, http.StatusNotFound, "PAYMENT_NOT_FOUND", "No payment to attach feedback to")
		return
	}
	if err != nil {
		h.Logger.Error("feedback record failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save feedback")
		return
	}
	response.Success(w, map[string]any{"saved": true})
}
