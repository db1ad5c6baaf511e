package handlers

import (
	"errors"
	"net/http"

	"cassa-pos-services/internal/order"
	"cassa-pos-services/internal/queue"
	"cassa-pos-services/pkg/response"

	"go.uber.org/zap"
)

// TableOrderPlace commits the cart's pending lines into a new order. The
// commit is one transaction; a success response means the kitchen has it.
func (h *Handler) TableOrderPlace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}

	session, err := h.carts.Load(ctx, h.DB, visitToken, tableNumber)
	if err != nil {
		h.Logger.Error("cart load failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to place order")
		return
	}

	orderID, err := order.Commit(ctx, h.DB, &h.carts, session)
	if errors.Is(err, order.ErrNoPendingItems) {
		response.Error(w, http.StatusBadRequest, "EMPTY_CART", "No new items to order")
		return
	}
	if err != nil {
		h.Logger.Error("order commit failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to place order")
		return
	}

	queue.Publish(ctx, h.Queue, h.Logger, queue.OrderEvent{
		Type:        queue.RouteOrderPlaced,
		OrderID:     orderID,
		TableNumber: tableNumber,
		Status:      order.StatusAccepted,
	})

	response.Created(w, map[string]any{
		"orderId": orderID,
		"status":  order.StatusAccepted,
	})
}

// TableOrderCancel cancels the visit's most recent order if the kitchen has
// not started it. A visit with nothing cancellable gets a clean 200 with
// cancelled=false rather than an error.
func (h *Handler) TableOrderCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}

	session, err := h.carts.Load(ctx, h.DB, visitToken, tableNumber)
	if err != nil {
		h.Logger.Error("cart load failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cancel order")
		return
	}

	cancelled, err := order.Cancel(ctx, h.DB, &h.carts, session)
	if err != nil {
		h.Logger.Error("order cancel failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cancel order")
		return
	}

	response.Success(w, map[string]any{"cancelled": cancelled})
}

// TableOrderStatus reports the visit's newest in-flight order, for the
// customer status banner.
func (h *Handler) TableOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}

	active, err := order.LatestActive(ctx, h.DB, tableNumber, visitToken)
	if err != nil {
		h.Logger.Error("order status read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order status")
		return
	}

	response.Success(w, map[string]any{"order": active})
}

// TableOrderNotified acknowledges that the customer UI has shown the order's
// current status, so the banner is not repeated.
func (h *Handler) TableOrderNotified(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid order id")
		return
	}

	o, err := order.Get(ctx, h.DB, orderID)
	if errors.Is(err, order.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		h.Logger.Error("order read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order")
		return
	}
	if o.TableNumber != tableNumber || o.SessionID != visitToken {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "Order belongs to another visit")
		return
	}

	if err := order.MarkNotified(ctx, h.DB, orderID); err != nil {
		h.Logger.Error("order notify failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order")
		return
	}
	response.Success(w, map[string]any{"orderId": orderID, "notified": true})
}
