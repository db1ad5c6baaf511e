package handlers

import (
	"errors"
	"net/http"

	"cassa-pos-services/internal/kitchen"
	"cassa-pos-services/internal/menu"
	"cassa-pos-services/internal/order"
	"cassa-pos-services/internal/queue"
	"cassa-pos-services/pkg/response"

	"go.uber.org/zap"
)

func (h *Handler) KitchenBoard(w http.ResponseWriter, r *http.Request) {
	board, err := kitchen.ListActive(r.Context(), h.DB)
	if err != nil {
		h.Logger.Error("kitchen board read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load kitchen board")
		return
	}
	response.Success(w, board)
}

// KitchenOrderAdvance moves an order one status forward. Losing a race with
// another staff member, or poking a delivered order, reports changed=false.
func (h *Handler) KitchenOrderAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid order id")
		return
	}

	status, changed, err := kitchen.Advance(ctx, h.DB, orderID)
	if errors.Is(err, order.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		h.Logger.Error("order advance failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to advance order")
		return
	}

	if changed {
		o, readErr := order.Get(ctx, h.DB, orderID)
		if readErr == nil {
			queue.Publish(ctx, h.Queue, h.Logger, queue.OrderEvent{
				Type:        queue.RouteOrderStatus,
				OrderID:     orderID,
				TableNumber: o.TableNumber,
				Status:      status,
			})
		}
	}

	response.Success(w, map[string]any{
		"orderId": orderID,
		"status":  status,
		"changed": changed,
	})
}

func (h *Handler) KitchenOrderRemove(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid order id")
		return
	}

	err = kitchen.Remove(r.Context(), h.DB, orderID)
	if errors.Is(err, order.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		h.Logger.Error("order remove failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove order")
		return
	}
	response.Success(w, map[string]any{"orderId": orderID, "removed": true})
}

// KitchenMenuToggleAvailability lets the kitchen mark an item in or out of
// stock without admin involvement.
func (h *Handler) KitchenMenuToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid menu item id")
		return
	}

	available, err := menu.ToggleAvailability(r.Context(), h.DB, id)
	if errors.Is(err, menu.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", "Menu item not found")
		return
	}
	if err != nil {
		h.Logger.Error("availability toggle failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update availability")
		return
	}
	response.Success(w, map[string]any{"id": id, "isAvailable": available})
}
