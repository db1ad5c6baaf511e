package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cassa-pos-services/internal/charges"
	"cassa-pos-services/internal/menu"
	"cassa-pos-services/internal/middleware"
	"cassa-pos-services/pkg/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TableSessionStart mints a fresh visit token. The client presents it on
// every cart, order and bill request for the rest of the visit.
func (h *Handler) TableSessionStart(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok || authCtx.TableNumber == nil {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Table context required")
		return
	}
	response.Created(w, map[string]any{
		"visitToken":  uuid.NewString(),
		"tableNumber": *authCtx.TableNumber,
	})
}

// TableMenu lists the customer-facing catalog: available items only,
// optionally narrowed by category or name search.
func (h *Handler) TableMenu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if category != "" && !menu.ValidCategory(category) {
		response.Error(w, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown menu category")
		return
	}

	items, err := menu.List(ctx, h.DB, category, search, true)
	if err != nil {
		h.Logger.Error("menu list failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menu")
		return
	}
	response.Success(w, items)
}

func (h *Handler) TableCartGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}

	session, err := h.carts.Load(ctx, h.DB, visitToken, tableNumber)
	if err != nil {
		h.Logger.Error("cart load failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}
	pct, err := charges.Current(ctx, h.DB)
	if err != nil {
		h.Logger.Error("charges read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}

	response.Success(w, map[string]any{
		"cart":   session,
		"totals": session.Totals(pct),
	})
}

type cartAddRequest struct {
	MenuItemID int64 `json:"menuItemId"`
	Quantity   int32 `json:"quantity"`
}

func (h *Handler) TableCartAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}

	var req cartAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		response.Error(w, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be positive")
		return
	}

	item, err := menu.GetItem(ctx, h.DB, req.MenuItemID)
	if errors.Is(err, menu.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", "Menu item not found")
		return
	}
	if err != nil {
		h.Logger.Error("menu item read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add item")
		return
	}
	if !item.IsAvailable {
		response.Error(w, http.StatusConflict, "OUT_OF_STOCK", "Menu item is out of stock")
		return
	}

	session, err := h.carts.Load(ctx, h.DB, visitToken, tableNumber)
	if err != nil {
		h.Logger.Error("cart load failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add item")
		return
	}
	created := session.AddOrUpdate(item.ID, item.Name, item.Price, req.Quantity)
	if err := h.carts.Save(ctx, h.DB, session); err != nil {
		h.Logger.Error("cart save failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add item")
		return
	}

	pct, err := charges.Current(ctx, h.DB)
	if err != nil {
		h.Logger.Error("charges read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add item")
		return
	}
	response.Success(w, map[string]any{
		"cart":    session,
		"totals":  session.Totals(pct),
		"created": created,
	})
}

func (h *Handler) TableCartRemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tableNumber, visitToken, ok := tableContext(w, r)
	if !ok {
		return
	}
	lineID := readPathString(r, "lineId")
	if lineID == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Line id required")
		return
	}

	session, err := h.carts.Load(ctx, h.DB, visitToken, tableNumber)
	if err != nil {
		h.Logger.Error("cart load failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove item")
		return
	}

	for _, line := range session.Lines {
		if line.ID == lineID && line.Ordered {
			response.Error(w, http.StatusConflict, "LINE_ALREADY_ORDERED", "Ordered items can only be cancelled with their order")
			return
		}
	}

	removed := session.Remove(lineID)
	if removed {
		if err := h.carts.Save(ctx, h.DB, session); err != nil {
			h.Logger.Error("cart save failed", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove item")
			return
		}
	}

	pct, err := charges.Current(ctx, h.DB)
	if err != nil {
		h.Logger.Error("charges read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove item")
		return
	}
	response.Success(w, map[string]any{
		"cart":    session,
		"totals":  session.Totals(pct),
		"removed": removed,
	})
}
