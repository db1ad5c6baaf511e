package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cassa-pos-services/internal/menu"
	"cassa-pos-services/pkg/response"

	"go.uber.org/zap"
)

// AdminMenuList shows the whole catalog, out-of-stock items included.
func (h *Handler) AdminMenuList(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if category != "" && !menu.ValidCategory(category) {
		response.Error(w, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown menu category")
		return
	}

	items, err := menu.List(r.Context(), h.DB, category, search, false)
	if err != nil {
		h.Logger.Error("menu list failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menu")
		return
	}
	response.Success(w, items)
}

type menuItemRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	IsAvailable *bool   `json:"isAvailable"`
}

func (req *menuItemRequest) validate() (string, bool) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "Name required", false
	}
	if req.Price < 0 {
		return "Price must not be negative", false
	}
	if !menu.ValidCategory(req.Category) {
		return "Category must be Bites or Brews", false
	}
	return "", true
}

func (h *Handler) AdminMenuCreate(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if msg, ok := req.validate(); !ok {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg)
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	id, err := menu.Create(r.Context(), h.DB, req.Name, req.Price, req.Category, available)
	if err != nil {
		h.Logger.Error("menu create failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create menu item")
		return
	}
	response.Created(w, map[string]any{"id": id})
}

func (h *Handler) AdminMenuUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid menu item id")
		return
	}
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if msg, ok := req.validate(); !ok {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg)
		return
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	err = menu.Update(r.Context(), h.DB, id, req.Name, req.Price, req.Category, available)
	if errors.Is(err, menu.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", "Menu item not found")
		return
	}
	if err != nil {
		h.Logger.Error("menu update failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update menu item")
		return
	}
	response.Success(w, map[string]any{"id": id})
}

func (h *Handler) AdminMenuDelete(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid menu item id")
		return
	}

	err = menu.Delete(r.Context(), h.DB, id)
	if errors.Is(err, menu.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", "Menu item not found")
		return
	}
	if err != nil {
		h.Logger.Error("menu delete failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete menu item")
		return
	}
	response.Success(w, map[string]any{"id": id, "deleted": true})
}

func (h *Handler) AdminMenuToggleAvailability(w http.ResponseWriter, r *http.Request) {
	h.KitchenMenuToggleAvailability(w, r)
}
