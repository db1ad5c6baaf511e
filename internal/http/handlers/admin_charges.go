package handlers

import (
	"encoding/json"
	"net/http"

	"cassa-pos-services/internal/charges"
	"cassa-pos-services/pkg/response"

	"go.uber.org/zap"
)

func (h *Handler) AdminChargesGet(w http.ResponseWriter, r *http.Request) {
	pct, err := charges.Current(r.Context(), h.DB)
	if err != nil {
		h.Logger.Error("charges read failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load charges")
		return
	}
	response.Success(w, pct)
}

func (h *Handler) AdminChargesPut(w http.ResponseWriter, r *http.Request) {
	var req charges.Percentages
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.TaxPercent < 0 || req.TaxPercent > 100 || req.ServiceChargePercent < 0 || req.ServiceChargePercent > 100 {
		response.Error(w, http.StatusBadRequest, "INVALID_PERCENTAGE", "Percentages must be between 0 and 100")
		return
	}

	if err := charges.Update(r.Context(), h.DB, req); err != nil {
		h.Logger.Error("charges update failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update charges")
		return
	}
	response.Success(w, req)
}
