package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cassa-pos-services/internal/staff"
	"cassa-pos-services/pkg/response"

	"go.uber.org/zap"
)

func (h *Handler) AdminStaffList(w http.ResponseWriter, r *http.Request) {
	view := strings.TrimSpace(r.URL.Query().Get("view"))
	employees, err := staff.List(r.Context(), h.DB, view)
	if err != nil {
		h.Logger.Error("staff list failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load staff")
		return
	}
	response.Success(w, employees)
}

type staffRequest struct {
	Name           string  `json:"name"`
	Phone          *string `json:"phone"`
	DateOfBirth    string  `json:"dateOfBirth"`
	Staff          string  `json:"staff"`
	EmploymentType string  `json:"employmentType"`
}

func (req *staffRequest) validate() (time.Time, string, bool) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return time.Time{}, "Name required", false
	}
	if !staff.ValidStaff(req.Staff) {
		return time.Time{}, "Staff must be Dining or Kitchen", false
	}
	if !staff.ValidEmploymentType(req.EmploymentType) {
		return time.Time{}, "Employment type must be Full-Time or Part-Time", false
	}
	dob, err := time.Parse("2006-01-02", strings.TrimSpace(req.DateOfBirth))
	if err != nil {
		return time.Time{}, "Date of birth must be YYYY-MM-DD", false
	}
	return dob, "", true
}

func (h *Handler) AdminStaffCreate(w http.ResponseWriter, r *http.Request) {
	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	dob, msg, ok := req.validate()
	if !ok {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg)
		return
	}

	employee, err := staff.Create(r.Context(), h.DB, req.Name, req.Phone, dob, req.Staff, req.EmploymentType)
	if err != nil {
		h.Logger.Error("staff create failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create employee")
		return
	}
	response.Created(w, employee)
}

func (h *Handler) AdminStaffUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid employee id")
		return
	}
	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	dob, msg, ok := req.validate()
	if !ok {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", msg)
		return
	}

	employee, err := staff.Update(r.Context(), h.DB, id, req.Name, req.Phone, dob, req.Staff, req.EmploymentType)
	if errors.Is(err, staff.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "Employee not found")
		return
	}
	if err != nil {
		h.Logger.Error("staff update failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update employee")
		return
	}
	response.Success(w, employee)
}

func (h *Handler) AdminStaffToggle(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid employee id")
		return
	}

	employee, err := staff.ToggleActive(r.Context(), h.DB, id)
	if errors.Is(err, staff.ErrNotFound) {
		response.Error(w, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "Employee not found")
		return
	}
	if err != nil {
		h.Logger.Error("staff toggle failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update employee")
		return
	}
	response.Success(w, employee)
}
