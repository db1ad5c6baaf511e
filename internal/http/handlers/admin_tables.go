package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cassa-pos-services/internal/auth"
	"cassa-pos-services/pkg/response"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type tableAccount struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	TableNumber *int32     `json:"tableNumber"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

func (h *Handler) AdminTablesList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(r.Context(), `
		select id, username, table_number, created_at, last_login_at
		from accounts where role = $1
		order by table_number
	`, auth.RoleTable)
	if err != nil {
		h.Logger.Error("tables list failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load tables")
		return
	}
	defer rows.Close()

	accounts := make([]tableAccount, 0)
	for rows.Next() {
		var a tableAccount
		if err := rows.Scan(&a.ID, &a.Username, &a.TableNumber, &a.CreatedAt, &a.LastLoginAt); err != nil {
			h.Logger.Error("tables scan failed", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load tables")
			return
		}
		accounts = append(accounts, a)
	}
	response.Success(w, accounts)
}

type tableCreateRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	TableNumber int32  `json:"tableNumber"`
}

func (h *Handler) AdminTableCreate(w http.ResponseWriter, r *http.Request) {
	var req tableCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || req.TableNumber <= 0 {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Username, password and table number required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Logger.Error("password hash failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create table account")
		return
	}

	var id int64
	err = h.DB.QueryRow(r.Context(), `
		insert into accounts (username, password_hash, role, table_number)
		values ($1, $2, $3, $4)
		returning id
	`, req.Username, string(hash), auth.RoleTable, req.TableNumber).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			response.Error(w, http.StatusConflict, "USERNAME_TAKEN", "Username already exists")
			return
		}
		h.Logger.Error("table account create failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create table account")
		return
	}
	response.Created(w, map[string]any{"id": id})
}

func (h *Handler) AdminTableDelete(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid account id")
		return
	}

	tag, err := h.DB.Exec(r.Context(), `
		delete from accounts where id = $1 and role = $2
	`, id, auth.RoleTable)
	if err != nil {
		h.Logger.Error("table account delete failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete table account")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Table account not found")
		return
	}
	response.Success(w, map[string]any{"id": id, "deleted": true})
}

type passwordResetRequest struct {
	Password string `json:"password"`
}

func (h *Handler) AdminTableResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid account id")
		return
	}
	var req passwordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Password required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Logger.Error("password hash failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset password")
		return
	}

	tag, err := h.DB.Exec(r.Context(), `
		update accounts set password_hash = $2 where id = $1 and role = $3
	`, id, string(hash), auth.RoleTable)
	if err != nil {
		h.Logger.Error("password reset failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset password")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Table account not found")
		return
	}
	response.Success(w, map[string]any{"id": id, "updated": true})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
