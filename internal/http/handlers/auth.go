package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cassa-pos-services/internal/auth"
	"cassa-pos-services/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges account credentials for an access token. Table accounts
// get their table number embedded in the claims; staff accounts carry only
// the role.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Username and password required")
		return
	}

	var (
		accountID    int64
		passwordHash string
		role         auth.Role
		tableNumber  *int32
	)
	err := h.DB.QueryRow(ctx, `
		select id, password_hash, role, table_number
		from accounts where username = $1
	`, req.Username).Scan(&accountID, &passwordHash, &role, &tableNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		return
	}
	if err != nil {
		h.Logger.Error("login lookup failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		return
	}

	ttl := time.Duration(h.Config.JWTExpirySeconds) * time.Second
	token, err := auth.IssueAccessToken(h.Config.JWTSecret, accountID, req.Username, role, tableNumber, ttl)
	if err != nil {
		h.Logger.Error("token issue failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		return
	}

	if _, err := h.DB.Exec(ctx, `update accounts set last_login_at = now() where id = $1`, accountID); err != nil {
		h.Logger.Warn("last login stamp failed", zap.Error(err))
	}

	response.Success(w, map[string]any{
		"token":       token,
		"role":        role,
		"tableNumber": tableNumber,
		"expiresIn":   h.Config.JWTExpirySeconds,
	})
}
