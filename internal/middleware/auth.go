package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"cassa-pos-services/internal/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	AccountID   int64
	Username    string
	Role        auth.Role
	TableNumber *int32
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	writeAuthErrorDebug(w, status, message, "")
}

func writeAuthErrorDebug(w http.ResponseWriter, status int, message string, debug string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload := map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	}

	if os.Getenv("APP_ENV") == "development" && strings.TrimSpace(debug) != "" {
		payload["debug"] = debug
	}

	_ = json.NewEncoder(w).Encode(payload)
}

// TableAuth authenticates a table terminal. The token's table number is
// re-read from the accounts row on every request so a reassigned or disabled
// terminal loses access without waiting for expiry.
func TableAuth(db *pgxpool.Pool, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				writeAuthErrorDebug(w, http.StatusUnauthorized, "Authorization token required", err.Error())
				return
			}
			if claims.Role != auth.RoleTable {
				writeAuthError(w, http.StatusForbidden, "Table access required")
				return
			}

			var tableNumber *int32
			err = db.QueryRow(r.Context(), `
				select table_number from accounts where id = $1 and role = $2
			`, claims.AccountID, auth.RoleTable).Scan(&tableNumber)
			if err != nil || tableNumber == nil {
				writeAuthError(w, http.StatusUnauthorized, "Table account not found")
				return
			}

			authCtx := &AuthContext{
				AccountID:   claims.AccountID,
				Username:    claims.Username,
				Role:        claims.Role,
				TableNumber: tableNumber,
			}
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), authCtx)))
		})
	}
}

// StaffAuth authenticates kitchen and admin accounts, restricted to the
// given roles.
func StaffAuth(db *pgxpool.Pool, jwtSecret string, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				writeAuthErrorDebug(w, http.StatusUnauthorized, "Authorization token required", err.Error())
				return
			}

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				writeAuthError(w, http.StatusForbidden, "Staff access required")
				return
			}

			var exists bool
			err = db.QueryRow(r.Context(), `
				select exists (select 1 from accounts where id = $1 and role = $2)
			`, claims.AccountID, claims.Role).Scan(&exists)
			if err != nil || !exists {
				writeAuthError(w, http.StatusUnauthorized, "Account not found")
				return
			}

			authCtx := &AuthContext{
				AccountID: claims.AccountID,
				Username:  claims.Username,
				Role:      claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), authCtx)))
		})
	}
}
