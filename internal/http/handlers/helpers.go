package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cassa-pos-services/internal/middleware"
	"cassa-pos-services/pkg/response"

	"github.com/go-chi/chi/v5"
)

var errMissingParam = errors.New("missing param")

func readPathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func readPathInt64(r *http.Request, key string) (int64, error) {
	value := readPathString(r, key)
	if value == "" {
		return 0, errMissingParam
	}
	var out int64
	_, err := fmt.Sscan(value, &out)
	return out, err
}

// tableContext pulls the authenticated table and its visit token out of a
// table-scoped request. Writes the error response itself on failure.
func tableContext(w http.ResponseWriter, r *http.Request) (tableNumber int32, visitToken string, ok bool) {
	authCtx, found := middleware.GetAuthContext(r.Context())
	if !found || authCtx.TableNumber == nil {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Table context required")
		return 0, "", false
	}
	visitToken = strings.TrimSpace(r.Header.Get("X-Visit-Token"))
	if visitToken == "" {
		response.Error(w, http.StatusBadRequest, "VISIT_TOKEN_REQUIRED", "X-Visit-Token header required")
		return 0, "", false
	}
	return *authCtx.TableNumber, visitToken, true
}
