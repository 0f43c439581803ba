package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/api/internal/auth"
)

type contextKey string

const (
	claimsKey      contextKey = "claims"
	clientTableKey contextKey = "client_table"
)

// Authenticate validates a bearer token and stores the claims in context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, parts[1])
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthenticateOrClientMode accepts either a staff bearer token or the QR
// deep-link client mode: ?table=<int>&mode=client. The query form is
// trusted without signature or expiry and only grants access to the table
// it names; RequireTableAccess enforces the match against the path.
func AuthenticateOrClientMode(jwtSecret string) func(http.Handler) http.Handler {
	staff := Authenticate(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("mode") == "client" {
				table, err := strconv.Atoi(r.URL.Query().Get("table"))
				if err != nil || table <= 0 {
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table in client mode"})
					return
				}
				ctx := context.WithValue(r.Context(), clientTableKey, table)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			staff(next).ServeHTTP(w, r)
		})
	}
}

// RequireTableAccess restricts client-mode requests to the table named in
// their query. Staff tokens pass through for any table.
func RequireTableAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientTable, isClient := ClientTableFromContext(r.Context())
		if !isClient {
			if ClaimsFromContext(r.Context()) == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		pathTable, err := strconv.Atoi(chi.URLParam(r, "table"))
		if err != nil || pathTable != clientTable {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied for this table"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a route group on staff roles. Client mode never
// satisfies a role requirement.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		})
	}
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// ClientTableFromContext returns the table granted by client mode.
func ClientTableFromContext(ctx context.Context) (int, bool) {
	table, ok := ctx.Value(clientTableKey).(int)
	return table, ok
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
