package server

import (
	"net/http"
	"strings"

	"github.com/clipscreen/clipscreen/internal/auth"
	"github.com/clipscreen/clipscreen/internal/database"
)

// apiKeyOrJWTMiddleware accepts either credential on the analysis routes:
// if the bearer token resolves to an API key the request proceeds as that
// key's owner, otherwise the JWT middleware gets its usual say.
func apiKeyOrJWTMiddleware(db database.DBTX, jwtMiddleware func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if found {
				if userID, err := auth.LookupAPIKey(r.Context(), db, token); err == nil {
					next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(r.Context(), userID)))
					return
				}
			}
			jwtMiddleware(next).ServeHTTP(w, r)
		})
	}
}
