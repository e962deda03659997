package middleware

import (
	"net/http"
	"strings"

	"travelmate/backend/logger"
	"travelmate/backend/utils"
)

// JWTMiddleware 驗證 JWT Token 並將使用者 email 放入 context
func JWTMiddleware(jwtSecret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, log, "Authorization header required")
				return
			}

			// Authorization: Bearer <token>
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				unauthorized(w, log, "Invalid Authorization header format")
				return
			}

			claims, err := utils.ParseToken(parts[1], jwtSecret)
			if err != nil {
				log.WithContext(r.Context()).WithError(err).Warn("Invalid JWT token")
				unauthorized(w, log, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithClaims(r.Context(), claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, log *logger.Logger, message string) {
	if err := utils.WriteError(w, http.StatusUnauthorized, message, ""); err != nil {
		log.Errorf("Failed to write 401 response: %v", err)
	}
}
