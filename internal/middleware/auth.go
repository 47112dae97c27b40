package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/wellnessweavers/companion/pkg/utils"
)

// HealthPath 不需要鉴权。
const HealthPath = "/api/health"

// APIKey 要求请求携带 X-API-Key 或 Bearer 令牌，key 为空时不做校验。
func APIKey(key string) func(http.Handler) http.Handler {
	key = strings.TrimSpace(key)
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == HealthPath || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			provided := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if provided == "" {
				provided, _ = BearerToken(r)
			}
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				log.Printf("[auth] rejected %s %s from %s", r.Method, r.URL.Path, ClientIP(r))
				utils.RespondError(w, http.StatusUnauthorized, "invalid or missing API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken 读取 Authorization: Bearer 头。
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
