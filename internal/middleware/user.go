package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// AnonymousUser 是未携带 X-User-Id 时的用户标识。
const AnonymousUser = "anonymous"

const maxUserIDLength = 128

type userIDKey struct{}

// UserID 将 X-User-Id 头写入请求上下文。
func UserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-User-Id"))
		if id == "" || len(id) > maxUserIDLength {
			id = AnonymousUser
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

// WithUserID 返回携带用户标识的上下文。
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromContext 读取用户标识，缺失时返回 AnonymousUser。
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey{}).(string); ok && id != "" {
		return id
	}
	return AnonymousUser
}

// ClientIP 依次读取 X-Forwarded-For、X-Real-IP 与 RemoteAddr。
func ClientIP(r *http.Request) string {
	if xfwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xfwd != "" {
		parts := strings.Split(xfwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
