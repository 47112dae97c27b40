package middleware

import (
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/wellnessweavers/companion/pkg/utils"
)

const defaultRetryAfter = 60 * time.Second

// Limiter 判断请求是否还有配额：每个用户一份，每个客户端地址另有一份上限。
type Limiter interface {
	AllowUser(key string) bool
	AllowIP(key string) bool
}

type retryAfterer interface {
	RetryAfter() time.Duration
}

// RateLimit 按路径限流：先检查客户端 IP 的总配额，再检查用户（匿名时按 IP）的配额，
// 超出任一配额返回 429。X-User-Id 由客户端提供，换用不同的值也绕不过 IP 上限。
// limiter 为 nil 时不限流。
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || r.URL.Path == HealthPath {
				next.ServeHTTP(w, r)
				return
			}
			ip := ClientIP(r)
			who := UserIDFromContext(r.Context())
			if who == AnonymousUser {
				who = "ip:" + ip
			}
			if limiter.AllowIP(r.URL.Path+"|"+ip) && limiter.AllowUser(r.URL.Path+"|"+who) {
				next.ServeHTTP(w, r)
				return
			}

			retry := defaultRetryAfter
			if ra, ok := limiter.(retryAfterer); ok {
				if d := ra.RetryAfter(); d > 0 {
					retry = d
				}
			}
			log.Printf("[ratelimit] blocked %s %s for %s", r.Method, r.URL.Path, who)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			utils.RespondError(w, http.StatusTooManyRequests, "too many requests, please slow down")
		})
	}
}
