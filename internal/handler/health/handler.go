package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wellnessweavers/companion/pkg/apiclient"
	"github.com/wellnessweavers/companion/pkg/utils"
)

// Version 是对外报告的 API 版本
const Version = "1.0.0"

// Check 返回某个依赖的状态描述，出错时整体状态降级
type Check func(ctx context.Context) (string, error)

// Handler 健康检查处理器
type Handler struct {
	checks map[string]Check
	now    func() time.Time
}

// New 创建健康检查处理器
func New(checks map[string]Check) *Handler {
	return &Handler{checks: checks, now: time.Now}
}

// RegisterRoutes 注册健康检查路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := apiclient.HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Version:   Version,
		Services:  make(map[string]string, len(h.checks)),
	}
	for name, check := range h.checks {
		state, err := check(ctx)
		if err != nil {
			resp.Status = "degraded"
			state = "error: " + err.Error()
		}
		resp.Services[name] = state
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// Static 返回固定状态的检查
func Static(state string) Check {
	return func(context.Context) (string, error) { return state, nil }
}
