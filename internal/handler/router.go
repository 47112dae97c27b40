package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wellnessweavers/companion/internal/handler/chat"
	"github.com/wellnessweavers/companion/internal/handler/health"
	"github.com/wellnessweavers/companion/internal/handler/mood"
	"github.com/wellnessweavers/companion/internal/handler/persona"
	"github.com/wellnessweavers/companion/internal/handler/voice"
	middlewarePkg "github.com/wellnessweavers/companion/internal/middleware"
	personaModel "github.com/wellnessweavers/companion/internal/model/persona"
	"github.com/wellnessweavers/companion/pkg/utils"
)

// Deps 汇总路由依赖的服务
type Deps struct {
	Personas  personaModel.Store
	Moods     mood.Service
	Companion chat.Companion
	Journals  voice.JournalService
	Limiter   middlewarePkg.Limiter
	Checks    map[string]health.Check

	APIKey         string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.APIKey(deps.APIKey))
		api.Use(middlewarePkg.UserID)
		api.Use(middlewarePkg.RateLimit(deps.Limiter))

		health.New(deps.Checks).RegisterRoutes(api)

		if deps.Personas != nil {
			persona.New(deps.Personas).RegisterRoutes(api)
		}
		if deps.Moods != nil {
			mood.New(deps.Moods).RegisterRoutes(api)
		}
		if deps.Companion != nil {
			chat.New(deps.Companion).RegisterRoutes(api)
		}
		if deps.Journals != nil {
			voice.New(deps.Journals, deps.MaxUploadBytes).RegisterRoutes(api)
		} else {
			api.Post("/voice-journal", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "voice journal storage unavailable")
			})
		}
	})

	return r
}
