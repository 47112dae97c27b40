package mood

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wellnessweavers/companion/internal/middleware"
	"github.com/wellnessweavers/companion/internal/model/mood"
	moodservice "github.com/wellnessweavers/companion/internal/service/mood"
	"github.com/wellnessweavers/companion/pkg/apiclient"
	"github.com/wellnessweavers/companion/pkg/utils"
)

// Service 抽象心情记录业务，便于测试
type Service interface {
	Log(ctx context.Context, userID string, in moodservice.LogInput) (mood.Entry, error)
	History(ctx context.Context, userID string, days, limit int) ([]mood.Entry, error)
}

// Handler 心情记录的HTTP处理器
type Handler struct {
	moods Service
}

// New 创建心情处理器
func New(moods Service) *Handler {
	return &Handler{moods: moods}
}

// RegisterRoutes 注册心情相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/mood", h.handleLog)
	r.Post("/moods", h.handleLog)
	r.Get("/moods", h.handleHistory)
}

// handleLog 记录一次心情
func (h *Handler) handleLog(w http.ResponseWriter, r *http.Request) {
	var payload apiclient.MoodRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	entry, err := h.moods.Log(r.Context(), userID, moodservice.LogInput{
		Mood:        payload.Mood,
		Notes:       payload.Notes,
		Intensity:   payload.Intensity,
		EnergyLevel: payload.EnergyLevel,
		StressLevel: payload.StressLevel,
		Activities:  payload.Activities,
	})
	if err != nil {
		if isValidationError(err) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[mood] log failed for user=%s: %v", userID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to log mood")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, apiclient.MoodResponse{
		Success:      true,
		MoodID:       entry.ID,
		PointsEarned: entry.PointsEarned,
		Sentiment:    entry.Sentiment,
	})
}

// handleHistory 查询心情历史，支持 days 与 limit 参数
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	days, err := parsePositiveQuery(r, "days")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parsePositiveQuery(r, "limit")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	entries, err := h.moods.History(r.Context(), userID, days, limit)
	if err != nil {
		log.Printf("[mood] history failed for user=%s: %v", userID, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load mood history")
		return
	}

	out := apiclient.MoodHistoryResponse{Moods: make([]apiclient.MoodEntry, 0, len(entries))}
	for _, e := range entries {
		out.Moods = append(out.Moods, apiclient.MoodEntry{
			ID:          e.ID,
			Mood:        e.Mood,
			Score:       e.Score,
			Notes:       e.Notes,
			Intensity:   e.Intensity,
			EnergyLevel: e.EnergyLevel,
			StressLevel: e.StressLevel,
			Activities:  e.Activities,
			Sentiment:   e.Sentiment,
			CreatedAt:   e.CreatedAt,
		})
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

func isValidationError(err error) bool {
	return errors.Is(err, moodservice.ErrMoodRequired) ||
		errors.Is(err, moodservice.ErrUnknownMood) ||
		errors.Is(err, moodservice.ErrLevelRange) ||
		errors.Is(err, moodservice.ErrNotesTooLong)
}

func parsePositiveQuery(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return val, nil
}
