package chat

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wellnessweavers/companion/internal/middleware"
	"github.com/wellnessweavers/companion/internal/model/chat"
	chatService "github.com/wellnessweavers/companion/internal/service/chat"
	"github.com/wellnessweavers/companion/pkg/apiclient"
	"github.com/wellnessweavers/companion/pkg/utils"
)

// Companion 抽象对话业务，便于测试
type Companion interface {
	Respond(ctx context.Context, userID, sessionID, personaID, message string) (chatService.Exchange, error)
	Transcript(ctx context.Context, userID, sessionID string) (chat.Session, []chat.Message, error)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	companion Companion
}

// New 创建聊天处理器
func New(companion Companion) *Handler {
	return &Handler{companion: companion}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleMessage)
	r.Post("/chat/message", h.handleMessage)
	r.Get("/chat/sessions/{sessionID}", h.handleTranscript)
}

// handleMessage 接收用户消息并返回陪伴回复
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload apiclient.ChatRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	exchange, err := h.companion.Respond(r.Context(), userID, payload.SessionID, payload.Persona, payload.Message)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("[chat] respond failed for user=%s: %v", userID, err)
			utils.RespondError(w, status, "failed to generate a reply")
			return
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, apiclient.ChatResponse{
		Response:  exchange.Reply.Content,
		SessionID: exchange.Session.ID,
		Emotion:   string(exchange.Guidance.Decision.Emotion),
	})
}

// handleTranscript 返回会话及其消息
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userID := middleware.UserIDFromContext(r.Context())

	session, messages, err := h.companion.Transcript(r.Context(), userID, sessionID)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("[chat] transcript failed for session=%s: %v", sessionID, err)
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session":  session,
		"messages": messages,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrMessageRequired), errors.Is(err, chatService.ErrUnknownPersona):
		return http.StatusBadRequest
	case errors.Is(err, chatService.ErrSessionForbidden):
		return http.StatusForbidden
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
