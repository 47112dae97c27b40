package voice

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wellnessweavers/companion/internal/middleware"
	"github.com/wellnessweavers/companion/internal/model/journal"
	journalservice "github.com/wellnessweavers/companion/internal/service/journal"
	"github.com/wellnessweavers/companion/pkg/apiclient"
	"github.com/wellnessweavers/companion/pkg/utils"
)

const (
	defaultMaxUploadBytes = 16 << 20
	// multipart 头部与其他字段的额外开销
	formOverheadBytes = 1 << 20
)

// JournalService 抽象语音日记业务，便于测试与替换实现
type JournalService interface {
	Save(ctx context.Context, userID string, up journalservice.Upload) (journal.Entry, error)
	Get(ctx context.Context, userID, id string) (journal.Entry, string, error)
}

// Handler 语音日记的HTTP处理器
type Handler struct {
	journals       JournalService
	maxUploadBytes int64
}

// New 创建语音日记处理器，maxUploadBytes <= 0 时使用 16MB
func New(journals JournalService, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{journals: journals, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes 注册语音日记相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/voice-journal", h.handleUpload)
	r.Get("/voice-journal/{journalID}", h.handleGet)
}

// handleUpload 接收 multipart 录音（字段 audio），保存并转写
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, "audio file is too large")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		utils.RespondError(w, http.StatusRequestEntityTooLarge, "audio file is too large")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	entry, err := h.journals.Save(r.Context(), userID, journalservice.Upload{
		Data:     data,
		Filename: header.Filename,
		Language: strings.TrimSpace(r.FormValue("language")),
	})
	if err != nil {
		switch {
		case errors.Is(err, journalservice.ErrEmptyAudio), errors.Is(err, journalservice.ErrUnsupportedFormat):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[voice] save journal failed for user=%s: %v", userID, err)
			utils.RespondError(w, http.StatusInternalServerError, "failed to save voice journal")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, apiclient.VoiceJournalResponse{
		Success:       true,
		JournalID:     entry.ID,
		Transcription: entry.Transcription,
		Confidence:    entry.Confidence,
		Sentiment:     entry.Sentiment,
	})
}

// handleGet 返回日记详情，对象存储可用时附带临时播放地址
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "journalID")
	userID := middleware.UserIDFromContext(r.Context())

	entry, playbackURL, err := h.journals.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, journalservice.ErrJournalNotFound) {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("[voice] get journal %s failed: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load voice journal")
		return
	}

	body := map[string]any{"journal": entry}
	if playbackURL != "" {
		body["playback_url"] = playbackURL
	}
	utils.RespondJSON(w, http.StatusOK, body)
}
