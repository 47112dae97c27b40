package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"

	"github.com/wellnessweavers/companion/internal/config"
	"github.com/wellnessweavers/companion/internal/handler"
	"github.com/wellnessweavers/companion/internal/handler/health"
	"github.com/wellnessweavers/companion/internal/model/journal"
	moodModel "github.com/wellnessweavers/companion/internal/model/mood"
	"github.com/wellnessweavers/companion/internal/model/persona"
	speechModel "github.com/wellnessweavers/companion/internal/model/speech"
	"github.com/wellnessweavers/companion/internal/ratelimit"
	"github.com/wellnessweavers/companion/internal/service/ai"
	"github.com/wellnessweavers/companion/internal/service/chat"
	emotionservice "github.com/wellnessweavers/companion/internal/service/emotion"
	journalservice "github.com/wellnessweavers/companion/internal/service/journal"
	moodservice "github.com/wellnessweavers/companion/internal/service/mood"
	"github.com/wellnessweavers/companion/internal/service/speech"
	"github.com/wellnessweavers/companion/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	checks := map[string]health.Check{}

	personaStore := persona.NewMemoryStore(persona.Seed())
	chatService := chat.NewService()
	moodService := moodservice.NewService(moodModel.NewMemoryStore())

	// Initialize AI service; without it replies come from the fallback set
	var responder ai.Responder
	var chatModel model.ChatModel
	if cfg.AI.Enabled() {
		chatModel, err = cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Printf("warning: failed to create chat model: %v", err)
			chatModel = nil
		} else if aiService, err := ai.NewService(ctx, chatModel); err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			chatModel = nil
		} else {
			responder = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, companion replies use the fallback set")
	}
	if responder != nil {
		checks["ai"] = health.Static("llm")
	} else {
		checks["ai"] = health.Static("fallback")
	}

	// Initialize emotion analysis service (LLM-based guidance with fallback)
	emotionCfg := emotionservice.Config{
		Enabled:      cfg.AI.EmotionLLMEnabled,
		HistoryLimit: cfg.AI.EmotionHistoryLimit,
	}
	emotionSvc, err := emotionservice.NewService(ctx, chatModel, emotionCfg)
	if err != nil {
		log.Printf("warning: failed to initialize emotion service: %v", err)
		emotionSvc = nil
	} else if emotionSvc.Enabled() {
		log.Println("Emotion classifier service enabled")
	} else if emotionCfg.Enabled {
		log.Println("Emotion classifier requested but chat model unavailable, falling back to heuristics")
	}

	companion := chat.NewCompanion(chatService, personaStore, emotionSvc, responder)

	// Initialize Speech service
	speechService := speech.NewService(&speechModel.SpeechConfig{
		APIKey:         cfg.Speech.APIKey,
		BaseURL:        cfg.Speech.BaseURL,
		ASRModel:       cfg.Speech.ASRModel,
		ASRLanguage:    cfg.Speech.ASRLanguage,
		SmartFormat:    cfg.Speech.SmartFormat,
		InterimResults: cfg.Speech.InterimResults,
		Timeout:        cfg.Speech.Timeout,
	})
	if speechService.Enabled() {
		log.Println("Speech service initialized successfully")
		checks["speech"] = health.Static("deepgram")
	} else {
		log.Println("DEEPGRAM_API_KEY not configured, voice journals are stored without transcription")
		checks["speech"] = health.Static("disabled")
	}

	objects, err := newObjectStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize recording storage: %v", err)
	}
	checks["storage"] = health.Static(objects.Name())
	journalService := journalservice.NewService(objects, journal.NewMemoryStore(), speechService)

	deps := handler.Deps{
		Personas:       personaStore,
		Moods:          moodService,
		Companion:      companion,
		Journals:       journalService,
		Checks:         checks,
		APIKey:         cfg.Server.APIKey,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}

	if cfg.RateLimit.Enabled() {
		limiter, err := ratelimit.New(ratelimit.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			Window:   time.Minute,
			PerUser:  cfg.RateLimit.PerMinute,
			PerIP:    cfg.RateLimit.PerIPPerMinute,
		})
		if err != nil {
			log.Fatalf("failed to initialize rate limiter: %v", err)
		}
		defer limiter.Close()
		deps.Limiter = limiter
		checks["ratelimit"] = func(ctx context.Context) (string, error) {
			if err := limiter.Ping(ctx); err != nil {
				return "", err
			}
			return "redis", nil
		}
		log.Printf("Rate limiting enabled: %d requests/minute per user, %d per address", cfg.RateLimit.PerMinute, cfg.RateLimit.PerIPPerMinute)
	}

	router := handler.NewRouter(deps)

	startServer(ctx, cfg.Server, router)
}

func newObjectStore(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStore, error) {
	if cfg.MinioEnabled() {
		store, err := storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccess,
			SecretKey: cfg.MinioSecret,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("Voice journals stored in MinIO bucket %s", store.Bucket())
		return store, nil
	}
	store, err := storage.NewFileStore(cfg.Dir)
	if err != nil {
		return nil, err
	}
	log.Printf("Voice journals stored under %s", cfg.Dir)
	return store, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Companion API listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
