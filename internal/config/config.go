package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Speech    SpeechConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	rateLimit, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Speech: speech, Storage: storage, RateLimit: rateLimit}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	APIKey         string
	MaxUploadBytes int64
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址、访问密钥与上传限制。
func loadServerConfig() (ServerConfig, error) {
	maxUploadMB := 16
	if override, err := parseOptionalIntEnv("MAX_UPLOAD_MB"); err != nil {
		return ServerConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ServerConfig{}, fmt.Errorf("invalid MAX_UPLOAD_MB value: %d", *override)
		}
		maxUploadMB = *override
	}

	cfg := ServerConfig{
		APIKey:         strings.TrimSpace(os.Getenv("API_KEY")),
		MaxUploadBytes: int64(maxUploadMB) << 20,
		AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		cfg.Addr = port
		return cfg, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	cfg.Addr = ":" + port
	return cfg, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey              string
	AccessKey           string
	SecretKey           string
	Model               string
	BaseURL             string
	Region              string
	Temperature         *float64
	TopP                *float64
	MaxTokens           *int
	EmotionLLMEnabled   bool
	EmotionHistoryLimit int
}

// SpeechConfig 描述 Deepgram 语音识别配置
type SpeechConfig struct {
	APIKey         string
	BaseURL        string
	ASRModel       string
	ASRLanguage    string
	SmartFormat    bool
	InterimResults bool
	Timeout        int
	Enabled        bool
}

// StorageConfig 描述语音日记的存储位置。配置了 MinIO 时优先使用对象存储。
type StorageConfig struct {
	Dir           string
	MinioEndpoint string
	MinioAccess   string
	MinioSecret   string
	MinioBucket   string
	MinioUseSSL   bool
}

// MinioEnabled 表示是否配置了对象存储。
func (c StorageConfig) MinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccess != "" && c.MinioSecret != ""
}

// RateLimitConfig 描述基于 Redis 的限流配置。
type RateLimitConfig struct {
	RedisAddr      string
	RedisPassword  string
	PerMinute      int
	PerIPPerMinute int
}

// Enabled 表示是否启用限流。
func (c RateLimitConfig) Enabled() bool {
	return c.RedisAddr != "" && c.PerMinute > 0
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	emotionEnabled, err := parseBoolEnv("AI_EMOTION_LLM_ENABLED", false)
	if err != nil {
		return AIConfig{}, err
	}

	emotionHistory := 6
	if historyOverride, err := parseOptionalIntEnv("AI_EMOTION_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if historyOverride != nil {
		if *historyOverride < 1 {
			emotionHistory = 1
		} else {
			emotionHistory = *historyOverride
		}
	}

	return AIConfig{
		APIKey:              strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:           strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:           strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:               strings.TrimSpace(os.Getenv("Model")),
		BaseURL:             getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:              getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:         temperature,
		TopP:                topP,
		MaxTokens:           maxTokens,
		EmotionLLMEnabled:   emotionEnabled,
		EmotionHistoryLimit: emotionHistory,
	}, nil
}

func loadSpeechConfig() (SpeechConfig, error) {
	// 解析超时设置
	timeout, err := parseOptionalIntEnv("DEEPGRAM_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30 // 默认30秒
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	smartFormat, err := parseBoolEnv("DEEPGRAM_SMART_FORMAT", true)
	if err != nil {
		return SpeechConfig{}, err
	}

	interim, err := parseBoolEnv("DEEPGRAM_INTERIM_RESULTS", false)
	if err != nil {
		return SpeechConfig{}, err
	}

	apiKey := strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY"))

	return SpeechConfig{
		APIKey:         apiKey,
		BaseURL:        getEnvOrDefault("DEEPGRAM_BASE_URL", "https://api.deepgram.com/v1"),
		ASRModel:       getEnvOrDefault("DEEPGRAM_MODEL", "nova-2"),
		ASRLanguage:    getEnvOrDefault("DEEPGRAM_LANGUAGE", "en"),
		SmartFormat:    smartFormat,
		InterimResults: interim,
		Timeout:        timeoutSeconds,
		Enabled:        apiKey != "",
	}, nil
}

func loadStorageConfig() (StorageConfig, error) {
	useSSL, err := parseBoolEnv("MINIO_USE_SSL", false)
	if err != nil {
		return StorageConfig{}, err
	}

	return StorageConfig{
		Dir:           getEnvOrDefault("STORAGE_DIR", "data/journals"),
		MinioEndpoint: strings.TrimSpace(os.Getenv("MINIO_ENDPOINT")),
		MinioAccess:   strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY")),
		MinioSecret:   strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY")),
		MinioBucket:   getEnvOrDefault("MINIO_BUCKET", "voice-journals"),
		MinioUseSSL:   useSSL,
	}, nil
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	perMinute := 60
	if override, err := parseOptionalIntEnv("RATE_LIMIT_PER_MINUTE"); err != nil {
		return RateLimitConfig{}, err
	} else if override != nil {
		perMinute = *override
	}

	// 同一地址下可能有多个用户，默认放宽为单用户配额的 5 倍
	perIP := perMinute * 5
	if override, err := parseOptionalIntEnv("RATE_LIMIT_PER_IP_PER_MINUTE"); err != nil {
		return RateLimitConfig{}, err
	} else if override != nil {
		perIP = *override
	}

	return RateLimitConfig{
		RedisAddr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		PerMinute:      perMinute,
		PerIPPerMinute: perIP,
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
