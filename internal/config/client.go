package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClientConfig 是 companion 命令行的配置文件结构。
type ClientConfig struct {
	BaseURL              string      `yaml:"baseURL"`
	Token                string      `yaml:"token,omitempty"`
	UserID               string      `yaml:"userId,omitempty"`
	Persona              string      `yaml:"persona,omitempty"`
	Language             string      `yaml:"language,omitempty"`
	TimeoutSeconds       int         `yaml:"timeoutSeconds,omitempty"`
	UploadTimeoutSeconds int         `yaml:"uploadTimeoutSeconds,omitempty"`
	Audio                AudioConfig `yaml:"audio"`
}

// AudioConfig 描述录音设备参数，传给 ffmpeg。
type AudioConfig struct {
	InputFormat string `yaml:"inputFormat"`
	Device      string `yaml:"device"`
	SampleRate  int    `yaml:"sampleRate"`
	Channels    int    `yaml:"channels"`
}

// DefaultClientConfig 返回未配置时使用的默认值。
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:              "http://localhost:8080",
		TimeoutSeconds:       15,
		UploadTimeoutSeconds: 60,
		Audio: AudioConfig{
			InputFormat: "pulse",
			Device:      "default",
			SampleRate:  16000,
			Channels:    1,
		},
	}
}

// DefaultClientConfigPath 返回 ~/.config/companion/config.yaml。
func DefaultClientConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "companion.yaml"
	}
	return filepath.Join(dir, "companion", "config.yaml")
}

// LoadClient 读取配置文件，文件不存在时使用默认值。环境变量优先于文件。
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	if path == "" {
		path = DefaultClientConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if v := os.Getenv("COMPANION_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("COMPANION_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("COMPANION_USER_ID"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("COMPANION_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}

	if err := validateClientConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveClient 写回配置文件，用于保存登录令牌等。
func SaveClient(path string, cfg ClientConfig) error {
	if path == "" {
		path = DefaultClientConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func validateClientConfig(cfg ClientConfig) error {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return fmt.Errorf("baseURL is required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("baseURL must start with http:// or https://, got %q", base)
	}
	if cfg.TimeoutSeconds < 0 || cfg.UploadTimeoutSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}
