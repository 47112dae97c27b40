package speech

import (
	"bytes"
	"context"
	"errors"

	"github.com/wellnessweavers/companion/internal/model/speech"
)

// ErrNotConfigured is returned when no transcription provider is set up.
var ErrNotConfigured = errors.New("speech: transcription is not configured")

// Transcriber turns recorded audio into text.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, req *speech.ASRRequest) (*speech.ASRResponse, error)
}

// Service 语音服务核心业务逻辑
type Service struct {
	config *speech.SpeechConfig
	asr    Transcriber
}

// NewService 创建语音服务实例，默认使用 Deepgram
func NewService(config *speech.SpeechConfig) *Service {
	return &Service{
		config: config,
		asr:    NewDeepgramClient(config),
	}
}

// NewServiceWithTranscriber 使用自定义识别实现，便于测试
func NewServiceWithTranscriber(config *speech.SpeechConfig, asr Transcriber) *Service {
	return &Service{config: config, asr: asr}
}

// Enabled 表示是否可以进行语音识别
func (s *Service) Enabled() bool {
	return s != nil && s.asr != nil && s.config != nil && s.config.APIKey != ""
}

// TranscribeAudio 语音转文字
func (s *Service) TranscribeAudio(ctx context.Context, req *speech.ASRRequest) (*speech.ASRResponse, error) {
	if !s.Enabled() {
		return nil, ErrNotConfigured
	}
	if req.Language == "" {
		req.Language = s.config.ASRLanguage
	}
	return s.asr.TranscribeAudio(ctx, req)
}

// TranscribeBuffer 语音转文字（使用字节数组）
func (s *Service) TranscribeBuffer(ctx context.Context, sessionID string, audioData []byte, format, language string) (*speech.ASRResponse, error) {
	req := &speech.ASRRequest{
		SessionID: sessionID,
		AudioData: bytes.NewReader(audioData),
		Format:    format,
		Language:  language,
	}
	return s.TranscribeAudio(ctx, req)
}
