package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wellnessweavers/companion/internal/model/speech"
)

const (
	defaultDeepgramBaseURL = "https://api.deepgram.com/v1"
	defaultDeepgramModel   = "nova-2"

	// 16kHz, 16bit, mono, 200ms = 6400 bytes
	audioChunkSize = 6400
)

// DeepgramClient Deepgram 流式识别 WebSocket 客户端
type DeepgramClient struct {
	config *speech.SpeechConfig
	dialer *websocket.Dialer
}

type deepgramResponse struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	IsFinal     bool    `json:"is_final"`
	SpeechFinal bool    `json:"speech_final"`
	Start       float64 `json:"start"`
	Duration    float64 `json:"duration"`
	RequestID   string  `json:"request_id"`

	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

// NewDeepgramClient 创建 Deepgram 客户端
func NewDeepgramClient(config *speech.SpeechConfig) *DeepgramClient {
	timeout := 30 * time.Second
	if config != nil && config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}
	return &DeepgramClient{
		config: config,
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
		},
	}
}

// TranscribeAudio 通过 WebSocket 发送整段录音并汇总最终结果
func (c *DeepgramClient) TranscribeAudio(ctx context.Context, req *speech.ASRRequest) (*speech.ASRResponse, error) {
	if c.config == nil || strings.TrimSpace(c.config.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if req == nil || req.AudioData == nil {
		return nil, errors.New("no audio data to send")
	}

	audio, err := io.ReadAll(req.AudioData)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("no audio data to send")
	}

	wsURL, err := buildListenURL(c.config, req)
	if err != nil {
		return nil, err
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.config.Timeout)*time.Second)
		defer cancel()
	}

	header := http.Header{}
	header.Set("Authorization", "Token "+c.config.APIKey)

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect to Deepgram websocket (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}
	defer conn.Close()

	if reqID := resp.Header.Get("dg-request-id"); reqID != "" {
		log.Printf("[ASR] connected with request id %s", reqID)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 关闭连接以打断阻塞中的读写
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	respCh := make(chan *speech.ASRResponse, 1)
	recvErrCh := make(chan error, 1)
	go func() {
		res, err := receiveResults(conn, req.SessionID)
		if err != nil {
			recvErrCh <- err
			return
		}
		respCh <- res
	}()

	sendErrCh := make(chan error, 1)
	go func() {
		sendErrCh <- sendAudio(conn, audio)
	}()

	for {
		select {
		case err := <-sendErrCh:
			if err != nil {
				return nil, fmt.Errorf("failed to send audio data: %w", err)
			}
			sendErrCh = nil
		case res := <-respCh:
			return res, nil
		case err := <-recvErrCh:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// sendAudio 分包发送音频，最后发送 CloseStream 让服务端刷新结果
func sendAudio(conn *websocket.Conn, audio []byte) error {
	for i := 0; i < len(audio); i += audioChunkSize {
		end := i + audioChunkSize
		if end > len(audio) {
			end = len(audio)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, audio[i:end]); err != nil {
			return fmt.Errorf("failed to send audio chunk: %w", err)
		}
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}

// receiveResults 读取直到服务端关闭连接，拼接所有最终片段
func receiveResults(conn *websocket.Conn, sessionID string) (*speech.ASRResponse, error) {
	var (
		segments   []string
		confidence float64
		scored     int
		durationS  float64
		requestID  string
	)

	finish := func() *speech.ASRResponse {
		text := strings.Join(segments, " ")
		if text == "" {
			log.Printf("[ASR] empty transcript for session %s", sessionID)
		}
		avg := 0.0
		if scored > 0 {
			avg = confidence / float64(scored)
		}
		return &speech.ASRResponse{
			SessionID:  sessionID,
			Text:       text,
			Confidence: avg,
			Duration:   int64(durationS * 1000),
			RequestID:  requestID,
			CreatedAt:  time.Now(),
		}
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return finish(), nil
			}
			return nil, fmt.Errorf("failed to read ASR response: %w", err)
		}

		var msg deepgramResponse
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("[ASR] failed to unmarshal response: %v", err)
			continue
		}

		switch {
		case strings.EqualFold(msg.Type, "Error"):
			message := strings.TrimSpace(msg.Message)
			if message == "" {
				message = "deepgram returned an unknown error"
			}
			return nil, fmt.Errorf("ASR error: %s", message)
		case strings.EqualFold(msg.Type, "Metadata"):
			if msg.RequestID != "" {
				requestID = msg.RequestID
			}
			// Metadata 是 CloseStream 之后的最后一条消息
			return finish(), nil
		}

		if end := msg.Start + msg.Duration; end > durationS {
			durationS = end
		}
		if !msg.IsFinal || len(msg.Channel.Alternatives) == 0 {
			continue
		}
		alt := msg.Channel.Alternatives[0]
		if text := strings.TrimSpace(alt.Transcript); text != "" {
			segments = append(segments, text)
			confidence += alt.Confidence
			scored++
		}
	}
}

func buildListenURL(cfg *speech.SpeechConfig, req *speech.ASRRequest) (string, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultDeepgramBaseURL
	}
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	model := cfg.ASRModel
	if model == "" {
		model = defaultDeepgramModel
	}

	query := listenURL.Query()
	query.Set("model", model)
	query.Set("smart_format", strconv.FormatBool(cfg.SmartFormat))
	query.Set("interim_results", strconv.FormatBool(cfg.InterimResults))

	// 容器格式（wav/mp3/webm）由服务端自动识别，裸 PCM 需要声明编码
	if strings.EqualFold(req.Format, "pcm") {
		sampleRate := req.SampleRate
		if sampleRate <= 0 {
			sampleRate = 16000
		}
		channels := req.Channels
		if channels <= 0 {
			channels = 1
		}
		query.Set("encoding", "linear16")
		query.Set("sample_rate", strconv.Itoa(sampleRate))
		query.Set("channels", strconv.Itoa(channels))
	}

	language := req.Language
	if language == "" {
		language = cfg.ASRLanguage
	}
	if language != "" {
		query.Set("language", language)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
