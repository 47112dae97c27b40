// Package apiclient is the single request helper every interaction component
// uses to reach the companion API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wellnessweavers/companion/internal/interaction/toast"
)

const (
	// GenericErrorMessage is shown when a failure carries no usable message.
	GenericErrorMessage = "An error occurred. Please try again."

	DefaultTimeout = 15 * time.Second
	UploadTimeout  = 60 * time.Second
)

// Client calls the companion API over HTTP.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
	token        string
	userID       string
	notifier     toast.Sink
}

// APIError represents a failed request, remote or transport.
type APIError struct {
	// Status is 0 for transport failures.
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Option configures a Client.
type Option func(*Client)

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithUserID sets the X-User-Id header.
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = strings.TrimSpace(id) }
}

// WithNotifier routes failures to a toast sink.
func WithNotifier(n toast.Sink) Option {
	return func(c *Client) { c.notifier = n }
}

// WithTimeout overrides the timeout of JSON requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUploadTimeout overrides the timeout of voice uploads.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.uploadClient.Timeout = d
		}
	}
}

// WithTransport swaps the round tripper of both underlying clients.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
		c.uploadClient.Transport = rt
	}
}

// NewClient constructs a companion API client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		uploadClient: &http.Client{Timeout: UploadTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.postJSON(ctx, "/api/auth/login", LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogMood records a mood entry.
func (c *Client) LogMood(ctx context.Context, req MoodRequest) (*MoodResponse, error) {
	var out MoodResponse
	if err := c.postJSON(ctx, "/api/mood", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MoodHistory lists recent mood entries. Zero values use the server defaults.
func (c *Client) MoodHistory(ctx context.Context, days, limit int) (*MoodHistoryResponse, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/moods"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, c.fail(&APIError{Message: GenericErrorMessage, Err: err})
	}
	var out MoodHistoryResponse
	if err := c.do(c.httpClient, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendChat sends one chat message and returns the companion's reply.
func (c *Client) SendChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.postJSON(ctx, "/api/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadVoiceJournal posts a recording as multipart field "audio".
func (c *Client) UploadVoiceJournal(ctx context.Context, up VoiceUpload) (*VoiceJournalResponse, error) {
	filename := up.Filename
	if filename == "" {
		filename = "recording.wav"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return nil, c.fail(&APIError{Message: GenericErrorMessage, Err: err})
	}
	if _, err := part.Write(up.Audio); err != nil {
		return nil, c.fail(&APIError{Message: GenericErrorMessage, Err: err})
	}
	if up.Language != "" {
		if err := writer.WriteField("language", up.Language); err != nil {
			return nil, c.fail(&APIError{Message: GenericErrorMessage, Err: err})
		}
	}
	if err := writer.Close(); err != nil {
		return nil, c.fail(&APIError{Message: GenericErrorMessage, Err: err})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/voice-journal", &body)
	if err != nil {
		return nil, c.fail(&APIError{Message: GenericErrorMessage, Err: err})
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out VoiceJournalResponse
	if err := c.do(c.uploadClient, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports the server status.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, c.fail(&APIError{Message: GenericErrorMessage, Err: err})
	}
	var out HealthResponse
	if err := c.do(c.httpClient, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return c.fail(&APIError{Message: GenericErrorMessage, Err: err})
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return c.fail(&APIError{Message: GenericErrorMessage, Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(c.httpClient, req, out)
}

// do sends req with the standard headers. Every failure is shown as a
// danger toast and returned as *APIError.
func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set("X-User-Id", c.userID)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return c.fail(&APIError{Message: GenericErrorMessage, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&errResp)
		msg := strings.TrimSpace(errResp.Error)
		if msg == "" {
			msg = strings.TrimSpace(errResp.Message)
		}
		if msg == "" {
			msg = GenericErrorMessage
		}
		return c.fail(&APIError{Status: resp.StatusCode, Message: msg})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return c.fail(&APIError{Status: resp.StatusCode, Message: GenericErrorMessage, Err: fmt.Errorf("decode response: %w", err)})
	}
	return nil
}

func (c *Client) fail(err *APIError) error {
	if c.notifier != nil {
		c.notifier.Notify(err.Message, toast.Danger)
	}
	return err
}
