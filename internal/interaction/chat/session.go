// Package chat keeps the local chat transcript and exchanges messages with
// the companion.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wellnessweavers/companion/pkg/apiclient"
)

// FallbackReply is appended when the companion cannot be reached.
const FallbackReply = "I'm having trouble responding right now. Please try again later."

// Sender identifies who wrote an entry.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Entry is one line of the transcript.
type Entry struct {
	Sender    Sender
	Text      string
	Emotion   string
	Timestamp time.Time
}

// View renders transcript entries in order.
type View interface {
	Append(e Entry)
}

// Input is the message box.
type Input interface {
	Clear()
}

// Client is the remote call Send makes.
type Client interface {
	SendChat(ctx context.Context, req apiclient.ChatRequest) (*apiclient.ChatResponse, error)
}

// Option configures a Session.
type Option func(*Session)

// WithPersona selects the companion persona sent with each message.
func WithPersona(id string) Option {
	return func(s *Session) { s.persona = strings.TrimSpace(id) }
}

// WithClock overrides time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is an append-only transcript bound to a view.
type Session struct {
	client  Client
	view    View
	input   Input
	persona string
	now     func() time.Time

	mu         sync.Mutex
	transcript []Entry
	sessionID  string
	idGate     chan struct{}
	pending    sync.WaitGroup
}

// NewSession creates a chat session. Without a view the session does nothing.
func NewSession(client Client, view View, input Input, opts ...Option) *Session {
	s := &Session{client: client, view: view, input: input, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send appends the user's message immediately and resolves the reply in the
// background. Until the first reply names the server session, later
// replies are requested after it. The returned channel yields the reply entry (or the fallback)
// and is closed. Blank input is ignored and yields a nil channel.
func (s *Session) Send(ctx context.Context, text string) <-chan Entry {
	text = strings.TrimSpace(text)
	if text == "" || s.view == nil || s.client == nil {
		return nil
	}

	s.mu.Lock()
	s.appendLocked(Entry{Sender: SenderUser, Text: text, Timestamp: s.now()})
	s.mu.Unlock()

	if s.input != nil {
		s.input.Clear()
	}

	out := make(chan Entry, 1)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer close(out)

		sessionID, gate := s.awaitSessionID(ctx)
		reply := Entry{Sender: SenderAI, Text: FallbackReply}
		resp, err := s.client.SendChat(ctx, apiclient.ChatRequest{
			Message:   text,
			SessionID: sessionID,
			Persona:   s.persona,
		})
		if err == nil && resp != nil && resp.Response != "" {
			reply.Text = resp.Response
			reply.Emotion = resp.Emotion
		}

		s.mu.Lock()
		if err == nil && resp != nil && resp.SessionID != "" {
			s.sessionID = resp.SessionID
		}
		if gate != nil {
			s.idGate = nil
			close(gate)
		}
		reply.Timestamp = s.now()
		s.appendLocked(reply)
		s.mu.Unlock()

		out <- reply
	}()
	return out
}

// awaitSessionID returns the server session to send with. While no session
// exists, only one request goes out without an id; later sends wait for its
// reply so every message lands in the same server session. A non-nil gate
// means the caller is that request and must close it once the reply settles.
func (s *Session) awaitSessionID(ctx context.Context) (string, chan struct{}) {
	s.mu.Lock()
	for {
		if s.sessionID != "" {
			id := s.sessionID
			s.mu.Unlock()
			return id, nil
		}
		if s.idGate == nil {
			gate := make(chan struct{})
			s.idGate = gate
			s.mu.Unlock()
			return "", gate
		}
		gate := s.idGate
		s.mu.Unlock()
		select {
		case <-gate:
		case <-ctx.Done():
			return "", nil
		}
		s.mu.Lock()
	}
}

// Transcript returns a copy of all entries so far.
func (s *Session) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// SessionID is the server-side session the transcript is attached to.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Wait blocks until every in-flight reply has been appended.
func (s *Session) Wait() {
	s.pending.Wait()
}

// appendLocked renders under the lock so the view order matches the transcript.
func (s *Session) appendLocked(e Entry) {
	s.transcript = append(s.transcript, e)
	s.view.Append(e)
}
