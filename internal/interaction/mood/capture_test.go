package mood

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/wellnessweavers/companion/internal/interaction/toast"
	"github.com/wellnessweavers/companion/internal/interaction/validate"
	"github.com/wellnessweavers/companion/pkg/apiclient"
)

type emoji struct {
	mood     string
	selected bool
}

func (e *emoji) Mood() string         { return e.mood }
func (e *emoji) SetSelected(on bool) { e.selected = on }

type panel struct{ visible bool }

func (p *panel) Show() { p.visible = true }
func (p *panel) Hide() { p.visible = false }

type form struct {
	notes  string
	resets int
}

func (f *form) Details() Details { return Details{Notes: f.notes} }
func (f *form) Reset() {
	f.resets++
	f.notes = ""
}

type requiredNotes struct {
	*form
	valid bool
}

func (r *requiredNotes) Name() string  { return "notes" }
func (r *requiredNotes) Value() string { return r.notes }
func (r *requiredNotes) Constraints() validate.Constraints {
	return validate.Constraints{Required: true}
}
func (r *requiredNotes) SetValid(v bool)          { r.valid = v }
func (r *requiredNotes) Inputs() []validate.Input { return []validate.Input{r} }

type fakeClient struct {
	mu    sync.Mutex
	calls []apiclient.MoodRequest
	err   error
	block chan struct{}
}

func (c *fakeClient) LogMood(ctx context.Context, req apiclient.MoodRequest) (*apiclient.MoodResponse, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	c.mu.Unlock()
	if c.block != nil {
		<-c.block
	}
	if c.err != nil {
		return nil, c.err
	}
	return &apiclient.MoodResponse{Success: true, MoodID: "m-1", PointsEarned: 10}, nil
}

type sink struct {
	toasts []toast.Severity
	msgs   []string
}

func (s *sink) Notify(message string, severity toast.Severity) {
	s.toasts = append(s.toasts, severity)
	s.msgs = append(s.msgs, message)
}

func setup() (*Capture, *fakeClient, *sink, []*emoji, *panel, *form) {
	emojis := []*emoji{{mood: "great"}, {mood: "okay"}, {mood: "low"}}
	handles := make([]Emoji, len(emojis))
	for i, e := range emojis {
		handles[i] = e
	}
	p := &panel{}
	f := &form{}
	client := &fakeClient{}
	s := &sink{}
	c := New(client, s, UI{Emojis: handles, Panel: p, Form: f})
	return c, client, s, emojis, p, f
}

func TestSelectIsSingleSelect(t *testing.T) {
	c, _, _, emojis, p, _ := setup()

	if !c.Select("great") || !c.Select("low") {
		t.Fatalf("expected selections to succeed")
	}

	if emojis[0].selected {
		t.Fatalf("first emoji should be deselected")
	}
	if !emojis[2].selected {
		t.Fatalf("last clicked emoji should be selected")
	}
	if got, _ := c.Selected(); got != "low" {
		t.Fatalf("expected low, got %q", got)
	}
	if !p.visible {
		t.Fatalf("selecting a mood should reveal the detail panel")
	}
}

func TestSelectUnknownMoodIgnored(t *testing.T) {
	c, _, _, _, p, _ := setup()
	if c.Select("ecstatic") {
		t.Fatalf("unknown mood must not be selectable")
	}
	if _, ok := c.Selected(); ok || p.visible {
		t.Fatalf("state must not change")
	}
}

func TestSubmitWithoutSelectionWarns(t *testing.T) {
	c, client, s, _, _, _ := setup()

	_, err := c.Submit(context.Background())
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no network calls, got %d", len(client.calls))
	}
	if len(s.toasts) != 1 || s.toasts[0] != toast.Warning || s.msgs[0] != msgSelectFirst {
		t.Fatalf("expected a warning toast, got %v %v", s.toasts, s.msgs)
	}
}

func TestSubmitSuccessResets(t *testing.T) {
	c, client, s, emojis, p, f := setup()
	c.Select("great")
	f.notes = "Feeling good today!"

	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if len(client.calls) != 1 {
		t.Fatalf("expected exactly one call, got %d", len(client.calls))
	}
	if got := client.calls[0]; got.Mood != "great" || got.Notes != "Feeling good today!" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if _, ok := c.Selected(); ok {
		t.Fatalf("selection should be cleared")
	}
	for _, e := range emojis {
		if e.selected {
			t.Fatalf("no emoji should remain selected")
		}
	}
	if p.visible {
		t.Fatalf("panel should be hidden")
	}
	if f.resets != 1 {
		t.Fatalf("form should be reset once, got %d", f.resets)
	}
	if len(s.toasts) != 1 || s.toasts[0] != toast.Success {
		t.Fatalf("expected success toast, got %v", s.toasts)
	}
}

func TestSubmitFailureKeepsSelection(t *testing.T) {
	c, client, _, emojis, p, f := setup()
	client.err = &apiclient.APIError{Status: 500, Message: "boom"}
	c.Select("okay")

	if _, err := c.Submit(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if got, _ := c.Selected(); got != "okay" {
		t.Fatalf("selection should be kept, got %q", got)
	}
	if !emojis[1].selected || !p.visible {
		t.Fatalf("ui should keep the selection visible")
	}
	if f.resets != 0 {
		t.Fatalf("form must not be reset on failure")
	}
}

func TestSubmitBlockedByInvalidForm(t *testing.T) {
	client := &fakeClient{}
	e := &emoji{mood: "calm"}
	gate := &requiredNotes{form: &form{}}
	c := New(client, &sink{}, UI{Emojis: []Emoji{e}, Form: gate})
	c.Select("calm")

	_, err := c.Submit(context.Background())
	if !errors.Is(err, ErrInvalidDetails) {
		t.Fatalf("expected ErrInvalidDetails, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatalf("invalid form must not reach the network")
	}
	if gate.valid {
		t.Fatalf("field should be marked invalid")
	}
}

func TestSecondSubmitWhileInFlight(t *testing.T) {
	c, client, _, _, _, _ := setup()
	client.block = make(chan struct{})
	c.Select("great")

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()

	// wait until the first call reached the client
	for {
		client.mu.Lock()
		n := len(client.calls)
		client.mu.Unlock()
		if n == 1 {
			break
		}
		runtime.Gosched()
	}

	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
	close(client.block)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(client.calls))
	}
}
