// Package mood implements single-select mood capture and submission.
package mood

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/wellnessweavers/companion/internal/interaction/toast"
	"github.com/wellnessweavers/companion/internal/interaction/validate"
	"github.com/wellnessweavers/companion/pkg/apiclient"
)

const (
	msgSelectFirst = "Please select a mood first"
	msgLogged      = "Mood logged successfully!"
)

var (
	ErrNoSelection    = errors.New("no mood selected")
	ErrInvalidDetails = errors.New("mood details are invalid")
	ErrSubmitInFlight = errors.New("mood submission already in progress")
)

// Emoji is one selectable mood button.
type Emoji interface {
	Mood() string
	SetSelected(selected bool)
}

// Panel is the detail section revealed after a mood is picked.
type Panel interface {
	Show()
	Hide()
}

// Details are the optional form values sent with a mood.
type Details struct {
	Notes       string
	Intensity   *int
	EnergyLevel *int
	StressLevel *int
	Activities  []string
}

// DetailsForm is the detail form. If it also implements validate.InputSet
// it gates submission.
type DetailsForm interface {
	Details() Details
	Reset()
}

// Client is the remote call Submit makes.
type Client interface {
	LogMood(ctx context.Context, req apiclient.MoodRequest) (*apiclient.MoodResponse, error)
}

// UI groups the handles the capture drives. Any of them may be nil.
type UI struct {
	Emojis []Emoji
	Panel  Panel
	Form   DetailsForm
}

// Capture tracks the selected mood and submits it.
type Capture struct {
	client   Client
	notifier toast.Sink
	ui       UI

	mu         sync.Mutex
	selected   string
	submitting bool
}

// New creates a Capture.
func New(client Client, notifier toast.Sink, ui UI) *Capture {
	return &Capture{client: client, notifier: notifier, ui: ui}
}

// Select marks the emoji carrying mood as selected and deselects all others.
// It reports false when no emoji carries mood.
func (c *Capture) Select(mood string) bool {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	for _, e := range c.ui.Emojis {
		if e != nil && e.Mood() == mood {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	for _, e := range c.ui.Emojis {
		if e != nil {
			e.SetSelected(e.Mood() == mood)
		}
	}
	c.selected = mood
	if c.ui.Panel != nil {
		c.ui.Panel.Show()
	}
	return true
}

// Selected returns the currently selected mood.
func (c *Capture) Selected() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.selected != ""
}

// Submit sends the selected mood with the form details. On success the
// capture resets; on failure the selection is kept so the user can retry.
func (c *Capture) Submit(ctx context.Context) (*apiclient.MoodResponse, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	mood := c.selected
	if mood == "" {
		c.mu.Unlock()
		c.notify(msgSelectFirst, toast.Warning)
		return nil, ErrNoSelection
	}
	if set, ok := c.ui.Form.(validate.InputSet); ok && !validate.Form(set) {
		c.mu.Unlock()
		return nil, ErrInvalidDetails
	}

	var details Details
	if c.ui.Form != nil {
		details = c.ui.Form.Details()
	}
	c.submitting = true
	c.mu.Unlock()

	resp, err := c.client.LogMood(ctx, apiclient.MoodRequest{
		Mood:        mood,
		Notes:       details.Notes,
		Intensity:   details.Intensity,
		EnergyLevel: details.EnergyLevel,
		StressLevel: details.StressLevel,
		Activities:  details.Activities,
	})

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.clearLocked()
	c.mu.Unlock()

	c.notify(msgLogged, toast.Success)
	return resp, nil
}

// Reset clears the selection and the form without submitting.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *Capture) clearLocked() {
	c.selected = ""
	for _, e := range c.ui.Emojis {
		if e != nil {
			e.SetSelected(false)
		}
	}
	if c.ui.Form != nil {
		c.ui.Form.Reset()
	}
	if c.ui.Panel != nil {
		c.ui.Panel.Hide()
	}
}

func (c *Capture) notify(msg string, severity toast.Severity) {
	if c.notifier != nil {
		c.notifier.Notify(msg, severity)
	}
}
