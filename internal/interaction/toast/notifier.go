// Package toast shows transient, dismissible notifications.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity selects the visual style of a toast.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Danger  Severity = "danger"
)

// DisplayDuration is how long a toast stays visible unless dismissed earlier.
const DisplayDuration = 5 * time.Second

// Toast is a single notification as handed to the container.
type Toast struct {
	ID        string
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Container renders toasts. Show receives a dismiss callback the user side
// may invoke (a close button); it must not block.
type Container interface {
	Show(t Toast, dismiss func())
	Remove(id string)
}

// Host locates or creates the toast container of a page.
type Host interface {
	FindContainer() (Container, bool)
	CreateContainer() Container
}

// Sink is what other components depend on to report to the user.
type Sink interface {
	Notify(message string, severity Severity)
}

// Timer is the part of *time.Timer the notifier uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

// Option customises a Notifier.
type Option func(*Notifier)

// WithAfterFunc replaces the scheduler, mostly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(n *Notifier) {
		if fn != nil {
			n.afterFunc = fn
		}
	}
}

// WithDuration overrides DisplayDuration.
func WithDuration(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.duration = d
		}
	}
}

// Notifier implements Sink on top of a Host.
type Notifier struct {
	host      Host
	afterFunc AfterFunc
	duration  time.Duration
	now       func() time.Time

	mu        sync.Mutex
	container Container
	active    map[string]Timer
}

// New returns a notifier bound to host. A nil host yields a notifier that
// silently drops everything.
func New(host Host, opts ...Option) *Notifier {
	n := &Notifier{
		host: host,
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		duration: DisplayDuration,
		now:      time.Now,
		active:   make(map[string]Timer),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify shows message and schedules its removal. It never fails.
func (n *Notifier) Notify(message string, severity Severity) {
	if n == nil || n.host == nil {
		return
	}

	container := n.ensureContainer()
	if container == nil {
		return
	}

	t := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  normalizeSeverity(severity),
		CreatedAt: n.now(),
	}

	n.mu.Lock()
	n.active[t.ID] = nil
	n.mu.Unlock()

	dismiss := func() { n.Dismiss(t.ID) }
	container.Show(t, dismiss)

	timer := n.afterFunc(n.duration, dismiss)

	n.mu.Lock()
	if _, ok := n.active[t.ID]; ok {
		n.active[t.ID] = timer
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()
	// dismissed while being shown
	if timer != nil {
		timer.Stop()
	}
}

// Dismiss removes one toast. Unknown or already removed ids are ignored.
func (n *Notifier) Dismiss(id string) {
	n.mu.Lock()
	timer, ok := n.active[id]
	if !ok {
		n.mu.Unlock()
		return
	}
	delete(n.active, id)
	container := n.container
	n.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if container != nil {
		container.Remove(id)
	}
}

// Active reports how many toasts are currently shown.
func (n *Notifier) Active() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.active)
}

func (n *Notifier) ensureContainer() Container {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.container != nil {
		return n.container
	}
	if c, ok := n.host.FindContainer(); ok && c != nil {
		n.container = c
		return c
	}
	n.container = n.host.CreateContainer()
	return n.container
}

func normalizeSeverity(s Severity) Severity {
	switch s {
	case Info, Success, Warning, Danger:
		return s
	default:
		return Info
	}
}
