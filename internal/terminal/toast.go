// Package terminal renders the interaction components on a text terminal.
package terminal

import (
	"fmt"
	"io"
	"sync"

	"github.com/wellnessweavers/companion/internal/interaction/toast"
)

var severityTags = map[toast.Severity]string{
	toast.Info:    "info",
	toast.Success: " ok ",
	toast.Warning: "warn",
	toast.Danger:  "fail",
}

// ToastHost owns the single toast printer of the terminal.
type ToastHost struct {
	w io.Writer

	mu      sync.Mutex
	printer *ToastPrinter
}

// NewToastHost writes toasts to w, typically stderr.
func NewToastHost(w io.Writer) *ToastHost {
	return &ToastHost{w: w}
}

func (h *ToastHost) FindContainer() (toast.Container, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.printer == nil {
		return nil, false
	}
	return h.printer, true
}

func (h *ToastHost) CreateContainer() toast.Container {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.printer == nil {
		h.printer = &ToastPrinter{w: h.w, visible: make(map[string]struct{})}
	}
	return h.printer
}

// ToastPrinter prints each toast as one line. A terminal cannot take lines
// back, so Remove only forgets the toast.
type ToastPrinter struct {
	w io.Writer

	mu      sync.Mutex
	visible map[string]struct{}
}

func (p *ToastPrinter) Show(t toast.Toast, dismiss func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible[t.ID] = struct{}{}
	tag, ok := severityTags[t.Severity]
	if !ok {
		tag = severityTags[toast.Info]
	}
	fmt.Fprintf(p.w, "[%s] %s\n", tag, t.Message)
}

func (p *ToastPrinter) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.visible, id)
}

// Visible is the number of toasts not yet removed.
func (p *ToastPrinter) Visible() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.visible)
}
