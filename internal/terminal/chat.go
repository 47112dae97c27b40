package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/wellnessweavers/companion/internal/interaction/chat"
)

// ChatView prints transcript entries as "name: text" lines.
type ChatView struct {
	w         io.Writer
	companion string

	mu sync.Mutex
}

// NewChatView labels companion lines with the persona name.
func NewChatView(w io.Writer, companion string) *ChatView {
	companion = strings.TrimSpace(companion)
	if companion == "" {
		companion = "Companion"
	} else {
		first, size := utf8.DecodeRuneInString(companion)
		companion = string(unicode.ToUpper(first)) + companion[size:]
	}
	return &ChatView{w: w, companion: companion}
}

func (v *ChatView) Append(e chat.Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch e.Sender {
	case chat.SenderUser:
		// the user's line is already on screen as they typed it
		return
	default:
		if e.Emotion != "" {
			fmt.Fprintf(v.w, "%s (%s): %s\n", v.companion, e.Emotion, e.Text)
			return
		}
		fmt.Fprintf(v.w, "%s: %s\n", v.companion, e.Text)
	}
}
