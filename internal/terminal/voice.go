package terminal

import (
	"fmt"
	"io"
	"log"

	"github.com/atotto/clipboard"

	"github.com/wellnessweavers/companion/internal/interaction/voice"
)

var stateLabels = map[voice.State]string{
	voice.StateIdle:      "🎙  ready",
	voice.StateRecording: "🔴 recording... press Enter to stop",
	voice.StateUploading: "⏳ uploading...",
}

// RecorderControls prints every state change of the recorder.
type RecorderControls struct {
	w    io.Writer
	last voice.State
}

// NewRecorderControls prints to w.
func NewRecorderControls(w io.Writer) *RecorderControls {
	return &RecorderControls{w: w}
}

func (c *RecorderControls) SetState(s voice.State) {
	if s == c.last {
		return
	}
	c.last = s
	fmt.Fprintln(c.w, stateLabels[s])
}

// State is the last state shown.
func (c *RecorderControls) State() voice.State { return c.last }

// TranscriptionPrinter shows the transcription and optionally copies it to
// the system clipboard.
type TranscriptionPrinter struct {
	w    io.Writer
	copy bool
	// writeAll is clipboard.WriteAll, swapped in tests
	writeAll func(string) error
}

// NewTranscriptionPrinter prints to w; with copyToClipboard the text is also
// placed on the clipboard.
func NewTranscriptionPrinter(w io.Writer, copyToClipboard bool) *TranscriptionPrinter {
	return &TranscriptionPrinter{w: w, copy: copyToClipboard, writeAll: clipboard.WriteAll}
}

func (p *TranscriptionPrinter) ShowTranscription(text string) {
	fmt.Fprintf(p.w, "Transcription: %s\n", text)
	if !p.copy {
		return
	}
	if clipboard.Unsupported {
		log.Printf("[voice] clipboard unsupported on this system")
		return
	}
	if err := p.writeAll(text); err != nil {
		log.Printf("[voice] copy transcription: %v", err)
		return
	}
	fmt.Fprintln(p.w, "(copied to clipboard)")
}
