// Package voice records a journal entry from the microphone and uploads it
// for transcription.
package voice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"sync"

	"github.com/wellnessweavers/companion/internal/interaction/toast"
	"github.com/wellnessweavers/companion/pkg/apiclient"
)

const (
	msgMicUnavailable = "Could not access microphone. Please check permissions."
	msgSaved          = "Voice journal saved"

	// UploadFilename is the name the payload is uploaded under.
	UploadFilename = "recording.wav"

	chunkSize = 4096
)

var (
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no active recording")
)

// State is the recorder state.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateUploading State = "uploading"
)

// Stream is an open capture. Close releases the device and must unblock a
// pending Read.
type Stream interface {
	io.Reader
	Close() error
}

// Microphone grants access to the capture device.
type Microphone interface {
	Open(ctx context.Context) (Stream, error)
}

// Controls reflect the recorder state (button glyph, recording marker).
type Controls interface {
	SetState(s State)
}

// TranscriptionSlot displays the transcription returned by the server.
type TranscriptionSlot interface {
	ShowTranscription(text string)
}

// Client is the remote call Stop makes.
type Client interface {
	UploadVoiceJournal(ctx context.Context, up apiclient.VoiceUpload) (*apiclient.VoiceJournalResponse, error)
}

// UI groups the handles the recorder drives. Any of them may be nil.
type UI struct {
	Controls      Controls
	Transcription TranscriptionSlot
}

// Recorder is the idle → recording → uploading → idle state machine.
type Recorder struct {
	mic      Microphone
	client   Client
	notifier toast.Sink
	ui       UI
	format   Format
	language string

	mu      sync.Mutex
	state   State
	opening bool
	capture *capture
}

type capture struct {
	stream Stream
	once   sync.Once
	done   chan []byte
}

func (c *capture) release() {
	c.once.Do(func() {
		if err := c.stream.Close(); err != nil {
			log.Printf("[voice] release microphone: %v", err)
		}
	})
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithFormat sets the PCM format used for the WAV header.
func WithFormat(f Format) Option {
	return func(r *Recorder) { r.format = f.normalized() }
}

// WithLanguage sets the transcription language hint.
func WithLanguage(lang string) Option {
	return func(r *Recorder) { r.language = lang }
}

// NewRecorder creates an idle recorder.
func NewRecorder(mic Microphone, client Client, notifier toast.Sink, ui UI, opts ...Option) *Recorder {
	r := &Recorder{
		mic:      mic,
		client:   client,
		notifier: notifier,
		ui:       ui,
		format:   DefaultFormat,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start opens the microphone and begins buffering audio. When access is
// denied the recorder stays idle.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateIdle || r.opening {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	r.opening = true
	r.mu.Unlock()

	stream, err := r.mic.Open(ctx)

	r.mu.Lock()
	r.opening = false
	if err != nil {
		r.mu.Unlock()
		log.Printf("[voice] open microphone: %v", err)
		r.notify(msgMicUnavailable, toast.Danger)
		return err
	}
	c := &capture{stream: stream, done: make(chan []byte, 1)}
	r.capture = c
	r.state = StateRecording
	r.mu.Unlock()

	go pumpFragments(stream, c.done)
	r.setControls(StateRecording)
	return nil
}

// Stop releases the microphone, assembles the buffered fragments and uploads
// them. The recorder is idle again when Stop returns, whatever the outcome.
func (r *Recorder) Stop(ctx context.Context) (*apiclient.VoiceJournalResponse, error) {
	r.mu.Lock()
	if r.state != StateRecording || r.capture == nil {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	c := r.capture
	r.state = StateUploading
	r.mu.Unlock()

	defer r.reset()
	r.setControls(StateUploading)

	c.release()
	pcm := <-c.done
	payload := EncodeWAV(pcm, r.format)

	resp, err := r.client.UploadVoiceJournal(ctx, apiclient.VoiceUpload{
		Audio:    payload,
		Filename: UploadFilename,
		Language: r.language,
	})
	if err != nil {
		// the request helper already reported it
		return nil, err
	}

	r.notify(msgSaved, toast.Success)
	if resp != nil && resp.Transcription != "" && r.ui.Transcription != nil {
		r.ui.Transcription.ShowTranscription(resp.Transcription)
	}
	return resp, nil
}

// Close discards an active recording without uploading it.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.state != StateRecording || r.capture == nil {
		r.mu.Unlock()
		return nil
	}
	c := r.capture
	r.state = StateUploading
	r.mu.Unlock()

	c.release()
	<-c.done
	r.reset()
	return nil
}

func (r *Recorder) reset() {
	r.mu.Lock()
	r.capture = nil
	r.state = StateIdle
	r.mu.Unlock()
	r.setControls(StateIdle)
}

func (r *Recorder) setControls(s State) {
	if r.ui.Controls != nil {
		r.ui.Controls.SetState(s)
	}
}

func (r *Recorder) notify(msg string, severity toast.Severity) {
	if r.notifier != nil {
		r.notifier.Notify(msg, severity)
	}
}

// pumpFragments reads until the stream ends or is closed and hands over
// every byte read.
func pumpFragments(stream io.Reader, done chan<- []byte) {
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		n, err := stream.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				log.Printf("[voice] capture ended: %v", err)
			}
			break
		}
	}
	done <- buf.Bytes()
}
