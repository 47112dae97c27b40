package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wellnessweavers/companion/internal/config"
	"github.com/wellnessweavers/companion/internal/interaction/voice"
)

const (
	startupGrace = 250 * time.Millisecond
	stopGrace    = 1200 * time.Millisecond
)

// FFMPEGMicrophone captures s16le PCM from the default input with ffmpeg.
type FFMPEGMicrophone struct {
	command string
	cfg     config.AudioConfig
}

// NewFFMPEGMicrophone uses command (default "ffmpeg") and the audio settings.
func NewFFMPEGMicrophone(command string, cfg config.AudioConfig) *FFMPEGMicrophone {
	if command == "" {
		command = "ffmpeg"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = voice.DefaultFormat.SampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = voice.DefaultFormat.Channels
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.Device == "" {
		cfg.Device = "default"
	}
	return &FFMPEGMicrophone{command: command, cfg: cfg}
}

// Format is the PCM layout the capture produces.
func (m *FFMPEGMicrophone) Format() voice.Format {
	return voice.Format{SampleRate: m.cfg.SampleRate, Channels: m.cfg.Channels, BitsPerSample: 16}
}

func (m *FFMPEGMicrophone) args() []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", m.cfg.InputFormat,
		"-i", m.cfg.Device,
		"-ac", strconv.Itoa(m.cfg.Channels),
		"-ar", strconv.Itoa(m.cfg.SampleRate),
		"-f", "s16le",
		"-",
	}
}

// Open starts ffmpeg. An ffmpeg that exits right away (no device, denied
// access) is reported as an error.
func (m *FFMPEGMicrophone) Open(ctx context.Context) (voice.Stream, error) {
	cmd := exec.CommandContext(ctx, m.command, m.args()...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// children of ffmpeg may keep stderr open after it exits
	cmd.WaitDelay = stopGrace

	// Wait must not close the read end before the tail flushed on interrupt
	// has been read, so the pipe is not cmd.StdoutPipe.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	cmd.Stdout = pw
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	pw.Close()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		pr.Close()
		if err != nil {
			return nil, fmt.Errorf("ffmpeg exited before capture started: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, errors.New("ffmpeg exited before capture started")
	case <-time.After(startupGrace):
	}

	return &ffmpegStream{stdout: pr, stderr: &stderr, process: cmd.Process, waitErr: waitErr}, nil
}

type ffmpegStream struct {
	stdout  *os.File
	stderr  *bytes.Buffer
	process *os.Process
	waitErr <-chan error

	stopOnce  sync.Once
	stopErr   error
	closeOnce sync.Once
}

// Read returns captured bytes. After Close it keeps returning what ffmpeg
// flushed on exit, then io.EOF; the read end is released on the first error.
func (s *ffmpegStream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if err != nil {
		s.closeOnce.Do(func() { _ = s.stdout.Close() })
	}
	return n, err
}

// Close interrupts ffmpeg so it flushes, and kills it if it does not exit.
// Once ffmpeg is gone, pending reads drain the pipe and end with io.EOF.
func (s *ffmpegStream) Close() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(stopGrace):
			if s.process != nil {
				_ = s.process.Kill()
			}
			if err, ok := <-s.waitErr; ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		// a leftover child holding the write end must not block readers forever
		_ = s.stdout.SetReadDeadline(time.Now().Add(stopGrace))
		if s.stopErr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, strings.TrimSpace(s.stderr.String()))
		}
	})
	return s.stopErr
}

// normalizeStopErr drops the exit status an interrupted ffmpeg reports.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
