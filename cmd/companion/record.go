package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wellnessweavers/companion/internal/interaction/voice"
	"github.com/wellnessweavers/companion/internal/terminal"
)

var recordFlags struct {
	copy   bool
	ffmpeg string
}

func init() {
	recordCmd.Flags().BoolVar(&recordFlags.copy, "copy", false, "copy the transcription to the clipboard")
	recordCmd.Flags().StringVar(&recordFlags.ffmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary used for capture")
	rootCmd.AddCommand(recordCmd)
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a voice journal entry",
	Long:  "Records from the microphone until Enter is pressed, then uploads the entry for transcription.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}

		mic := terminal.NewFFMPEGMicrophone(recordFlags.ffmpeg, s.cfg.Audio)
		recorder := voice.NewRecorder(mic, s.client, s.notifier, voice.UI{
			Controls:      terminal.NewRecorderControls(os.Stderr),
			Transcription: terminal.NewTranscriptionPrinter(os.Stdout, recordFlags.copy),
		}, voice.WithFormat(mic.Format()), voice.WithLanguage(s.cfg.Language))
		defer recorder.Close()

		if err := recorder.Start(cmd.Context()); err != nil {
			return err
		}
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')

		resp, err := recorder.Stop(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Saved journal %s\n", resp.JournalID)
		return nil
	},
}
