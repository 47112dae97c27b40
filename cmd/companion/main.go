package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wellnessweavers/companion/internal/config"
	"github.com/wellnessweavers/companion/internal/interaction/toast"
	"github.com/wellnessweavers/companion/internal/terminal"
	"github.com/wellnessweavers/companion/pkg/apiclient"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Wellness companion in the terminal",
	Long: `companion logs moods, chats with a companion persona and records voice
journal entries against a companion API server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultClientConfigPath()+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session bundles what every command needs.
type session struct {
	cfg      config.ClientConfig
	client   *apiclient.Client
	notifier *toast.Notifier
}

func openSession() (*session, error) {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return nil, err
	}
	notifier := toast.New(terminal.NewToastHost(os.Stderr))
	client := apiclient.NewClient(cfg.BaseURL,
		apiclient.WithToken(cfg.Token),
		apiclient.WithUserID(cfg.UserID),
		apiclient.WithNotifier(notifier),
		apiclient.WithTimeout(seconds(cfg.TimeoutSeconds)),
		apiclient.WithUploadTimeout(seconds(cfg.UploadTimeoutSeconds)),
	)
	return &session{cfg: cfg, client: client, notifier: notifier}, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
