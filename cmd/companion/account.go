package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wellnessweavers/companion/internal/config"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(healthCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and store the token in the config file",
	Long: `Posts the credentials to /api/auth/login on baseURL and stores the returned
token. The companion API server has no login route of its own; point baseURL
at the auth service that issues tokens, or set the server's API_KEY directly
with 'companion config set token <key>'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stderr, "Password: ")
		password, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && password == "" {
			return fmt.Errorf("read password: %w", err)
		}

		resp, err := s.client.Login(cmd.Context(), args[0], strings.TrimRight(password, "\r\n"))
		if err != nil {
			return err
		}
		s.cfg.Token = resp.Token
		if err := config.SaveClient(configPath, s.cfg); err != nil {
			return err
		}
		fmt.Println("Logged in")
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the companion API",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		resp, err := s.client.Health(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s (version %s)\n", resp.Status, resp.Version)
		for name, state := range resp.Services {
			fmt.Printf("  %-10s %s\n", name, state)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the client configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadClient(configPath)
		if err != nil {
			return err
		}
		if cfg.Token != "" {
			cfg.Token = "********"
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one configuration value",
	Long: `Set one value and write the config file. Keys: baseURL, token, userId,
persona, language, timeoutSeconds, uploadTimeoutSeconds, audio.inputFormat,
audio.device, audio.sampleRate, audio.channels.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadClient(configPath)
		if err != nil {
			return err
		}
		if err := setConfigValue(&cfg, args[0], args[1]); err != nil {
			return err
		}
		return config.SaveClient(configPath, cfg)
	},
}

func setConfigValue(cfg *config.ClientConfig, key, value string) error {
	number := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%s must be a non-negative integer", key)
		}
		return n, nil
	}

	var err error
	switch key {
	case "baseURL":
		cfg.BaseURL = value
	case "token":
		cfg.Token = value
	case "userId":
		cfg.UserID = value
	case "persona":
		cfg.Persona = value
	case "language":
		cfg.Language = value
	case "timeoutSeconds":
		cfg.TimeoutSeconds, err = number()
	case "uploadTimeoutSeconds":
		cfg.UploadTimeoutSeconds, err = number()
	case "audio.inputFormat":
		cfg.Audio.InputFormat = value
	case "audio.device":
		cfg.Audio.Device = value
	case "audio.sampleRate":
		cfg.Audio.SampleRate, err = number()
	case "audio.channels":
		cfg.Audio.Channels, err = number()
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return err
}
