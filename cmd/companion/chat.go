package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wellnessweavers/companion/internal/interaction/chat"
	"github.com/wellnessweavers/companion/internal/terminal"
)

var chatPersona string

func init() {
	chatCmd.Flags().StringVar(&chatPersona, "persona", "", "companion persona (default from config, then priya)")
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk with your companion",
	Long:  "Opens a chat. Type a message and press Enter; an empty line or Ctrl-D ends the chat.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		persona := chatPersona
		if persona == "" {
			persona = s.cfg.Persona
		}
		if persona == "" {
			persona = "priya"
		}

		session := chat.NewSession(s.client, terminal.NewChatView(os.Stdout, persona), nil, chat.WithPersona(persona))
		in := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !in.Scan() {
				fmt.Println()
				break
			}
			line := strings.TrimSpace(in.Text())
			if line == "" || line == "/quit" {
				break
			}
			if reply := session.Send(cmd.Context(), line); reply != nil {
				<-reply
			}
		}
		session.Wait()
		return in.Err()
	},
}
