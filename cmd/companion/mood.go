package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wellnessweavers/companion/internal/interaction/mood"
	"github.com/wellnessweavers/companion/internal/terminal"
)

var moodFlags struct {
	notes      string
	intensity  string
	energy     string
	stress     string
	activities string
}

var historyFlags struct {
	days  int
	limit int
}

func init() {
	moodCmd.Flags().StringVar(&moodFlags.notes, "notes", "", "free-form notes")
	moodCmd.Flags().StringVar(&moodFlags.intensity, "intensity", "", "intensity 1-10")
	moodCmd.Flags().StringVar(&moodFlags.energy, "energy", "", "energy level 1-10")
	moodCmd.Flags().StringVar(&moodFlags.stress, "stress", "", "stress level 1-10")
	moodCmd.Flags().StringVar(&moodFlags.activities, "activities", "", "comma separated activities")
	rootCmd.AddCommand(moodCmd)

	historyCmd.Flags().IntVar(&historyFlags.days, "days", 7, "how many days back")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 50, "max entries")
	rootCmd.AddCommand(historyCmd)
}

var moodCmd = &cobra.Command{
	Use:   "mood [mood]",
	Short: "Log how you feel",
	Long: `Log a mood. Without an argument the mood picker is shown and a number or
mood name is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}

		buttons := terminal.MoodButtons()
		form := terminal.NewDetailsForm(os.Stderr)
		capture := mood.New(s.client, s.notifier, mood.UI{
			Emojis: terminal.Emojis(buttons),
			Panel:  terminal.NewDetailsPanel(os.Stderr),
			Form:   form,
		})

		choice := ""
		if len(args) == 1 {
			choice = args[0]
		} else {
			terminal.RenderMoodPicker(os.Stdout, buttons)
			fmt.Print("Mood: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read mood: %w", err)
			}
			choice = line
		}
		if !capture.Select(resolveMood(choice)) {
			return fmt.Errorf("unknown mood %q, choose one of %s", strings.TrimSpace(choice), strings.Join(terminal.MoodOrder, ", "))
		}

		for _, f := range []struct{ name, value string }{
			{"notes", moodFlags.notes},
			{"intensity", moodFlags.intensity},
			{"energy", moodFlags.energy},
			{"stress", moodFlags.stress},
			{"activities", moodFlags.activities},
		} {
			if err := form.Set(f.name, f.value); err != nil {
				return err
			}
		}

		resp, err := capture.Submit(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("+%d points (entry %s)\n", resp.PointsEarned, resp.MoodID)
		return nil
	},
}

// resolveMood accepts a picker number or a mood name.
func resolveMood(choice string) string {
	choice = strings.ToLower(strings.TrimSpace(choice))
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(terminal.MoodOrder) {
		return terminal.MoodOrder[n-1]
	}
	return choice
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent moods",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		resp, err := s.client.MoodHistory(cmd.Context(), historyFlags.days, historyFlags.limit)
		if err != nil {
			return err
		}
		if len(resp.Moods) == 0 {
			fmt.Println("No moods logged yet, run 'companion mood' first")
			return nil
		}
		fmt.Printf("%-17s %-8s %-6s %s\n", "WHEN", "MOOD", "SCORE", "NOTES")
		for _, m := range resp.Moods {
			fmt.Printf("%-17s %-8s %-6d %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Mood, m.Score, m.Notes)
		}
		return nil
	},
}
