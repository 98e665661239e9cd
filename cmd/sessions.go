package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/v0gen/v0gen/internal"
)

var (
	sessionsUser     string
	sessionsPage     int
	sessionsPageSize int
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// sessionsCmd groups session management subcommands
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored generation sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Long:  `List generation sessions stored in the local database, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := internal.OpenDatabase(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open session database: %w", err)
		}
		defer func() { _ = db.Close() }()

		store := internal.NewSessionStore(db)
		sessions, total, err := store.List(context.Background(), sessionsUser, sessionsPage, sessionsPageSize)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if total == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Sessions for %s (%d total)", sessionsUser, total)))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFILES\tCREATED\tUPDATED")
		for _, sess := range sessions {
			fileCount := 0
			if files, ok := sess.GeneratedFiles(); ok {
				fileCount = len(files)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				idStyle.Render(sess.ID),
				countStyle.Render(fmt.Sprintf("%d", fileCount)),
				dateStyle.Render(sess.CreatedAt.Format(time.RFC3339)),
				dateStyle.Render(sess.UpdatedAt.Format(time.RFC3339)),
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if total > sessionsPage*sessionsPageSize {
			fmt.Println()
			fmt.Printf("Showing page %d. Use --page %d for more.\n", sessionsPage, sessionsPage+1)
		}
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear <session-id>",
	Short: "Delete a session and its conversation history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := internal.OpenDatabase(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open session database: %w", err)
		}
		defer func() { _ = db.Close() }()

		store := internal.NewSessionStore(db)
		sessionID := strings.TrimSpace(args[0])
		if err := store.Clear(context.Background(), sessionID); err != nil {
			return fmt.Errorf("failed to clear session %s: %w", sessionID, err)
		}

		fmt.Printf("Session %s cleared.\n", sessionID)
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().StringVar(&sessionsUser, "user", internal.DefaultUserID, "User whose sessions to list")
	sessionsListCmd.Flags().IntVar(&sessionsPage, "page", 1, "Page number (1-indexed)")
	sessionsListCmd.Flags().IntVar(&sessionsPageSize, "page-size", 20, "Sessions per page")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
	rootCmd.AddCommand(sessionsCmd)
}
