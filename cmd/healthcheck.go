package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/v0gen/v0gen/internal"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, storage, and backend readiness",
	Long: `Check the health of v0gen by verifying:
  • Configuration validity
  • Session database accessibility
  • Stored session count
  • Model backend mode (live or scripted)

This command is useful for debugging deployment issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 v0gen Health Check"))
		fmt.Println()

		// Step 1: Configuration
		fmt.Println(infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Configuration invalid:"), err)
			os.Exit(1)
		}
		fmt.Println(successStyle.Render("✅ Configuration loaded"))
		if verbose {
			fmt.Printf("   Address: %s\n", cfg.Addr)
			fmt.Printf("   Database: %s\n", cfg.DatabasePath)
			fmt.Printf("   Generator model: %s\n", cfg.GeneratorModel)
		}
		fmt.Println()

		// Step 2: Database
		fmt.Println(infoStyle.Render("Step 2: Opening session database..."))
		db, err := internal.OpenDatabase(cfg.DatabasePath)
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to open database:"), err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		fmt.Println(successStyle.Render("✅ Database accessible"))
		fmt.Println()

		// Step 3: Session count
		fmt.Println(infoStyle.Render("Step 3: Counting stored sessions..."))
		store := internal.NewSessionStore(db)
		_, total, err := store.List(context.Background(), internal.DefaultUserID, 1, 1)
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to query sessions:"), err)
			os.Exit(1)
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Found %d session(s)", total)))
		fmt.Println()

		// Step 4: Backend mode
		fmt.Println(infoStyle.Render("Step 4: Checking model backend..."))
		if cfg.LiveBackend() {
			fmt.Println(successStyle.Render("✅ API key configured, live backend enabled"))
		} else {
			fmt.Println(warningStyle.Render("⚠️  No API key, scripted backend will be used"))
		}
		fmt.Println()

		fmt.Println(successStyle.Render("Health check passed."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
