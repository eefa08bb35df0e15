package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mailtriage application
var rootCmd = &cobra.Command{
	Use:   "mailtriage",
	Short: "Fetches, analyzes and acts on your email inbox",
	Long: `mailtriage fetches messages from your Gmail inbox, extracts text from
their attachments, summarizes and classifies each email, and executes the
resulting follow-ups: calendar events, Slack notifications and drafted
replies. Everything it learns is persisted to Postgres so later passes can
pick up where an earlier run left off.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env file is fine, the environment may be set directly.
		_ = godotenv.Load()
		setupLogging()
	},
}

var debugMode bool

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mailtriage version %s\n" .Version}}`)

	// If no subcommand is provided, run the process command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "process")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newSummarizeCmd())
	rootCmd.AddCommand(newActionsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
