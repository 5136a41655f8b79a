package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/mcp-google-workspace/internal/config"
	"github.com/teemow/mcp-google-workspace/internal/logging"
)

// errCommandFailed is returned by commands that already reported their
// failure on stderr; Execute only sets the exit code for it.
var errCommandFailed = errors.New("command failed")

var debugMode bool

// rootCmd represents the base command for the mcp-google-workspace application
var rootCmd = &cobra.Command{
	Use:   "mcp-google-workspace",
	Short: "Google Sheets, Docs, Slides and Drive commands for AI assistants and the shell",
	Long: `mcp-google-workspace exposes a catalogue of Google Workspace commands
(spreadsheets, documents, presentations and Drive files) through one dispatcher.

It can run as:
  - An MCP (Model Context Protocol) server for AI assistants (serve)
  - A command-line tool, one subcommand per command (run <command>)

Configuration is read from the environment; CLIENT_SECRET_PATH and FOLDER_ID
are required. Run "mcp-google-workspace auth" once to authorize access.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-google-workspace version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		if !errors.Is(err, errCommandFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// setupLogging installs the default slog logger. Logs always go to stderr so
// that stdout stays reserved for command output and the stdio transport.
func setupLogging() {
	cfg := config.Config{LogLevel: os.Getenv(config.EnvLogLevel)}
	level := cfg.SlogLevel()
	if debugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(logging.NewLogger(os.Stderr, level, os.Getenv("LOG_FORMAT")))
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
