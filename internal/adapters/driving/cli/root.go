// Package cli wires the cobra command tree for docchat.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// version is set by Execute.
var version = "dev"

// Services injected before Execute. Commands check for nil so tests can run
// individual commands against mocks.
var (
	sessionService driving.SessionService
	chatService    driving.ChatService
	summaryService driving.SummaryService
)

var (
	verboseFlag bool
	configPath  string
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents from the terminal",
	Long: `docchat indexes documents into isolated chat sessions and answers
questions about them with citations back to the source text.

Typical workflow:
  docchat session create
  docchat ingest <session-id> report.pdf notes.md
  docchat ask <session-id> "what were the key findings?"
  docchat chat <session-id>`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.docchat/config.toml)")
}

// SetServices injects the driving services used by the commands.
func SetServices(session driving.SessionService, chat driving.ChatService, summary driving.SummaryService) {
	sessionService = session
	chatService = chat
	summaryService = summary
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}
