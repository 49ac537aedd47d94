// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Defines verbose/quiet/format persistent flags shared by all commands
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	format  string
)

const banner = `
██████╗ ███████╗ ██████╗ █████╗ ██╗     ██╗
██╔══██╗██╔════╝██╔════╝██╔══██╗██║     ██║
██████╔╝█████╗  ██║     ███████║██║     ██║
██╔══██╗██╔══╝  ██║     ██╔══██║██║     ██║
██║  ██║███████╗╚██████╗██║  ██║███████╗███████╗
╚═╝  ╚═╝╚══════╝ ╚═════╝╚═╝  ╚═╝╚══════╝╚══════╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Conversational memory engine with hybrid retrieval",
		Long: banner + `
Recall stores conversation exchanges verbatim, condenses each model
turn into a searchable summary with an embedding, and answers
relevance queries with keyword prefiltering plus semantic reranking.

It also tracks token usage against the model context window and
signals when the conversation needs compaction.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&format, "format", "auto", "Output format (auto, text, json)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewAddCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewLogCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewEditCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewConversationsCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
