// ABOUTME: CLI command to page through raw conversation history
// ABOUTME: Shows verbatim turns newest first with limit/offset paging
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	logConversation string
	logLimit        int
	logOffset       int
)

// NewLogCmd creates the log command
func NewLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show raw conversation history",
		Long: `Show the verbatim turns of a conversation, newest first.

Examples:
  recall log -c conv_ab12cd34
  recall log -c conv_ab12cd34 --limit 10 --offset 20`,
		RunE: runLog,
	}

	cmd.Flags().StringVarP(&logConversation, "conversation", "c", "", "Conversation ID to read")
	cmd.Flags().IntVar(&logLimit, "limit", 20, "Maximum number of turns")
	cmd.Flags().IntVar(&logOffset, "offset", 0, "Turns to skip from the newest")
	_ = cmd.MarkFlagRequired("conversation")

	return cmd
}

func runLog(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(logLimit, "limit"); err != nil {
		return err
	}
	if logOffset < 0 {
		return fmt.Errorf("offset must not be negative, got %d", logOffset)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	memories, err := store.PageRawMemories(logConversation, logLimit, logOffset)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if format == "json" {
		out, err := json.MarshalIndent(memories, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(memories) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No turns found")
		}
		return nil
	}

	for _, m := range memories {
		fmt.Fprintf(cmd.OutOrStdout(), "[%d] %-5s %s  %s\n",
			m.ID, m.Sender, formatTime(m.Timestamp), truncate(m.Text, 80))
	}
	return nil
}
