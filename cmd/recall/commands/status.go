// ABOUTME: CLI command showing conversation header and condensation backlog
// ABOUTME: Displays token usage, threshold watermarks, and the compaction flag
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusConversation string

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show conversation status",
		Long: `Show a conversation's token usage, threshold watermarks, and
how many model turns still await condensation.

Examples:
  recall status -c conv_ab12cd34
  recall status -c conv_ab12cd34 --clear-compaction`,
		RunE: runStatus,
	}

	cmd.Flags().StringVarP(&statusConversation, "conversation", "c", "", "Conversation ID to inspect")
	cmd.Flags().Bool("clear-compaction", false, "Clear the compaction-required flag")
	_ = cmd.MarkFlagRequired("conversation")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	clear, _ := cmd.Flags().GetBool("clear-compaction")
	if clear {
		if err := store.MarkCompactionHandled(statusConversation); err != nil {
			return fmt.Errorf("clearing compaction flag: %w", err)
		}
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Compaction flag cleared")
		}
	}

	conv, err := store.GetConversation(statusConversation)
	if err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}
	pending, err := store.PendingCount()
	if err != nil {
		return fmt.Errorf("counting pending condensations: %w", err)
	}
	turns, err := store.ModelTurnCount(statusConversation)
	if err != nil {
		return fmt.Errorf("counting turns: %w", err)
	}

	if format == "json" {
		out, err := json.MarshalIndent(map[string]interface{}{
			"conversation":          conv,
			"model_turns":           turns,
			"pending_condensations": pending,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling status: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Conversation: %s\n", conv.ID)
	if conv.Name != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Name:         %s\n", conv.Name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tokens:       %d\n", conv.TotalTokens)
	fmt.Fprintf(cmd.OutOrStdout(), "Model turns:  %d\n", turns)
	fmt.Fprintf(cmd.OutOrStdout(), "Pending:      %d\n", pending)
	fmt.Fprintf(cmd.OutOrStdout(), "Updated:      %s\n", formatTime(conv.UpdatedAt))

	if conv.OneThirdID != 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "1/3 mark:     turn %d\n", conv.OneThirdID)
	}
	if conv.TwoThirdsID != 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "2/3 mark:     turn %d\n", conv.TwoThirdsID)
	}
	if conv.CompactionRequired {
		fmt.Fprintln(cmd.OutOrStdout(), "⚠ Compaction required")
	}
	return nil
}
