// ABOUTME: CLI command to delete conversation data
// ABOUTME: Supports cutoff deletes for regeneration and whole-conversation removal
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	deleteConversation string
	deleteFrom         int64
	deleteAll          bool
	deleteForce        bool
)

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete turns or a whole conversation",
		Long: `Delete conversation data.

With --from, every turn with ID >= the cutoff is removed along with
the summaries and index entries derived from those turns, all in one
transaction. This is how a conversation is rewound before
regenerating a response.

With --all, the entire conversation is removed.

Examples:
  recall delete -c conv_ab12cd34 --from 42
  recall delete -c conv_ab12cd34 --all --force`,
		RunE: runDelete,
	}

	cmd.Flags().StringVarP(&deleteConversation, "conversation", "c", "", "Conversation ID")
	cmd.Flags().Int64Var(&deleteFrom, "from", 0, "Delete every turn with ID >= this cutoff")
	cmd.Flags().BoolVar(&deleteAll, "all", false, "Delete the whole conversation")
	cmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip the confirmation prompt")
	cmd.MarkFlagsMutuallyExclusive("from", "all")
	_ = cmd.MarkFlagRequired("conversation")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	if deleteFrom == 0 && !deleteAll {
		return fmt.Errorf("one of --from or --all is required")
	}
	if deleteFrom < 0 {
		return fmt.Errorf("cutoff must be positive, got %d", deleteFrom)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Confirm the target exists before prompting.
	if _, err := store.GetConversation(deleteConversation); err != nil {
		return fmt.Errorf("loading conversation: %w", err)
	}

	if !deleteForce {
		var what string
		if deleteAll {
			what = fmt.Sprintf("conversation %s", deleteConversation)
		} else {
			what = fmt.Sprintf("turns >= %d in %s", deleteFrom, deleteConversation)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Delete %s? [y/N]: ", what)
		var answer string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "y" && answer != "Y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}
	}

	if deleteAll {
		if err := store.DeleteConversation(deleteConversation); err != nil {
			return fmt.Errorf("deleting conversation: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted conversation %s\n", deleteConversation)
		}
		return nil
	}

	if err := store.DeleteFrom(deleteConversation, deleteFrom); err != nil {
		return fmt.Errorf("deleting from cutoff: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted turns >= %d from %s\n", deleteFrom, deleteConversation)
	}
	return nil
}
