// ABOUTME: CLI command to edit a stored turn's text
// ABOUTME: Rewrites the raw text; derived summaries are not touched
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewEditCmd creates the edit command
func NewEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [turn-id] [new-text]",
		Short: "Edit the text of a stored turn",
		Long: `Replace the verbatim text of a stored turn.

Only the raw turn changes. A summary already derived from the old text
stays as it is; use delete --from and re-add the exchange to recondense.

Examples:
  recall edit 42 "Corrected answer text"`,
		Args: cobra.ExactArgs(2),
		RunE: runEdit,
	}

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("turn-id must be a positive integer, got %q", args[0])
	}
	newText := strings.TrimSpace(args[1])
	if newText == "" {
		return fmt.Errorf("new text must not be empty")
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.UpdateRawMemoryText(id, newText); err != nil {
		return fmt.Errorf("editing turn %d: %w", id, err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated turn %d\n", id)
	}
	return nil
}
