// ABOUTME: CLI command to record a user/model exchange
// ABOUTME: Appends both turns atomically and waits for background condensation
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/recall/internal/models"
	"github.com/harper/recall/internal/storage/sqlite"
)

var (
	addConversation string
	addUser         string
	addModel        string
	addTokens       int
	addNoWait       bool
)

// NewAddCmd creates the add command
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a user/model exchange",
		Long: `Record one user/model exchange in a conversation.

Both turns are stored verbatim in a single transaction, then the model
turn is summarized and embedded in the background. By default the
command waits for condensation to finish before exiting; turns left
unindexed are picked up on the next run.

Examples:
  recall add --user "What is Go?" --model "Go is a programming language."
  recall add -c conv_ab12cd34 --user "More?" --model "Much more." --tokens 5230
  echo "long response" | recall add --user "Summarize the report" --model -`,
		RunE: runAdd,
	}

	cmd.Flags().StringVarP(&addConversation, "conversation", "c", "", "Conversation ID (a new one is created when omitted)")
	cmd.Flags().StringVar(&addUser, "user", "", "The user's turn")
	cmd.Flags().StringVar(&addModel, "model", "", "The model's response turn, or - to read from stdin")
	cmd.Flags().IntVar(&addTokens, "tokens", 0, "Cumulative token count for the conversation after this exchange")
	cmd.Flags().BoolVar(&addNoWait, "no-wait", false, "Do not wait for background condensation")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	modelText := addModel
	if modelText == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		modelText = string(data)
	}

	userText := strings.TrimSpace(addUser)
	modelText = strings.TrimSpace(modelText)
	if userText == "" || modelText == "" {
		return fmt.Errorf("both user and model turns must be non-empty")
	}
	if addTokens < 0 {
		return fmt.Errorf("tokens must not be negative, got %d", addTokens)
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	conversationID := addConversation
	if conversationID == "" {
		conversationID = models.NewConversationID()
	}

	engine.Start(cmd.Context())
	defer engine.Stop()

	ids, err := engine.AppendExchange(conversationID, userText, modelText, addTokens)
	if err != nil {
		return fmt.Errorf("recording exchange: %w", err)
	}

	if !addNoWait {
		if err := waitForCondensation(cmd.Context(), store, ids.CondensedID, 60*time.Second); err != nil {
			warnVerbose("condensation incomplete, will resume on next run: %v", err)
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded exchange in %s (turns %d, %d)\n",
			conversationID, ids.UserID, ids.ModelID)
	}

	conv, err := engine.Header(conversationID)
	if err == nil && conv.CompactionRequired && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "⚠ Conversation has crossed two thirds of the context window, compaction recommended\n")
	}
	return nil
}

// waitForCondensation polls the condensed row created for this
// exchange until it reaches INDEXED. Scoped to the one row so a stuck
// backlog from another conversation never stalls this command.
func waitForCondensation(ctx context.Context, store *sqlite.Store, condensedID int64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		condensed, err := store.GetCondensed(condensedID)
		if err != nil {
			return err
		}
		if condensed.Indexed() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("timed out after %s", timeout)
}
