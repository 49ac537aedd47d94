// ABOUTME: CLI command for hybrid memory search
// ABOUTME: Keyword prefilter plus semantic rerank over condensed summaries
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchConversation string
	searchLimit        int
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search condensed memories",
		Long: `Search a conversation's condensed memories.

Summaries are prefiltered with full-text keyword matching, then the
survivors are reranked by cosine similarity between the query
embedding and each stored memory vector. Only turns that have finished
condensation are searchable.

Examples:
  recall search -c conv_ab12cd34 "cat"
  recall search -c conv_ab12cd34 --limit 10 "deployment rollback plan"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringVarP(&searchConversation, "conversation", "c", "", "Conversation ID to search")
	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum number of results")
	_ = cmd.MarkFlagRequired("conversation")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	results, err := engine.RetrieveRelevant(cmd.Context(), searchConversation, args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("searching memories: %w", err)
	}

	if format == "json" {
		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling results: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching memories found")
		}
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. [%.3f] %s\n", i+1, r.Score, truncate(r.Memory.Summary, 100))
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "   turn %d, condensed %d, %s\n",
				r.Memory.RawMemoryID, r.Memory.ID, formatTime(r.Memory.Timestamp))
		}
	}
	return nil
}
