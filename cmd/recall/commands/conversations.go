// ABOUTME: CLI commands for conversation management
// ABOUTME: List, create, rename, and configure conversation headers
package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/recall/internal/models"
)

// NewConversationsCmd creates the conversations command group
func NewConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Manage conversations",
		Long:    `List, create, rename, and configure conversations.`,
	}

	cmd.AddCommand(newConversationsListCmd())
	cmd.AddCommand(newConversationsNewCmd())
	cmd.AddCommand(newConversationsRenameCmd())
	cmd.AddCommand(newConversationsProfileCmd())

	return cmd
}

func newConversationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			convs, err := store.ListConversations()
			if err != nil {
				return fmt.Errorf("listing conversations: %w", err)
			}

			if format == "json" {
				out, err := json.MarshalIndent(convs, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling conversations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			if len(convs) == 0 {
				if !quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "No conversations found")
				}
				return nil
			}
			for _, c := range convs {
				name := c.Name
				if name == "" {
					name = "(unnamed)"
				}
				flag := ""
				if c.CompactionRequired {
					flag = " ⚠"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-30s %8d tokens  %s%s\n",
					c.ID, truncate(name, 30), c.TotalTokens, formatTime(c.UpdatedAt), flag)
			}
			return nil
		},
	}
}

func newConversationsNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new [name]",
		Short: "Create a conversation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			id := models.NewConversationID()
			if err := store.CreateConversation(id, name, time.Now().UTC()); err != nil {
				return fmt.Errorf("creating conversation: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newConversationsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [id] [name]",
		Short: "Rename a conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.RenameConversation(args[0], args[1]); err != nil {
				return fmt.Errorf("renaming conversation: %w", err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Renamed %s\n", args[0])
			}
			return nil
		},
	}
}

func newConversationsProfileCmd() *cobra.Command {
	var schema, instruction string
	cmd := &cobra.Command{
		Use:   "profile [id]",
		Short: "Set a conversation's response schema and system instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetConversationProfile(args[0], schema, instruction); err != nil {
				return fmt.Errorf("setting profile: %w", err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated profile for %s\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "JSON response schema for the conversation")
	cmd.Flags().StringVar(&instruction, "instruction", "", "System instruction for the conversation")
	return cmd
}
