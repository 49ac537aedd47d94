// ABOUTME: Tests for the add command structure
// ABOUTME: Verifies flags, input validation, and the condensation wait

package commands

import (
	"context"
	"testing"
	"time"

	"github.com/harper/recall/internal/storage/sqlite"
)

func TestNewAddCmd(t *testing.T) {
	cmd := NewAddCmd()

	if cmd.Use != "add" {
		t.Errorf("Use = %q, want %q", cmd.Use, "add")
	}

	for _, flagName := range []string{"conversation", "user", "model", "tokens", "no-wait"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("--%s flag not found", flagName)
		}
	}
}

func TestAddCmd_ConversationShorthand(t *testing.T) {
	cmd := NewAddCmd()
	flag := cmd.Flags().Lookup("conversation")
	if flag == nil {
		t.Fatal("--conversation flag not found")
	}
	if flag.Shorthand != "c" {
		t.Errorf("--conversation shorthand = %q, want %q", flag.Shorthand, "c")
	}
}

func TestWaitForCondensation_ScopedToOwnRow(t *testing.T) {
	store, err := sqlite.OpenInMemory(4)
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer func() { _ = store.Close() }()

	// A stuck NEW row in another conversation must not stall the wait.
	if _, err := store.AppendExchange("conv_stuck001", "other", "perpetually unindexed", time.Now().UTC()); err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}

	ids, err := store.AppendExchange("conv_mine0001", "hello", "indexed promptly", time.Now().UTC())
	if err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}
	if err := store.MarkIndexed(ids.CondensedID, "a summary", []float32{1, 0, 0, 0}); err != nil {
		t.Fatalf("MarkIndexed: %v", err)
	}

	start := time.Now()
	if err := waitForCondensation(context.Background(), store, ids.CondensedID, 5*time.Second); err != nil {
		t.Fatalf("waitForCondensation: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("wait took %s despite the row already being indexed", elapsed)
	}
}

func TestWaitForCondensation_TimesOutOnNewRow(t *testing.T) {
	store, err := sqlite.OpenInMemory(4)
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer func() { _ = store.Close() }()

	ids, err := store.AppendExchange("conv_slow0001", "hello", "never condensed", time.Now().UTC())
	if err != nil {
		t.Fatalf("AppendExchange: %v", err)
	}

	if err := waitForCondensation(context.Background(), store, ids.CondensedID, 150*time.Millisecond); err == nil {
		t.Error("expected timeout waiting on a NEW row")
	}
}
