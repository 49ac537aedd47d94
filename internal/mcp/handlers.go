// ABOUTME: MCP tool handler implementations for the recall server
// ABOUTME: Contains handler implementations with proper error handling for all 6 tools
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/recall/internal/core"
	"github.com/harper/recall/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	engine *core.Engine
}

// RecordExchange handles the record_exchange tool
func (h *Handlers) RecordExchange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}
	userText, err := request.RequireString("user_text")
	if err != nil {
		return mcp.NewToolResultError("user_text argument is required and must be a string"), nil
	}
	modelText, err := request.RequireString("model_text")
	if err != nil {
		return mcp.NewToolResultError("model_text argument is required and must be a string"), nil
	}
	totalTokens := request.GetInt("total_tokens", 0)

	ids, err := h.engine.AppendExchange(conversationID, userText, modelText, totalTokens)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to record exchange: %v", err)), nil
	}

	response := map[string]interface{}{
		"conversation_id": conversationID,
		"user_turn_id":    ids.UserID,
		"model_turn_id":   ids.ModelID,
		"condensed_id":    ids.CondensedID,
	}
	return marshalResult(response)
}

// RetrieveMemory handles the retrieve_memory tool
func (h *Handlers) RetrieveMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	maxResults := request.GetInt("max_results", 5)

	results, err := h.engine.RetrieveRelevant(ctx, conversationID, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("memory search failed: %v", err)), nil
	}

	memories := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		memories = append(memories, map[string]interface{}{
			"condensed_id": r.Memory.ID,
			"turn_id":      r.Memory.RawMemoryID,
			"summary":      r.Memory.Summary,
			"score":        r.Score,
			"timestamp":    r.Memory.Timestamp.Format(time.RFC3339),
		})
	}
	response := map[string]interface{}{
		"memories": memories,
	}
	return marshalResult(response)
}

// GetHistory handles the get_history tool
func (h *Handlers) GetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}
	limit := request.GetInt("limit", 20)
	offset := request.GetInt("offset", 0)

	memories, err := h.engine.Store().PageRawMemories(conversationID, limit, offset)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read history: %v", err)), nil
	}

	turns := make([]map[string]interface{}, 0, len(memories))
	for _, m := range memories {
		turns = append(turns, map[string]interface{}{
			"turn_id":   m.ID,
			"sender":    string(m.Sender),
			"text":      m.Text,
			"timestamp": m.Timestamp.Format(time.RFC3339),
		})
	}
	response := map[string]interface{}{
		"conversation_id": conversationID,
		"turns":           turns,
	}
	return marshalResult(response)
}

// ConversationStatus handles the conversation_status tool
func (h *Handlers) ConversationStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}

	conv, err := h.engine.Header(conversationID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("conversation %s not found", conversationID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load conversation: %v", err)), nil
	}
	pending, err := h.engine.PendingCount()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count pending condensations: %v", err)), nil
	}

	response := map[string]interface{}{
		"conversation_id":       conv.ID,
		"name":                  conv.Name,
		"total_tokens":          conv.TotalTokens,
		"one_third_id":          conv.OneThirdID,
		"two_thirds_id":         conv.TwoThirdsID,
		"compaction_required":   conv.CompactionRequired,
		"pending_condensations": pending,
		"updated_at":            conv.UpdatedAt.Format(time.RFC3339),
	}
	return marshalResult(response)
}

// MarkCompactionHandled handles the mark_compaction_handled tool
func (h *Handlers) MarkCompactionHandled(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}

	if err := h.engine.MarkCompactionHandled(conversationID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("conversation %s not found", conversationID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear compaction flag: %v", err)), nil
	}

	response := map[string]interface{}{
		"conversation_id": conversationID,
		"success":         true,
	}
	return marshalResult(response)
}

// DeleteFrom handles the delete_from tool
func (h *Handlers) DeleteFrom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversationID, err := request.RequireString("conversation_id")
	if err != nil {
		return mcp.NewToolResultError("conversation_id argument is required and must be a string"), nil
	}
	cutoffID := request.GetInt("cutoff_id", 0)
	if cutoffID <= 0 {
		return mcp.NewToolResultError("cutoff_id argument is required and must be a positive number"), nil
	}

	if err := h.engine.DeleteFrom(conversationID, int64(cutoffID)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete from cutoff: %v", err)), nil
	}

	response := map[string]interface{}{
		"conversation_id": conversationID,
		"cutoff_id":       cutoffID,
		"success":         true,
	}
	return marshalResult(response)
}

func marshalResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
