// ABOUTME: MCP tool definitions and registration for the recall server
// ABOUTME: Defines JSON schemas for the exchange, retrieval, and status tools
package mcp

import (
	"github.com/harper/recall/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, engine *core.Engine) *Handlers {
	handlers := &Handlers{engine: engine}

	// 1. record_exchange - Store one user/model exchange
	server.AddTool(mcp.Tool{
		Name:        "record_exchange",
		Description: "Record one user/model exchange in the conversation memory. The model turn is condensed and indexed in the background.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation the exchange belongs to",
				},
				"user_text": map[string]interface{}{
					"type":        "string",
					"description": "The user's turn",
				},
				"model_text": map[string]interface{}{
					"type":        "string",
					"description": "The model's response turn",
				},
				"total_tokens": map[string]interface{}{
					"type":        "number",
					"description": "Cumulative token count for the conversation after this exchange (optional)",
				},
			},
			Required: []string{"conversation_id", "user_text", "model_text"},
		},
	}, handlers.RecordExchange)

	// 2. retrieve_memory - Hybrid search over condensed memories
	server.AddTool(mcp.Tool{
		Name:        "retrieve_memory",
		Description: "Retrieve the condensed memories most relevant to a query, using keyword prefiltering and semantic reranking.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation to search within",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query for memory retrieval",
				},
				"max_results": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     5,
				},
			},
			Required: []string{"conversation_id", "query"},
		},
	}, handlers.RetrieveMemory)

	// 3. get_history - Page through raw conversation turns
	server.AddTool(mcp.Tool{
		Name:        "get_history",
		Description: "Get raw conversation turns, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation to read",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of turns to return (default: 20)",
					"default":     20,
				},
				"offset": map[string]interface{}{
					"type":        "number",
					"description": "Number of turns to skip from the newest (default: 0)",
					"default":     0,
				},
			},
			Required: []string{"conversation_id"},
		},
	}, handlers.GetHistory)

	// 4. conversation_status - Header, watermarks, and compaction flag
	server.AddTool(mcp.Tool{
		Name:        "conversation_status",
		Description: "Get the conversation header: token usage, threshold watermarks, compaction flag, and condensation backlog.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation to inspect",
				},
			},
			Required: []string{"conversation_id"},
		},
	}, handlers.ConversationStatus)

	// 5. mark_compaction_handled - Lower the compaction flag
	server.AddTool(mcp.Tool{
		Name:        "mark_compaction_handled",
		Description: "Clear the compaction-required flag after the client has compacted its context. Watermarks are preserved.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation whose flag should be cleared",
				},
			},
			Required: []string{"conversation_id"},
		},
	}, handlers.MarkCompactionHandled)

	// 6. delete_from - Rewind a conversation to before a turn
	server.AddTool(mcp.Tool{
		Name:        "delete_from",
		Description: "Delete every turn with ID >= cutoff_id from a conversation, along with derived memories and index entries. Used to rewind before regenerating a response.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"conversation_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation to rewind",
				},
				"cutoff_id": map[string]interface{}{
					"type":        "number",
					"description": "First turn ID to delete; everything at or after it goes",
				},
			},
			Required: []string{"conversation_id", "cutoff_id"},
		},
	}, handlers.DeleteFrom)

	return handlers
}
