// Package server wires the store engine behind an MCP stdio server.
//
// This is the composition root: it builds the storage adapter, the store,
// and the dispatch gateway, then registers one MCP tool per gateway action.
// The tools are thin forwards — every result is the gateway's JSON response
// envelope, so MCP callers and WebSocket callers see identical payloads.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/anuj1535-hue/superpower-gpt/internal/config"
	"github.com/anuj1535-hue/superpower-gpt/internal/dispatch"
	"github.com/anuj1535-hue/superpower-gpt/internal/storage"
	"github.com/anuj1535-hue/superpower-gpt/internal/store"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewEngine assembles the storage adapter, store, and dispatch gateway, and
// starts snapshot hydration in the background. Both transports (MCP server
// here, the WebSocket bridge in cmd) are built on top of it.
//
// The returned cleanup flushes any pending snapshot write and closes the
// storage adapter; it must be called on shutdown and is always non-nil.
func NewEngine(cfg config.Config, log *zap.Logger) (*dispatch.Gateway, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}

	adapter, err := storage.OpenSQLite(cfg.DataDir)
	if err != nil {
		return nil, func() {}, fmt.Errorf("server: open storage: %w", err)
	}

	st := store.New(store.Config{
		Adapter:          adapter,
		Logger:           log,
		DebounceInterval: cfg.DebounceInterval,
	})
	go st.Hydrate(context.Background())

	gw := dispatch.New(st, log, cfg.ReadyPollInterval, cfg.ReadyPollBudget)

	cleanup := func() {
		st.Flush()
		if err := adapter.Close(); err != nil {
			log.Warn("storage close", zap.Error(err))
		}
	}
	return gw, cleanup, nil
}

// New creates the MCP server with all store tools registered.
func New(cfg config.Config, log *zap.Logger) (*server.MCPServer, func(), error) {
	gw, cleanup, err := NewEngine(cfg, log)
	if err != nil {
		return nil, cleanup, err
	}

	s := server.NewMCPServer(
		"superpower-store",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	registerTools(s, gw)
	return s, cleanup, nil
}

// registerTools maps every dispatch action onto an MCP tool. Structured
// payloads (conversation batches, prompt and folder objects) travel as JSON
// strings, decoded into the dispatch request before forwarding.
func registerTools(s *server.MCPServer, gw *dispatch.Gateway) {
	forward := func(ctx context.Context, req dispatch.Request) (*mcp.CallToolResult, error) {
		resp := gw.Dispatch(ctx, req)
		out, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}

	s.AddTool(mcp.NewTool("store_ping",
		mcp.WithDescription("Liveness check. Answers immediately, even before the store has hydrated."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(ctx, dispatch.Request{Action: dispatch.ActionPing})
	})

	s.AddTool(mcp.NewTool("store_check_subscription",
		mcp.WithDescription("Report the (static) subscription status: always an active paid pro plan."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(ctx, dispatch.Request{Action: dispatch.ActionCheckHasSubscription})
	})

	s.AddTool(mcp.NewTool("store_register_user",
		mcp.WithDescription("Return the singleton local user record."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(ctx, dispatch.Request{Action: dispatch.ActionRegisterUser})
	})

	s.AddTool(mcp.NewTool("store_add_conversations",
		mcp.WithDescription("Upsert-merge a batch of scraped conversations by id. Idempotent."),
		mcp.WithString("conversations",
			mcp.Required(),
			mcp.Description("JSON array of conversation objects; each needs an 'id'"),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var convs []store.Conversation
		if err := json.Unmarshal([]byte(req.GetString("conversations", "[]")), &convs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid 'conversations': %v", err)), nil
		}
		return forward(ctx, dispatch.Request{
			Action:        dispatch.ActionAddConversations,
			Conversations: convs,
		})
	})

	s.AddTool(mcp.NewTool("store_get_conversations",
		mcp.WithDescription("Query conversations: title search, folder or trash filter, newest first, paginated."),
		mcp.WithNumber("page", mcp.Description("1-indexed page (default 1)")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 20)")),
		mcp.WithString("search_term", mcp.Description("Case-insensitive title substring filter")),
		mcp.WithString("folder_id", mcp.Description("Folder id, 'all', or 'trash'")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(ctx, dispatch.Request{
			Action:     dispatch.ActionGetConversations,
			Page:       int(req.GetFloat("page", 0)),
			Limit:      int(req.GetFloat("limit", 0)),
			SearchTerm: req.GetString("search_term", ""),
			FolderID:   req.GetString("folder_id", ""),
		})
	})

	s.AddTool(mcp.NewTool("store_get_prompts",
		mcp.WithDescription("Return all saved prompts."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(ctx, dispatch.Request{Action: dispatch.ActionGetPrompts})
	})

	s.AddTool(mcp.NewTool("store_save_prompt",
		mcp.WithDescription("Upsert a prompt. A prompt without an 'id' gets a fresh one."),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("JSON object with the prompt fields"),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var p store.Prompt
		if err := json.Unmarshal([]byte(req.GetString("prompt", "{}")), &p); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid 'prompt': %v", err)), nil
		}
		return forward(ctx, dispatch.Request{Action: dispatch.ActionSavePrompt, Prompt: &p})
	})

	s.AddTool(mcp.NewTool("store_delete_prompt",
		mcp.WithDescription("Delete the prompt with the given id. Succeeds even when nothing matches."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Prompt id")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(ctx, dispatch.Request{
			Action: dispatch.ActionDeletePrompt,
			ID:     req.GetString("id", ""),
		})
	})

	s.AddTool(mcp.NewTool("store_get_folders",
		mcp.WithDescription("Return all folders."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(ctx, dispatch.Request{Action: dispatch.ActionGetFolders})
	})

	s.AddTool(mcp.NewTool("store_save_folder",
		mcp.WithDescription("Upsert a folder. A folder without an 'id' gets a fresh one."),
		mcp.WithString("folder",
			mcp.Required(),
			mcp.Description("JSON object: id, name, conversationIds"),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var f store.Folder
		if err := json.Unmarshal([]byte(req.GetString("folder", "{}")), &f); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid 'folder': %v", err)), nil
		}
		return forward(ctx, dispatch.Request{Action: dispatch.ActionSaveFolder, Folder: &f})
	})

	s.AddTool(mcp.NewTool("store_get_settings",
		mcp.WithDescription("Return the opaque settings map."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return forward(ctx, dispatch.Request{Action: dispatch.ActionGetSettings})
	})

	s.AddTool(mcp.NewTool("store_set_setting",
		mcp.WithDescription("Store one settings key."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Settings key")),
		mcp.WithString("value", mcp.Description("JSON-encoded value (default null)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var value any
		if raw := req.GetString("value", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &value); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid 'value': %v", err)), nil
			}
		}
		return forward(ctx, dispatch.Request{
			Action: dispatch.ActionSetSetting,
			Key:    req.GetString("key", ""),
			Value:  value,
		})
	})

	s.AddTool(mcp.NewTool("store_add_note",
		mcp.WithDescription("Append an opaque note record."),
		mcp.WithString("note", mcp.Required(), mcp.Description("JSON object")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var note map[string]any
		if err := json.Unmarshal([]byte(req.GetString("note", "{}")), &note); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid 'note': %v", err)), nil
		}
		return forward(ctx, dispatch.Request{Action: dispatch.ActionAddNote, Note: note})
	})
}
