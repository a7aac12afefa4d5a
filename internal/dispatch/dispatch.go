// Package dispatch routes inbound request messages to store operations and
// wraps every outcome in a structured response envelope. It is the only
// boundary callers talk to: transports decode a Request, call Dispatch, and
// send back the Response.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/anuj1535-hue/superpower-gpt/internal/store"
)

// Action names the closed set of operations the gateway understands.
type Action string

const (
	ActionPing                 Action = "ping"
	ActionCheckHasSubscription Action = "checkHasSubscription"
	ActionRegisterUser         Action = "registerUser"
	ActionAddConversations     Action = "addConversations"
	ActionGetConversations     Action = "getConversations"
	ActionGetPrompts           Action = "getPrompts"
	ActionSavePrompt           Action = "savePrompt"
	ActionDeletePrompt         Action = "deletePrompt"
	ActionGetFolders           Action = "getFolders"
	ActionSaveFolder           Action = "saveFolder"
	ActionGetSettings          Action = "getSettings"
	ActionSetSetting           Action = "setSetting"
	ActionAddNote              Action = "addNote"
)

// ErrNotReady is returned when the store does not become ready within the
// gateway's retry budget.
var ErrNotReady = errors.New("dispatch: store not ready")

// Request is one inbound message. Only the fields relevant to the named
// action are read; the rest stay zero.
type Request struct {
	Action        Action               `json:"action"`
	Conversations []store.Conversation `json:"conversations,omitempty"`
	Page          int                  `json:"page,omitempty"`
	Limit         int                  `json:"limit,omitempty"`
	SearchTerm    string               `json:"searchTerm,omitempty"`
	FolderID      string               `json:"folderId,omitempty"`
	ID            string               `json:"id,omitempty"`
	Prompt        *store.Prompt        `json:"prompt,omitempty"`
	Folder        *store.Folder        `json:"folder,omitempty"`
	Key           string               `json:"key,omitempty"`
	Value         any                  `json:"value,omitempty"`
	Note          map[string]any       `json:"note,omitempty"`
}

// Response is the wire envelope. Success responses carry "success": true
// plus action-specific fields; failures carry "success": false and "error".
// The ping response bypasses the envelope entirely.
type Response map[string]any

func success(fields Response) Response {
	if fields == nil {
		fields = Response{}
	}
	fields["success"] = true
	return fields
}

func failure(msg string) Response {
	return Response{"success": false, "error": msg}
}

// DecodeRequest parses one JSON request frame.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("dispatch: decode request: %w", err)
	}
	return req, nil
}

// Gateway routes requests to the store once it is ready.
type Gateway struct {
	store        *store.Store
	log          *zap.Logger
	pollInterval time.Duration
	pollBudget   int
}

// New creates a Gateway. pollInterval and pollBudget bound how long a
// request waits for store hydration before failing with ErrNotReady.
func New(st *store.Store, log *zap.Logger, pollInterval time.Duration, pollBudget int) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}
	if pollBudget < 1 {
		pollBudget = 10
	}
	return &Gateway{store: st, log: log, pollInterval: pollInterval, pollBudget: pollBudget}
}

// Dispatch executes one request. It never panics and never returns an
// unstructured error to the caller: internal faults are recovered and
// converted into failure envelopes, unknown actions fail with "Unknown
// action", and a store that never becomes ready fails with ErrNotReady's
// message. Ping short-circuits everything, readiness included.
func (g *Gateway) Dispatch(ctx context.Context, req Request) (resp Response) {
	if req.Action == ActionPing {
		return Response{"status": "ok"}
	}

	defer func() {
		if r := recover(); r != nil {
			g.log.Error("dispatch fault",
				zap.String("action", string(req.Action)), zap.Any("panic", r))
			resp = failure(fmt.Sprint(r))
		}
	}()

	if err := g.awaitReady(ctx); err != nil {
		return failure(err.Error())
	}

	switch req.Action {
	case ActionCheckHasSubscription:
		sub := g.store.CheckSubscription()
		return success(Response{
			"hasSubscription": sub.HasSubscription,
			"plan":            sub.Plan,
			"type":            sub.Type,
		})

	case ActionRegisterUser:
		return success(Response{"user": g.store.RegisterUser()})

	case ActionAddConversations:
		count := g.store.AddConversations(req.Conversations)
		return success(Response{"count": count})

	case ActionGetConversations:
		page := g.store.GetConversations(req.Page, req.Limit, req.SearchTerm, req.FolderID)
		return success(Response{
			"conversations": page.Items,
			"total":         page.Total,
			"page":          page.Page,
			"limit":         page.Limit,
		})

	case ActionGetPrompts:
		return success(Response{"prompts": g.store.GetPrompts()})

	case ActionSavePrompt:
		if req.Prompt == nil {
			return failure("'prompt' is required")
		}
		return success(Response{"prompt": g.store.SavePrompt(*req.Prompt)})

	case ActionDeletePrompt:
		g.store.DeletePrompt(req.ID)
		return success(nil)

	case ActionGetFolders:
		return success(Response{"folders": g.store.GetFolders()})

	case ActionSaveFolder:
		if req.Folder == nil {
			return failure("'folder' is required")
		}
		return success(Response{"folder": g.store.SaveFolder(*req.Folder)})

	case ActionGetSettings:
		return success(Response{"settings": g.store.GetSettings()})

	case ActionSetSetting:
		if req.Key == "" {
			return failure("'key' is required")
		}
		g.store.SetSetting(req.Key, req.Value)
		return success(nil)

	case ActionAddNote:
		g.store.AddNote(req.Note)
		return success(nil)

	default:
		return failure("Unknown action")
	}
}

// awaitReady polls the store's readiness gate up to the retry budget. The
// transition is one-way, so once ready, requests pass straight through.
func (g *Gateway) awaitReady(ctx context.Context) error {
	if g.store.IsReady() {
		return nil
	}
	for i := 0; i < g.pollBudget; i++ {
		select {
		case <-g.store.Ready():
			return nil
		case <-ctx.Done():
			return fmt.Errorf("dispatch: %w", ctx.Err())
		case <-time.After(g.pollInterval):
		}
	}
	return ErrNotReady
}
