package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/config"
	"github.com/hpungsan/captrack/internal/errors"
	"github.com/hpungsan/captrack/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store    *ops.Store
	sessions *ops.Sessions
	cfg      *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *ops.Store, sessions *ops.Sessions, cfg *config.Config) *Handlers {
	return &Handlers{store: store, sessions: sessions, cfg: cfg}
}

// UserRequest carries the optional user override shared by most tools.
type UserRequest struct {
	User string `json:"user,omitempty"`
}

// AddRequest represents the arguments for checkin_add.
type AddRequest struct {
	UserRequest
	Energy    int    `json:"energy"`
	Attention int    `json:"attention"`
	Physical  int    `json:"physical"`
	Journal   string `json:"journal,omitempty"`
	Time      string `json:"time,omitempty"`
}

// ExportRequest represents the arguments for checkin_export.
type ExportRequest struct {
	UserRequest
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for checkin_import.
type ImportRequest struct {
	UserRequest
	Path string `json:"path"`
}

// PruneRequest represents the arguments for checkin_prune.
type PruneRequest struct {
	UserRequest
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// LoginRequest represents the arguments for session_login.
type LoginRequest struct {
	Key string `json:"key"`
}

// HandleAdd handles checkin_add.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	userID, err := h.resolveUser(ctx, input.User)
	if err != nil {
		return errorResult(err), nil
	}

	add := ops.AddInput{
		Capacity: capacity.State{
			Energy:    input.Energy,
			Attention: input.Attention,
			Physical:  input.Physical,
		},
		Journal: input.Journal,
	}
	if input.Time != "" {
		ts, err := ops.ParseClockTime(h.store.Clock().Today(), input.Time)
		if err != nil {
			return errorResult(err), nil
		}
		add.Timestamp = ts
	}

	result, err := h.store.Add(ctx, userID, add)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLog handles checkin_log.
func (h *Handlers) HandleLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := h.decodeUser(ctx, req)
	if err != nil {
		return errorResult(err), nil
	}
	result, err := h.store.Log(ctx, userID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"user": userID, "check_ins": result})
}

// HandleTimeline handles checkin_timeline.
func (h *Handlers) HandleTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := h.decodeUser(ctx, req)
	if err != nil {
		return errorResult(err), nil
	}
	result, err := h.store.Timeline(ctx, userID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"user": userID, "points": result})
}

// HandleSummary handles checkin_summary.
func (h *Handlers) HandleSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := h.decodeUser(ctx, req)
	if err != nil {
		return errorResult(err), nil
	}
	result, err := h.store.Summary(ctx, userID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles checkin_export.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	userID, err := h.resolveUser(ctx, input.User)
	if err != nil {
		return errorResult(err), nil
	}
	result, err := h.store.Export(ctx, h.cfg, ops.ExportInput{UserID: userID, Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles checkin_import.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	userID, err := h.resolveUser(ctx, input.User)
	if err != nil {
		return errorResult(err), nil
	}
	result, err := h.store.Import(ctx, h.cfg, ops.ImportInput{UserID: userID, Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePrune handles checkin_prune.
func (h *Handlers) HandlePrune(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PruneRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	userID, err := h.resolveUser(ctx, input.User)
	if err != nil {
		return errorResult(err), nil
	}
	days := input.OlderThanDays
	if days == nil && h.cfg != nil && h.cfg.PruneAfterDays > 0 {
		days = &h.cfg.PruneAfterDays
	}
	result, err := h.store.Prune(ctx, ops.PruneInput{UserID: userID, OlderThanDays: days})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogin handles session_login.
func (h *Handlers) HandleLogin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LoginRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	sess, err := h.sessions.Login(ctx, input.Key)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(sess)
}

// HandleLogout handles session_logout.
func (h *Handlers) HandleLogout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.sessions.Logout(ctx); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"logged_out": true})
}

// decodeUser decodes a request that takes only the user override.
func (h *Handlers) decodeUser(ctx context.Context, req mcp.CallToolRequest) (string, error) {
	input, err := decode[UserRequest](req)
	if err != nil {
		return "", errors.NewInvalidRequest(err.Error())
	}
	return h.resolveUser(ctx, input.User)
}

// resolveUser returns the explicit user, or the active session's.
func (h *Handlers) resolveUser(ctx context.Context, user string) (string, error) {
	user = strings.TrimSpace(user)
	if user != "" {
		if err := capacity.ValidateUserKey(user); err != nil {
			return "", err
		}
		return user, nil
	}
	sess, err := h.sessions.Restore(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return "", errors.NewInvalidRequest("no active session: call session_login or pass user")
		}
		return "", err
	}
	return sess.UserID, nil
}

// errorResult creates an MCP error result. Wrapped tracker errors keep their
// code; the wrapping context is kept in the message.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var tErr *errors.TrackerError
	if stderrors.As(err, &tErr) {
		message := tErr.Message
		if err != error(tErr) {
			message = strings.Replace(err.Error(), tErr.Error(), tErr.Message, 1)
		}
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": message,
			"status":  tErr.Status,
		}
		// INTERNAL details can carry paths or SQL errors.
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
