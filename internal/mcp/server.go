package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-idp-review/internal/config"
	"github.com/a3tai/mcp-idp-review/internal/descriptions"
	"github.com/a3tai/mcp-idp-review/internal/review"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *review.Service
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *review.Service, logger *zap.Logger) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("review service cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // The tool list never changes at runtime
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()

	return s, nil
}

func sessionArg() mcp.ToolOption {
	return mcp.WithString("session_id",
		mcp.Required(),
		mcp.Description("Session returned by idp_load_batch"),
	)
}

func idsArg(what string) mcp.ToolOption {
	return mcp.WithString("ids",
		mcp.Description(fmt.Sprintf("Comma separated %s ids (defaults to the current selection)", what)),
	)
}

func viewArg() mcp.ToolOption {
	return mcp.WithString("view",
		mcp.Description("Selection view: 'pages' (default) or 'documents'"),
		mcp.Enum("pages", "documents"),
	)
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	add := func(name string, handler server.ToolHandlerFunc, opts ...mcp.ToolOption) {
		opts = append([]mcp.ToolOption{mcp.WithDescription(descriptions.GetToolDescription(name))}, opts...)
		s.mcpServer.AddTool(mcp.NewTool(name, opts...), handler)
	}

	// Sessions
	add("idp_load_batch", s.handleLoadBatch,
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Manifest (.yaml), PDF or directory of PDFs inside the configured directory"),
		),
	)
	add("idp_outline", s.handleOutline, sessionArg())
	add("idp_close_session", s.handleCloseSession, sessionArg())

	// Selection
	add("idp_select", s.handleSelect,
		sessionArg(),
		viewArg(),
		mcp.WithString("ids",
			mcp.Required(),
			mcp.Description("Comma separated ids; a class or document id stands for all its items"),
		),
		mcp.WithString("mode",
			mcp.Description("'none' replaces the selection (default), 'single' toggles each id, 'group' toggles all together"),
			mcp.Enum("none", "single", "group"),
		),
	)
	add("idp_select_range", s.handleSelectRange,
		sessionArg(),
		viewArg(),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Id ending the range"),
		),
		mcp.WithBoolean("append",
			mcp.Description("Add the range to the selection instead of replacing it"),
		),
	)
	add("idp_key", s.handleKey,
		sessionArg(),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Key name: up, down, home, end, right, left, shift+up, shift+down, space, ctrl+a, tab"),
		),
	)

	// Structural edits
	add("idp_move_documents", s.handleMoveDocuments,
		sessionArg(),
		idsArg("document"),
		mcp.WithString("class_id",
			mcp.Required(),
			mcp.Description("Target class"),
		),
	)
	add("idp_move_pages", s.handleMovePages,
		sessionArg(),
		idsArg("page"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document receiving the pages"),
		),
	)
	add("idp_split_document", s.handleSplitDocument,
		sessionArg(),
		mcp.WithString("page_id",
			mcp.Required(),
			mcp.Description("First page of the new document"),
		),
	)
	add("idp_merge_documents", s.handleMergeDocuments, sessionArg(), idsArg("document"))
	add("idp_rotate_pages", s.handleRotatePages,
		sessionArg(),
		idsArg("page"),
		mcp.WithNumber("degrees",
			mcp.Required(),
			mcp.Description("Clockwise rotation, a multiple of 90"),
		),
	)
	add("idp_reject_documents", s.handleRejectDocuments,
		sessionArg(),
		idsArg("document"),
		mcp.WithBoolean("rejected",
			mcp.Description("false takes the rejection away (default true)"),
		),
	)

	// Fields
	add("idp_set_field", s.handleSetField,
		sessionArg(),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document holding the field")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Corrected value")),
	)
	add("idp_verify_field", s.handleVerifyField,
		sessionArg(),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document holding the field")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name")),
	)
	add("idp_typeahead", s.handleTypeahead,
		sessionArg(),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document whose text is searched")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Typed text")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of matches")),
	)

	// History
	add("idp_undo", s.handleUndo, sessionArg())
	add("idp_redo", s.handleRedo, sessionArg())
	add("idp_history", s.handleHistory,
		sessionArg(),
		mcp.WithNumber("branch", mcp.Description("Redo branch to follow from the current point")),
	)

	// Completion
	add("idp_complete", s.handleComplete, sessionArg())
	add("idp_server_info", s.handleServerInfo)
}

// Argument helpers

func optionalString(request mcp.CallToolRequest, name string) string {
	if v, ok := request.GetArguments()[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// stringList accepts a JSON array of strings or a comma separated string
func stringList(request mcp.CallToolRequest, name string) []string {
	var raw []string
	switch v := request.GetArguments()[name].(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	var out []string
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func optionalBool(request mcp.CallToolRequest, name string, def bool) bool {
	switch v := request.GetArguments()[name].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func optionalInt(request mcp.CallToolRequest, name string, def int) (int, error) {
	switch v := request.GetArguments()[name].(type) {
	case nil:
		return def, nil
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be a number, got %q", name, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
}

func (s *Server) fail(tool string, err error) (*mcp.CallToolResult, error) {
	s.logger.Debug("tool failed", zap.String("tool", tool), zap.Error(err))
	return mcp.NewToolResultError(err.Error()), nil
}

// Handler functions
func (s *Server) handleLoadBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.LoadBatch(ctx, review.LoadBatchRequest{Path: path})
	if err != nil {
		return s.fail("idp_load_batch", err)
	}
	return mcp.NewToolResultText(s.formatLoadBatchResult(result)), nil
}

func (s *Server) handleOutline(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outline, err := s.service.Outline(sessionID)
	if err != nil {
		return s.fail("idp_outline", err)
	}
	return mcp.NewToolResultText(outline), nil
}

func (s *Server) handleCloseSession(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.service.CloseSession(sessionID); err != nil {
		return s.fail("idp_close_session", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Session %s closed", sessionID)), nil
}

func (s *Server) handleSelect(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := review.SelectRequest{
		SessionID: sessionID,
		View:      optionalString(request, "view"),
		IDs:       stringList(request, "ids"),
		Mode:      optionalString(request, "mode"),
	}
	result, err := s.service.Select(req)
	if err != nil {
		return s.fail("idp_select", err)
	}
	return mcp.NewToolResultText(s.formatSelectionResult(result)), nil
}

func (s *Server) handleSelectRange(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := review.SelectRangeRequest{
		SessionID: sessionID,
		View:      optionalString(request, "view"),
		Target:    target,
		Append:    optionalBool(request, "append", false),
	}
	result, err := s.service.SelectRange(req)
	if err != nil {
		return s.fail("idp_select_range", err)
	}

	text := s.formatSelectionResult(result)
	if !result.Changed && len(result.Anchors) == 0 && len(result.Selected) == 0 {
		text += "\nNo anchor: select an item with idp_select first, then extend to the target.\n"
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleKey(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.Key(review.KeyRequest{SessionID: sessionID, Key: key})
	if err != nil {
		return s.fail("idp_key", err)
	}
	return mcp.NewToolResultText(s.formatKeyResult(result)), nil
}

func (s *Server) handleMoveDocuments(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	classID, err := request.RequireString("class_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.MoveDocuments(review.MoveDocumentsRequest{
		SessionID: sessionID,
		IDs:       stringList(request, "ids"),
		ClassID:   classID,
	})
	if err != nil {
		return s.fail("idp_move_documents", err)
	}
	return mcp.NewToolResultText(s.formatEditResult(result)), nil
}

func (s *Server) handleMovePages(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.MovePages(review.MovePagesRequest{
		SessionID:  sessionID,
		IDs:        stringList(request, "ids"),
		DocumentID: documentID,
	})
	if err != nil {
		return s.fail("idp_move_pages", err)
	}
	return mcp.NewToolResultText(s.formatEditResult(result)), nil
}

func (s *Server) handleSplitDocument(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pageID, err := request.RequireString("page_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.SplitDocument(review.SplitDocumentRequest{SessionID: sessionID, PageID: pageID})
	if err != nil {
		return s.fail("idp_split_document", err)
	}
	return mcp.NewToolResultText(s.formatEditResult(result)), nil
}

func (s *Server) handleMergeDocuments(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.MergeDocuments(review.MergeDocumentsRequest{
		SessionID: sessionID,
		IDs:       stringList(request, "ids"),
	})
	if err != nil {
		return s.fail("idp_merge_documents", err)
	}
	return mcp.NewToolResultText(s.formatEditResult(result)), nil
}

func (s *Server) handleRotatePages(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := request.GetArguments()["degrees"]; !ok {
		return mcp.NewToolResultError("required argument \"degrees\" not found"), nil
	}
	degrees, err := optionalInt(request, "degrees", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.RotatePages(review.RotatePagesRequest{
		SessionID: sessionID,
		IDs:       stringList(request, "ids"),
		Degrees:   degrees,
	})
	if err != nil {
		return s.fail("idp_rotate_pages", err)
	}
	return mcp.NewToolResultText(s.formatEditResult(result)), nil
}

func (s *Server) handleRejectDocuments(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.RejectDocuments(review.RejectDocumentsRequest{
		SessionID: sessionID,
		IDs:       stringList(request, "ids"),
		Rejected:  optionalBool(request, "rejected", true),
	})
	if err != nil {
		return s.fail("idp_reject_documents", err)
	}
	return mcp.NewToolResultText(s.formatEditResult(result)), nil
}

func (s *Server) handleSetField(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	field, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.SetField(review.SetFieldRequest{
		SessionID:  sessionID,
		DocumentID: documentID,
		Field:      field,
		Value:      value,
	})
	if err != nil {
		return s.fail("idp_set_field", err)
	}
	return mcp.NewToolResultText(s.formatEditResult(result)), nil
}

func (s *Server) handleVerifyField(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	field, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.VerifyField(review.VerifyFieldRequest{
		SessionID:  sessionID,
		DocumentID: documentID,
		Field:      field,
	})
	if err != nil {
		return s.fail("idp_verify_field", err)
	}
	return mcp.NewToolResultText(s.formatEditResult(result)), nil
}

func (s *Server) handleTypeahead(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit, err := optionalInt(request, "limit", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.Typeahead(review.TypeaheadRequest{
		SessionID:  sessionID,
		DocumentID: documentID,
		Query:      query,
		Limit:      limit,
	})
	if err != nil {
		return s.fail("idp_typeahead", err)
	}
	return mcp.NewToolResultText(s.formatTypeaheadResult(result)), nil
}

func (s *Server) handleUndo(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.Undo(sessionID)
	if err != nil {
		return s.fail("idp_undo", err)
	}
	return mcp.NewToolResultText("Undone\n" + s.formatHistoryResult(result)), nil
}

func (s *Server) handleRedo(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.Redo(sessionID)
	if err != nil {
		return s.fail("idp_redo", err)
	}
	return mcp.NewToolResultText("Redone\n" + s.formatHistoryResult(result)), nil
}

func (s *Server) handleHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	branch, err := optionalInt(request, "branch", -1)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.History(review.HistoryRequest{SessionID: sessionID, Branch: branch})
	if err != nil {
		return s.fail("idp_history", err)
	}
	return mcp.NewToolResultText(s.formatHistoryResult(result)), nil
}

func (s *Server) handleComplete(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.Complete(sessionID)
	if err != nil {
		return s.fail("idp_complete", err)
	}
	return mcp.NewToolResultText(s.formatCompleteResult(result)), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.service.ServerInfo(s.config.ServerName, s.config.Version)
	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// Formatting methods
func (s *Server) formatLoadBatchResult(result *review.LoadBatchResult) string {
	text := fmt.Sprintf("Loaded batch: %s\n", result.Name)
	text += fmt.Sprintf("Session: %s\n", result.SessionID)
	text += fmt.Sprintf("Source: %s\n", result.Source)
	text += fmt.Sprintf("Classes: %d, Documents: %d (%d unclassified), Pages: %d\n",
		result.Stats.Classes, result.Stats.Documents, result.Stats.Unclassified, result.Stats.Pages)
	if result.Suggestions > 0 {
		text += fmt.Sprintf("Suggested classes for %d document(s)\n", result.Suggestions)
	}
	text += "\n" + result.Outline
	return text
}

func (s *Server) formatSelectionResult(result *review.SelectionResult) string {
	text := fmt.Sprintf("Selected %s (%d): %s\n", result.View, len(result.Selected), joinOrNone(result.Selected))
	if len(result.Anchors) > 0 {
		text += fmt.Sprintf("Anchor: %s\n", strings.Join(result.Anchors, ", "))
	}
	if !result.Changed {
		text += "Selection unchanged\n"
	}
	return text
}

func (s *Server) formatKeyResult(result *review.KeyResult) string {
	text := fmt.Sprintf("Focus: %s %s\n", result.Focus.Context, joinOrNone(nonEmpty(result.Focus.ID())))
	if result.Focus.ClassID != "" {
		text += fmt.Sprintf("Class: %s\n", result.Focus.ClassID)
	}
	if result.Focus.DocumentID != "" {
		text += fmt.Sprintf("Document: %s\n", result.Focus.DocumentID)
	}
	if result.Changed {
		text += fmt.Sprintf("Selected documents: %s\n", joinOrNone(result.SelectedDocuments))
		text += fmt.Sprintf("Selected pages: %s\n", joinOrNone(result.SelectedPages))
	}
	return text
}

func (s *Server) formatEditResult(result *review.EditResult) string {
	text := fmt.Sprintf("Done: %s\n", result.Action)
	if result.CreatedID != "" {
		text += fmt.Sprintf("Document: %s\n", result.CreatedID)
	}
	text += fmt.Sprintf("Documents: %d (%d unclassified, %d rejected), Pages: %d, Fields verified: %d/%d\n",
		result.Stats.Documents, result.Stats.Unclassified, result.Stats.Rejected, result.Stats.Pages,
		result.Stats.VerifiedFields, result.Stats.Fields)
	return text
}

func (s *Server) formatTypeaheadResult(result *review.TypeaheadResult) string {
	if len(result.Matches) == 0 {
		return fmt.Sprintf("No matches for %q\n", result.Query)
	}
	text := fmt.Sprintf("Matches for %q:\n", result.Query)
	for i, m := range result.Matches {
		text += fmt.Sprintf("%d. %s (page %d, confidence %.2f)", i+1, m.Text, m.Page, m.Confidence)
		if m.Exact {
			text += " exact"
		}
		text += "\n"
	}
	if result.Suggestion != "" {
		text += fmt.Sprintf("Suggestion: %s\n", result.Suggestion)
	}
	return text
}

func (s *Server) formatHistoryResult(result *review.HistoryResult) string {
	text := fmt.Sprintf("History (%s):\n", result.Mode)
	if len(result.Entries) == 0 {
		text += "  (no edits)\n"
	}
	for _, e := range result.Entries {
		marker := "  "
		if e.Current {
			marker = "> "
		}
		line := marker + e.Label
		if e.Undone {
			line += " (undone)"
		}
		text += line + "\n"
	}
	if len(result.Branches) > 1 {
		text += "Redo branches:\n"
		for _, b := range result.Branches {
			active := ""
			if b.Active {
				active = " (active)"
			}
			text += fmt.Sprintf("  %d. %s%s\n", b.Index, b.Label, active)
		}
	}
	text += fmt.Sprintf("Can undo: %t, can redo: %t\n", result.CanUndo, result.CanRedo)
	return text
}

func (s *Server) formatCompleteResult(result *review.CompleteResult) string {
	if result.Complete {
		return fmt.Sprintf("Batch complete: %d documents exported to %s\n", result.Stats.Documents, result.ExportPath)
	}
	text := fmt.Sprintf("Batch is not complete (%d problem(s)):\n", len(result.Problems))
	for i, p := range result.Problems {
		text += fmt.Sprintf("%d. %s\n", i+1, p)
	}
	return text
}

func (s *Server) formatServerInfoResult(result *review.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Directory: %s\n", result.Directory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("↩️  History: %s (limit %d)\n\n", result.HistoryMode, result.HistoryLimit)

	if len(result.Sessions) > 0 {
		text += fmt.Sprintf("📂 Open Sessions (%d):\n", len(result.Sessions))
		for i, sess := range result.Sessions {
			text += fmt.Sprintf("   %d. %s [%s] %d documents, %d unclassified\n",
				i+1, sess.Name, sess.ID, sess.Stats.Documents, sess.Stats.Unclassified)
		}
		text += "\n"
	} else {
		text += "📂 Open Sessions: none\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance
	return text
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}

func nonEmpty(id string) []string {
	if id == "" {
		return nil
	}
	return []string{id}
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Info("starting IDP review server in stdio mode",
		zap.String("directory", s.config.Directory),
		zap.String("history", s.config.HistoryMode))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	s.logger.Warn("server mode not implemented, falling back to stdio",
		zap.String("address", s.config.Address()))
	return s.runStdioMode(ctx)
}
