package mcp

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/a3tai/mcp-idp-review/internal/config"
	"github.com/a3tai/mcp-idp-review/internal/history"
	"github.com/a3tai/mcp-idp-review/internal/review"
)

const serverManifest = `
name: Mailroom
classes:
  - id: invoice
    name: Invoice
    fields:
      - name: number
        required: true
    rules:
      - keywords: [invoice]
        patterns: ['INV-\d+']
documents:
  - id: d1
    pages:
      - text: "Invoice INV-7 invoice\nNorthwind Traders"
      - text: "Terms and conditions"
  - id: d2
    pages:
      - text: "Cover letter"
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "mail.yaml"), []byte(serverManifest), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Directory = tempDir
	cfg.ServerName = "test-server"

	service, err := review.NewService(review.Options{
		Directory:   cfg.Directory,
		MaxFileSize: cfg.MaxFileSize,
		HistoryMode: history.Linear,
	})
	if err != nil {
		t.Fatalf("failed to create review service: %v", err)
	}
	server, err := NewServer(cfg, service, nil)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server, tempDir
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, h handler, args map[string]interface{}) (string, bool) {
	t.Helper()
	result, err := h(context.Background(), callRequest(args))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil {
		t.Fatal("result should not be nil")
	}
	return extractTextFromResult(result), result.IsError
}

var sessionPattern = regexp.MustCompile(`Session: (\S+)`)

func loadSession(t *testing.T, s *Server) string {
	t.Helper()
	text, isErr := call(t, s.handleLoadBatch, map[string]interface{}{"path": "mail.yaml"})
	if isErr {
		t.Fatalf("load failed: %s", text)
	}
	m := sessionPattern.FindStringSubmatch(text)
	if m == nil {
		t.Fatalf("no session id in %q", text)
	}
	return m[1]
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := NewServer(cfg, nil, nil); err == nil {
		t.Error("expected error for nil service")
	}

	server, _ := newTestServer(t)
	if server.mcpServer == nil {
		t.Error("mcpServer should be initialized")
	}
	if server.logger == nil {
		t.Error("logger should default to a no-op logger")
	}
}

func TestServer_HandleLoadBatch(t *testing.T) {
	server, _ := newTestServer(t)

	text, isErr := call(t, server.handleLoadBatch, map[string]interface{}{"path": "mail.yaml"})
	if isErr {
		t.Fatalf("unexpected error result: %s", text)
	}
	for _, want := range []string{"Loaded batch: Mailroom", "Documents: 2 (2 unclassified)", "Suggested classes for 1", "suggested: invoice"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}

	text, isErr = call(t, server.handleLoadBatch, map[string]interface{}{"path": "../outside.yaml"})
	if !isErr {
		t.Errorf("expected error for path outside the directory, got: %s", text)
	}
}

func TestServer_InvalidArguments(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name    string
		handler handler
		args    map[string]interface{}
	}{
		{"load without path", server.handleLoadBatch, map[string]interface{}{}},
		{"outline without session", server.handleOutline, map[string]interface{}{}},
		{"outline with unknown session", server.handleOutline, map[string]interface{}{"session_id": "nope"}},
		{"range without target", server.handleSelectRange, map[string]interface{}{"session_id": "nope"}},
		{"key without key", server.handleKey, map[string]interface{}{"session_id": "nope"}},
		{"rotate without degrees", server.handleRotatePages, map[string]interface{}{"session_id": "nope"}},
		{"typeahead with bad limit", server.handleTypeahead, map[string]interface{}{
			"session_id": "nope", "document_id": "d1", "query": "a", "limit": "many",
		}},
		{"undo unknown session", server.handleUndo, map[string]interface{}{"session_id": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, tt.handler, tt.args)
			if !isErr {
				t.Errorf("expected error result, got: %s", text)
			}
		})
	}
}

func TestServer_SelectionFlow(t *testing.T) {
	server, _ := newTestServer(t)
	id := loadSession(t, server)

	text, _ := call(t, server.handleSelectRange, map[string]interface{}{"session_id": id, "target": "d2-p1"})
	if !strings.Contains(text, "No anchor") {
		t.Errorf("expected a hint about the missing anchor, got: %s", text)
	}

	text, isErr := call(t, server.handleSelect, map[string]interface{}{"session_id": id, "ids": "d1-p2"})
	if isErr {
		t.Fatalf("select failed: %s", text)
	}

	text, isErr = call(t, server.handleSelectRange, map[string]interface{}{"session_id": id, "target": "d2-p1"})
	if isErr {
		t.Fatalf("range failed: %s", text)
	}
	if !strings.Contains(text, "Selected pages (2): d1-p2, d2-p1") {
		t.Errorf("unexpected range result: %s", text)
	}

	// JSON arrays work as well as comma separated strings
	text, _ = call(t, server.handleSelect, map[string]interface{}{
		"session_id": id, "view": "documents", "ids": []interface{}{"d2", "d1"}, "mode": "single",
	})
	if !strings.Contains(text, "Selected documents (2): d1, d2") {
		t.Errorf("unexpected select result: %s", text)
	}

	text, _ = call(t, server.handleKey, map[string]interface{}{"session_id": id, "key": "right"})
	if !strings.Contains(text, "Focus: documents d1") {
		t.Errorf("unexpected key result: %s", text)
	}
}

func TestServer_ReviewToCompletion(t *testing.T) {
	server, tempDir := newTestServer(t)
	id := loadSession(t, server)

	text, _ := call(t, server.handleComplete, map[string]interface{}{"session_id": id})
	if !strings.Contains(text, "Batch is not complete (2 problem(s))") {
		t.Fatalf("unexpected completion result: %s", text)
	}

	steps := []struct {
		handler handler
		args    map[string]interface{}
		want    string
	}{
		{server.handleRejectDocuments, map[string]interface{}{"session_id": id, "ids": "d2"}, "reject 1 documents"},
		{server.handleMoveDocuments, map[string]interface{}{"session_id": id, "ids": "d1", "class_id": "invoice"}, "move 1 documents to invoice"},
		{server.handleRotatePages, map[string]interface{}{"session_id": id, "ids": "d1-p2", "degrees": float64(90)}, "rotate 1 pages by 90"},
		{server.handleSetField, map[string]interface{}{
			"session_id": id, "document_id": "d1", "field": "number", "value": "INV-7",
		}, "set number of d1"},
	}
	for _, step := range steps {
		text, isErr := call(t, step.handler, step.args)
		if isErr || !strings.Contains(text, step.want) {
			t.Fatalf("expected %q, got: %s", step.want, text)
		}
	}

	text, _ = call(t, server.handleHistory, map[string]interface{}{"session_id": id})
	if !strings.Contains(text, "> set number of d1") {
		t.Errorf("unexpected history: %s", text)
	}

	text, _ = call(t, server.handleComplete, map[string]interface{}{"session_id": id})
	if !strings.Contains(text, "Batch complete: 2 documents") {
		t.Fatalf("unexpected completion result: %s", text)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "mail.result.yaml")); err != nil {
		t.Errorf("expected exported result: %v", err)
	}
}

func TestServer_UndoRedo(t *testing.T) {
	server, _ := newTestServer(t)
	id := loadSession(t, server)

	text, _ := call(t, server.handleUndo, map[string]interface{}{"session_id": id})
	if !strings.Contains(text, "nothing to undo") {
		t.Errorf("expected nothing to undo, got: %s", text)
	}

	call(t, server.handleSplitDocument, map[string]interface{}{"session_id": id, "page_id": "d1-p2"})

	text, isErr := call(t, server.handleUndo, map[string]interface{}{"session_id": id})
	if isErr || !strings.Contains(text, "split at d1-p2 (undone)") {
		t.Errorf("unexpected undo result: %s", text)
	}

	text, isErr = call(t, server.handleRedo, map[string]interface{}{"session_id": id})
	if isErr || !strings.Contains(text, "> split at d1-p2") {
		t.Errorf("unexpected redo result: %s", text)
	}
}

func TestServer_HandleTypeahead(t *testing.T) {
	server, _ := newTestServer(t)
	id := loadSession(t, server)

	text, isErr := call(t, server.handleTypeahead, map[string]interface{}{
		"session_id": id, "document_id": "d1", "query": "northw",
	})
	if isErr {
		t.Fatalf("typeahead failed: %s", text)
	}
	if !strings.Contains(text, "1. Northwind") || !strings.Contains(text, "Suggestion: Northwind") {
		t.Errorf("unexpected typeahead result: %s", text)
	}

	text, _ = call(t, server.handleTypeahead, map[string]interface{}{
		"session_id": id, "document_id": "d1", "query": "zzz",
	})
	if !strings.Contains(text, "No matches") {
		t.Errorf("expected no matches, got: %s", text)
	}
}

func TestServer_HandleServerInfo(t *testing.T) {
	server, tempDir := newTestServer(t)
	loadSession(t, server)

	text, isErr := call(t, server.handleServerInfo, map[string]interface{}{})
	if isErr {
		t.Fatalf("server info failed: %s", text)
	}
	for _, want := range []string{"test-server", tempDir, "Open Sessions (1)", "Mailroom", "• idp_select_range", "Usage Guide"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in server info", want)
		}
	}
}

func TestFormatMethods(t *testing.T) {
	server, _ := newTestServer(t)

	text := server.formatHistoryResult(&review.HistoryResult{
		Mode:     "branching",
		Entries:  []history.Entry{{Label: "a", Current: true}},
		Branches: []history.Branch{{Index: 0, Label: "b"}, {Index: 1, Label: "c", Active: true}},
		CanUndo:  true,
	})
	if !strings.Contains(text, "1. c (active)") || !strings.Contains(text, "> a") {
		t.Errorf("unexpected history formatting: %s", text)
	}

	text = server.formatCompleteResult(&review.CompleteResult{Problems: []string{"x", "y"}})
	if !strings.Contains(text, "2. y") {
		t.Errorf("unexpected completion formatting: %s", text)
	}

	text = server.formatSelectionResult(&review.SelectionResult{View: "pages"})
	if !strings.Contains(text, "(none)") || !strings.Contains(text, "Selection unchanged") {
		t.Errorf("unexpected selection formatting: %s", text)
	}
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
