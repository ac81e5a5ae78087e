package review

import (
	"github.com/a3tai/mcp-idp-review/internal/history"
	"github.com/a3tai/mcp-idp-review/internal/navigation"
	"github.com/a3tai/mcp-idp-review/internal/ocr"
	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

// Request Types

// LoadBatchRequest opens a review session for a manifest, PDF or directory of PDFs
type LoadBatchRequest struct {
	Path string `json:"path"`
}

// SelectRequest applies a non-range selection. Mode is none, single or group.
type SelectRequest struct {
	SessionID string   `json:"session_id"`
	View      string   `json:"view"`
	IDs       []string `json:"ids"`
	Mode      string   `json:"mode"`
}

// SelectRangeRequest selects the contiguous run from the anchor to Target
type SelectRangeRequest struct {
	SessionID string `json:"session_id"`
	View      string `json:"view"`
	Target    string `json:"target"`
	Append    bool   `json:"append"`
}

// KeyRequest feeds a key press to the navigator
type KeyRequest struct {
	SessionID string `json:"session_id"`
	Key       string `json:"key"`
}

// MoveDocumentsRequest reclassifies documents. Without IDs the selected documents move.
type MoveDocumentsRequest struct {
	SessionID string   `json:"session_id"`
	IDs       []string `json:"ids"`
	ClassID   string   `json:"class_id"`
}

// MovePagesRequest moves pages to the end of a document. Without IDs the selected pages
// move.
type MovePagesRequest struct {
	SessionID  string   `json:"session_id"`
	IDs        []string `json:"ids"`
	DocumentID string   `json:"document_id"`
}

// SplitDocumentRequest starts a new document at PageID
type SplitDocumentRequest struct {
	SessionID string `json:"session_id"`
	PageID    string `json:"page_id"`
}

// MergeDocumentsRequest merges documents into the first of them
type MergeDocumentsRequest struct {
	SessionID string   `json:"session_id"`
	IDs       []string `json:"ids"`
}

// RotatePagesRequest rotates pages clockwise by Degrees
type RotatePagesRequest struct {
	SessionID string   `json:"session_id"`
	IDs       []string `json:"ids"`
	Degrees   int      `json:"degrees"`
}

// RejectDocumentsRequest marks documents as rejected, or takes the mark away
type RejectDocumentsRequest struct {
	SessionID string   `json:"session_id"`
	IDs       []string `json:"ids"`
	Rejected  bool     `json:"rejected"`
}

// SetFieldRequest stores a corrected field value
type SetFieldRequest struct {
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id"`
	Field      string `json:"field"`
	Value      string `json:"value"`
}

// VerifyFieldRequest confirms an extracted field value
type VerifyFieldRequest struct {
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id"`
	Field      string `json:"field"`
}

// TypeaheadRequest looks up typed text in the recognized words of a document
type TypeaheadRequest struct {
	SessionID  string `json:"session_id"`
	DocumentID string `json:"document_id"`
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
}

// HistoryRequest reports the history, optionally switching the redo branch first.
// Branch is ignored when negative.
type HistoryRequest struct {
	SessionID string `json:"session_id"`
	Branch    int    `json:"branch"`
}

// Response Types

// LoadBatchResult describes a newly opened session
type LoadBatchResult struct {
	SessionID   string          `json:"session_id"`
	Name        string          `json:"name"`
	Source      string          `json:"source"`
	Stats       workspace.Stats `json:"stats"`
	Suggestions int             `json:"suggestions"`
	Outline     string          `json:"outline"`
}

// SelectionResult is the selection of one view after an operation
type SelectionResult struct {
	View     string   `json:"view"`
	Selected []string `json:"selected"`
	Anchors  []string `json:"anchors,omitempty"`
	Changed  bool     `json:"changed"`
}

// KeyResult is the navigator state after a key press
type KeyResult struct {
	Focus             navigation.Focus `json:"focus"`
	Changed           bool             `json:"changed"`
	SelectedDocuments []string         `json:"selected_documents"`
	SelectedPages     []string         `json:"selected_pages"`
}

// EditResult describes a recorded structural edit
type EditResult struct {
	Action    string          `json:"action"`
	CreatedID string          `json:"created_id,omitempty"`
	Stats     workspace.Stats `json:"stats"`
}

// TypeaheadResult holds the OCR matches for a query and the single completion, if any
type TypeaheadResult struct {
	Query      string      `json:"query"`
	Matches    []ocr.Match `json:"matches"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// HistoryResult describes the undo history of a session
type HistoryResult struct {
	Mode     string           `json:"mode"`
	Entries  []history.Entry  `json:"entries"`
	Branches []history.Branch `json:"branches,omitempty"`
	CanUndo  bool             `json:"can_undo"`
	CanRedo  bool             `json:"can_redo"`
}

// CompleteResult is the outcome of completing a batch. Problems lists the validation
// errors when the batch is not complete yet.
type CompleteResult struct {
	Complete   bool            `json:"complete"`
	Problems   []string        `json:"problems,omitempty"`
	ExportPath string          `json:"export_path,omitempty"`
	Stats      workspace.Stats `json:"stats"`
}

// ServerInfoResult represents server information and usage guidance
type ServerInfoResult struct {
	ServerName     string        `json:"server_name"`
	Version        string        `json:"version"`
	Directory      string        `json:"directory"`
	MaxFileSize    int64         `json:"max_file_size"`
	HistoryMode    string        `json:"history_mode"`
	HistoryLimit   int           `json:"history_limit"`
	Sessions       []SessionInfo `json:"sessions"`
	AvailableTools []ToolInfo    `json:"available_tools"`
	UsageGuidance  string        `json:"usage_guidance"`
}

// SessionInfo summarizes an open session
type SessionInfo struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Source string          `json:"source"`
	Stats  workspace.Stats `json:"stats"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
