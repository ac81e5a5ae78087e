package review

import (
	"github.com/a3tai/mcp-idp-review/internal/descriptions"
)

const sessionParam = "session_id (required): Session returned by idp_load_batch"

func availableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "idp_load_batch",
			Description: descriptions.GetToolDescription("idp_load_batch"),
			Usage:       "Use this tool to open a manifest, a PDF or a directory of PDFs for review.",
			Parameters:  "path (required): Manifest, PDF or directory (relative paths start at the configured directory)",
		},
		{
			Name:        "idp_outline",
			Description: descriptions.GetToolDescription("idp_outline"),
			Usage:       "Use this tool to see classes, documents, pages, fields, selection and focus.",
			Parameters:  sessionParam,
		},
		{
			Name:        "idp_close_session",
			Description: descriptions.GetToolDescription("idp_close_session"),
			Usage:       "Use this tool to drop a session you do not want to export.",
			Parameters:  sessionParam,
		},
		{
			Name:        "idp_select",
			Description: descriptions.GetToolDescription("idp_select"),
			Usage:       "Use this tool to select, toggle or group-toggle documents or pages.",
			Parameters: sessionParam + ", view (optional): pages or documents, ids (required): comma separated ids, " +
				"mode (optional): none, single or group",
		},
		{
			Name:        "idp_select_range",
			Description: descriptions.GetToolDescription("idp_select_range"),
			Usage:       "Use this tool to select everything between the anchor and a target.",
			Parameters: sessionParam + ", view (optional): pages or documents, target (required): id ending the range, " +
				"append (optional): add to the selection instead of replacing it",
		},
		{
			Name:        "idp_key",
			Description: descriptions.GetToolDescription("idp_key"),
			Usage:       "Use this tool to drive the review cursor with keyboard commands.",
			Parameters:  sessionParam + ", key (required): key name such as down, shift+down, space, tab",
		},
		{
			Name:        "idp_move_documents",
			Description: descriptions.GetToolDescription("idp_move_documents"),
			Usage:       "Use this tool to classify documents.",
			Parameters:  sessionParam + ", class_id (required), ids (optional): defaults to the selected documents",
		},
		{
			Name:        "idp_move_pages",
			Description: descriptions.GetToolDescription("idp_move_pages"),
			Usage:       "Use this tool to move pages that were scanned into the wrong document.",
			Parameters:  sessionParam + ", document_id (required), ids (optional): defaults to the selected pages",
		},
		{
			Name:        "idp_split_document",
			Description: descriptions.GetToolDescription("idp_split_document"),
			Usage:       "Use this tool when one document really holds two.",
			Parameters:  sessionParam + ", page_id (required): first page of the new document",
		},
		{
			Name:        "idp_merge_documents",
			Description: descriptions.GetToolDescription("idp_merge_documents"),
			Usage:       "Use this tool when one document was scanned as several.",
			Parameters:  sessionParam + ", ids (optional): defaults to the selected documents",
		},
		{
			Name:        "idp_rotate_pages",
			Description: descriptions.GetToolDescription("idp_rotate_pages"),
			Usage:       "Use this tool to fix pages scanned sideways or upside down.",
			Parameters:  sessionParam + ", degrees (required): multiple of 90, ids (optional): defaults to the selected pages",
		},
		{
			Name:        "idp_reject_documents",
			Description: descriptions.GetToolDescription("idp_reject_documents"),
			Usage:       "Use this tool for blank pages, duplicates and documents that do not belong in the batch.",
			Parameters:  sessionParam + ", rejected (optional): false restores, ids (optional): defaults to the selected documents",
		},
		{
			Name:        "idp_set_field",
			Description: descriptions.GetToolDescription("idp_set_field"),
			Usage:       "Use this tool to correct an extracted value.",
			Parameters:  sessionParam + ", document_id (required), field (required), value (required)",
		},
		{
			Name:        "idp_verify_field",
			Description: descriptions.GetToolDescription("idp_verify_field"),
			Usage:       "Use this tool to confirm an extracted value.",
			Parameters:  sessionParam + ", document_id (required), field (required)",
		},
		{
			Name:        "idp_typeahead",
			Description: descriptions.GetToolDescription("idp_typeahead"),
			Usage:       "Use this tool to find field values in the recognized text of a document.",
			Parameters:  sessionParam + ", document_id (required), query (required), limit (optional)",
		},
		{
			Name:        "idp_undo",
			Description: descriptions.GetToolDescription("idp_undo"),
			Usage:       "Use this tool to take back the last edit.",
			Parameters:  sessionParam,
		},
		{
			Name:        "idp_redo",
			Description: descriptions.GetToolDescription("idp_redo"),
			Usage:       "Use this tool to reapply an undone edit.",
			Parameters:  sessionParam,
		},
		{
			Name:        "idp_history",
			Description: descriptions.GetToolDescription("idp_history"),
			Usage:       "Use this tool to inspect the edit history and pick a redo branch.",
			Parameters:  sessionParam + ", branch (optional): redo branch to follow",
		},
		{
			Name:        "idp_complete",
			Description: descriptions.GetToolDescription("idp_complete"),
			Usage:       "Use this tool to check what is left and export a finished batch.",
			Parameters:  sessionParam,
		},
		{
			Name:        "idp_server_info",
			Description: descriptions.GetToolDescription("idp_server_info"),
			Usage:       "Use this tool to get server configuration and open sessions.",
			Parameters:  "No parameters required",
		},
	}
}

func usageGuidance() string {
	return `IDP Review Server Usage Guide:

1. OPEN A BATCH:
   - Use 'idp_load_batch' with a manifest, a PDF or a directory of PDFs
   - Keep the session_id from the response
   - Use 'idp_server_info' to find sessions that are already open

2. LOOK AT IT:
   - Use 'idp_outline' to see classes, documents, pages and fields
   - "suggested: <class>" marks the classifier's guess for unclassified documents

3. SELECT:
   - Use 'idp_select' to pick items (mode none, single or group)
   - Use 'idp_select_range' to select everything between the anchor and a target
   - Use 'idp_key' for keyboard style navigation (shift+down extends the selection)

4. FIX STRUCTURE AND CLASSES:
   - 'idp_move_documents' classifies, 'idp_move_pages' moves pages
   - 'idp_split_document' and 'idp_merge_documents' fix document boundaries
   - 'idp_rotate_pages' and 'idp_reject_documents' clean up scans
   - Edit tools act on the selection when no ids are given

5. FIX FIELDS:
   - Use 'idp_typeahead' to find values in the recognized text
   - Use 'idp_set_field' to correct and 'idp_verify_field' to confirm

6. MISTAKES:
   - 'idp_undo', 'idp_redo' and 'idp_history' (branch picks the redo path)

7. FINISH:
   - Use 'idp_complete' to list remaining problems, or export when there are none`
}
