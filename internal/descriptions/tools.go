package descriptions

import "sort"

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Session Tools
	IDPLoadBatchDescription = `Open a batch of scanned documents for review.

**When to use:** Starting a review task. The path is a YAML manifest, a single PDF or a directory of PDFs inside the configured directory.

**Why it's useful:** Reads the text layer and form fields of every page, groups pages into documents and classes, and suggests a class for each unclassified document when the manifest declares classification rules.

**Examples:**
• Review a prepared batch: "Load batches/2024-05-claims.yaml"
• Review a scanner drop folder: "Load the scans/ directory, one document per PDF"

**Common workflows:**
1. Load → idp_outline → select documents → idp_move_documents → idp_complete
2. Load → idp_typeahead to fill fields → idp_verify_field → idp_complete

**Best practices:** Keep the returned session_id; every other tool needs it.`

	IDPOutlineDescription = `Show the batch under review as an indented tree.

**When to use:** After any change, to see classes, documents, pages, fields, the current selection ([x]) and the focused element (>).

**Best practices:** Cheap to call; use it to confirm what a selection or edit did.`

	IDPCloseSessionDescription = `Discard a review session without exporting it.`

	// Selection Tools
	IDPSelectDescription = `Select documents or pages without a range.

**When to use:** Picking individual items or whole groups.

**Modes:**
• none: replace the selection with the given ids
• single: toggle each id on its own
• group: if every id is selected deselect them all, otherwise select them all

A class id (documents view) or a document id (pages view) stands for all of its items.

**Examples:**
• "Select doc-3 and doc-7" → view=documents, ids=[doc-3, doc-7], mode=none
• "Toggle every page of doc-2" → view=pages, ids=[doc-2], mode=group

**Best practices:** The ids touched by a select become the anchor for the next idp_select_range call.`

	IDPSelectRangeDescription = `Select the contiguous run between the anchor and a target, like shift-click.

**When to use:** Selecting many neighbouring pages or documents at once. The run follows display order and crosses document and class boundaries.

**Why it's useful:** Works in either direction from the anchor. With append=true the run is added to the current selection instead of replacing it.

**Examples:**
• "Select pages doc-1-p2 through doc-3-p1": select doc-1-p2, then range to doc-3-p1
• "Also select doc-9 to doc-12": select doc-9 (single), then range to doc-12 with append

**Best practices:** Without an anchor the call changes nothing; check the changed flag.`

	IDPKeyDescription = `Send a keyboard command to the review cursor.

**Keys:** up, down, home, end, right/enter (descend), left/escape (ascend), shift+up, shift+down (extend the selection), space (toggle), ctrl+a (toggle all in the current container), tab (switch between the per-document and all-pages views).

**Best practices:** The cursor follows edits and undo; if its element disappears it moves to the nearest remaining one.`

	// Edit Tools
	IDPMoveDocumentsDescription = `Move documents to another class.

**When to use:** Classifying documents. Without ids the selected documents move.

**Examples:**
• "Classify the selected documents as invoices" → class_id=invoice
• "Send doc-4 back to unclassified" → ids=[doc-4], class_id=unclassified

**Best practices:** Fields declared by the target class are added empty; values with the same name are kept.`

	IDPMovePagesDescription = `Move pages to the end of another document. Without ids the selected pages move. Documents left without pages disappear.`

	IDPSplitDocumentDescription = `Split a document so that a new document starts at the given page. The new document stays in the same class.`

	IDPMergeDocumentsDescription = `Merge documents into the first of them in display order. Without ids the selected documents are merged.`

	IDPRotatePagesDescription = `Rotate pages clockwise by a multiple of 90 degrees. Without ids the selected pages rotate.`

	IDPRejectDocumentsDescription = `Mark documents as rejected so they are excluded from field validation, or take the mark away with rejected=false.`

	IDPSetFieldDescription = `Store a corrected value for a field of a document. The field counts as verified.

**When to use:** The extracted value is wrong or missing.

**Best practices:** Use idp_typeahead to find the value in the recognized text instead of typing it by hand.`

	IDPVerifyFieldDescription = `Confirm that the extracted value of a field is correct.`

	IDPTypeaheadDescription = `Look up typed text in the recognized words of a document.

**When to use:** Filling a field from what the scan says. Matches are phrases that start with the query, never crossing a line or page, best first.

**Why it's useful:** Ignores case, accents and punctuation differences. When every occurrence extends to the same phrase, that phrase is returned as the suggestion.

**Examples:**
• query "inv" → matches "Invoice number", "INV-2024-0042"
• query "acme c" → suggestion "ACME Corporation"`

	// History Tools
	IDPUndoDescription = `Undo the last edit. Selections keep whatever still exists afterwards.`

	IDPRedoDescription = `Redo the next edit on the active branch.`

	IDPHistoryDescription = `List the edit history of a session and the redo branches at the current point.

**When to use:** Before undoing several steps, or in branching mode to choose which branch idp_redo follows (branch parameter).`

	// Completion Tools
	IDPCompleteDescription = `Finish the review and export the result.

**When to use:** When every document is classified or rejected and every field is filled and verified.

**Why it's useful:** Lists every remaining problem at once. When there are none, writes <name>.result.yaml next to the batch source.

**Best practices:** Call it any time to see what is left to do; it exports only a complete batch.`

	IDPServerInfoDescription = `Get server configuration, open sessions and usage guidance.

**When to use:** First call in a conversation, or to find the session_id of a batch that is already open.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"idp_load_batch":       IDPLoadBatchDescription,
	"idp_outline":          IDPOutlineDescription,
	"idp_close_session":    IDPCloseSessionDescription,
	"idp_select":           IDPSelectDescription,
	"idp_select_range":     IDPSelectRangeDescription,
	"idp_key":              IDPKeyDescription,
	"idp_move_documents":   IDPMoveDocumentsDescription,
	"idp_move_pages":       IDPMovePagesDescription,
	"idp_split_document":   IDPSplitDocumentDescription,
	"idp_merge_documents":  IDPMergeDocumentsDescription,
	"idp_rotate_pages":     IDPRotatePagesDescription,
	"idp_reject_documents": IDPRejectDocumentsDescription,
	"idp_set_field":        IDPSetFieldDescription,
	"idp_verify_field":     IDPVerifyFieldDescription,
	"idp_typeahead":        IDPTypeaheadDescription,
	"idp_undo":             IDPUndoDescription,
	"idp_redo":             IDPRedoDescription,
	"idp_history":          IDPHistoryDescription,
	"idp_complete":         IDPCompleteDescription,
	"idp_server_info":      IDPServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a sorted list of all available tool names
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
