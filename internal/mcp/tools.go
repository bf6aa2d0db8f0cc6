package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Names follow the "type_action" convention so whole
// entity types can be disabled at once.

var ingestToolDef = mcp.NewTool("document_ingest",
	mcp.WithDescription("Store a new document. The title and text captured at ingest are the immutable originals that all segmentation offsets refer to."),
	mcp.WithString("owner_id", mcp.Required(), mcp.Description("Owner of the document")),
	mcp.WithString("text", mcp.Required(), mcp.Description("Full document text")),
	mcp.WithString("title", mcp.Description("Document title (default: Untitled)")),
	mcp.WithString("source_type", mcp.Description("Origin of the text, e.g. text, chat, transcript (default: text)")),
)

var listDocumentsToolDef = mcp.NewTool("document_list",
	mcp.WithDescription("List an owner's live documents, newest first."),
	mcp.WithString("owner_id", mcp.Required(), mcp.Description("Owner to list documents for")),
)

var fetchToolDef = mcp.NewTool("document_fetch",
	mcp.WithDescription("Fetch a document at a resolved version. Omit version for the latest, pass 0 for the originals, or N for an exact version."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
	mcp.WithNumber("version", mcp.Description("Version to resolve (omit: latest, 0: originals, N: exact)")),
)

var updateDocumentToolDef = mcp.NewTool("document_update",
	mcp.WithDescription("Append a new version to a document's ledger. The original title and text are never modified."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("User recording the version")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithString("text", mcp.Description("New text")),
)

var listVersionsToolDef = mcp.NewTool("document_versions",
	mcp.WithDescription("List a document's version history, newest first, ending with the virtual version 0 originals entry."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
)

var deleteDocumentToolDef = mcp.NewTool("document_delete",
	mcp.WithDescription("Soft-delete a document. Deleted documents can be restored until the retention window expires."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
)

var restoreDocumentToolDef = mcp.NewTool("document_restore",
	mcp.WithDescription("Restore a soft-deleted document."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
)

var exportToolDef = mcp.NewTool("document_export",
	mcp.WithDescription("Export a document with its versions and segments to a JSONL file."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Document ID")),
	mcp.WithString("path", mcp.Description("Output file path (default: exports dir under the data directory)")),
)

var reconcileToolDef = mcp.NewTool("segment_reconcile",
	mcp.WithDescription("Re-derive a document's auto segments for one mode. Manual segments are preserved and reindexed after the autos."),
	mcp.WithString("document_id", mcp.Required(), mcp.Description("Document ID")),
	mcp.WithString("mode", mcp.Required(), mcp.Description("Segmentation mode: qa or paragraphs")),
)

var listSegmentsToolDef = mcp.NewTool("segment_list",
	mcp.WithDescription("List a document's live segments, optionally filtered to one mode, paged."),
	mcp.WithString("document_id", mcp.Required(), mcp.Description("Document ID")),
	mcp.WithString("mode", mcp.Description("Restrict to one segmentation mode")),
	mcp.WithNumber("page", mcp.Description("Page number, 1-based (default 1)")),
	mcp.WithNumber("page_size", mcp.Description("Rows per page (default 20, max 100)")),
)

var getSegmentToolDef = mcp.NewTool("segment_get",
	mcp.WithDescription("Fetch one segment by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Segment ID")),
	mcp.WithBoolean("include_deleted", mcp.Description("Also match soft-deleted segments")),
)

var createSegmentToolDef = mcp.NewTool("segment_create",
	mcp.WithDescription("Create a manual segment over a span of the document's original text."),
	mcp.WithString("document_id", mcp.Required(), mcp.Description("Document ID")),
	mcp.WithString("mode", mcp.Required(), mcp.Description("Segmentation mode: qa or paragraphs")),
	mcp.WithNumber("start", mcp.Required(), mcp.Description("Start offset into the original text, inclusive")),
	mcp.WithNumber("end", mcp.Required(), mcp.Description("End offset, exclusive")),
	mcp.WithString("title", mcp.Description("Segment title (default: Manual #<n>)")),
	mcp.WithString("content", mcp.Description("Explicit content (default: the text slice)")),
)

var updateSegmentToolDef = mcp.NewTool("segment_update",
	mcp.WithDescription("Edit a segment. Editing an auto segment forks it into a new manual segment; the auto original is untouched."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Segment ID")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithString("content", mcp.Description("Explicit content override")),
	mcp.WithNumber("start", mcp.Description("New start offset (requires end)")),
	mcp.WithNumber("end", mcp.Description("New end offset (requires start)")),
)

var deleteSegmentToolDef = mcp.NewTool("segment_delete",
	mcp.WithDescription("Soft-delete a segment."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Segment ID")),
)

var restoreSegmentToolDef = mcp.NewTool("segment_restore",
	mcp.WithDescription("Restore a soft-deleted segment. If its order position was taken, it moves to the end of the order space."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Segment ID")),
)

var bulkDeleteSegmentsToolDef = mcp.NewTool("segment_bulk_delete",
	mcp.WithDescription("Hard-delete a document's auto segments, per mode or across all modes. Manual segments survive unless include_manual is set."),
	mcp.WithString("document_id", mcp.Required(), mcp.Description("Document ID")),
	mcp.WithString("mode", mcp.Description("Restrict to one segmentation mode")),
	mcp.WithBoolean("include_manual", mcp.Description("Also remove manual segments")),
)

var inventoryToolDef = mcp.NewTool("segment_inventory",
	mcp.WithDescription("Summarize a document's live segmentations per mode."),
	mcp.WithString("document_id", mcp.Required(), mcp.Description("Document ID")),
)

var createLinkToolDef = mcp.NewTool("link_create",
	mcp.WithDescription("Create a typed link between two segments."),
	mcp.WithString("from_segment_id", mcp.Required(), mcp.Description("Source segment ID")),
	mcp.WithString("to_segment_id", mcp.Required(), mcp.Description("Target segment ID")),
	mcp.WithString("link_type", mcp.Required(), mcp.Description("One of: supports, contradicts, refines, depends_on, related")),
	mcp.WithString("user_id", mcp.Required(), mcp.Description("User creating the link")),
	mcp.WithString("notes", mcp.Description("Free-form notes")),
)

var listLinksToolDef = mcp.NewTool("link_list",
	mcp.WithDescription("List the links touching a segment."),
	mcp.WithString("segment_id", mcp.Required(), mcp.Description("Segment ID")),
	mcp.WithString("direction", mcp.Description("outgoing, incoming, or both (default both)")),
)

var deleteLinkToolDef = mcp.NewTool("link_delete",
	mcp.WithDescription("Delete a segment link."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Link ID")),
)

var createFolderToolDef = mcp.NewTool("folder_create",
	mcp.WithDescription("Create a folder for collecting a document's segments."),
	mcp.WithString("owner_id", mcp.Required(), mcp.Description("Owner of the folder")),
	mcp.WithString("document_id", mcp.Required(), mcp.Description("Document the folder belongs to")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Folder name")),
)

var listFoldersToolDef = mcp.NewTool("folder_list",
	mcp.WithDescription("List a document's live folders with item counts."),
	mcp.WithString("document_id", mcp.Required(), mcp.Description("Document ID")),
)

var addToFolderToolDef = mcp.NewTool("folder_add",
	mcp.WithDescription("Add a segment to a folder. The segment must belong to the folder's document."),
	mcp.WithString("folder_id", mcp.Required(), mcp.Description("Folder ID")),
	mcp.WithString("segment_id", mcp.Required(), mcp.Description("Segment ID")),
)

var removeFromFolderToolDef = mcp.NewTool("folder_remove",
	mcp.WithDescription("Remove a segment from a folder."),
	mcp.WithString("folder_id", mcp.Required(), mcp.Description("Folder ID")),
	mcp.WithString("segment_id", mcp.Required(), mcp.Description("Segment ID")),
)

var folderItemsToolDef = mcp.NewTool("folder_items",
	mcp.WithDescription("List the segments collected in a folder, in insertion order."),
	mcp.WithString("folder_id", mcp.Required(), mcp.Description("Folder ID")),
)

var deleteFolderToolDef = mcp.NewTool("folder_delete",
	mcp.WithDescription("Soft-delete a folder. Its segments are not affected."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Folder ID")),
)

var restoreFolderToolDef = mcp.NewTool("folder_restore",
	mcp.WithDescription("Restore a soft-deleted folder."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Folder ID")),
)

var recycleListToolDef = mcp.NewTool("recycle_list",
	mcp.WithDescription("List an owner's soft-deleted documents, segments, and folders."),
	mcp.WithString("owner_id", mcp.Required(), mcp.Description("Owner ID")),
	mcp.WithString("document_id", mcp.Description("Restrict segments to one document")),
)

var recyclePurgeToolDef = mcp.NewTool("recycle_purge",
	mcp.WithDescription("Permanently delete one soft-deleted entity. Live entities must be deleted first."),
	mcp.WithString("entity", mcp.Required(), mcp.Description("One of: document, segment, folder")),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entity ID")),
)

var recyclePurgeExpiredToolDef = mcp.NewTool("recycle_purge_expired",
	mcp.WithDescription("Permanently delete every entity whose tombstone is older than the retention window."),
	mcp.WithNumber("days", mcp.Description("Retention window in days (default: configured retention)")),
)

var recycleStatsToolDef = mcp.NewTool("recycle_stats",
	mcp.WithDescription("Report per-entity tombstone counts and how many are past the retention window."),
)
