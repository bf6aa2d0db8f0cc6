package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"seam/internal/config"
	"seam/internal/errors"
	"seam/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, baseDir string) *Handlers {
	return &Handlers{db: db, cfg: cfg, baseDir: baseDir}
}

// Request types

// IngestRequest represents the arguments for document_ingest.
type IngestRequest struct {
	OwnerID    string `json:"owner_id"`
	Title      string `json:"title,omitempty"`
	Text       string `json:"text"`
	SourceType string `json:"source_type,omitempty"`
}

// ListDocumentsRequest represents the arguments for document_list.
type ListDocumentsRequest struct {
	OwnerID string `json:"owner_id"`
}

// FetchRequest represents the arguments for document_fetch.
type FetchRequest struct {
	ID      string `json:"id"`
	Version *int   `json:"version,omitempty"`
}

// UpdateDocumentRequest represents the arguments for document_update.
type UpdateDocumentRequest struct {
	ID     string  `json:"id"`
	UserID string  `json:"user_id"`
	Title  *string `json:"title,omitempty"`
	Text   *string `json:"text,omitempty"`
}

// ListVersionsRequest represents the arguments for document_versions.
type ListVersionsRequest struct {
	ID string `json:"id"`
}

// IDRequest represents the arguments for tools that take a single ID.
type IDRequest struct {
	ID string `json:"id"`
}

// ExportRequest represents the arguments for document_export.
type ExportRequest struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
}

// ReconcileRequest represents the arguments for segment_reconcile.
type ReconcileRequest struct {
	DocumentID string `json:"document_id"`
	Mode       string `json:"mode"`
}

// ListSegmentsRequest represents the arguments for segment_list.
type ListSegmentsRequest struct {
	DocumentID string `json:"document_id"`
	Mode       string `json:"mode,omitempty"`
	Page       int    `json:"page,omitempty"`
	PageSize   int    `json:"page_size,omitempty"`
}

// GetSegmentRequest represents the arguments for segment_get.
type GetSegmentRequest struct {
	ID             string `json:"id"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// CreateSegmentRequest represents the arguments for segment_create.
type CreateSegmentRequest struct {
	DocumentID string  `json:"document_id"`
	Mode       string  `json:"mode"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
}

// UpdateSegmentRequest represents the arguments for segment_update.
type UpdateSegmentRequest struct {
	ID      string  `json:"id"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Start   *int    `json:"start,omitempty"`
	End     *int    `json:"end,omitempty"`
}

// BulkDeleteSegmentsRequest represents the arguments for segment_bulk_delete.
type BulkDeleteSegmentsRequest struct {
	DocumentID    string `json:"document_id"`
	Mode          string `json:"mode,omitempty"`
	IncludeManual bool   `json:"include_manual,omitempty"`
}

// InventoryRequest represents the arguments for segment_inventory.
type InventoryRequest struct {
	DocumentID string `json:"document_id"`
}

// CreateLinkRequest represents the arguments for link_create.
type CreateLinkRequest struct {
	FromSegmentID string  `json:"from_segment_id"`
	ToSegmentID   string  `json:"to_segment_id"`
	LinkType      string  `json:"link_type"`
	Notes         *string `json:"notes,omitempty"`
	UserID        string  `json:"user_id"`
}

// ListLinksRequest represents the arguments for link_list.
type ListLinksRequest struct {
	SegmentID string `json:"segment_id"`
	Direction string `json:"direction,omitempty"`
}

// CreateFolderRequest represents the arguments for folder_create.
type CreateFolderRequest struct {
	OwnerID    string `json:"owner_id"`
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
}

// ListFoldersRequest represents the arguments for folder_list.
type ListFoldersRequest struct {
	DocumentID string `json:"document_id"`
}

// FolderItemRequest represents the arguments for folder_add and folder_remove.
type FolderItemRequest struct {
	FolderID  string `json:"folder_id"`
	SegmentID string `json:"segment_id"`
}

// FolderItemsRequest represents the arguments for folder_items.
type FolderItemsRequest struct {
	FolderID string `json:"folder_id"`
}

// RecycleListRequest represents the arguments for recycle_list.
type RecycleListRequest struct {
	OwnerID    string `json:"owner_id"`
	DocumentID string `json:"document_id,omitempty"`
}

// PurgeRequest represents the arguments for recycle_purge.
type PurgeRequest struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// PurgeExpiredRequest represents the arguments for recycle_purge_expired.
type PurgeExpiredRequest struct {
	Days *int `json:"days,omitempty"`
}

// Handler implementations

// HandleIngest handles the document_ingest tool call.
func (h *Handlers) HandleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IngestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Ingest(ctx, h.db, ops.IngestInput{
		OwnerID:    input.OwnerID,
		Title:      input.Title,
		Text:       input.Text,
		SourceType: input.SourceType,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListDocuments handles the document_list tool call.
func (h *Handlers) HandleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListDocumentsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListDocuments(ctx, h.db, ops.ListDocumentsInput{OwnerID: input.OwnerID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the document_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.FetchDocument(ctx, h.db, h.cfg, ops.FetchDocumentInput{
		DocumentID: input.ID,
		Version:    input.Version,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdateDocument handles the document_update tool call.
func (h *Handlers) HandleUpdateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateDocumentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.PatchDocument(ctx, h.db, h.cfg, ops.PatchDocumentInput{
		DocumentID: input.ID,
		UserID:     input.UserID,
		Title:      input.Title,
		Text:       input.Text,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListVersions handles the document_versions tool call.
func (h *Handlers) HandleListVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListVersionsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListVersions(ctx, h.db, h.cfg, ops.ListVersionsInput{DocumentID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeleteDocument handles the document_delete tool call.
func (h *Handlers) HandleDeleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteDocument(ctx, h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRestoreDocument handles the document_restore tool call.
func (h *Handlers) HandleRestoreDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RestoreDocument(ctx, h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the document_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, ops.ExportInput{
		DocumentID: input.ID,
		Path:       input.Path,
		BaseDir:    h.baseDir,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleReconcile handles the segment_reconcile tool call.
func (h *Handlers) HandleReconcile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReconcileRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Reconcile(ctx, h.db, h.cfg, ops.ReconcileInput{
		DocumentID: input.DocumentID,
		Mode:       input.Mode,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListSegments handles the segment_list tool call.
func (h *Handlers) HandleListSegments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListSegmentsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListSegments(ctx, h.db, ops.ListSegmentsInput{
		DocumentID: input.DocumentID,
		Mode:       input.Mode,
		Page:       input.Page,
		PageSize:   input.PageSize,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGetSegment handles the segment_get tool call.
func (h *Handlers) HandleGetSegment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetSegmentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.GetSegment(ctx, h.db, ops.GetSegmentInput{
		SegmentID:      input.ID,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCreateSegment handles the segment_create tool call.
func (h *Handlers) HandleCreateSegment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateSegmentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateManualSegment(ctx, h.db, ops.CreateManualSegmentInput{
		DocumentID: input.DocumentID,
		Mode:       input.Mode,
		Start:      input.Start,
		End:        input.End,
		Title:      input.Title,
		Content:    input.Content,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdateSegment handles the segment_update tool call.
func (h *Handlers) HandleUpdateSegment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateSegmentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.PatchSegment(ctx, h.db, ops.PatchSegmentInput{
		SegmentID: input.ID,
		Title:     input.Title,
		Content:   input.Content,
		Start:     input.Start,
		End:       input.End,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeleteSegment handles the segment_delete tool call.
func (h *Handlers) HandleDeleteSegment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteSegment(ctx, h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRestoreSegment handles the segment_restore tool call.
func (h *Handlers) HandleRestoreSegment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RestoreSegment(ctx, h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBulkDeleteSegments handles the segment_bulk_delete tool call.
func (h *Handlers) HandleBulkDeleteSegments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BulkDeleteSegmentsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteSegments(ctx, h.db, ops.DeleteSegmentsInput{
		DocumentID:    input.DocumentID,
		Mode:          input.Mode,
		IncludeManual: input.IncludeManual,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleInventory handles the segment_inventory tool call.
func (h *Handlers) HandleInventory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InventoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListSegmentations(ctx, h.db, ops.ListSegmentationsInput{DocumentID: input.DocumentID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCreateLink handles the link_create tool call.
func (h *Handlers) HandleCreateLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateLinkRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateLink(ctx, h.db, ops.CreateLinkInput{
		FromSegmentID: input.FromSegmentID,
		ToSegmentID:   input.ToSegmentID,
		LinkType:      input.LinkType,
		Notes:         input.Notes,
		UserID:        input.UserID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListLinks handles the link_list tool call.
func (h *Handlers) HandleListLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListLinksRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListLinks(ctx, h.db, ops.ListLinksInput{
		SegmentID: input.SegmentID,
		Direction: input.Direction,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeleteLink handles the link_delete tool call.
func (h *Handlers) HandleDeleteLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := ops.DeleteLink(ctx, h.db, input.ID); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"id": input.ID, "deleted": true})
}

// HandleCreateFolder handles the folder_create tool call.
func (h *Handlers) HandleCreateFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateFolderRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateFolder(ctx, h.db, ops.CreateFolderInput{
		OwnerID:    input.OwnerID,
		DocumentID: input.DocumentID,
		Name:       input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListFolders handles the folder_list tool call.
func (h *Handlers) HandleListFolders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListFoldersRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListFolders(ctx, h.db, ops.ListFoldersInput{DocumentID: input.DocumentID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAddToFolder handles the folder_add tool call.
func (h *Handlers) HandleAddToFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FolderItemRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := ops.AddToFolder(ctx, h.db, ops.AddToFolderInput{
		FolderID:  input.FolderID,
		SegmentID: input.SegmentID,
	}); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"folder_id": input.FolderID, "segment_id": input.SegmentID, "added": true})
}

// HandleRemoveFromFolder handles the folder_remove tool call.
func (h *Handlers) HandleRemoveFromFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FolderItemRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := ops.RemoveFromFolder(ctx, h.db, ops.RemoveFromFolderInput{
		FolderID:  input.FolderID,
		SegmentID: input.SegmentID,
	}); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"folder_id": input.FolderID, "segment_id": input.SegmentID, "removed": true})
}

// HandleFolderItems handles the folder_items tool call.
func (h *Handlers) HandleFolderItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FolderItemsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListFolderItems(ctx, h.db, ops.ListFolderItemsInput{FolderID: input.FolderID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeleteFolder handles the folder_delete tool call.
func (h *Handlers) HandleDeleteFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.DeleteFolder(ctx, h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRestoreFolder handles the folder_restore tool call.
func (h *Handlers) HandleRestoreFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RestoreFolder(ctx, h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecycleList handles the recycle_list tool call.
func (h *Handlers) HandleRecycleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecycleListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListDeleted(ctx, h.db, ops.ListDeletedInput{
		OwnerID:    input.OwnerID,
		DocumentID: input.DocumentID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurge handles the recycle_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{
		Entity: input.Entity,
		ID:     input.ID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurgeExpired handles the recycle_purge_expired tool call.
func (h *Handlers) HandlePurgeExpired(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeExpiredRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	days := h.cfg.RetentionDays
	if input.Days != nil {
		days = *input.Days
	}

	result, err := ops.PurgeCustom(ctx, h.db, ops.PurgeCustomInput{Days: days})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecycleStats handles the recycle_stats tool call.
func (h *Handlers) HandleRecycleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.RetentionStats(ctx, h.db, h.cfg.RetentionDays, h.cfg.PurgeEnabled())
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sErr, ok := err.(*errors.SeamError); ok {
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": sErr.Message,
			"status":  sErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
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
