package web

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"seam/internal/config"
	"seam/internal/errors"
	"seam/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /documents — list an owner's documents.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		ownerID = "default"
	}

	result, err := ops.ListDocuments(r.Context(), h.db, ops.ListDocumentsInput{OwnerID: ownerID})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Documents",
			Version: h.renderer.version,
			Nav:     "documents",
		},
		Documents: result.Documents,
		OwnerID:   ownerID,
	})
}

// HandleDetail handles GET /documents/{id} — view a document at a version.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("document ID is required"))
		return
	}

	input := ops.FetchDocumentInput{DocumentID: id}
	if v := r.URL.Query().Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("version must be an integer"))
			return
		}
		input.Version = &n
	}

	fetched, err := ops.FetchDocument(r.Context(), h.db, h.cfg, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	versions, err := ops.ListVersions(r.Context(), h.db, h.cfg, ops.ListVersionsInput{DocumentID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	inventory, err := ops.ListSegmentations(r.Context(), h.db, ops.ListSegmentationsInput{DocumentID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   fetched.Document.Title,
			Version: h.renderer.version,
			Nav:     "documents",
		},
		Document:      fetched.Document,
		RenderedHTML:  renderMarkdown(fetched.Document.Text),
		Versions:      versions.Versions,
		Segmentations: inventory.Segmentations,
	})
}

// HandleSegments handles GET /documents/{id}/segments — paged segment listing.
func (h *Handlers) HandleSegments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("document ID is required"))
		return
	}

	mode := r.URL.Query().Get("mode")
	input := ops.ListSegmentsInput{
		DocumentID: id,
		Mode:       mode,
		Page:       parseIntParam(r, "page", 1),
		PageSize:   parseIntParam(r, "page_size", 0),
	}

	result, err := ops.ListSegments(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "segments", SegmentsPageData{
		PageData: PageData{
			Title:   "Segments",
			Version: h.renderer.version,
			Nav:     "documents",
		},
		DocumentID: id,
		Mode:       mode,
		Segments:   result.Segments,
		Pagination: result.Pagination,
	})
}

// HandleRecycle handles GET /documents/recycle — the recycle bin.
func (h *Handlers) HandleRecycle(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		ownerID = "default"
	}

	result, err := ops.ListDeleted(r.Context(), h.db, ops.ListDeletedInput{
		OwnerID:    ownerID,
		DocumentID: r.URL.Query().Get("document_id"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "recycle", RecyclePageData{
		PageData: PageData{
			Title:   "Recycle Bin",
			Version: h.renderer.version,
			Nav:     "recycle",
		},
		OwnerID:   ownerID,
		Documents: result.Documents,
		Segments:  result.Segments,
		Folders:   result.Folders,
	})
}

// HandleDelete handles DELETE /documents/{id} — soft-delete a document.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("document ID is required"))
		return
	}

	result, err := ops.DeleteDocument(r.Context(), h.db, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/documents")
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"id":      result.ID,
			"changed": result.Changed,
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/documents", http.StatusFound)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
