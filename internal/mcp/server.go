package mcp

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"seam/internal/config"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"document", "segment", "link", "folder", "recycle"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"document_ingest": {
		def:     ingestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIngest },
	},
	"document_list": {
		def:     listDocumentsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListDocuments },
	},
	"document_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"document_update": {
		def:     updateDocumentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdateDocument },
	},
	"document_versions": {
		def:     listVersionsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListVersions },
	},
	"document_delete": {
		def:     deleteDocumentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeleteDocument },
	},
	"document_restore": {
		def:     restoreDocumentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRestoreDocument },
	},
	"document_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"segment_reconcile": {
		def:     reconcileToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReconcile },
	},
	"segment_list": {
		def:     listSegmentsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListSegments },
	},
	"segment_get": {
		def:     getSegmentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGetSegment },
	},
	"segment_create": {
		def:     createSegmentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreateSegment },
	},
	"segment_update": {
		def:     updateSegmentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdateSegment },
	},
	"segment_delete": {
		def:     deleteSegmentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeleteSegment },
	},
	"segment_restore": {
		def:     restoreSegmentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRestoreSegment },
	},
	"segment_bulk_delete": {
		def:     bulkDeleteSegmentsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBulkDeleteSegments },
	},
	"segment_inventory": {
		def:     inventoryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInventory },
	},
	"link_create": {
		def:     createLinkToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreateLink },
	},
	"link_list": {
		def:     listLinksToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListLinks },
	},
	"link_delete": {
		def:     deleteLinkToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeleteLink },
	},
	"folder_create": {
		def:     createFolderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreateFolder },
	},
	"folder_list": {
		def:     listFoldersToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListFolders },
	},
	"folder_add": {
		def:     addToFolderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddToFolder },
	},
	"folder_remove": {
		def:     removeFromFolderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRemoveFromFolder },
	},
	"folder_items": {
		def:     folderItemsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFolderItems },
	},
	"folder_delete": {
		def:     deleteFolderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeleteFolder },
	},
	"folder_restore": {
		def:     restoreFolderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRestoreFolder },
	},
	"recycle_list": {
		def:     recycleListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecycleList },
	},
	"recycle_purge": {
		def:     recyclePurgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurge },
	},
	"recycle_purge_expired": {
		def:     recyclePurgeExpiredToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurgeExpired },
	},
	"recycle_stats": {
		def:     recycleStatsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecycleStats },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "segment_reconcile" → "segment").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	// Build set of types for O(1) lookup
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	// Collect tools belonging to disabled types
	tools := make([]string, 0)
	for name := range toolRegistry {
		typ := GetTypeForTool(name)
		if typeSet[typ] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Seam tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, baseDir, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"seam",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, baseDir)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, baseDir, version string) error {
	s := NewServer(db, cfg, baseDir, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
