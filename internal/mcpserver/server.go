// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Medley library tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ahlgren/medley/internal/mediaservice"
	"github.com/ahlgren/medley/internal/models"
	"github.com/ahlgren/medley/internal/search"
)

// Server wraps the MCP server with Medley tools.
type Server struct {
	mcp *server.MCPServer
	svc *mediaservice.Service
}

// New creates a new MCP server with all Medley tools registered.
func New(svc *mediaservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Medley",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_library",
		mcp.WithDescription("Relevance-ranked search across the media library. "+
			"Semantic mode expands the query through a category/keyword taxonomy "+
			"(read it via the medley://taxonomy resource)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text search query")),
		mcp.WithString("type", mcp.Description("Search type: semantic, keyword, or hybrid (default hybrid)")),
		mcp.WithString("media_type", mcp.Description("Restrict to audio or video (default all)")),
		mcp.WithString("date_range", mcp.Description("Restrict by recency: today, week, month, or year")),
	), s.searchLibrary)

	s.mcp.AddTool(mcp.NewTool("list_media",
		mcp.WithDescription("List library records, newest first."),
		mcp.WithString("kind", mcp.Description("Optional kind filter: audio or video (empty for all)")),
	), s.listMedia)

	s.mcp.AddTool(mcp.NewTool("get_media",
		mcp.WithDescription("Fetch a single media record by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Media record id")),
	), s.getMedia)

	s.mcp.AddTool(mcp.NewTool("remove_media",
		mcp.WithDescription("Remove a media record and its file from the library."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Media record id")),
	), s.removeMedia)

	s.mcp.AddTool(mcp.NewTool("import_media",
		mcp.WithDescription("Import a media file into the library from an http(s) URL "+
			"or a base64 data URI. The media kind is derived from the file extension."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Source URL (http, https, or data URI)")),
		mcp.WithString("title", mcp.Description("Display title (defaults to the file name)")),
		mcp.WithString("artist", mcp.Description("Artist/creator name (defaults to Unknown Artist)")),
		mcp.WithString("filename", mcp.Description("Override the stored file name")),
	), s.importMedia)

	s.mcp.AddTool(mcp.NewTool("library_stats",
		mcp.WithDescription("Report the number of records in the library."),
	), s.libraryStats)

	// Resource: the semantic search taxonomy.
	s.mcp.AddResource(
		mcp.NewResource("medley://taxonomy", "Semantic Search Taxonomy",
			mcp.WithResourceDescription("Category-to-keywords table used by semantic search."),
			mcp.WithMIMEType("application/json"),
		),
		s.readTaxonomyResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchLibrary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q := search.Query{Text: query}
	if v, sErr := req.RequireString("type"); sErr == nil {
		q.Mode = search.Mode(v)
	}
	if v, sErr := req.RequireString("media_type"); sErr == nil {
		q.MediaKind = v
	}
	if v, sErr := req.RequireString("date_range"); sErr == nil {
		q.DateRange = search.DateRange(v)
	}

	results, err := s.svc.Search(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listMedia(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := ""
	if v, err := req.RequireString("kind"); err == nil {
		kind = v
	}

	var items []models.MediaItem
	var err error
	switch kind {
	case "":
		items, err = s.svc.ListAll(ctx)
	case string(models.KindAudio):
		items, err = s.svc.ListTracks(ctx)
	case string(models.KindVideo):
		items, err = s.svc.ListVideos(ctx)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown kind: %s", kind)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMedia(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.svc.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(item, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) removeMedia(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", id)), nil
}

func (s *Server) libraryStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.svc.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("library contains %d media records", n)), nil
}

func (s *Server) readTaxonomyResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	table := make(map[string][]string, len(search.Taxonomy))
	for _, cat := range search.Taxonomy {
		table[cat.Name] = cat.Keywords
	}
	out, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "medley://taxonomy",
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
