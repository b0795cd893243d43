// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Folios document tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folios/internal/apperr"
	"github.com/starford/folios/internal/docservice"
	"github.com/starford/folios/internal/index"
	"github.com/starford/folios/internal/models"
)

// Server wraps the MCP server with Folios tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
	idx index.DocumentIndex
}

// New creates a new MCP server with all Folios tools registered.
// filterHints, if non-empty, is appended to the list_documents tool
// description so clients can see the catalog's discovered filter values.
// idx may be nil when the search index is disabled.
func New(svc *docservice.Service, idx index.DocumentIndex, filterHints string) *Server {
	s := &Server{svc: svc, idx: idx}

	s.mcp = server.NewMCPServer(
		"Folios",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_document_content",
		mcp.WithDescription("Read the full raw content of a document, frontmatter included."),
		mcp.WithNumber("document_id", mcp.Required(), mcp.Description("Numeric document ID")),
		mcp.WithNumber("version", mcp.Description("Version number; omit or pass 0 for the latest version")),
	), s.getDocumentContent)

	s.mcp.AddTool(mcp.NewTool("get_document_metadata",
		mcp.WithDescription("Get a document's structured metadata: title, author, date, "+
			"any extra frontmatter fields, and its chapter list."),
		mcp.WithNumber("document_id", mcp.Required(), mcp.Description("Numeric document ID")),
		mcp.WithNumber("version", mcp.Description("Version number; omit or pass 0 for the latest version")),
	), s.getDocumentMetadata)

	s.mcp.AddTool(mcp.NewTool("get_chapter_content",
		mcp.WithDescription("Get the content of a single chapter (a level-2 heading section) "+
			"of a document. Use \"Metadata\" for the synthetic section before the first chapter."),
		mcp.WithNumber("document_id", mcp.Required(), mcp.Description("Numeric document ID")),
		mcp.WithString("chapter_title", mcp.Required(), mcp.Description("Chapter title, matched exactly first and case-insensitively second")),
		mcp.WithNumber("version", mcp.Description("Version number; omit or pass 0 for the latest version")),
	), s.getChapterContent)

	listDesc := "List the latest version of every document in the catalog, with optional filters. " +
		"status and type filter by exact match; author filters by case-insensitive substring. " +
		"All given filters must match."
	if filterHints != "" {
		listDesc += "\n\n" + filterHints
	}
	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription(listDesc),
		mcp.WithString("status", mcp.Description("Filter by exact status")),
		mcp.WithString("type", mcp.Description("Filter by exact document type")),
		mcp.WithString("author", mcp.Description("Filter by author substring (case-insensitive)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("list_document_versions",
		mcp.WithDescription("List every stored version of a document in ascending order, "+
			"with its date, status and author."),
		mcp.WithNumber("document_id", mcp.Required(), mcp.Description("Numeric document ID")),
	), s.listDocumentVersions)

	s.mcp.AddTool(mcp.NewTool("diff_document_versions",
		mcp.WithDescription("Compare two versions of a document and return a unified diff "+
			"partitioned by chapter. Unchanged chapters are omitted."),
		mcp.WithNumber("document_id", mcp.Required(), mcp.Description("Numeric document ID")),
		mcp.WithNumber("from_version", mcp.Required(), mcp.Description("Older version to compare from")),
		mcp.WithNumber("to_version", mcp.Description("Newer version; omit or pass 0 for the latest version")),
		mcp.WithBoolean("whole", mcp.Description("Return a single whole-document diff instead of per-chapter changes")),
	), s.diffDocumentVersions)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through indexed document titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the canonical Folios document format contract: "+
			"file naming, frontmatter fields and chapter structure."),
	), s.getDocumentContract)

	// Resource template: one resource per stored document version,
	// read lazily from disk.
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate("folios://documents/{id}/v{version}", "Document version",
			mcp.WithTemplateDescription("Raw Markdown content of one stored document version."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.readDocumentResource,
	)

	s.mcp.AddResource(
		mcp.NewResource("folios://document-format", "Document Format Contract",
			mcp.WithResourceDescription("Canonical Markdown document format for the catalog."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	s.registerVersionResources()

	return s
}

// registerVersionResources adds a static resource per stored document
// version for hosts that prefer enumerable resources over templates.
// Content is read lazily at request time.
func (s *Server) registerVersionResources() {
	for _, r := range s.versionResources() {
		s.mcp.AddResource(r, s.readDocumentResource)
	}
}

// versionResources builds the enumerable resource list from the catalog.
// Each resource is named "{title} (v{n})" and described by the document's
// author, status and type. Unparseable documents are skipped here; the
// resource template still serves their raw content.
func (s *Server) versionResources() []mcp.Resource {
	var out []mcp.Resource
	for _, e := range s.svc.Catalog().Entries() {
		meta, err := s.svc.Metadata(e.ID, e.Version)
		if err != nil {
			continue
		}
		uri := fmt.Sprintf("folios://documents/%d/v%d", e.ID, e.Version)
		name := fmt.Sprintf("%s (v%d)", meta.Title, e.Version)
		desc := fmt.Sprintf("Author: %s | Status: %s | Type: %s",
			meta.Author, metaField(meta, "status"), metaField(meta, "document_type", "type"))
		out = append(out, mcp.NewResource(uri, name,
			mcp.WithResourceDescription(desc),
			mcp.WithMIMEType("text/markdown"),
		))
	}
	return out
}

// metaField reads a pass-through frontmatter field as a string, trying
// keys in order.
func metaField(meta *models.Metadata, keys ...string) string {
	for _, k := range keys {
		if v, ok := meta.Field(k); ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return models.NA
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// errEnvelope marshals a structured error as the tool result text so
// clients always get the same {"error":{code,message}} shape.
func errEnvelope(err error) *mcp.CallToolResult {
	body, _ := json.Marshal(map[string]any{"error": apperr.From(err)})
	return mcp.NewToolResultText(string(body))
}

// Success payloads are wrapped in keyed envelopes so callers distinguish
// outcomes by top-level key: "content", "metadata", "versions", "changes"
// or "diff" on success, "error" on failure. Listings stay bare arrays.
type contentEnvelope struct {
	Content string `json:"content"`
}

type metadataEnvelope struct {
	Metadata *models.Metadata `json:"metadata"`
}

type versionsEnvelope struct {
	Versions []models.VersionInfo `json:"versions"`
}

type changesEnvelope struct {
	Changes []models.ChapterChange `json:"changes"`
}

type diffEnvelope struct {
	Diff string `json:"diff"`
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errEnvelope(err)
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) getDocumentContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	version := req.GetInt("version", 0)

	content, err := s.svc.Content(id, version)
	if err != nil {
		return errEnvelope(err), nil
	}
	return jsonResult(contentEnvelope{Content: content}), nil
}

func (s *Server) getDocumentMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	version := req.GetInt("version", 0)

	meta, err := s.svc.Metadata(id, version)
	if err != nil {
		return errEnvelope(err), nil
	}
	return jsonResult(metadataEnvelope{Metadata: meta}), nil
}

func (s *Server) getChapterContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("chapter_title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	version := req.GetInt("version", 0)

	ch, err := s.svc.Chapter(id, title, version)
	if err != nil {
		return errEnvelope(err), nil
	}
	return jsonResult(ch), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := s.svc.List(docservice.Filters{
		Status: req.GetString("status", ""),
		Type:   req.GetString("type", ""),
		Author: req.GetString("author", ""),
	})
	return jsonResult(items), nil
}

func (s *Server) listDocumentVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	versions, err := s.svc.Versions(id)
	if err != nil {
		return errEnvelope(err), nil
	}
	return jsonResult(versionsEnvelope{Versions: versions}), nil
}

func (s *Server) diffDocumentVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := req.RequireInt("from_version")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to := req.GetInt("to_version", 0)

	if req.GetBool("whole", false) {
		diff, err := s.svc.DiffWhole(id, from, to)
		if err != nil {
			return errEnvelope(err), nil
		}
		return jsonResult(diffEnvelope{Diff: diff}), nil
	}

	changes, err := s.svc.Diff(id, from, to)
	if err != nil {
		return errEnvelope(err), nil
	}
	return jsonResult(changesEnvelope{Changes: changes}), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.idx == nil {
		return mcp.NewToolResultError("search index disabled"), nil
	}
	results, err := s.idx.Search(query, 20)
	if err != nil {
		return errEnvelope(err), nil
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	return jsonResult(results), nil
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

var resourceURIRe = regexp.MustCompile(`^folios://documents/(\d+)/v(\d+)$`)

func (s *Server) readDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	m := resourceURIRe.FindStringSubmatch(req.Params.URI)
	if m == nil {
		return nil, fmt.Errorf("unknown resource: %s", req.Params.URI)
	}
	id, _ := strconv.Atoi(m[1])
	version, _ := strconv.Atoi(m[2])

	name, _, err := s.svc.Catalog().Resolve(id, version)
	if err != nil {
		return nil, err
	}
	data, err := s.svc.Catalog().Read(name)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "folios://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
