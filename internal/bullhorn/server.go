package bullhorn

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Server exposes the Bullhorn query operations as MCP tools
type Server struct {
	client          *Client
	logger          zerolog.Logger
	mcpServer       *server.MCPServer
	serverTransport string
}

// NewServer creates a new MCP server that exposes the Bullhorn client
func NewServer(client *Client, serverTransport string, logger zerolog.Logger) (*Server, error) {
	// Create MCP server
	mcpServer := server.NewMCPServer(
		"bullhorn-crm",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithInstructions("Query Bullhorn CRM data - jobs, candidates, and placements"),
	)

	s := &Server{
		client:          client,
		logger:          logger,
		mcpServer:       mcpServer,
		serverTransport: serverTransport,
	}

	// Register all tools
	s.registerTools()

	return s, nil
}

// Start starts the MCP server using stdio or streamable-http transport
func (s *Server) Start(listenAddr string) error {
	switch s.serverTransport {
	case "stdio":
		return server.ServeStdio(s.mcpServer)
	case "streamable-http":
		httpServer := server.NewStreamableHTTPServer(
			s.mcpServer,
			server.WithEndpointPath("/mcp"),
		)
		return httpServer.Start(listenAddr)
	default:
		return fmt.Errorf("unsupported server transport: %s", s.serverTransport)
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// List jobs
	listJobsTool := mcp.NewTool("list_jobs",
		mcp.WithDescription("List and filter job orders from Bullhorn CRM"),
		mcp.WithString("query",
			mcp.Description("Lucene search query (e.g., \"title:Engineer AND isOpen:1\")"),
		),
		mcp.WithString("status",
			mcp.Description("Filter by job status"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (1-500, default 20)"),
		),
		mcp.WithString("fields",
			mcp.Description("Comma-separated fields to return"),
		),
	)
	s.mcpServer.AddTool(listJobsTool, s.handleListJobs)

	// List candidates
	listCandidatesTool := mcp.NewTool("list_candidates",
		mcp.WithDescription("List and filter candidates from Bullhorn CRM"),
		mcp.WithString("query",
			mcp.Description("Lucene search query (e.g., \"lastName:Smith\" or \"skillSet:Python\")"),
		),
		mcp.WithString("status",
			mcp.Description("Filter by candidate status"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (1-500, default 20)"),
		),
		mcp.WithString("fields",
			mcp.Description("Comma-separated fields to return"),
		),
	)
	s.mcpServer.AddTool(listCandidatesTool, s.handleListCandidates)

	// Get job
	getJobTool := mcp.NewTool("get_job",
		mcp.WithDescription("Get details for a specific job order by ID"),
		mcp.WithNumber("job_id",
			mcp.Required(),
			mcp.Description("The JobOrder ID"),
		),
		mcp.WithString("fields",
			mcp.Description("Comma-separated fields to return (default: all common fields)"),
		),
	)
	s.mcpServer.AddTool(getJobTool, s.handleGetJob)

	// Get candidate
	getCandidateTool := mcp.NewTool("get_candidate",
		mcp.WithDescription("Get details for a specific candidate by ID"),
		mcp.WithNumber("candidate_id",
			mcp.Required(),
			mcp.Description("The Candidate ID"),
		),
		mcp.WithString("fields",
			mcp.Description("Comma-separated fields to return (default: all common fields)"),
		),
	)
	s.mcpServer.AddTool(getCandidateTool, s.handleGetCandidate)

	// Search entities
	searchEntitiesTool := mcp.NewTool("search_entities",
		mcp.WithDescription("Search any Bullhorn entity type using Lucene query syntax"),
		mcp.WithString("entity",
			mcp.Required(),
			mcp.Description("Entity type (JobOrder, Candidate, Placement, ClientCorporation, ClientContact, etc.)"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Lucene search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (1-500, default 20)"),
		),
		mcp.WithString("fields",
			mcp.Description("Comma-separated fields to return"),
		),
	)
	s.mcpServer.AddTool(searchEntitiesTool, s.handleSearchEntities)

	// Query entities
	queryEntitiesTool := mcp.NewTool("query_entities",
		mcp.WithDescription("Query Bullhorn entities using SQL-like WHERE syntax"),
		mcp.WithString("entity",
			mcp.Required(),
			mcp.Description("Entity type (JobOrder, Candidate, etc.)"),
		),
		mcp.WithString("where",
			mcp.Required(),
			mcp.Description("WHERE clause (e.g., \"salary > 100000 AND status='Active'\")"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (1-500, default 20)"),
		),
		mcp.WithString("fields",
			mcp.Description("Comma-separated fields to return"),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort order (e.g., \"-dateAdded\" for newest first)"),
		),
	)
	s.mcpServer.AddTool(queryEntitiesTool, s.handleQueryEntities)

	// Get entity metadata
	getMetadataTool := mcp.NewTool("get_entity_metadata",
		mcp.WithDescription("Get the metadata schema for a Bullhorn entity type, including available fields"),
		mcp.WithString("entity",
			mcp.Required(),
			mcp.Description("Entity type (JobOrder, Candidate, etc.)"),
		),
	)
	s.mcpServer.AddTool(getMetadataTool, s.handleGetMetadata)
}
