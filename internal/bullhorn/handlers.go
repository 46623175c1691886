package bullhorn

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultLimit is the number of results returned when a tool call does not
// specify one.
const defaultLimit = 20

// stringArg extracts an optional string argument.
func stringArg(args map[string]interface{}, key string) string {
	value, _ := args[key].(string)
	return value
}

// intArg extracts an optional numeric argument, falling back to def. JSON
// numbers arrive as float64.
func intArg(args map[string]interface{}, key string, def int) int {
	if value, ok := args[key].(float64); ok {
		return int(value)
	}
	return def
}

// toolArgs extracts the argument map from a tool request. Requests with no
// arguments at all are treated as an empty map.
func toolArgs(request mcp.CallToolRequest) (map[string]interface{}, bool) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, true
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	return args, ok
}

// formatResult renders data as indented JSON wrapped in a tool result.
func formatResult(data any) (*mcp.CallToolResult, error) {
	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(text)), nil
}

// errorResult renders an authentication or API failure as "ERROR: ..." text.
// The tool surface never raises; it only returns payloads or error text.
func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf("ERROR: %v", err))
}

// statusQuery builds a Lucene search query from an optional free-form query
// and an optional status filter, matching the wire shape
// `(query) AND status:"..."`.
func statusQuery(query, status string) string {
	if query == "" {
		query = "isDeleted:0"
	}
	if status != "" {
		query = fmt.Sprintf("(%s) AND status:%q", query, status)
	}
	return query
}

// handleListJobs handles the list_jobs tool request
func (s *Server) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	query := statusQuery(stringArg(args, "query"), stringArg(args, "status"))

	results, err := s.client.Search(ctx, "JobOrder", query, stringArg(args, "fields"), intArg(args, "limit", defaultLimit), 0, "-dateAdded")
	if err != nil {
		return errorResult(err), nil
	}

	return formatResult(results)
}

// handleListCandidates handles the list_candidates tool request
func (s *Server) handleListCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	query := statusQuery(stringArg(args, "query"), stringArg(args, "status"))

	results, err := s.client.Search(ctx, "Candidate", query, stringArg(args, "fields"), intArg(args, "limit", defaultLimit), 0, "-dateAdded")
	if err != nil {
		return errorResult(err), nil
	}

	return formatResult(results)
}

// handleGetJob handles the get_job tool request
func (s *Server) handleGetJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	jobID, ok := args["job_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("missing or invalid 'job_id' argument"), nil
	}

	result, err := s.client.Get(ctx, "JobOrder", int(jobID), stringArg(args, "fields"))
	if err != nil {
		return errorResult(err), nil
	}

	return formatResult(result)
}

// handleGetCandidate handles the get_candidate tool request
func (s *Server) handleGetCandidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	candidateID, ok := args["candidate_id"].(float64)
	if !ok {
		return mcp.NewToolResultError("missing or invalid 'candidate_id' argument"), nil
	}

	result, err := s.client.Get(ctx, "Candidate", int(candidateID), stringArg(args, "fields"))
	if err != nil {
		return errorResult(err), nil
	}

	return formatResult(result)
}

// handleSearchEntities handles the search_entities tool request
func (s *Server) handleSearchEntities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	entity := stringArg(args, "entity")
	if entity == "" {
		return mcp.NewToolResultError("missing or invalid 'entity' argument"), nil
	}
	query := stringArg(args, "query")
	if query == "" {
		return mcp.NewToolResultError("missing or invalid 'query' argument"), nil
	}

	results, err := s.client.Search(ctx, entity, query, stringArg(args, "fields"), intArg(args, "limit", defaultLimit), 0, "")
	if err != nil {
		return errorResult(err), nil
	}

	return formatResult(results)
}

// handleQueryEntities handles the query_entities tool request
func (s *Server) handleQueryEntities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	entity := stringArg(args, "entity")
	if entity == "" {
		return mcp.NewToolResultError("missing or invalid 'entity' argument"), nil
	}
	where := stringArg(args, "where")
	if where == "" {
		return mcp.NewToolResultError("missing or invalid 'where' argument"), nil
	}

	results, err := s.client.Query(ctx, entity, where, stringArg(args, "fields"), intArg(args, "limit", defaultLimit), 0, stringArg(args, "order_by"))
	if err != nil {
		return errorResult(err), nil
	}

	return formatResult(results)
}

// handleGetMetadata handles the get_entity_metadata tool request
func (s *Server) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := toolArgs(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments type"), nil
	}

	entity := stringArg(args, "entity")
	if entity == "" {
		return mcp.NewToolResultError("missing or invalid 'entity' argument"), nil
	}

	result, err := s.client.Meta(ctx, entity)
	if err != nil {
		return errorResult(err), nil
	}

	return formatResult(result)
}
