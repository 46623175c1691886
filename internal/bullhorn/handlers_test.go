package bullhorn

import (
	"net/http"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer creates an MCP server wired to the mock backend
func newTestServer(t *testing.T, mock *mockBullhorn) *Server {
	t.Helper()

	client, _ := newTestClient(t, mock)
	server, err := NewServer(client, "stdio", zerolog.Nop())
	require.NoError(t, err)
	return server
}

// callRequest builds a tool request with the given arguments
func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	if args != nil {
		request.Params.Arguments = args
	}
	return request
}

// resultText extracts the text payload from a tool result
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestStatusQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status string
		want   string
	}{
		{name: "no filters", want: "isDeleted:0"},
		{name: "query only", query: "title:Engineer", want: "title:Engineer"},
		{name: "status only", status: "Open", want: `(isDeleted:0) AND status:"Open"`},
		{name: "query and status", query: "isOpen:1", status: "Open", want: `(isOpen:1) AND status:"Open"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusQuery(tt.query, tt.status))
		})
	}
}

func TestHandleListJobsBuildsSearch(t *testing.T) {
	mock := newMockBullhorn(t)
	mock.dataHandler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []any{map[string]any{"id": float64(1), "title": "Engineer"}}})
	}
	server := newTestServer(t, mock)

	result, err := server.handleListJobs(testContext(t), callRequest("list_jobs", map[string]interface{}{
		"status": "Accepting Candidates",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, `"title": "Engineer"`)

	requests := mock.DataRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/search/JobOrder", requests[0].URL.Path)

	query := mock.LastDataQuery()
	assert.Equal(t, `(isDeleted:0) AND status:"Accepting Candidates"`, query.Get("query"))
	assert.Equal(t, "-dateAdded", query.Get("sort"))
	assert.Equal(t, "20", query.Get("count"))
}

func TestHandleListJobsNoArguments(t *testing.T) {
	mock := newMockBullhorn(t)
	server := newTestServer(t, mock)

	result, err := server.handleListJobs(testContext(t), callRequest("list_jobs", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Equal(t, "isDeleted:0", mock.LastDataQuery().Get("query"))
}

func TestHandleListCandidatesLimit(t *testing.T) {
	mock := newMockBullhorn(t)
	server := newTestServer(t, mock)

	_, err := server.handleListCandidates(testContext(t), callRequest("list_candidates", map[string]interface{}{
		"query": "skillSet:Python",
		"limit": float64(50),
	}))
	require.NoError(t, err)

	requests := mock.DataRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/search/Candidate", requests[0].URL.Path)
	assert.Equal(t, "skillSet:Python", mock.LastDataQuery().Get("query"))
	assert.Equal(t, "50", mock.LastDataQuery().Get("count"))
}

func TestHandleGetJob(t *testing.T) {
	mock := newMockBullhorn(t)
	mock.dataHandler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": map[string]any{"id": float64(12345), "title": "SRE"}})
	}
	server := newTestServer(t, mock)

	result, err := server.handleGetJob(testContext(t), callRequest("get_job", map[string]interface{}{
		"job_id": float64(12345),
	}))
	require.NoError(t, err)

	assert.Contains(t, resultText(t, result), `"title": "SRE"`)

	requests := mock.DataRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/entity/JobOrder/12345", requests[0].URL.Path)
}

func TestHandleGetJobMissingID(t *testing.T) {
	mock := newMockBullhorn(t)
	server := newTestServer(t, mock)

	result, err := server.handleGetJob(testContext(t), callRequest("get_job", map[string]interface{}{}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Empty(t, mock.DataRequests())
}

func TestHandleGetCandidate(t *testing.T) {
	mock := newMockBullhorn(t)
	server := newTestServer(t, mock)

	_, err := server.handleGetCandidate(testContext(t), callRequest("get_candidate", map[string]interface{}{
		"candidate_id": float64(99),
		"fields":       "id,email",
	}))
	require.NoError(t, err)

	requests := mock.DataRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/entity/Candidate/99", requests[0].URL.Path)
	assert.Equal(t, "id,email", mock.LastDataQuery().Get("fields"))
}

func TestHandleSearchEntitiesRequiresArguments(t *testing.T) {
	mock := newMockBullhorn(t)
	server := newTestServer(t, mock)

	result, err := server.handleSearchEntities(testContext(t), callRequest("search_entities", map[string]interface{}{
		"query": "status:Approved",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = server.handleSearchEntities(testContext(t), callRequest("search_entities", map[string]interface{}{
		"entity": "Placement",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	assert.Empty(t, mock.DataRequests())
}

func TestHandleQueryEntities(t *testing.T) {
	mock := newMockBullhorn(t)
	server := newTestServer(t, mock)

	_, err := server.handleQueryEntities(testContext(t), callRequest("query_entities", map[string]interface{}{
		"entity":   "JobOrder",
		"where":    "salary > 100000",
		"order_by": "-dateAdded",
	}))
	require.NoError(t, err)

	requests := mock.DataRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/query/JobOrder", requests[0].URL.Path)
	assert.Equal(t, "salary > 100000", mock.LastDataQuery().Get("where"))
	assert.Equal(t, "-dateAdded", mock.LastDataQuery().Get("orderBy"))
}

func TestHandleGetMetadata(t *testing.T) {
	mock := newMockBullhorn(t)
	mock.dataHandler = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"entity": "Candidate", "fields": []any{}})
	}
	server := newTestServer(t, mock)

	result, err := server.handleGetMetadata(testContext(t), callRequest("get_entity_metadata", map[string]interface{}{
		"entity": "Candidate",
	}))
	require.NoError(t, err)

	assert.Contains(t, resultText(t, result), `"entity": "Candidate"`)

	requests := mock.DataRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/meta/Candidate", requests[0].URL.Path)
}

func TestHandlersRenderFailuresAsErrorText(t *testing.T) {
	mock := newMockBullhorn(t)
	mock.dataHandler = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}
	server := newTestServer(t, mock)

	result, err := server.handleListJobs(testContext(t), callRequest("list_jobs", nil))
	require.NoError(t, err)

	// API failures are rendered as text, never raised as tool errors.
	assert.False(t, result.IsError)
	text := resultText(t, result)
	assert.True(t, strings.HasPrefix(text, "ERROR: "), "expected ERROR: prefix, got %q", text)
	assert.Contains(t, text, "500")
}

func TestHandlersRenderAuthFailuresAsErrorText(t *testing.T) {
	mock := newMockBullhorn(t)
	mock.tokenHandler = func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}
	server := newTestServer(t, mock)

	result, err := server.handleListCandidates(testContext(t), callRequest("list_candidates", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.True(t, strings.HasPrefix(text, "ERROR: "), "expected ERROR: prefix, got %q", text)
	assert.Contains(t, text, string(StageTokenExchange))
}
