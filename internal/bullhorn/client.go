package bullhorn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// maxCount caps how many records a single search or query may request.
const maxCount = 500

// defaultFields maps well-known entity types to their curated default field
// lists. Entities not listed here fall back to "id" for searches and queries,
// and to "*" for single-entity fetches.
var defaultFields = map[string]string{
	"JobOrder":          "id,title,status,employmentType,dateAdded,startDate,salary,clientCorporation,owner,description,numOpenings,isOpen",
	"Candidate":         "id,firstName,lastName,email,phone,status,dateAdded,occupation,skillSet,owner",
	"Placement":         "id,candidate,jobOrder,status,dateBegin,dateEnd,salary,payRate",
	"ClientCorporation": "id,name,status,phone,address",
	"ClientContact":     "id,firstName,lastName,email,phone,clientCorporation",
}

// Client issues authenticated read-only requests against the Bullhorn REST
// API. It holds a non-owning reference to the SessionManager and re-reads the
// current session on every call, so it always observes renewals.
type Client struct {
	auth       *SessionManager
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client backed by the given session manager.
// httpClient may be nil, in which case a default client is used.
func NewClient(auth *SessionManager, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		auth:       auth,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Do performs an authenticated request against the REST API. The request URL
// is the session's REST base URL with path appended verbatim. A 401 response
// forces a session renewal and the request is retried exactly once with the
// fresh credential; any other non-success status fails immediately.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values) (map[string]any, error) {
	session, err := c.auth.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	resp, body, err := c.send(ctx, method, session, path, params)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Debug().Str("path", path).Msg("session rejected, forcing renewal and retrying once")
		if err := c.auth.Renew(ctx); err != nil {
			return nil, err
		}
		session, err = c.auth.CurrentSession(ctx)
		if err != nil {
			return nil, err
		}
		resp, body, err = c.send(ctx, method, session, path, params)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}
	return result, nil
}

// send executes a single request with the session credential attached.
func (c *Client) send(ctx context.Context, method string, session *Session, path string, params url.Values) (*http.Response, []byte, error) {
	target := session.RestURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("BhRestToken", session.RestToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read API response: %w", err)
	}
	return resp, body, nil
}

// Search finds entities matching a Lucene query. fields may be empty to use
// the entity's curated default list ("id" for unknown entities). count is
// capped at 500. sort is optional.
func (c *Client) Search(ctx context.Context, entity, query, fields string, count, start int, sort string) ([]any, error) {
	if fields == "" {
		fields = searchFields(entity)
	}

	params := url.Values{
		"query":  {query},
		"fields": {fields},
		"count":  {strconv.Itoa(clampCount(count))},
		"start":  {strconv.Itoa(start)},
	}
	if sort != "" {
		params.Set("sort", sort)
	}

	result, err := c.Do(ctx, http.MethodGet, "/search/"+entity, params)
	if err != nil {
		return nil, err
	}
	return dataList(result), nil
}

// Query finds entities matching a SQL-like where clause. Field defaulting and
// count capping follow the same rules as Search. orderBy is optional.
func (c *Client) Query(ctx context.Context, entity, where, fields string, count, start int, orderBy string) ([]any, error) {
	if fields == "" {
		fields = searchFields(entity)
	}

	params := url.Values{
		"where":  {where},
		"fields": {fields},
		"count":  {strconv.Itoa(clampCount(count))},
		"start":  {strconv.Itoa(start)},
	}
	if orderBy != "" {
		params.Set("orderBy", orderBy)
	}

	result, err := c.Do(ctx, http.MethodGet, "/query/"+entity, params)
	if err != nil {
		return nil, err
	}
	return dataList(result), nil
}

// Get fetches a single entity by ID. fields may be empty to use the entity's
// curated default list ("*" for unknown entities).
func (c *Client) Get(ctx context.Context, entity string, id int, fields string) (map[string]any, error) {
	if fields == "" {
		fields = entityFields(entity)
	}

	params := url.Values{"fields": {fields}}

	result, err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/entity/%s/%d", entity, id), params)
	if err != nil {
		return nil, err
	}
	if data, ok := result["data"].(map[string]any); ok {
		return data, nil
	}
	return map[string]any{}, nil
}

// Meta fetches the metadata schema for an entity type. The metadata
// endpoint's top-level shape is the payload, so the body is returned as-is.
func (c *Client) Meta(ctx context.Context, entity string) (map[string]any, error) {
	params := url.Values{"fields": {"*"}}
	return c.Do(ctx, http.MethodGet, "/meta/"+entity, params)
}

// searchFields returns the default field list for searches and queries.
func searchFields(entity string) string {
	if fields, ok := defaultFields[entity]; ok {
		return fields
	}
	return "id"
}

// entityFields returns the default field list for single-entity fetches.
func entityFields(entity string) string {
	if fields, ok := defaultFields[entity]; ok {
		return fields
	}
	return "*"
}

// clampCount caps count at the API maximum.
func clampCount(count int) int {
	if count > maxCount {
		return maxCount
	}
	return count
}

// dataList extracts the data array from a response, defaulting to an empty
// list when the field is absent or not an array.
func dataList(result map[string]any) []any {
	if data, ok := result["data"].([]any); ok {
		return data
	}
	return []any{}
}
