// Package bullhorn provides the Bullhorn CRM MCP server implementation.
//
// This package includes the Bullhorn credential lifecycle (OAuth 2.0
// authorization-code and refresh-token flows plus the proprietary REST-session
// login), an authenticated read-only REST client, an interactive console for
// exploring CRM data, and an MCP server implementation that exposes the query
// operations as MCP tools.
//
// # Credential Lifecycle
//
// Bullhorn uses a two-layer token model. An OAuth access token is obtained
// through a password-style authorization-code flow (or renewed with a refresh
// token), and is then exchanged at the REST login endpoint for a short-lived
// BhRestToken session bound to a per-tenant REST base URL. Sessions are
// renewed lazily when within 60 seconds of expiry, and data-plane calls retry
// exactly once after forcing a renewal on a 401 response.
//
// # Key Components
//
//   - Config: Environment-driven configuration for Bullhorn credentials
//   - SessionManager: Owns the token pair and the derived REST session
//   - Client: Issues authenticated search/query/entity/metadata requests
//   - Server: Exposes the client operations as MCP tools
//   - Console: Interactive Read-Eval-Print Loop for ad-hoc CRM queries
package bullhorn
