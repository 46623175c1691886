package bullhorn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// vendorDomain is the Bullhorn-owned domain used to decide whether a
	// redirect target may be trusted as a regional authentication endpoint.
	vendorDomain = "bullhornstaffing.com"

	// renewalLeeway is how close to expiry a token or session may get
	// before renewal is triggered.
	renewalLeeway = 60 * time.Second

	// defaultExpiresIn is assumed when a token response omits expires_in.
	defaultExpiresIn = 600 * time.Second

	// sessionTTL is the fixed lifetime assigned to a REST session. Bullhorn
	// does not report session expiry, so this is a policy constant.
	sessionTTL = 600 * time.Second

	// maxAuthorizeHops bounds how many authorize redirects are followed.
	maxAuthorizeHops = 5
)

// Session is an immutable snapshot of an active Bullhorn REST session.
// A new snapshot replaces the previous one on every successful login;
// snapshots are never mutated in place.
type Session struct {
	// RestToken is the BhRestToken credential sent on every data-plane call
	RestToken string

	// RestURL is the per-tenant REST base URL. It is used exactly as the
	// login endpoint returned it, with no trailing-slash normalization.
	RestURL string

	// ExpiresAt is when the session is considered stale
	ExpiresAt time.Time
}

// SessionManager owns the OAuth token pair and the derived REST session.
//
// Renewal is lazy: CurrentSession renews only when no session exists or the
// current one is within 60 seconds of expiry. Renewal prefers the
// refresh-token flow when a live refresh token is held, falling back to the
// full authorization-code flow on any refresh failure, and always finishes
// with a REST login.
//
// SessionManager does not serialize renewal. Concurrent callers may each run
// a redundant renewal round trip; the last successful login wins.
type SessionManager struct {
	cfg        *Config
	httpClient *http.Client
	logger     zerolog.Logger

	accessToken    string
	refreshToken   string
	tokenExpiresAt time.Time
	session        *Session

	// authOrigin is the regional authentication endpoint discovered from an
	// authorize redirect to a Bullhorn-owned host. Set during an
	// authorization chain and read-only afterward, until the next chain.
	authOrigin string

	// now is the clock, replaceable in tests
	now func() time.Time
}

// NewSessionManager creates a session manager for the given configuration.
// httpClient may be nil, in which case a client is constructed. Automatic
// redirect following is always disabled on the transport: authorize redirects
// carry the authorization code and must be inspected, not followed.
func NewSessionManager(cfg *Config, httpClient *http.Client, logger zerolog.Logger) *SessionManager {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &SessionManager{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// CurrentSession returns the active REST session, renewing it first when no
// session exists or the current one is within 60 seconds of expiry.
func (m *SessionManager) CurrentSession(ctx context.Context) (*Session, error) {
	if m.session == nil || !m.now().Before(m.session.ExpiresAt.Add(-renewalLeeway)) {
		if err := m.Renew(ctx); err != nil {
			return nil, err
		}
	}
	return m.session, nil
}

// Renew unconditionally renews the REST session. The refresh-token flow is
// attempted only when a refresh token is held and the access token has more
// than 60 seconds of life left; any refresh failure falls back to the full
// authorization flow instead of propagating. A REST login always follows,
// even when only the refresh path ran.
func (m *SessionManager) Renew(ctx context.Context) error {
	if m.refreshToken != "" && m.now().Before(m.tokenExpiresAt.Add(-renewalLeeway)) {
		if err := m.refreshAccessToken(ctx); err != nil {
			m.logger.Debug().Err(err).Msg("token refresh failed, falling back to full authentication")
			if err := m.fullAuth(ctx); err != nil {
				return err
			}
		}
	} else {
		if err := m.fullAuth(ctx); err != nil {
			return err
		}
	}
	return m.restLogin(ctx)
}

// fullAuth runs the complete authorization-code flow: code retrieval
// followed by the token exchange.
func (m *SessionManager) fullAuth(ctx context.Context) error {
	code, err := m.getAuthCode(ctx)
	if err != nil {
		return err
	}
	return m.exchangeAuthCode(ctx, code)
}

// getAuthCode retrieves an authorization code by issuing the authorize
// request and inspecting the redirect chain. Redirects to Bullhorn-owned
// hosts are followed (bounded) and recorded as the regional authentication
// endpoint; the code is extracted from the redirect Location query string.
func (m *SessionManager) getAuthCode(ctx context.Context) (string, error) {
	params := url.Values{
		"client_id":     {m.cfg.ClientID},
		"response_type": {"code"},
		"action":        {"Login"},
		"username":      {m.cfg.Username},
		"password":      {m.cfg.Password},
	}

	target := m.cfg.AuthURL + "/oauth/authorize?" + params.Encode()

	for hop := 0; hop <= maxAuthorizeHops; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return "", newAuthError(StageAuthorize, 0, "failed to create authorize request: %v", err)
		}

		resp, err := m.httpClient.Do(req)
		if err != nil {
			return "", newAuthError(StageAuthorize, 0, "authorize request failed: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if !isRedirect(resp.StatusCode) {
			return "", newAuthError(StageAuthorize, resp.StatusCode, "no authorization code in response")
		}

		location, err := resp.Request.URL.Parse(resp.Header.Get("Location"))
		if err != nil {
			return "", newAuthError(StageAuthorize, resp.StatusCode, "invalid redirect location: %v", err)
		}

		query := location.Query()

		if errCode := query.Get("error"); errCode != "" {
			return "", newAuthError(StageAuthorize, resp.StatusCode, "OAuth error: %s - %s", errCode, query.Get("error_description"))
		}

		if m.isVendorHost(location.Hostname()) {
			origin := location.Scheme + "://" + location.Host
			if origin != m.authOrigin {
				m.logger.Debug().Str("origin", origin).Msg("recording regional authentication endpoint")
				m.authOrigin = origin
			}
		}

		if code := query.Get("code"); code != "" {
			return code, nil
		}

		// Codeless redirect: only follow it within the vendor's own domain.
		if !m.isVendorHost(location.Hostname()) {
			return "", newAuthError(StageAuthorize, resp.StatusCode, "redirected to untrusted host %s without authorization code", location.Hostname())
		}
		target = location.String()
	}

	return "", newAuthError(StageAuthorize, 0, "authorization redirect limit of %d hops exceeded", maxAuthorizeHops)
}

// isVendorHost reports whether host belongs to the Bullhorn domain. The
// configured authorization host is always trusted, so non-production
// endpoints behave like the vendor's own.
func (m *SessionManager) isVendorHost(host string) bool {
	if host == vendorDomain || strings.HasSuffix(host, "."+vendorDomain) {
		return true
	}
	if cfgURL, err := url.Parse(m.cfg.AuthURL); err == nil && cfgURL.Host != "" {
		return host == cfgURL.Hostname()
	}
	return false
}

// tokenURL returns the OAuth token endpoint, preferring the regional
// authentication endpoint when one was discovered.
func (m *SessionManager) tokenURL() string {
	if m.authOrigin != "" {
		return m.authOrigin + "/oauth/token"
	}
	return m.cfg.AuthURL + "/oauth/token"
}

// tokenResponse is the OAuth token endpoint response payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// exchangeAuthCode exchanges an authorization code for an access token.
func (m *SessionManager) exchangeAuthCode(ctx context.Context, code string) error {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {m.cfg.ClientID},
		"client_secret": {m.cfg.ClientSecret},
	}

	token, err := m.requestToken(ctx, StageTokenExchange, params)
	if err != nil {
		return err
	}

	m.accessToken = token.AccessToken
	m.refreshToken = token.RefreshToken
	m.tokenExpiresAt = m.now().Add(expiresIn(token))
	return nil
}

// refreshAccessToken renews the access token with the held refresh token.
// Failures propagate to the caller, which falls back to the full flow.
func (m *SessionManager) refreshAccessToken(ctx context.Context) error {
	if m.refreshToken == "" {
		return newAuthError(StageTokenRefresh, 0, "no refresh token available")
	}

	params := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {m.refreshToken},
		"client_id":     {m.cfg.ClientID},
		"client_secret": {m.cfg.ClientSecret},
	}

	token, err := m.requestToken(ctx, StageTokenRefresh, params)
	if err != nil {
		return err
	}

	m.accessToken = token.AccessToken
	if token.RefreshToken != "" {
		m.refreshToken = token.RefreshToken
	}
	m.tokenExpiresAt = m.now().Add(expiresIn(token))
	return nil
}

// requestToken POSTs to the token endpoint with the given parameters and
// decodes the token response. stage tags any failure.
func (m *SessionManager) requestToken(ctx context.Context, stage AuthStage, params url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, newAuthError(stage, 0, "failed to create token request: %v", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, newAuthError(stage, 0, "token request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newAuthError(stage, resp.StatusCode, "failed to read token response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newAuthError(stage, resp.StatusCode, "%s", strings.TrimSpace(string(body)))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, newAuthError(stage, resp.StatusCode, "failed to decode token response: %v", err)
	}
	return &token, nil
}

// expiresIn returns the token lifetime, applying the default when the
// response omitted expires_in.
func expiresIn(token *tokenResponse) time.Duration {
	if token.ExpiresIn <= 0 {
		return defaultExpiresIn
	}
	return time.Duration(token.ExpiresIn) * time.Second
}

// restLogin exchanges the held access token for a BhRestToken session.
func (m *SessionManager) restLogin(ctx context.Context) error {
	if m.accessToken == "" {
		return newAuthError(StageLogin, 0, "no access token available")
	}

	params := url.Values{
		"version":      {"*"},
		"access_token": {m.accessToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.LoginURL+"/rest-services/login?"+params.Encode(), nil)
	if err != nil {
		return newAuthError(StageLogin, 0, "failed to create login request: %v", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return newAuthError(StageLogin, 0, "login request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newAuthError(StageLogin, resp.StatusCode, "failed to read login response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return newAuthError(StageLogin, resp.StatusCode, "%s", strings.TrimSpace(string(body)))
	}

	var login struct {
		BhRestToken string `json:"BhRestToken"`
		RestURL     string `json:"restUrl"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		return newAuthError(StageLogin, resp.StatusCode, "failed to decode login response: %v", err)
	}
	if login.BhRestToken == "" || login.RestURL == "" {
		return newAuthError(StageLogin, resp.StatusCode, "invalid login response, missing BhRestToken or restUrl: %s", strings.TrimSpace(string(body)))
	}

	m.session = &Session{
		RestToken: login.BhRestToken,
		RestURL:   login.RestURL,
		ExpiresAt: m.now().Add(sessionTTL),
	}
	m.logger.Debug().Str("restUrl", login.RestURL).Time("expiresAt", m.session.ExpiresAt).Msg("REST session established")
	return nil
}

// isRedirect reports whether status is one of the redirect codes Bullhorn
// uses to deliver the authorization code.
func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

// String implements fmt.Stringer without leaking the session token.
func (s *Session) String() string {
	return fmt.Sprintf("Session(restUrl=%s, expiresAt=%s)", s.RestURL, s.ExpiresAt.Format(time.RFC3339))
}
