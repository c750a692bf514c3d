// Package session guards outgoing API calls with a single reauthentication
// policy: attach the stored credential, refresh it once on 401, retry the
// original request once, and send the user back to the landing route when
// the session cannot be recovered.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/naveenspark/moneta/internal/logging"
)

// Paths of the authentication endpoints on the backend.
const (
	PathLogin   = "/token"
	PathRefresh = "/token/refresh"
	PathLogout  = "/token/logout"
)

const (
	maxRefreshBody        = 1 << 20
	defaultRefreshTimeout = 30 * time.Second
)

// Config wires a Guard to its collaborators.
type Config struct {
	// BaseURL is the API root; the refresh call goes to BaseURL + PathRefresh.
	BaseURL string
	// Transport sends the requests. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// Credentials holds the bearer token under KeyToken.
	Credentials Store
	// Flags holds the session-scoped refresh-failure flag under KeyRefreshFailed.
	Flags Store
	// Navigator receives the redirect to the landing route. Optional.
	Navigator Navigator
	// Jar supplies cookies to the refresh call and the retry. Optional.
	Jar http.CookieJar
	// RefreshTimeout bounds one refresh call. Defaults to 30s.
	RefreshTimeout time.Duration
	Logger         zerolog.Logger
}

// Guard is an http.RoundTripper enforcing the refresh-and-retry-once policy.
// It is safe for concurrent use; concurrent 401s share one refresh call,
// which runs detached from the request that started it, so a caller
// giving up never ends the session for the others.
//
// Once a refresh has failed, RoundTrip returns ErrSessionExpired without a
// response for every request but login; callers see that error rather than
// an HTTP 401.
type Guard struct {
	base           http.RoundTripper
	creds          Store
	flags          Store
	nav            Navigator
	jar            http.CookieJar
	refreshURL     string
	refreshTimeout time.Duration
	log            zerolog.Logger
	group          singleflight.Group
}

var _ http.RoundTripper = (*Guard)(nil)

// NewGuard creates a guard. Nil stores default to in-memory ones.
func NewGuard(cfg Config) *Guard {
	g := &Guard{
		base:           cfg.Transport,
		creds:          cfg.Credentials,
		flags:          cfg.Flags,
		nav:            cfg.Navigator,
		jar:            cfg.Jar,
		refreshURL:     strings.TrimRight(cfg.BaseURL, "/") + PathRefresh,
		refreshTimeout: cfg.RefreshTimeout,
		log:            logging.Component(cfg.Logger, logging.ComponentSession),
	}
	if g.refreshTimeout <= 0 {
		g.refreshTimeout = defaultRefreshTimeout
	}
	if g.base == nil {
		g.base = http.DefaultTransport
	}
	if g.creds == nil {
		g.creds = NewMemoryStore()
	}
	if g.flags == nil {
		g.flags = NewMemoryStore()
	}
	return g
}

type retriedKey struct{}

func isRetried(req *http.Request) bool {
	return req.Context().Value(retriedKey{}) != nil
}

func pathIs(req *http.Request, p string) bool {
	return strings.HasSuffix(strings.TrimRight(req.URL.Path, "/"), p)
}

func isLogin(req *http.Request) bool {
	return req.Method == http.MethodPost && pathIs(req, PathLogin)
}

// isRecoveryExempt reports requests whose 401 must never start a refresh:
// the refresh and logout calls themselves, and the login call, whose 401
// means bad credentials rather than an expired session.
func isRecoveryExempt(req *http.Request) bool {
	return pathIs(req, PathRefresh) || pathIs(req, PathLogout) || isLogin(req)
}

// RoundTrip implements http.RoundTripper.
func (g *Guard) RoundTrip(req *http.Request) (*http.Response, error) {
	if g.RefreshFailed() && !isLogin(req) {
		closeBody(req)
		g.redirect()
		return nil, ErrSessionExpired
	}

	resp, err := g.send(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if isRecoveryExempt(req) || isRetried(req) {
		return resp, nil
	}
	if g.RefreshFailed() {
		g.redirect()
		return resp, nil
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		g.log.Debug().Str(logging.FieldMethod, req.Method).Str(logging.FieldPath, req.URL.Path).Msg("401 on request without replayable body, not retrying")
		return resp, nil
	}

	retry, err := g.prepareRetry(req)
	if err != nil {
		return resp, nil
	}

	g.log.Debug().Str(logging.FieldMethod, req.Method).Str(logging.FieldPath, req.URL.Path).Msg("unauthorized, refreshing session")
	if err := g.refreshShared(req.Context()); err != nil {
		closeBody(retry)
		if ctxErr := req.Context().Err(); ctxErr != nil {
			// The caller gave up; the refresh itself may still succeed.
			drain(resp)
			return nil, ctxErr
		}
		return resp, nil
	}

	drain(resp)
	return g.RoundTrip(retry)
}

// send forwards a copy of req carrying the current credential.
func (g *Guard) send(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if !isLogin(out) {
		if tok, err := g.creds.Get(KeyToken); err == nil && tok != "" {
			out.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return g.base.RoundTrip(out)
}

func (g *Guard) prepareRetry(req *http.Request) (*http.Request, error) {
	retry := req.Clone(context.WithValue(req.Context(), retriedKey{}, true))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			g.log.Debug().Err(err).Msg("rewind request body")
			return nil, err
		}
		retry.Body = body
	}
	if g.jar != nil {
		retry.Header.Del("Cookie")
		for _, c := range g.jar.Cookies(retry.URL) {
			retry.AddCookie(c)
		}
	}
	return retry, nil
}

// refreshShared joins the in-flight refresh or starts one. The refresh
// ignores the caller's cancellation and records its own failure, so the
// outcome is the same whoever waits for it. A caller whose ctx ends first
// gets ctx.Err().
func (g *Guard) refreshShared(ctx context.Context) error {
	ch := g.group.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout)
		defer cancel()
		if err := g.refresh(rctx); err != nil {
			g.fail(err)
			return nil, err
		}
		return nil, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (g *Guard) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.refreshURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if g.jar != nil {
		for _, c := range g.jar.Cookies(req.URL) {
			req.AddCookie(c)
		}
	}

	resp, err := g.RoundTrip(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if g.jar != nil {
		if rc := resp.Cookies(); len(rc) > 0 {
			g.jar.SetCookies(req.URL, rc)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrRefreshFailed, resp.StatusCode)
	}

	// Cookie-only refreshes answer without a body; keep the stored credential then.
	var renewed struct {
		AccessToken string `json:"access_token"`
	}
	if json.NewDecoder(io.LimitReader(resp.Body, maxRefreshBody)).Decode(&renewed) == nil && renewed.AccessToken != "" {
		if err := g.creds.Set(KeyToken, renewed.AccessToken); err != nil {
			return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}
	}
	g.log.Debug().Msg("session refreshed")
	return nil
}

func (g *Guard) fail(err error) {
	g.log.Warn().Err(err).Msg("session refresh failed")
	if setErr := g.flags.Set(KeyRefreshFailed, "true"); setErr != nil {
		g.log.Error().Err(setErr).Msg("persist refresh-failure flag")
	}
	if clearErr := g.creds.Clear(KeyToken); clearErr != nil {
		g.log.Error().Err(clearErr).Msg("clear credential")
	}
	g.redirect()
}

func (g *Guard) redirect() {
	if g.nav == nil {
		return
	}
	route := g.nav.CurrentRoute()
	if IsPublic(route) {
		return
	}
	g.log.Info().Str(logging.FieldFromRoute, route).Str(logging.FieldToRoute, RouteLanding).Msg("redirecting after session loss")
	g.nav.RedirectTo(RouteLanding)
}

// Begin starts a new session with token, lifting a previous refresh failure.
func (g *Guard) Begin(token string) error {
	if err := g.creds.Set(KeyToken, token); err != nil {
		return fmt.Errorf("session.Begin: %w", err)
	}
	if err := g.flags.Clear(KeyRefreshFailed); err != nil {
		return fmt.Errorf("session.Begin: %w", err)
	}
	return nil
}

// End destroys the stored credential.
func (g *Guard) End() error {
	if err := g.creds.Clear(KeyToken); err != nil {
		return fmt.Errorf("session.End: %w", err)
	}
	return nil
}

// Token returns the stored credential, or "" when there is none.
func (g *Guard) Token() string {
	tok, err := g.creds.Get(KeyToken)
	if err != nil {
		return ""
	}
	return tok
}

// RefreshFailed reports whether a refresh has failed in this session.
func (g *Guard) RefreshFailed() bool {
	v, err := g.flags.Get(KeyRefreshFailed)
	return err == nil && v != ""
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close() //nolint:errcheck // best-effort close
	}
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxRefreshBody)) //nolint:errcheck // connection reuse only
	resp.Body.Close()                                               //nolint:errcheck // best-effort close
}
