package session_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/moneta/internal/logging"
	"github.com/naveenspark/moneta/pkg/session"
)

// fakeAPI records calls per path and lets each test script the responses.
type fakeAPI struct {
	mu       sync.Mutex
	calls    map[string]int
	handlers map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{calls: map[string]int{}, handlers: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.calls[r.URL.Path]++
		h := api.handlers[r.URL.Path]
		api.mu.Unlock()
		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) handle(path string, h http.HandlerFunc) {
	a.mu.Lock()
	a.handlers[path] = h
	a.mu.Unlock()
}

func (a *fakeAPI) count(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[path]
}

func unauthorized(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": "could not validate credentials"}) //nolint:errcheck
}

func issueToken(tok string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "token_type": "bearer"}) //nolint:errcheck
	}
}

// requireBearer answers 200 with body when the request carries tok, else 401.
func requireBearer(tok, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+tok {
			unauthorized(w, r)
			return
		}
		io.WriteString(w, body) //nolint:errcheck
	}
}

type fixture struct {
	api    *fakeAPI
	srv    *httptest.Server
	guard  *session.Guard
	creds  *session.MemoryStore
	flags  *session.MemoryStore
	router *session.Router
	hits   []string
	client *http.Client
}

func newFixture(t *testing.T, route string) *fixture {
	t.Helper()
	api, srv := newFakeAPI(t)
	f := &fixture{
		api:    api,
		srv:    srv,
		creds:  session.NewMemoryStore(),
		flags:  session.NewMemoryStore(),
		router: session.NewRouter(route),
	}
	f.router.OnRedirect(func(r string) { f.hits = append(f.hits, r) })
	f.guard = session.NewGuard(session.Config{
		BaseURL:     srv.URL,
		Credentials: f.creds,
		Flags:       f.flags,
		Navigator:   f.router,
		Logger:      zerolog.Nop(),
	})
	f.client = &http.Client{Transport: f.guard, Timeout: 5 * time.Second}
	require.NoError(t, f.creds.Set(session.KeyToken, "stale"))
	return f
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.srv.URL+path, nil)
	require.NoError(t, err)
	return f.client.Do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestGuardAttachesCredential(t *testing.T) {
	f := newFixture(t, session.RouteGoals)
	f.api.handle("/goals", requireBearer("stale", "[]"))

	resp, err := f.get(t, "/goals")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "[]", readBody(t, resp))
	require.Zero(t, f.api.count(session.PathRefresh))
}

func TestGuardRefreshesAndRetriesOnce(t *testing.T) {
	f := newFixture(t, session.RouteGoals)
	f.api.handle("/goals", requireBearer("fresh", `[{"id":1}]`))
	f.api.handle(session.PathRefresh, issueToken("fresh"))

	resp, err := f.get(t, "/goals")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, `[{"id":1}]`, readBody(t, resp))

	require.Equal(t, 1, f.api.count(session.PathRefresh))
	require.Equal(t, 2, f.api.count("/goals"))
	require.Equal(t, "fresh", f.guard.Token())
	require.Empty(t, f.hits)
}

func TestGuardResendOutcomeIsFinal(t *testing.T) {
	f := newFixture(t, session.RouteGoals)
	var n atomic.Int32
	f.api.handle("/goals", func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) == 1 {
			unauthorized(w, r)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	f.api.handle(session.PathRefresh, issueToken("fresh"))

	resp, err := f.get(t, "/goals")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, 1, f.api.count(session.PathRefresh))
}

func TestGuardNeverRecoversAuthEndpoints(t *testing.T) {
	for _, path := range []string{session.PathRefresh, session.PathLogout} {
		t.Run(path, func(t *testing.T) {
			f := newFixture(t, session.RouteSettings)
			f.api.handle(session.PathRefresh, unauthorized)
			f.api.handle(session.PathLogout, unauthorized)

			req, err := http.NewRequest(http.MethodPost, f.srv.URL+path, nil)
			require.NoError(t, err)
			resp, err := f.client.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.Equal(t, 1, f.api.count(path))
			require.Equal(t, 1, f.api.count(session.PathRefresh)+f.api.count(session.PathLogout))
			require.False(t, f.guard.RefreshFailed())
			require.Empty(t, f.hits)
		})
	}
}

func TestGuardLoginFailureDoesNotRefresh(t *testing.T) {
	f := newFixture(t, session.RouteLogin)
	f.api.handle(session.PathLogin, unauthorized)

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+session.PathLogin, bytes.NewBufferString("username=a&password=b"))
	require.NoError(t, err)
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Zero(t, f.api.count(session.PathRefresh))
}

func TestGuardSecondUnauthorizedIsPropagated(t *testing.T) {
	f := newFixture(t, session.RouteTransactions)
	f.api.handle("/transactions", unauthorized)
	f.api.handle(session.PathRefresh, issueToken("still-bad"))

	resp, err := f.get(t, "/transactions")
	require.NoError(t, err)
	body := readBody(t, resp)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, "could not validate credentials")
	require.Equal(t, 1, f.api.count(session.PathRefresh))
	require.Equal(t, 2, f.api.count("/transactions"))
	require.False(t, f.guard.RefreshFailed())
}

func TestGuardRefreshFailureRedirects(t *testing.T) {
	f := newFixture(t, session.RouteTransactions)
	f.api.handle("/transactions", unauthorized)
	f.api.handle(session.PathRefresh, unauthorized)

	resp, err := f.get(t, "/transactions")
	require.NoError(t, err)
	body := readBody(t, resp)

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, "could not validate credentials")
	require.Equal(t, 1, f.api.count("/transactions"))
	require.Equal(t, 1, f.api.count(session.PathRefresh))
	require.Equal(t, []string{session.RouteLanding}, f.hits)
	require.Equal(t, session.RouteLanding, f.router.CurrentRoute())
	require.True(t, f.guard.RefreshFailed())
	require.Empty(t, f.guard.Token())
}

func TestGuardRefreshFailureOnPublicRouteStays(t *testing.T) {
	f := newFixture(t, session.RouteRegister)
	f.api.handle("/users/me", unauthorized)
	f.api.handle(session.PathRefresh, unauthorized)

	resp, err := f.get(t, "/users/me")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, f.hits)
	require.Equal(t, session.RouteRegister, f.router.CurrentRoute())
	require.True(t, f.guard.RefreshFailed())
}

func TestGuardFlagShortCircuits(t *testing.T) {
	tests := []struct {
		route        string
		wantRedirect bool
	}{
		{session.RouteGoals, true},
		{session.RouteSettings, true},
		{session.RouteLanding, false},
		{session.RouteLogin, false},
		{session.RouteRegister, false},
		{session.RouteRegisterSuccess, false},
	}
	for _, tc := range tests {
		t.Run(tc.route, func(t *testing.T) {
			f := newFixture(t, tc.route)
			f.api.handle("/goals", requireBearer("stale", "[]"))
			require.NoError(t, f.flags.Set(session.KeyRefreshFailed, "true"))

			resp, err := f.get(t, "/goals")
			if resp != nil {
				resp.Body.Close()
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, session.ErrSessionExpired), "got %v", err)
			require.Zero(t, f.api.count("/goals"))
			require.Zero(t, f.api.count(session.PathRefresh))
			if tc.wantRedirect {
				require.Equal(t, []string{session.RouteLanding}, f.hits)
			} else {
				require.Empty(t, f.hits)
			}
		})
	}
}

func TestGuardFlagSetMidFlightSkipsRefresh(t *testing.T) {
	f := newFixture(t, session.RouteGoals)
	f.api.handle("/goals", func(w http.ResponseWriter, r *http.Request) {
		// Another request lost the session while this one was in flight.
		f.flags.Set(session.KeyRefreshFailed, "true") //nolint:errcheck
		unauthorized(w, r)
	})

	resp, err := f.get(t, "/goals")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Zero(t, f.api.count(session.PathRefresh))
	require.Equal(t, []string{session.RouteLanding}, f.hits)
}

func TestGuardPassesThroughOtherStatuses(t *testing.T) {
	for _, code := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError} {
		f := newFixture(t, session.RouteCategories)
		f.api.handle("/categories", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) })

		resp, err := f.get(t, "/categories")
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, code, resp.StatusCode)
		require.Equal(t, 1, f.api.count("/categories"))
		require.Zero(t, f.api.count(session.PathRefresh))
	}
}

func TestGuardTransportErrorNotRetried(t *testing.T) {
	f := newFixture(t, session.RouteGoals)
	f.srv.Close()

	_, err := f.get(t, "/goals")
	require.Error(t, err)
	require.False(t, errors.Is(err, session.ErrSessionExpired))
	require.False(t, f.guard.RefreshFailed())
}

func TestGuardReplaysRequestBody(t *testing.T) {
	f := newFixture(t, session.RouteTransactions)
	var bodies []string
	var mu sync.Mutex
	f.api.handle("/transactions", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body) //nolint:errcheck
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		requireBearer("fresh", "{}")(w, r)
	})
	f.api.handle(session.PathRefresh, issueToken("fresh"))

	payload := `{"type_id":1,"date":"2025-01-02","value":12.5}`
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/transactions", bytes.NewBufferString(payload))
	require.NoError(t, err)
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{payload, payload}, bodies)
}

func TestGuardCookieOnlyRefreshKeepsCredential(t *testing.T) {
	f := newFixture(t, session.RouteGoals)
	var n atomic.Int32
	f.api.handle("/goals", func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) == 1 {
			unauthorized(w, r)
			return
		}
		io.WriteString(w, "[]") //nolint:errcheck
	})
	f.api.handle(session.PathRefresh, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	resp, err := f.get(t, "/goals")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "stale", f.guard.Token())
}

func TestGuardBeginStartsNewSession(t *testing.T) {
	f := newFixture(t, session.RouteLanding)
	f.api.handle("/goals", requireBearer("new", "[]"))
	require.NoError(t, f.flags.Set(session.KeyRefreshFailed, "true"))

	require.NoError(t, f.guard.Begin("new"))
	require.False(t, f.guard.RefreshFailed())

	resp, err := f.get(t, "/goals")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, f.guard.End())
	require.Empty(t, f.guard.Token())
}

func TestGuardLoginAllowedAfterRefreshFailure(t *testing.T) {
	f := newFixture(t, session.RouteLogin)
	f.api.handle(session.PathLogin, issueToken("new"))
	require.NoError(t, f.flags.Set(session.KeyRefreshFailed, "true"))

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+session.PathLogin, bytes.NewBufferString("username=a&password=b"))
	require.NoError(t, err)
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuardConcurrentUnauthorizedShareRefresh(t *testing.T) {
	const n = 6
	f := newFixture(t, session.RouteGoals)

	var arrived sync.WaitGroup
	arrived.Add(n)
	f.api.handle("/goals", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer stale" {
			arrived.Done()
			arrived.Wait()
			unauthorized(w, r)
			return
		}
		requireBearer("fresh", "[]")(w, r)
	})
	f.api.handle(session.PathRefresh, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		issueToken("fresh")(w, r)
	})

	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := f.get(t, "/goals")
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}()
	}
	wg.Wait()

	for i, c := range codes {
		require.Equal(t, http.StatusOK, c, "request %d", i)
	}
	require.Equal(t, 1, f.api.count(session.PathRefresh))
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Errorf("timed out waiting for %s", what)
	}
}

func TestGuardCallerCancelDuringRefreshKeepsSession(t *testing.T) {
	f := newFixture(t, session.RouteTransactions)

	refreshStarted := make(chan struct{})
	typesRejected := make(chan struct{})
	callerCancelled := make(chan struct{})
	var rejectOnce sync.Once

	f.api.handle("/transactions", requireBearer("fresh", "[]"))
	f.api.handle("/types", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer stale" {
			unauthorized(w, r)
			rejectOnce.Do(func() { close(typesRejected) })
			return
		}
		requireBearer("fresh", "[]")(w, r)
	})
	f.api.handle(session.PathRefresh, func(w http.ResponseWriter, r *http.Request) {
		close(refreshStarted)
		waitFor(t, callerCancelled, "caller cancel")
		time.Sleep(100 * time.Millisecond)
		issueToken("fresh")(w, r)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errA := make(chan error, 1)
	go func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.srv.URL+"/transactions", nil)
		if err != nil {
			errA <- err
			return
		}
		resp, err := f.client.Do(req)
		if err == nil {
			resp.Body.Close()
		}
		errA <- err
	}()

	waitFor(t, refreshStarted, "refresh start")
	codeB := make(chan int, 1)
	go func() {
		resp, err := f.get(t, "/types")
		if err != nil {
			codeB <- 0
			return
		}
		resp.Body.Close()
		codeB <- resp.StatusCode
	}()

	waitFor(t, typesRejected, "second request")
	cancel()
	close(callerCancelled)

	require.ErrorIs(t, <-errA, context.Canceled)
	require.Equal(t, http.StatusOK, <-codeB)
	require.Equal(t, 1, f.api.count(session.PathRefresh))
	require.False(t, f.guard.RefreshFailed())
	require.Equal(t, "fresh", f.guard.Token())
	require.Empty(t, f.hits)
}

func TestGuardRefreshOutlivesCallerTimeout(t *testing.T) {
	f := newFixture(t, session.RouteTransactions)
	f.api.handle("/transactions", unauthorized)
	refreshed := make(chan struct{})
	f.api.handle(session.PathRefresh, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		issueToken("fresh")(w, r)
		close(refreshed)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.srv.URL+"/transactions", nil)
	require.NoError(t, err)
	_, err = f.client.Do(req)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	waitFor(t, refreshed, "refresh")
	require.Eventually(t, func() bool { return f.guard.Token() == "fresh" }, 2*time.Second, 10*time.Millisecond)
	require.False(t, f.guard.RefreshFailed())
	require.Empty(t, f.hits)
}

func TestGuardRefreshTimeoutIsFailure(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handle("/goals", unauthorized)
	api.handle(session.PathRefresh, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	creds := session.NewMemoryStore()
	require.NoError(t, creds.Set(session.KeyToken, "stale"))
	g := session.NewGuard(session.Config{
		BaseURL:        srv.URL,
		Credentials:    creds,
		RefreshTimeout: 50 * time.Millisecond,
		Logger:         zerolog.Nop(),
	})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/goals", nil)
	require.NoError(t, err)
	resp, err := (&http.Client{Transport: g}).Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.True(t, g.RefreshFailed())
	require.Empty(t, g.Token())
}

func TestGuardRedirectLogsRoutes(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.handle("/transactions", unauthorized)
	api.handle(session.PathRefresh, unauthorized)

	var logs bytes.Buffer
	g := session.NewGuard(session.Config{
		BaseURL:     srv.URL,
		Credentials: session.NewMemoryStore(),
		Flags:       session.NewMemoryStore(),
		Navigator:   session.NewRouter(session.RouteTransactions),
		Logger:      zerolog.New(&logs),
	})
	require.NoError(t, g.Begin("stale"))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/transactions", nil)
	require.NoError(t, err)
	resp, err := g.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	var redirect map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["message"] == "redirecting after session loss" {
			redirect = entry
		}
	}
	require.NotNil(t, redirect, "no redirect log line in %s", logs.String())
	require.Equal(t, session.RouteTransactions, redirect[logging.FieldFromRoute])
	require.Equal(t, session.RouteLanding, redirect[logging.FieldToRoute])
	require.NotContains(t, logs.String(), `"email"`)
}
