package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/naveenspark/moneta/pkg/session"
)

func TestMemoryStore(t *testing.T) {
	s := session.NewMemoryStore()

	_, err := s.Get(session.KeyRefreshFailed)
	require.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, s.Set(session.KeyRefreshFailed, "true"))
	v, err := s.Get(session.KeyRefreshFailed)
	require.NoError(t, err)
	require.Equal(t, "true", v)

	require.NoError(t, s.Clear(session.KeyRefreshFailed))
	_, err = s.Get(session.KeyRefreshFailed)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".moneta")
	s := session.NewFileStore(dir)

	_, err := s.Get(session.KeyToken)
	require.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, s.Set(session.KeyToken, "abc.def.ghi"))
	v, err := s.Get(session.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", v)

	info, err := os.Stat(filepath.Join(dir, session.KeyToken))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, s.Clear(session.KeyToken))
	require.NoError(t, s.Clear(session.KeyToken), "clearing twice is not an error")
	_, err = s.Get(session.KeyToken)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestFileStoreTrimsAndTreatsBlankAsMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, session.KeyToken), []byte("  tok\n"), 0600))
	s := session.NewFileStore(dir)

	v, err := s.Get(session.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok", v)

	require.NoError(t, os.WriteFile(filepath.Join(dir, session.KeyToken), []byte("\n"), 0600))
	_, err = s.Get(session.KeyToken)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s := session.NewFileStore(t.TempDir())
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		require.Error(t, s.Set(key, "x"), "key %q", key)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MONETA_TOKEN", "from-env")
	base := session.NewFileStore(t.TempDir())
	require.NoError(t, base.Set(session.KeyToken, "from-file"))

	s := session.WithEnvOverride(base, session.KeyToken, "MONETA_TOKEN")
	v, err := s.Get(session.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "from-env", v)

	// A refreshed credential replaces the override.
	require.NoError(t, s.Set(session.KeyToken, "refreshed"))
	v, err = s.Get(session.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "refreshed", v)
}

func TestRouter(t *testing.T) {
	r := session.NewRouter(session.RouteLanding)
	var got []string
	r.OnRedirect(func(route string) { got = append(got, route) })

	r.Navigate(session.RouteGoals)
	require.Equal(t, session.RouteGoals, r.CurrentRoute())
	require.Empty(t, got)

	r.RedirectTo(session.RouteLanding)
	require.Equal(t, session.RouteLanding, r.CurrentRoute())
	require.Equal(t, []string{session.RouteLanding}, got)
}

func TestIsPublic(t *testing.T) {
	for _, r := range []string{"/", "/login", "/register", "/register-success"} {
		require.True(t, session.IsPublic(r), r)
	}
	for _, r := range []string{"/transactions", "/goals", "/categories", "/settings", ""} {
		require.False(t, session.IsPublic(r), r)
	}
}
