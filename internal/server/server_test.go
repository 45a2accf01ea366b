package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toyshelf/internal/api"
	"toyshelf/internal/catalog"
	"toyshelf/internal/search"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	builder, err := search.NewBuilder("", nil, nil)
	require.NoError(t, err)

	h := api.NewHandler(api.Options{
		Loader: catalog.NewLoader(catalog.Options{
			WorkbookPath: filepath.Join(dir, "list.xlsx"),
			CachePath:    filepath.Join(dir, "data_cache.json"),
		}),
		Builder: builder,
	})
	return NewServer(h, false, nil)
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_ServesIndex(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/", "/some/page"} {
		w := serve(s, http.MethodGet, target)
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "/api/search?q=")
	}
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, http.MethodGet, "/api/search?q=abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(s, http.MethodOptions, "/api/data")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_UnknownAPIRoute(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, http.MethodGet, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/search?q=abc")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
