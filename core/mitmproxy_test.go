package core

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"pagewidth/models"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewportWidth(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{name: "no hint", want: 1920},
		{name: "modern hint", header: map[string]string{HeaderViewportWidth: "1440"}, want: 1440},
		{name: "legacy hint", header: map[string]string{HeaderViewportWidthLegacy: "1280"}, want: 1280},
		{name: "modern wins", header: map[string]string{HeaderViewportWidth: "1000", HeaderViewportWidthLegacy: "1280"}, want: 1000},
		{name: "fractional", header: map[string]string{HeaderViewportWidth: "1366.5"}, want: 1366},
		{name: "garbage falls through", header: map[string]string{HeaderViewportWidth: "wide", HeaderViewportWidthLegacy: "800"}, want: 800},
		{name: "zero is ignored", header: map[string]string{HeaderViewportWidth: "0"}, want: 1920},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.header {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, ViewportWidth(h, 1920))
		})
	}
}

func TestDecodeBody(t *testing.T) {
	plain := []byte("<html><body>hello</body></html>")

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, err = bw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, bw.Close())

	for enc, raw := range map[string][]byte{"": plain, "identity": plain, "gzip": gz.Bytes(), "br": br.Bytes(), " BR ": br.Bytes()} {
		got, err := decodeBody(enc, raw)
		require.NoErrorf(t, err, "encoding %q", enc)
		assert.Equalf(t, plain, got, "encoding %q", enc)
	}

	_, err = decodeBody("deflate", plain)
	assert.Error(t, err)
}

func htmlResponse(body, contentType string) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", contentType)
	return &http.Response{
		StatusCode:    http.StatusOK,
		Header:        h,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestRewriteResponseInjectsStyle(t *testing.T) {
	store := newMemStore()
	store.put(t, models.GlobalSettingsKey, activeGlobal(800, models.MethodAbsolute))
	p := NewStyleProxy(NewEngine(store, nil), 1920)

	req := httptest.NewRequest(http.MethodGet, "http://example.com/blog", nil)
	req.Header.Set(HeaderViewportWidth, "1600")
	resp := p.RewriteResponse(context.Background(), req, htmlResponse(`<html><head></head><body>x</body></html>`, "text/html; charset=utf-8"))

	body := readBody(t, resp)
	assert.Contains(t, body, `<style id="wbStyle">html {position: absolute; width: 800px; left: 400px; } </style>`)
	assert.Equal(t, int64(len(body)), resp.ContentLength)
	assert.Equal(t, HeaderViewportWidth, resp.Header.Get(HeaderAcceptCH))
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
}

func TestRewriteResponseDecodesGzip(t *testing.T) {
	store := newMemStore()
	store.put(t, models.GlobalSettingsKey, activeGlobal(1000, models.MethodMargin))
	p := NewStyleProxy(NewEngine(store, nil), 1920)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte(`<html><head></head><body></body></html>`))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	resp := htmlResponse("", "text/html")
	resp.Body = io.NopCloser(bytes.NewReader(gz.Bytes()))
	resp.Header.Set("Content-Encoding", "gzip")

	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	out := p.RewriteResponse(context.Background(), req, resp)
	assert.Contains(t, readBody(t, out), "margin-left: auto")
	assert.Empty(t, out.Header.Get("Content-Encoding"))
}

func TestRewriteResponsePassThrough(t *testing.T) {
	store := newMemStore()
	store.put(t, models.GlobalSettingsKey, activeGlobal(800, models.MethodAbsolute))
	p := NewStyleProxy(NewEngine(store, nil), 1920)
	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)

	t.Run("non-html", func(t *testing.T) {
		resp := p.RewriteResponse(context.Background(), req, htmlResponse(`{"a":1}`, "application/json"))
		assert.Equal(t, `{"a":1}`, readBody(t, resp))
		assert.Empty(t, resp.Header.Get(HeaderAcceptCH))
	})

	t.Run("unknown encoding", func(t *testing.T) {
		resp := htmlResponse("compressed-bytes", "text/html")
		resp.Header.Set("Content-Encoding", "zstd")
		out := p.RewriteResponse(context.Background(), req, resp)
		assert.Equal(t, "compressed-bytes", readBody(t, out))
		assert.Equal(t, "zstd", out.Header.Get("Content-Encoding"))
	})

	t.Run("clear without managed style keeps bytes", func(t *testing.T) {
		wide := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
		wide.Header.Set(HeaderViewportWidth, "700")
		src := `<!doctype html><HTML><body>untouched</body></HTML>`
		out := p.RewriteResponse(context.Background(), wide, htmlResponse(src, "text/html"))
		assert.Equal(t, src, readBody(t, out))
	})

	t.Run("clear removes a stale managed style", func(t *testing.T) {
		wide := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
		wide.Header.Set(HeaderViewportWidth, "700")
		src := `<html><head><style id="wbStyle">html {} </style></head><body></body></html>`
		out := p.RewriteResponse(context.Background(), wide, htmlResponse(src, "text/html"))
		assert.NotContains(t, readBody(t, out), "wbStyle")
	})

	t.Run("store failure clears", func(t *testing.T) {
		failing := newMemStore()
		failing.failGet = true
		fp := NewStyleProxy(NewEngine(failing, nil), 1920)
		src := `<html><head></head><body>x</body></html>`
		out := fp.RewriteResponse(context.Background(), req, htmlResponse(src, "text/html"))
		assert.Equal(t, src, readBody(t, out))
	})
}

func TestGenerateAndLoadCA(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "ca.crt")
	keyPath := filepath.Join(dir, "ca.key")

	require.NoError(t, GenerateAndSaveCA(certPath, keyPath))
	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	ca, err := LoadCA(certPath, keyPath)
	require.NoError(t, err)
	require.NotNil(t, ca.Leaf)
	assert.True(t, ca.Leaf.IsCA)
	assert.Equal(t, "pagewidth Proxy CA", ca.Leaf.Subject.CommonName)

	_, err = LoadCA(filepath.Join(dir, "missing.crt"), keyPath)
	assert.Error(t, err)
	_, err = LoadCA(keyPath, keyPath)
	assert.Error(t, err)
}

func TestRewriteResponseMatchesOverridesOnDefaultPort(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.put(t, models.GlobalSettingsKey, activeGlobal(800, models.MethodAbsolute))

	saved := mustURL(t, "https://example.com/blog/post1")
	_, err := SaveForm(ctx, store, saved, saveRequest(
		activeGlobal(800, models.MethodAbsolute),
		models.SiteChoice{Width: 800, Method: models.MethodAbsolute, Disabled: true, Pattern: models.PatternDomain, PathLevel: 1},
	))
	require.NoError(t, err)
	require.True(t, store.has("example.com"))

	p := NewStyleProxy(NewEngine(store, nil), 1920)
	for _, raw := range []string{"https://example.com:443/blog/post1", "https://Example.COM:443/blog/post1"} {
		req := httptest.NewRequest(http.MethodGet, raw, nil)
		req.Header.Set(HeaderViewportWidth, "1600")
		src := `<html><head></head><body>x</body></html>`
		out := p.RewriteResponse(ctx, req, htmlResponse(src, "text/html"))
		assert.Equal(t, src, readBody(t, out), raw)
	}
}
