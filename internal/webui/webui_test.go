package webui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandlerServesRoot(t *testing.T) {
	handler := Handler("")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /: got status %d, want 200", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Error("GET /: empty response body")
	}
	if !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Error("GET /: response doesn't contain HTML doctype")
	}
}

func TestHandlerServesStaticAsset(t *testing.T) {
	handler := Handler("")

	req := httptest.NewRequest(http.MethodGet, "/app.css", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /app.css: got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "--accent") {
		t.Error("GET /app.css: unexpected stylesheet content")
	}
}

func TestHandlerSPAFallback(t *testing.T) {
	handler := Handler("")

	req := httptest.NewRequest(http.MethodGet, "/rooms/rm-123", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("unknown route: got status %d, want 200 (SPA fallback)", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Error("unknown route: fallback should serve index.html")
	}
}

func TestHandlerNoCacheHeader(t *testing.T) {
	handler := Handler("")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "no-cache") {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
}

func TestHandlerDirOverride(t *testing.T) {
	dir := t.TempDir()
	custom := []byte("<!DOCTYPE html><title>dev build</title>")
	if err := os.WriteFile(filepath.Join(dir, "index.html"), custom, 0o644); err != nil {
		t.Fatalf("writing dev index: %v", err)
	}

	handler := Handler(dir)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), "dev build") {
		t.Error("dir override should serve filesystem assets")
	}
}

func TestHandlerMissingDirFallsBack(t *testing.T) {
	handler := Handler("/nonexistent/path")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("missing dir: got status %d, want 200 (embedded fallback)", w.Code)
	}
}
