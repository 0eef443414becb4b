// Package site serves the embedded portfolio page and its assets.
package site

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"path"
)

//go:embed static
var static embed.FS

// assets is the static directory with its prefix stripped, so that
// static/index.html is served at /.
var assets = func() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}()

// Register attaches the embedded site routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", NewRootHandler())
}

// RootHandler serves the page and its static assets.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServerFS(assets)}
}

// ServeHTTP handles GET / and asset requests. Scripts and styles may be
// cached for an hour; the page itself is always revalidated so a deploy
// picks up new asset links.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch path.Ext(r.URL.Path) {
	case ".js", ".css":
		w.Header().Set("Cache-Control", "public, max-age=3600")
	default:
		w.Header().Set("Cache-Control", "no-cache")
	}
	h.files.ServeHTTP(w, r)
}
