package httpserver

import (
	"embed"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
)

//go:embed assets/*
var embeddedAssets embed.FS

// staticHandler serves the dashboard page and its assets.
func (s *Server) staticHandler() http.Handler {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		panic(err)
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		normalized := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if normalized == "" || normalized == "index.html" {
			s.serveDashboard(w, r, sub)
			return
		}

		if _, err := fs.Stat(sub, normalized); err != nil {
			http.NotFound(w, r)
			return
		}

		r2 := new(http.Request)
		*r2 = *r
		r2.URL = cloneURL(r.URL)
		r2.URL.Path = "/" + normalized
		fileServer.ServeHTTP(w, r2)
	})
}

func (s *Server) serveDashboard(w http.ResponseWriter, r *http.Request, assets fs.FS) {
	logger := s.loggerFromContext(r.Context())
	data, err := fs.ReadFile(assets, "index.html")
	if err != nil {
		logger.Error("failed to read dashboard asset", "err", err)
		http.Error(w, "missing index asset", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(data); err != nil {
		logger.Warn("failed to write dashboard response", "err", err)
	}
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return &url.URL{Path: "/"}
	}
	clone := *u
	return &clone
}
