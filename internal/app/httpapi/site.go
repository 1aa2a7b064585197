package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wareledger/wareledger/internal/httputil"
)

// pages maps site paths to files under the static directory.
var pages = map[string]struct{ file, contentType string }{
	"/":                 {"templates/index.html", "text/html"},
	"/index.html":       {"templates/index.html", "text/html"},
	"/add":              {"templates/add.html", "text/html"},
	"/add.html":         {"templates/add.html", "text/html"},
	"/manage":           {"templates/manage.html", "text/html"},
	"/manage.html":      {"templates/manage.html", "text/html"},
	"/users":            {"templates/users.html", "text/html"},
	"/users.html":       {"templates/users.html", "text/html"},
	"/logs":             {"templates/logs.html", "text/html"},
	"/logs.html":        {"templates/logs.html", "text/html"},
	"/static/style.css": {"static/style.css", "text/css"},
}

var logoTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"webp": "image/webp",
}

// site serves the browser pages, the stylesheet and the company logo.
type site struct {
	dir         string
	companyName string
	logo        string
}

func newSite(dir, companyName, logo string) *site {
	return &site{dir: dir, companyName: companyName, logo: logo}
}

// serve answers GET requests for site paths and reports whether it did.
func (s *site) serve(w http.ResponseWriter, r *http.Request) bool {
	if page, ok := pages[r.URL.Path]; ok {
		s.text(w, filepath.Join(s.dir, filepath.FromSlash(page.file)), page.contentType)
		return true
	}
	if r.URL.Path == "/favicon.ico" || r.URL.Path == "/static/logo" {
		s.serveLogo(w)
		return true
	}
	return false
}

func (s *site) text(w http.ResponseWriter, path, contentType string) {
	data, err := os.ReadFile(path)
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *site) serveLogo(w http.ResponseWriter) {
	if !s.hasLogo() {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	data, err := os.ReadFile(s.logo)
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusNotFound, "File not found")
		return
	}
	h := w.Header()
	h.Set("Content-Type", logoContentType(s.logo))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *site) hasLogo() bool {
	if s.logo == "" {
		return false
	}
	info, err := os.Stat(s.logo)
	return err == nil && !info.IsDir()
}

func logoContentType(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ct, ok := logoTypes[ext]; ok {
		return ct
	}
	return "image/png"
}
