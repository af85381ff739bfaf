package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// spaRoutes are the client-side routes answered with index.html
var spaRoutes = map[string]bool{
	"/":               true,
	"/login":          true,
	"/admin":          true,
	"/about":          true,
	"/reset-password": true,
	"/attendance":     true,
}

// SPAHandler serves the built frontend: files that exist are served as is
// and the client-side routes fall back to index.html
type SPAHandler struct {
	staticPath string
	files      http.Handler
}

// NewSPAHandler serves the frontend build in staticPath
func NewSPAHandler(staticPath string) *SPAHandler {
	return &SPAHandler{staticPath: staticPath, files: http.FileServer(http.Dir(staticPath))}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	clean := path.Clean("/" + r.URL.Path)
	if spaRoutes[clean] {
		h.serveIndex(w, r)
		return
	}

	info, err := os.Stat(filepath.Join(h.staticPath, filepath.FromSlash(clean)))
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	h.files.ServeHTTP(w, r)
}

func (h *SPAHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(h.staticPath, "index.html"))
}
