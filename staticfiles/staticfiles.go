// Package staticfiles serves files from a configured root directory for
// the acceptor's non-upgrade GET branch.
package staticfiles

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/wsforge/wsforge/wserr"
)

// Handler serves files rooted at a single directory, with directory
// requests falling back to an index file.
type Handler struct {
	root      string
	indexFile string
}

// New creates a Handler rooted at root, defaulting the index file to
// "index.html".
func New(root string) *Handler {
	return &Handler{root: root, indexFile: "index.html"}
}

// WithIndex sets the file served for directory requests.
func (h *Handler) WithIndex(index string) *Handler {
	h.indexFile = index
	return h
}

// Serve resolves path against the configured root, percent-decoding it and
// rejecting any resolution that escapes the root, then returns the file's
// contents and detected MIME type.
//
// Failures carry a distinguishing wserr.Kind so the acceptor can translate
// them into the right status code: KindCustom for malformed encoding (400),
// KindForbidden for a path-safety rejection (403), KindNotFound for a
// missing file (404), KindIO for a read failure (500).
func (h *Handler) Serve(path string) ([]byte, string, error) {
	clean := strings.TrimPrefix(path, "/")
	decoded, err := url.PathUnescape(clean)
	if err != nil {
		return nil, "", wserr.Wrap(wserr.KindCustom, err, "invalid path encoding")
	}

	requested := filepath.Join(h.root, decoded)

	rootAbs, err := filepath.Abs(h.root)
	if err != nil {
		return nil, "", wserr.Wrap(wserr.KindCustom, err, "invalid root directory")
	}
	rootCanon, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return nil, "", wserr.Wrap(wserr.KindCustom, err, "invalid root directory")
	}

	requestedAbs, err := filepath.Abs(requested)
	if err != nil {
		return nil, "", wserr.NotFound("file not found")
	}
	canon, err := filepath.EvalSymlinks(requestedAbs)
	if err != nil {
		return nil, "", wserr.NotFound("file not found")
	}

	if !isDescendant(rootCanon, canon) {
		return nil, "", wserr.Forbidden("access denied")
	}

	info, err := os.Stat(canon)
	if err != nil {
		return nil, "", wserr.NotFound("file not found")
	}
	servePath := canon
	if info.IsDir() {
		servePath = filepath.Join(canon, h.indexFile)
	}

	contents, err := os.ReadFile(servePath)
	if err != nil {
		return nil, "", wserr.Wrap(wserr.KindIO, err, "failed to read file")
	}

	return contents, mimeType(servePath), nil
}

func isDescendant(root, target string) bool {
	if target == root {
		return true
	}
	return strings.HasPrefix(target, root+string(filepath.Separator))
}

// mimeType maps a file's extension to a MIME type from a small closed
// table rather than the OS MIME database, so results don't vary by
// machine. Unknown extensions fall back to application/octet-stream.
func mimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".ico":
		return "image/x-icon"
	case ".wasm":
		return "application/wasm"
	case ".txt":
		return "text/plain"
	case ".xml":
		return "application/xml"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".pdf":
		return "application/pdf"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
