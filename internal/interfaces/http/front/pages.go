package front

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/sngm3741/webform-relay/internal/interfaces/http/common"
)

var errNotServable = errors.New("not a regular file")

func (h *Handler) pageHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		h.sendHTMLFile(w, name, http.StatusOK)
	}
}

func (h *Handler) staticHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, err := h.resolve(r.URL.Path)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, errNotServable) {
			h.sendHTMLFile(w, errorPage, http.StatusNotFound)
			return
		}
		if err != nil {
			h.logger.Printf("error during GET %s: %v", r.URL.Path, err)
			common.WriteInternalError(h.logger, w)
			return
		}

		body, err := os.ReadFile(filename)
		if err != nil {
			h.logger.Printf("error sending static file %s: %v", filename, err)
			common.WriteInternalError(h.logger, w)
			return
		}
		common.Write(h.logger, w, http.StatusOK, contentTypeFor(filename), body)
	}
}

// resolve maps a request path onto a regular file below the web root.
// Cleaning against "/" keeps ".." segments from escaping the root.
func (h *Handler) resolve(requestPath string) (string, error) {
	rel := path.Clean("/" + requestPath)
	if rel == "/" {
		return "", errNotServable
	}
	filename := filepath.Join(h.webRoot, filepath.FromSlash(rel))
	info, err := os.Stat(filename)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", errNotServable
	}
	return filename, nil
}

func (h *Handler) sendHTMLFile(w http.ResponseWriter, name string, status int) {
	body, err := os.ReadFile(filepath.Join(h.webRoot, name))
	if err != nil {
		h.logger.Printf("error sending HTML file %s: %v", name, err)
		common.WriteInternalError(h.logger, w)
		return
	}
	common.Write(h.logger, w, status, common.ContentTypeHTML, body)
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return common.DefaultContentType
}
