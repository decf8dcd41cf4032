package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meduaid/qb-portal/internal/storage"
)

// MountAssets wires image upload/download for station and submission content.
// Keys are content-scoped so images can be cleaned up with their document.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	// POST /assets/{contentID} with multipart field "file"
	r.Post("/{contentID}", func(w http.ResponseWriter, r *http.Request) {
		contentID := chi.URLParam(r, "contentID")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		name := hdr.Filename
		if name == "" {
			name = uuid.NewString()
		}
		key := "content/" + contentID + "/" + name
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"key": key})
	})

	// GET /assets/* -> returns the blob at whatever follows /assets/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	})
}
