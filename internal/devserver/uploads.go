package devserver

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/ashureev/castline/internal/domain"
)

const maxUploadBytes = 20 << 20

var errNoFile = errors.New("no file uploaded")

type storedFile struct {
	contentType string
	data        []byte
}

// uploads keeps uploaded files in memory, served under /uploads/.
type uploads struct {
	mu    sync.RWMutex
	files map[string]storedFile
}

func newUploads() *uploads {
	return &uploads{files: make(map[string]storedFile)}
}

// save stores the multipart file in field and returns its URL and detected
// content type. The declared content type is ignored.
func (u *uploads) save(r *http.Request, field string) (string, string, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", "", errNoFile
		}
		return "", "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return "", "", err
	}
	mt := mimetype.Detect(data)
	name := newID() + mt.Extension()

	u.mu.Lock()
	u.files[name] = storedFile{contentType: mt.String(), data: data}
	u.mu.Unlock()

	return baseURL(r) + "/uploads/" + name, mt.String(), nil
}

func (u *uploads) get(name string) (storedFile, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	f, ok := u.files[name]
	return f, ok
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// mediaTypeOf classifies a detected content type the way posts store it.
func mediaTypeOf(contentType string) string {
	return domain.MediaTypeFor(strings.ToLower(contentType))
}

func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	f, ok := s.uploads.get(chi.URLParam(r, "name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.contentType)
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(f.data))
}
