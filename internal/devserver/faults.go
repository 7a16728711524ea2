package devserver

import (
	"net/http"
	"strings"
	"sync"
)

// Fault makes matching requests fail before they reach a handler.
type Fault struct {
	Method  string // "" matches any method
	Path    string // prefix under /api, e.g. "/messages"
	Status  int
	Message string
	Times   int // 0 = until Reset
}

func (f *Fault) matches(r *http.Request, path string) bool {
	if f.Method != "" && !strings.EqualFold(f.Method, r.Method) {
		return false
	}
	return strings.HasPrefix(path, f.Path)
}

// Faults is a set of injected failures, consulted in insertion order.
type Faults struct {
	mu     sync.Mutex
	faults []*Fault
}

// Add registers a fault.
func (fs *Faults) Add(f Fault) {
	if f.Status == 0 {
		f.Status = http.StatusInternalServerError
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.faults = append(fs.faults, &f)
}

// Reset removes every fault.
func (fs *Faults) Reset() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.faults = nil
}

func (fs *Faults) take(r *http.Request, path string) (Fault, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for i, f := range fs.faults {
		if !f.matches(r, path) {
			continue
		}
		hit := *f
		if f.Times > 0 {
			f.Times--
			if f.Times == 0 {
				fs.faults = append(fs.faults[:i], fs.faults[i+1:]...)
			}
		}
		return hit, true
	}
	return Fault{}, false
}

// Middleware answers matching requests with the fault's status and message.
// prefix is stripped from the request path before matching.
func (fs *Faults) Middleware(prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if f, ok := fs.take(r, strings.TrimPrefix(r.URL.Path, prefix)); ok {
				msg := f.Message
				if msg == "" {
					msg = http.StatusText(f.Status)
				}
				Error(w, f.Status, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
