package twin

import (
	"net/http"
	"path"
	"strings"
)

// Fault replaces the responses of matching requests.
type Fault struct {
	// Method matches any method if empty.
	Method string `json:"method,omitempty"`
	// Path is a path.Match pattern matched against the path without the gateway prefix,
	// e.g. "/verifications/*/dopa".
	Path   string `json:"path"`
	Status int    `json:"status"`
	// Body is written as JSON if it is not empty.
	Body string `json:"body,omitempty"`
	// Times limits the number of injections. Zero means unlimited.
	Times int `json:"times,omitempty"`
}

func (f *Fault) match(r *http.Request) bool {
	if f.Method != "" && !strings.EqualFold(f.Method, r.Method) {
		return false
	}
	ok, err := path.Match(f.Path, servicePath(r.URL.Path))
	return err == nil && ok
}

// SetFault injects f.
func (t *Twin) SetFault(f Fault) {
	t.faultM.Lock()
	defer t.faultM.Unlock()
	t.faults = append(t.faults, f)
}

// ClearFaults removes all faults.
func (t *Twin) ClearFaults() {
	t.faultM.Lock()
	defer t.faultM.Unlock()
	t.faults = nil
}

func (t *Twin) takeFault(r *http.Request) (Fault, bool) {
	t.faultM.Lock()
	defer t.faultM.Unlock()
	for i := range t.faults {
		f := &t.faults[i]
		if !f.match(r) {
			continue
		}
		found := *f
		if f.Times > 0 {
			f.Times--
			if f.Times == 0 {
				t.faults = append(t.faults[:i], t.faults[i+1:]...)
			}
		}
		return found, true
	}
	return Fault{}, false
}

func (t *Twin) faultInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/admin/") {
			next.ServeHTTP(w, r)
			return
		}
		f, ok := t.takeFault(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		status := f.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if f.Body == "" {
			writeError(w, status, "injected fault")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(f.Body))
	})
}
