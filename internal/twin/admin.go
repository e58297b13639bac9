package twin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (t *Twin) adminRoutes(r chi.Router) {
	r.Get("/state", t.State)
	r.Post("/reset", t.ResetState)
	r.Post("/faults", t.InjectFault)
	r.Delete("/faults", t.DeleteFaults)
}

// State handles GET /admin/state.
func (t *Twin) State(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, t.store.snapshot())
}

// ResetState handles POST /admin/reset.
func (t *Twin) ResetState(w http.ResponseWriter, _ *http.Request) {
	t.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// InjectFault handles POST /admin/faults.
func (t *Twin) InjectFault(w http.ResponseWriter, r *http.Request) {
	var f Fault
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil || f.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	t.SetFault(f)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteFaults handles DELETE /admin/faults.
func (t *Twin) DeleteFaults(w http.ResponseWriter, _ *http.Request) {
	t.ClearFaults()
	w.WriteHeader(http.StatusNoContent)
}
