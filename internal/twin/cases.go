package twin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (t *Twin) caseRoutes(r chi.Router) {
	r.Post("/cases", t.CreateCase)
}

// CreateCase handles POST /cases.
// Every verification config of every proprietor creates a verification.
func (t *Twin) CreateCase(w http.ResponseWriter, r *http.Request) {
	if !t.authorized(r, false) {
		writeError(w, http.StatusUnauthorized, "missing or invalid credential")
		return
	}
	var req struct {
		Proprietors []struct {
			Verifications []map[string]any `json:"verifications"`
		} `json:"proprietors"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Proprietors) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "proprietors are required")
		return
	}
	cfgs := make([][]map[string]any, 0, len(req.Proprietors))
	for _, p := range req.Proprietors {
		cfgs = append(cfgs, p.Verifications)
	}
	writeJSON(w, http.StatusOK, t.store.createCase(cfgs, t.now()))
}
