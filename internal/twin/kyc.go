package twin

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxUploadSize = 10 << 20

type conflictError string

func (e conflictError) Error() string { return string(e) }

func (t *Twin) kycRoutes(r chi.Router) {
	r.Post("/verifications", t.CreateVerification)
	r.Route("/verifications/{id}", func(r chi.Router) {
		r.Get("/", t.GetVerification)
		r.Patch("/", t.PatchVerification)
		r.Post("/{process}", t.UploadDocument)
		r.Patch("/{process}", t.PatchProcess)
	})
}

// CreateVerification handles POST /verifications.
func (t *Twin) CreateVerification(w http.ResponseWriter, r *http.Request) {
	if t.opts.PrivateKey != "" && !t.authorized(r, true) {
		writeError(w, http.StatusUnauthorized, "missing or invalid credential")
		return
	}
	var cfg map[string]any
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, t.store.createVerification(cfg, t.now()))
}

// GetVerification handles GET /verifications/{id}.
// It requires no credential.
func (t *Twin) GetVerification(w http.ResponseWriter, r *http.Request) {
	v, ok := t.store.verification(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "verification not found")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// PatchVerification handles PATCH /verifications/{id}.
func (t *Twin) PatchVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PdpaConsented    *bool `json:"pdpaConsented"`
		WelcomeConfirmed *bool `json:"welcomeConfirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t.respond(w, chi.URLParam(r, "id"), func(v *Verification) error {
		if req.PdpaConsented != nil {
			v.PdpaConsented = *req.PdpaConsented
		}
		if req.WelcomeConfirmed != nil {
			v.WelcomeConfirmed = *req.WelcomeConfirmed
		}
		return nil
	})
}

// UploadDocument handles POST /verifications/{id}/{process}.
// The multipart body must have a non-empty JPEG "file".
// A new upload resets the result of the process.
func (t *Twin) UploadDocument(w http.ResponseWriter, r *http.Request) {
	process := chi.URLParam(r, "process")
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	f, h, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil || len(b) == 0 {
		writeError(w, http.StatusBadRequest, "file is empty")
		return
	}
	if mt, _, err := mime.ParseMediaType(h.Header.Get("Content-Type")); err != nil || mt != "image/jpeg" {
		writeError(w, http.StatusUnsupportedMediaType, "file must be image/jpeg")
		return
	}
	t.respond(w, chi.URLParam(r, "id"), func(v *Verification) error {
		res := v.result(process)
		if res == nil {
			return errNotFound
		}
		if !v.PdpaConsented {
			return conflictError("pdpa is not consented")
		}
		prev := *res
		attempts := 1
		if prev != nil {
			if prev.Confirmed {
				return conflictError(process + " is already confirmed")
			}
			attempts = prev.Attempts + 1
		}
		if limit, ok := number(v.config(process)["attempts"]); ok && attempts > int(limit) {
			return conflictError("too many attempts")
		}
		*res = &Result{Attempts: attempts, uploaded: true}
		return nil
	})
}

// PatchProcess handles PATCH /verifications/{id}/{process}.
// Confirming a process marks it verified. Confirming dopa after the ID cards verifies the record.
func (t *Twin) PatchProcess(w http.ResponseWriter, r *http.Request) {
	process := chi.URLParam(r, "process")
	var req struct {
		Confirmed bool `json:"confirmed"`
		Informed  bool `json:"informed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t.respond(w, chi.URLParam(r, "id"), func(v *Verification) error {
		res := v.result(process)
		if res == nil {
			return errNotFound
		}
		if !v.PdpaConsented {
			return conflictError("pdpa is not consented")
		}
		if !req.Confirmed {
			return nil
		}
		switch process {
		case "dopa":
			for _, r := range []*Result{v.FrontIDCardResult, v.BackIDCardResult} {
				if r == nil || !r.Confirmed {
					return conflictError("id cards are not confirmed")
				}
			}
			if *res == nil {
				*res = &Result{}
			}
		default:
			if *res == nil || !(*res).uploaded {
				return conflictError(process + " is not uploaded")
			}
		}
		(*res).Verified = true
		(*res).Confirmed = true
		(*res).Informed = req.Informed
		if process == "dopa" {
			v.Status = StatusVerified
		}
		return nil
	})
}

var errNotFound = errors.New("not found")

func (t *Twin) respond(w http.ResponseWriter, id string, f func(*Verification) error) {
	v, ok, err := t.store.update(id, t.now(), f)
	var conflict conflictError
	switch {
	case !ok:
		writeError(w, http.StatusNotFound, "verification not found")
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, "process not found")
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, conflict.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
