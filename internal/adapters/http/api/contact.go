package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/folio/internal/domain/contact"
	"github.com/okian/folio/internal/domain/types"
)

// ContactDependencies drives contact form sessions.
type ContactDependencies interface {
	OpenContact(ctx context.Context) (types.ContactSession, error)
	ContactState(ctx context.Context, id string) (types.ContactSession, error)
	UpdateContact(ctx context.Context, id string, f contact.Form) (types.ContactSession, error)
	SubmitContact(ctx context.Context, id string) (types.ContactSession, error)
	DismissContact(ctx context.Context, id string) (types.ContactSession, error)
	CloseContact(ctx context.Context, id string) error
}

// ContactHandler handles contact form requests.
type ContactHandler struct {
	deps ContactDependencies
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(deps ContactDependencies) *ContactHandler {
	return &ContactHandler{deps: deps}
}

// HandleOpen handles POST /api/contact requests.
func (h *ContactHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	const op = "api.open_contact"
	s, err := h.deps.OpenContact(r.Context())
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/api/contact/"+s.ID)
	writeJSON(w, http.StatusCreated, s)
}

// HandleGet handles GET /api/contact/{id} requests.
func (h *ContactHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_contact"
	id, ok := sessionID(w, r, op)
	if !ok {
		return
	}
	s, err := h.deps.ContactState(r.Context(), id)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleUpdate handles PUT /api/contact/{id} requests.
func (h *ContactHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_contact"
	id, ok := sessionID(w, r, op)
	if !ok {
		return
	}
	var f contact.Form
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	s, err := h.deps.UpdateContact(r.Context(), id, f)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleSubmit handles POST /api/contact/{id}/submit requests. The relay
// call runs in the background; clients poll the session for the outcome.
func (h *ContactHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_contact"
	id, ok := sessionID(w, r, op)
	if !ok {
		return
	}
	s, err := h.deps.SubmitContact(r.Context(), id)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, s)
}

// HandleDismiss handles POST /api/contact/{id}/dismiss requests.
func (h *ContactHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	const op = "api.dismiss_contact"
	id, ok := sessionID(w, r, op)
	if !ok {
		return
	}
	s, err := h.deps.DismissContact(r.Context(), id)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleClose handles DELETE /api/contact/{id} requests.
func (h *ContactHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	const op = "api.close_contact"
	id, ok := sessionID(w, r, op)
	if !ok {
		return
	}
	if err := h.deps.CloseContact(r.Context(), id); err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionID(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return "", false
	}
	return id, true
}
