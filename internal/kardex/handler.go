package kardex

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/transport"
	"github.com/go-chi/chi"
)

type RecorderAPI interface {
	Append(ctx context.Context, actor *auth.Actor, personnelID int64, input AppendInput) (*Entry, error)
	List(ctx context.Context, actor *auth.Actor, personnelID int64) ([]*Entry, error)
	Get(ctx context.Context, actor *auth.Actor, personnelID, id int64) (*Entry, error)
}

type Handler struct {
	*transport.BaseHandler
	Recorder RecorderAPI
}

func NewHandler(baseHandler *transport.BaseHandler, recorder RecorderAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Recorder:    recorder,
	}
}

// Routes mounts the ledger below a router that already captured {id} as
// the personnel id. Only reads and appends are exposed.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Append)
	r.Get("/{entryID}", h.Get)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	personnelID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	entries, err := h.Recorder.List(r.Context(), actor, personnelID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*Entry{}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}

func (h *Handler) Append(w http.ResponseWriter, r *http.Request) {
	personnelID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var input AppendInput
	if err := h.DecodeJSON(r, &input); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	entry, err := h.Recorder.Append(r.Context(), actor, personnelID, input)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	personnelID, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	id, err := h.IDParam(r, "entryID")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	entry, err := h.Recorder.Get(r.Context(), actor, personnelID, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entry)
}
