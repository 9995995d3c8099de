package commendation

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.Actor, filter Filter) ([]*Record, error)
	Get(ctx context.Context, actor *auth.Actor, id int64) (*Record, error)
	Create(ctx context.Context, actor *auth.Actor, input Input) (*Record, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, input Input) (*Record, error)
	Delete(ctx context.Context, actor *auth.Actor, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	personnelID, err := h.QueryInt64(r, "personnel_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	typeID, err := h.QueryInt64(r, "commendation_type_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	actor, _ := auth.ActorFromContext(r.Context())
	list, err := h.Service.List(r.Context(), actor, Filter{PersonnelID: personnelID, CommendationTypeID: typeID})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if list == nil {
		list = []*Record{}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": list})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	record, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := h.DecodeJSON(r, &input); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	record, err := h.Service.Create(r.Context(), actor, input)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var input Input
	if err := h.DecodeJSON(r, &input); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	record, err := h.Service.Update(r.Context(), actor, id, input)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
