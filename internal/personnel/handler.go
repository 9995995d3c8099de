package personnel

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.Actor, filter Filter) ([]*Personnel, error)
	Get(ctx context.Context, actor *auth.Actor, id int64) (*Personnel, error)
	Create(ctx context.Context, actor *auth.Actor, input PersonnelInput) (*Personnel, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, input PersonnelInput) (*Personnel, error)
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

type ListResponse struct {
	Items []*Personnel `json:"items"`
	Total int          `json:"total"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	actor, _ := auth.ActorFromContext(r.Context())
	list, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if list == nil {
		list = []*Personnel{}
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Items: list, Total: len(list)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	p, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input PersonnelInput
	if err := h.DecodeJSON(r, &input); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	p, err := h.Service.Create(r.Context(), actor, input)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var input PersonnelInput
	if err := h.DecodeJSON(r, &input); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	p, err := h.Service.Update(r.Context(), actor, id, input)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
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

func (h *Handler) parseFilter(r *http.Request) (Filter, error) {
	filter := Filter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}

	var err error
	if filter.UnitID, err = h.QueryInt64(r, "unit_id"); err != nil {
		return Filter{}, err
	}
	if filter.StatusID, err = h.QueryInt64(r, "status_id"); err != nil {
		return Filter{}, err
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return Filter{}, internal.NewValidationFieldError("active", "must be true or false", internal.ErrCodeInvalidValue)
		}
		filter.Active = &active
	}
	return filter, nil
}
