package leave

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Submit(ctx context.Context, actor *auth.Actor, dto SubmitDTO) (*Request, error)
	Decide(ctx context.Context, actor *auth.Actor, id int64, dto DecideDTO) (*Request, error)
	Cancel(ctx context.Context, actor *auth.Actor, id int64) (*Request, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateDTO) (*Request, error)
	List(ctx context.Context, actor *auth.Actor, filter Filter) ([]*Request, error)
	Get(ctx context.Context, actor *auth.Actor, id int64) (*Request, error)
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
	r.Post("/", h.Submit)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/decision", h.Decide)
	r.Post("/{id}/cancel", h.Cancel)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	personnelID, err := h.QueryInt64(r, "personnel_id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	filter := Filter{PersonnelID: personnelID}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		switch status {
		case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
			filter.Status = &status
		default:
			h.HandleServiceError(w, internal.NewValidationFieldError("status", "unknown leave status", internal.ErrCodeInvalidValue))
			return
		}
	}

	actor, _ := auth.ActorFromContext(r.Context())
	list, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if list == nil {
		list = []*Request{}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": list})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto SubmitDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	req, err := h.Service.Submit(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	req, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto UpdateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	req, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
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

func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto DecideDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	req, err := h.Service.Decide(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	req, err := h.Service.Cancel(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}
