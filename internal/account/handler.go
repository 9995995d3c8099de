package account

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Me(ctx context.Context, actor *auth.Actor) (*Account, error)
	List(ctx context.Context, actor *auth.Actor, filter Filter) ([]*Account, error)
	Get(ctx context.Context, actor *auth.Actor, id int64) (*Account, error)
	Create(ctx context.Context, actor *auth.Actor, dto CreateDTO) (*Created, error)
	ReassignRole(ctx context.Context, actor *auth.Actor, id int64, dto RoleDTO) (*Account, error)
	SetActive(ctx context.Context, actor *auth.Actor, id int64, dto ActiveDTO) (*Account, error)
	ResetPassword(ctx context.Context, actor *auth.Actor, id int64) (*Reset, error)
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

// Routes mounts the administrative endpoints. GET /accounts/me is mounted by
// the router so it stays reachable during a forced password change.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/role", h.ReassignRole)
	r.Put("/{id}/active", h.SetActive)
	r.Post("/{id}/password-reset", h.ResetPassword)
}

// Me handles GET /accounts/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	a, err := h.Service.Me(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter Filter
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := auth.ParseRole(raw)
		if err != nil {
			h.HandleServiceError(w, internal.NewValidationFieldError("role", err.Error(), internal.ErrCodeInvalidValue))
			return
		}
		filter.Role = &role
	}
	switch r.URL.Query().Get("active") {
	case "true":
		active := true
		filter.Active = &active
	case "false":
		active := false
		filter.Active = &active
	}

	actor, _ := auth.ActorFromContext(r.Context())
	list, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if list == nil {
		list = []*Account{}
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
	a, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	created, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) ReassignRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto RoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	a, err := h.Service.ReassignRole(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto ActiveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	a, err := h.Service.SetActive(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

// ResetPassword handles POST /accounts/{id}/password-reset
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	reset, err := h.Service.ResetPassword(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, reset)
}
