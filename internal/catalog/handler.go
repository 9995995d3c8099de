package catalog

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI[T Entry] interface {
	Kind() Kind
	List(ctx context.Context, actor *auth.Actor) ([]T, error)
	Get(ctx context.Context, actor *auth.Actor, id int64) (*T, error)
	Create(ctx context.Context, actor *auth.Actor, entry *T) (*T, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, entry *T) (*T, error)
	Delete(ctx context.Context, actor *auth.Actor, id int64) error
}

type Handler[T Entry] struct {
	*transport.BaseHandler
	Service ServiceAPI[T]
}

func NewHandler[T Entry](baseHandler *transport.BaseHandler, service ServiceAPI[T]) *Handler[T] {
	return &Handler[T]{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// Routes mounts the catalog under its path segment.
func (h *Handler[T]) Routes(r chi.Router) {
	r.Route("/"+h.Service.Kind().Path, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	entries, err := h.Service.List(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []T{}
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}

func (h *Handler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	entry, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var entry T
	if err := h.DecodeJSON(r, &entry); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	created, err := h.Service.Create(r.Context(), actor, &entry)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var entry T
	if err := h.DecodeJSON(r, &entry); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	actor, _ := auth.ActorFromContext(r.Context())
	updated, err := h.Service.Update(r.Context(), actor, id, &entry)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler[T]) Delete(w http.ResponseWriter, r *http.Request) {
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
