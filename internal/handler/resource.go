package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/models"
	"github.com/personalai/assistant/internal/security"
	"github.com/personalai/assistant/internal/store"
)

// Repository is the CRUD surface a Resource serves.
type Repository[T, In any] struct {
	List   func(ctx context.Context) ([]T, error)
	Get    func(ctx context.Context, id int64) (T, error)
	Create func(ctx context.Context, in In) (T, error)
	Update func(ctx context.Context, id int64, in In) (T, error)
	Delete func(ctx context.Context, id int64) (T, error)
}

// Resource serves create/list/get/update/delete for one table. Single rows
// are wrapped as {"<singular>": row}, lists as {"<plural>": [...]}.
type Resource[T, In any] struct {
	singular string
	plural   string
	notFound string
	repo     Repository[T, In]
	validate func(*In) error
	idOf     func(T) int64
	audit    *security.AuditLogger
}

// Mount registers the resource routes on r, relative to the resource prefix.
func (h *Resource[T, In]) Mount(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Resource[T, In]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.fail(w, "list", err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{h.plural: items})
}

func (h *Resource[T, In]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get", err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{h.singular: item})
}

func (h *Resource[T, In]) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	item, err := h.repo.Create(r.Context(), in)
	h.audit.LogWrite(r.Header.Get("X-API-Key"), h.plural, "create", h.id(item, err), err == nil)
	if err != nil {
		h.fail(w, "create", err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{h.singular: item})
}

func (h *Resource[T, In]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	item, err := h.repo.Update(r.Context(), id, in)
	h.audit.LogWrite(r.Header.Get("X-API-Key"), h.plural, "update", id, err == nil)
	if err != nil {
		h.fail(w, "update", err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{h.singular: item})
}

// Delete responds with the removed row.
func (h *Resource[T, In]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.repo.Delete(r.Context(), id)
	h.audit.LogWrite(r.Header.Get("X-API-Key"), h.plural, "delete", id, err == nil)
	if err != nil {
		h.fail(w, "delete", err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{h.singular: item})
}

func (h *Resource[T, In]) decode(w http.ResponseWriter, r *http.Request) (In, bool) {
	var in In
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return in, false
	}
	if h.validate != nil {
		if err := h.validate(&in); err != nil {
			models.WriteError(w, http.StatusBadRequest, err.Error())
			return in, false
		}
	}
	return in, true
}

func (h *Resource[T, In]) id(item T, err error) int64 {
	if err != nil {
		return 0
	}
	return h.idOf(item)
}

func (h *Resource[T, In]) fail(w http.ResponseWriter, op string, err error) {
	writeStoreError(w, h.notFound, err)
	if !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Str("resource", h.plural).Str("op", op).Msg("store operation failed")
	}
}

// writeStoreError maps store sentinels onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, notFound string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		models.WriteError(w, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrConstraint):
		models.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		models.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		models.WriteError(w, http.StatusBadRequest, "invalid id: "+chi.URLParam(r, "id"))
		return 0, false
	}
	return id, true
}
