package app

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"ucsbexample/api/internal/rbac"
)

// resource serves the five CRUD routes of one entity collection.
type resource[K comparable, E any] struct {
	server    *HTTPServer
	service   *EntityService[K, E]
	bind      func(*params) (E, error)
	parseKey  func(string) (K, error)
	keyParams []string
}

func newResource[K comparable, E any](
	server *HTTPServer,
	service *EntityService[K, E],
	bind func(*params) (E, error),
	parseKey func(string) (K, error),
	keyParams ...string,
) *resource[K, E] {
	return &resource[K, E]{
		server:    server,
		service:   service,
		bind:      bind,
		parseKey:  parseKey,
		keyParams: keyParams,
	}
}

func (h *resource[K, E]) mount(router *mux.Router, base string) {
	router.HandleFunc(base+"/all", h.list).Methods(http.MethodGet)
	router.HandleFunc(base+"/post", h.create).Methods(http.MethodPost)
	router.HandleFunc(base, h.get).Methods(http.MethodGet)
	router.HandleFunc(base, h.update).Methods(http.MethodPut)
	router.HandleFunc(base, h.remove).Methods(http.MethodDelete)
}

func (h *resource[K, E]) list(w http.ResponseWriter, r *http.Request) {
	r, ok := h.server.authorize(w, r, rbac.ActionRead)
	if !ok {
		return
	}
	items, err := h.service.List(r.Context())
	if err != nil {
		h.server.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *resource[K, E]) create(w http.ResponseWriter, r *http.Request) {
	r, ok := h.server.authorize(w, r, rbac.ActionWrite)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.server.writeFailure(w, r, validationError("Malformed request parameters"))
		return
	}
	entity, err := h.bind(newParams(r.Form))
	if err != nil {
		h.server.writeFailure(w, r, err)
		return
	}
	saved, err := h.service.Create(r.Context(), entity)
	if err != nil {
		h.server.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *resource[K, E]) get(w http.ResponseWriter, r *http.Request) {
	r, ok := h.server.authorize(w, r, rbac.ActionRead)
	if !ok {
		return
	}
	key, err := h.key(r)
	if err != nil {
		h.server.writeFailure(w, r, err)
		return
	}
	entity, err := h.service.Get(r.Context(), key)
	if err != nil {
		h.server.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entity)
}

func (h *resource[K, E]) update(w http.ResponseWriter, r *http.Request) {
	r, ok := h.server.authorize(w, r, rbac.ActionWrite)
	if !ok {
		return
	}
	key, err := h.key(r)
	if err != nil {
		h.server.writeFailure(w, r, err)
		return
	}
	var incoming E
	if err := decodeBody(r, &incoming); err != nil {
		h.server.writeFailure(w, r, err)
		return
	}
	saved, err := h.service.Update(r.Context(), key, incoming)
	if err != nil {
		h.server.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *resource[K, E]) remove(w http.ResponseWriter, r *http.Request) {
	r, ok := h.server.authorize(w, r, rbac.ActionWrite)
	if !ok {
		return
	}
	key, err := h.key(r)
	if err != nil {
		h.server.writeFailure(w, r, err)
		return
	}
	if err := h.service.Delete(r.Context(), key); err != nil {
		h.server.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s with id %v deleted", h.service.TypeName(), key),
	})
}

func (h *resource[K, E]) key(r *http.Request) (K, error) {
	raw, err := keyFrom(r.URL.Query(), h.keyParams...)
	if err != nil {
		var zero K
		return zero, err
	}
	return h.parseKey(raw)
}
