package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/kitchzone/internal/service"
)

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Items.List(r.Context(), userID(r), r.URL.Query().Get("zone_id"))
	if err != nil {
		s.writeServiceError(w, r, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in service.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	item, err := s.svc.Items.Create(r.Context(), userID(r), in)
	if err != nil {
		s.writeServiceError(w, r, "create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var in service.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return
	}
	item, err := s.svc.Items.Update(r.Context(), userID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeServiceError(w, r, "update item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Items.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
