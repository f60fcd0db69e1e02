package httpapi

import (
	"net/http"
	"strconv"
)

type categoriaRequest struct {
	Nombre string `json:"nombre"`
}

func (s *Server) listCategorias(w http.ResponseWriter, r *http.Request) {
	cs, err := s.catalog.ListCategorias(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (s *Server) getCategoria(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.catalog.GetCategoria(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) createCategoria(w http.ResponseWriter, r *http.Request) {
	var req categoriaRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.catalog.CreateCategoria(r.Context(), req.Nombre)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/categorias/"+strconv.Itoa(c.ID))
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateCategoria(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req categoriaRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.catalog.UpdateCategoria(r.Context(), id, req.Nombre); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteCategoria(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.catalog.DeleteCategoria(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
