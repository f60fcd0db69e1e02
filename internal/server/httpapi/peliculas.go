package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cuxvas/peliculas/internal/server/services"
)

func (s *Server) listPeliculas(w http.ResponseWriter, r *http.Request) {
	ps, err := s.catalog.ListPeliculas(r.Context(), strings.TrimSpace(r.URL.Query().Get("s")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.posters.ResolvePosters(r.Context(), ps...)
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) getPelicula(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.catalog.GetPelicula(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.posters.ResolvePosters(r.Context(), p)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createPelicula(w http.ResponseWriter, r *http.Request) {
	var in services.PeliculaInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.catalog.CreatePelicula(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/peliculas/"+strconv.Itoa(p.ID))
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePelicula(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in services.PeliculaInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.catalog.UpdatePelicula(r.Context(), id, in); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deletePelicula(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.catalog.DeletePelicula(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) linkParams(r *http.Request) (int, int, error) {
	id, err := intParam(r, "id")
	if err != nil {
		return 0, 0, err
	}
	categoriaID, err := intParam(r, "categoriaId")
	if err != nil {
		return 0, 0, err
	}
	return id, categoriaID, nil
}

func (s *Server) addPeliculaCategoria(w http.ResponseWriter, r *http.Request) {
	id, categoriaID, err := s.linkParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.catalog.AddCategoria(r.Context(), id, categoriaID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removePeliculaCategoria(w http.ResponseWriter, r *http.Request) {
	id, categoriaID, err := s.linkParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.catalog.RemoveCategoria(r.Context(), id, categoriaID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) presignPoster(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	up, err := s.posters.PresignUpload(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, up)
}
