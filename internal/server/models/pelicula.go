package models

import "strings"

const (
	DefaultTitulo   = "Sin titulo"
	DefaultSinopsis = "Sin sinopsis"
	DefaultPoster   = "N/A"
)

// Pelicula is a catalog movie with the categories it is filed under.
type Pelicula struct {
	ID         int         `json:"id"`
	Titulo     string      `json:"titulo"`
	Sinopsis   string      `json:"sinopsis"`
	Anio       int         `json:"anio"`
	Poster     string      `json:"poster"`
	Categorias []Categoria `json:"categorias"`
}

// ApplyDefaults fills blank text fields with their catalog defaults.
func (p *Pelicula) ApplyDefaults() {
	if strings.TrimSpace(p.Titulo) == "" {
		p.Titulo = DefaultTitulo
	}
	if strings.TrimSpace(p.Sinopsis) == "" {
		p.Sinopsis = DefaultSinopsis
	}
	if strings.TrimSpace(p.Poster) == "" {
		p.Poster = DefaultPoster
	}
}
