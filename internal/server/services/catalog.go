package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/dbx"
	"github.com/cuxvas/peliculas/internal/server/auth"
	"github.com/cuxvas/peliculas/internal/server/models"
	"github.com/cuxvas/peliculas/internal/server/repositories/repomanager"
)

// MinAnio is the year of the oldest surviving film.
const MinAnio = 1888

// PeliculaInput carries the editable fields of a movie. A nil Categorias
// leaves the current category set untouched on update; an empty one clears it.
type PeliculaInput struct {
	Titulo     string `json:"titulo"`
	Sinopsis   string `json:"sinopsis"`
	Anio       int    `json:"anio"`
	Poster     string `json:"poster"`
	Categorias []int  `json:"categorias"`
}

type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       auth.Clock
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, clock auth.Clock) *CatalogService {
	return &CatalogService{db: db, repomanager: m, clock: clock}
}

// ---- categorias ----

func (s *CatalogService) ListCategorias(ctx context.Context) ([]models.Categoria, error) {
	return s.repomanager.Categorias(s.db).List(ctx)
}

func (s *CatalogService) GetCategoria(ctx context.Context, id int) (*models.Categoria, error) {
	return s.repomanager.Categorias(s.db).Get(ctx, id)
}

func (s *CatalogService) CreateCategoria(ctx context.Context, nombre string) (*models.Categoria, error) {
	nombre, err := validNombre(nombre)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Categorias(s.db).Create(ctx, &models.Categoria{Nombre: nombre})
}

func (s *CatalogService) UpdateCategoria(ctx context.Context, id int, nombre string) (*models.Categoria, error) {
	nombre, err := validNombre(nombre)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Categorias(s.db)
	if err := s.ensureUnprotected(ctx, id); err != nil {
		return nil, err
	}
	if err := repo.Rename(ctx, id, nombre); err != nil {
		return nil, err
	}
	return &models.Categoria{ID: id, Nombre: nombre}, nil
}

func (s *CatalogService) DeleteCategoria(ctx context.Context, id int) error {
	if err := s.ensureUnprotected(ctx, id); err != nil {
		return err
	}
	return s.repomanager.Categorias(s.db).Delete(ctx, id)
}

func (s *CatalogService) ensureUnprotected(ctx context.Context, id int) error {
	c, err := s.repomanager.Categorias(s.db).Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Protegida {
		return fmt.Errorf("categoria %q: %w", c.Nombre, common.ErrorProtected)
	}
	return nil
}

func validNombre(nombre string) (string, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return "", fmt.Errorf("nombre is required: %w", common.ErrorValidation)
	}
	return nombre, nil
}

// ---- peliculas ----

func (s *CatalogService) ListPeliculas(ctx context.Context, search string) ([]*models.Pelicula, error) {
	return s.repomanager.Peliculas(s.db).List(ctx, search)
}

func (s *CatalogService) GetPelicula(ctx context.Context, id int) (*models.Pelicula, error) {
	return s.repomanager.Peliculas(s.db).Get(ctx, id)
}

// CreatePelicula stores a new movie with its categories in one transaction.
func (s *CatalogService) CreatePelicula(ctx context.Context, in PeliculaInput) (*models.Pelicula, error) {
	p, err := s.peliculaFromInput(in)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Peliculas(tx)
		if _, err := repo.Create(ctx, p); err != nil {
			return err
		}
		if len(in.Categorias) > 0 {
			return repo.SetCategorias(ctx, p.ID, in.Categorias)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetPelicula(ctx, p.ID)
}

// UpdatePelicula replaces the movie's fields and, when given, its category
// set in one transaction. A blank poster keeps the stored one.
func (s *CatalogService) UpdatePelicula(ctx context.Context, id int, in PeliculaInput) (*models.Pelicula, error) {
	p, err := s.peliculaFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Peliculas(tx)
		if strings.TrimSpace(in.Poster) == "" {
			current, err := repo.Get(ctx, id)
			if err != nil {
				return err
			}
			p.Poster = current.Poster
		}
		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		if in.Categorias != nil {
			return repo.SetCategorias(ctx, id, in.Categorias)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetPelicula(ctx, id)
}

func (s *CatalogService) DeletePelicula(ctx context.Context, id int) error {
	return s.repomanager.Peliculas(s.db).Delete(ctx, id)
}

func (s *CatalogService) AddCategoria(ctx context.Context, peliculaID, categoriaID int) error {
	return s.repomanager.Peliculas(s.db).AddCategoria(ctx, peliculaID, categoriaID)
}

func (s *CatalogService) RemoveCategoria(ctx context.Context, peliculaID, categoriaID int) error {
	return s.repomanager.Peliculas(s.db).RemoveCategoria(ctx, peliculaID, categoriaID)
}

func (s *CatalogService) peliculaFromInput(in PeliculaInput) (*models.Pelicula, error) {
	maxAnio := s.clock.Now().Year() + 10
	if in.Anio < MinAnio || in.Anio > maxAnio {
		return nil, fmt.Errorf("anio must be between %d and %d: %w", MinAnio, maxAnio, common.ErrorValidation)
	}
	for _, id := range in.Categorias {
		if id <= 0 {
			return nil, fmt.Errorf("invalid categoria id %d: %w", id, common.ErrorValidation)
		}
	}

	p := &models.Pelicula{
		Titulo:   strings.TrimSpace(in.Titulo),
		Sinopsis: strings.TrimSpace(in.Sinopsis),
		Anio:     in.Anio,
		Poster:   strings.TrimSpace(in.Poster),
	}
	p.ApplyDefaults()
	return p, nil
}

// IsClientError reports whether err is caused by the request rather than
// by the server.
func IsClientError(err error) bool {
	return errors.Is(err, common.ErrorValidation) ||
		errors.Is(err, common.ErrorNotFound) ||
		errors.Is(err, common.ErrorAlreadyExists) ||
		errors.Is(err, common.ErrorProtected)
}
