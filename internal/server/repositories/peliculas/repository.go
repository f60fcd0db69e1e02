package peliculas

import (
	"context"

	"github.com/cuxvas/peliculas/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, search string) ([]*models.Pelicula, error)
	Get(ctx context.Context, id int) (*models.Pelicula, error)
	Create(ctx context.Context, p *models.Pelicula) (*models.Pelicula, error)
	Update(ctx context.Context, p *models.Pelicula) error
	Delete(ctx context.Context, id int) error
	SetPoster(ctx context.Context, id int, poster string) error
	SetCategorias(ctx context.Context, peliculaID int, categoriaIDs []int) error
	AddCategoria(ctx context.Context, peliculaID, categoriaID int) error
	RemoveCategoria(ctx context.Context, peliculaID, categoriaID int) error
}
