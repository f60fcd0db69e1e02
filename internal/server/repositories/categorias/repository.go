package categorias

import (
	"context"

	"github.com/cuxvas/peliculas/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Categoria, error)
	Get(ctx context.Context, id int) (*models.Categoria, error)
	Create(ctx context.Context, c *models.Categoria) (*models.Categoria, error)
	Rename(ctx context.Context, id int, nombre string) error
	Delete(ctx context.Context, id int) error
}
