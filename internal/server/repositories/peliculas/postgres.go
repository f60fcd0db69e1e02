// Package peliculas provides the PostgreSQL-backed movie repository,
// including the movie/category links.
package peliculas

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/dbx"
	"github.com/cuxvas/peliculas/internal/server/models"
)

// PostgresRepository implements movie storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectWithCategorias = `
	SELECT p.id, p.titulo, p.sinopsis, p.anio, p.poster, c.id, c.nombre, c.protegida
	FROM peliculas p
	LEFT JOIN categoria_pelicula cp ON cp.pelicula_id = p.id
	LEFT JOIN categorias c ON c.id = cp.categoria_id
	`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns the movies whose title contains search (case-insensitive),
// ordered by title. An empty search lists the whole catalog.
func (r *PostgresRepository) List(ctx context.Context, search string) ([]*models.Pelicula, error) {
	query := selectWithCategorias +
		`WHERE p.titulo ILIKE $1
		 ORDER BY p.titulo, p.id, c.nombre
		 `

	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(search)) + "%"
	rows, err := r.db.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanPeliculas(rows)
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (*models.Pelicula, error) {
	query := selectWithCategorias +
		`WHERE p.id = $1
		 ORDER BY c.nombre
		 `

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result, err := scanPeliculas(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, common.ErrorNotFound
	}
	return result[0], nil
}

// scanPeliculas folds the joined rows (one per movie/category pair, movies
// contiguous) into movies with their categories.
func scanPeliculas(rows *sql.Rows) ([]*models.Pelicula, error) {
	result := []*models.Pelicula{}
	var current *models.Pelicula

	for rows.Next() {
		var (
			p         models.Pelicula
			catID     sql.NullInt64
			catNombre sql.NullString
			catProt   sql.NullBool
		)
		if err := rows.Scan(&p.ID, &p.Titulo, &p.Sinopsis, &p.Anio, &p.Poster, &catID, &catNombre, &catProt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		if current == nil || current.ID != p.ID {
			p.Categorias = []models.Categoria{}
			current = &p
			result = append(result, current)
		}
		if catID.Valid {
			current.Categorias = append(current.Categorias, models.Categoria{
				ID:        int(catID.Int64),
				Nombre:    catNombre.String,
				Protegida: catProt.Bool,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Pelicula) (*models.Pelicula, error) {
	query :=
		`INSERT INTO peliculas (titulo, sinopsis, anio, poster)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	if err := r.db.QueryRowContext(ctx, query, p.Titulo, p.Sinopsis, p.Anio, p.Poster).Scan(&p.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Pelicula) error {
	query :=
		`UPDATE peliculas SET titulo = $2, sinopsis = $3, anio = $4, poster = $5
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, p.ID, p.Titulo, p.Sinopsis, p.Anio, p.Poster)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM peliculas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) SetPoster(ctx context.Context, id int, poster string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE peliculas SET poster = $2 WHERE id = $1`, id, poster)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// SetCategorias replaces the movie's category set. It issues several
// statements and is meant to run inside a transaction.
func (r *PostgresRepository) SetCategorias(ctx context.Context, peliculaID int, categoriaIDs []int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categoria_pelicula WHERE pelicula_id = $1`, peliculaID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	for _, cid := range categoriaIDs {
		if err := r.AddCategoria(ctx, peliculaID, cid); err != nil {
			return err
		}
	}
	return nil
}

// AddCategoria links a category to a movie. Linking twice is a no-op.
func (r *PostgresRepository) AddCategoria(ctx context.Context, peliculaID, categoriaID int) error {
	query :=
		`INSERT INTO categoria_pelicula (categoria_id, pelicula_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, categoriaID, peliculaID); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return fmt.Errorf("pelicula %d / categoria %d: %w", peliculaID, categoriaID, common.ErrorNotFound)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveCategoria(ctx context.Context, peliculaID, categoriaID int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categoria_pelicula WHERE categoria_id = $1 AND pelicula_id = $2`, categoriaID, peliculaID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
