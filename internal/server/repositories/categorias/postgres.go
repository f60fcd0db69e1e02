// Package categorias provides the PostgreSQL-backed category repository.
package categorias

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/dbx"
	"github.com/cuxvas/peliculas/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Categoria, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nombre, protegida FROM categorias ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Categoria{}
	for rows.Next() {
		var c models.Categoria
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Protegida); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (*models.Categoria, error) {
	c := &models.Categoria{}
	err := r.db.QueryRowContext(ctx, `SELECT id, nombre, protegida FROM categorias WHERE id = $1`, id).
		Scan(&c.ID, &c.Nombre, &c.Protegida)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Categoria) (*models.Categoria, error) {
	query :=
		`INSERT INTO categorias (nombre, protegida)
		 VALUES ($1, $2)
		 RETURNING id
		 `

	if err := r.db.QueryRowContext(ctx, query, c.Nombre, c.Protegida).Scan(&c.ID); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// Rename changes the name of an unprotected category. A protected or
// missing category leaves no row affected and yields common.ErrorNotFound;
// callers check protection first.
func (r *PostgresRepository) Rename(ctx context.Context, id int, nombre string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categorias SET nombre = $2 WHERE id = $1 AND NOT protegida`, id, nombre)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categorias WHERE id = $1 AND NOT protegida`, id)
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
