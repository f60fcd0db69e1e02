package repomanager

import (
	"context"
	"database/sql"

	"github.com/cuxvas/peliculas/internal/dbx"
	"github.com/cuxvas/peliculas/internal/server/repositories/categorias"
	"github.com/cuxvas/peliculas/internal/server/repositories/peliculas"
	"github.com/cuxvas/peliculas/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a *sql.DB or a *sql.Tx, so
// services can compose several of them inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Categorias(db dbx.DBTX) categorias.Repository
	Peliculas(db dbx.DBTX) peliculas.Repository
}
