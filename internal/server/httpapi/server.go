// Package httpapi exposes the catalog over HTTP/JSON using a chi router.
//
// Every request passes through request id, panic recovery, CORS and the
// sliding-expiration stage before route-level authentication and role
// checks.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/logging"
	"github.com/cuxvas/peliculas/internal/server/auth"
	"github.com/cuxvas/peliculas/internal/server/models"
	"github.com/cuxvas/peliculas/internal/server/services"
	"github.com/cuxvas/peliculas/internal/server/sliding"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*auth.Token, error)
	Me(ctx context.Context, id string) (*auth.Principal, error)
}

type CatalogService interface {
	ListCategorias(ctx context.Context) ([]models.Categoria, error)
	GetCategoria(ctx context.Context, id int) (*models.Categoria, error)
	CreateCategoria(ctx context.Context, nombre string) (*models.Categoria, error)
	UpdateCategoria(ctx context.Context, id int, nombre string) (*models.Categoria, error)
	DeleteCategoria(ctx context.Context, id int) error

	ListPeliculas(ctx context.Context, search string) ([]*models.Pelicula, error)
	GetPelicula(ctx context.Context, id int) (*models.Pelicula, error)
	CreatePelicula(ctx context.Context, in services.PeliculaInput) (*models.Pelicula, error)
	UpdatePelicula(ctx context.Context, id int, in services.PeliculaInput) (*models.Pelicula, error)
	DeletePelicula(ctx context.Context, id int) error
	AddCategoria(ctx context.Context, peliculaID, categoriaID int) error
	RemoveCategoria(ctx context.Context, peliculaID, categoriaID int) error
}

type PosterService interface {
	PresignUpload(ctx context.Context, peliculaID int) (*services.PosterUpload, error)
	ResolvePosters(ctx context.Context, ps ...*models.Pelicula)
}

type Options struct {
	Address        string
	AllowedOrigins []string
	RenewedHeader  string
}

type Server struct {
	opts    Options
	users   AuthService
	catalog CatalogService
	posters PosterService
	issuer  *auth.Issuer
	renewer *sliding.Renewer
	clock   auth.Clock
	logger  logging.Logger
	router  chi.Router
}

func NewServer(opts Options, l logging.Logger, issuer *auth.Issuer, renewer *sliding.Renewer,
	us AuthService, cs CatalogService, ps PosterService) *Server {

	if opts.RenewedHeader == "" {
		opts.RenewedHeader = common.DefaultRenewedTokenHeader
	}

	s := &Server{
		opts:    opts,
		users:   us,
		catalog: cs,
		posters: ps,
		issuer:  issuer,
		renewer: renewer,
		clock:   auth.SystemClock{},
		logger:  l.With("module", "http_server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:       s.opts.AllowedOrigins,
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:       []string{"*"},
		ExposedHeaders:       []string{s.opts.RenewedHeader},
		OptionsSuccessStatus: http.StatusNoContent,
	}))
	r.Use(sliding.Middleware(s.renewer, s.opts.RenewedHeader))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.me)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(common.RoleUsuario, common.RoleAdministrador))
				r.Get("/categorias", s.listCategorias)
				r.Get("/categorias/{id}", s.getCategoria)
				r.Get("/peliculas", s.listPeliculas)
				r.Get("/peliculas/{id}", s.getPelicula)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireRole(common.RoleAdministrador))
				r.Post("/categorias", s.createCategoria)
				r.Put("/categorias/{id}", s.updateCategoria)
				r.Delete("/categorias/{id}", s.deleteCategoria)

				r.Post("/peliculas", s.createPelicula)
				r.Put("/peliculas/{id}", s.updatePelicula)
				r.Delete("/peliculas/{id}", s.deletePelicula)
				r.Post("/peliculas/{id}/categorias/{categoriaId}", s.addPeliculaCategoria)
				r.Delete("/peliculas/{id}/categorias/{categoriaId}", s.removePeliculaCategoria)
				r.Post("/peliculas/{id}/poster", s.presignPoster)
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
