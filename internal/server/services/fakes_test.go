package services

import (
	"context"
	"database/sql"
	"sync"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/dbx"
	"github.com/cuxvas/peliculas/internal/logging"
	"github.com/cuxvas/peliculas/internal/server/auth"
	"github.com/cuxvas/peliculas/internal/server/models"
	"github.com/cuxvas/peliculas/internal/server/repositories/categorias"
	"github.com/cuxvas/peliculas/internal/server/repositories/peliculas"
	"github.com/cuxvas/peliculas/internal/server/repositories/users"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

type fakeRepoMgr struct {
	users      *fakeUsersRepo
	categorias *fakeCategoriasRepo
	peliculas  *fakePeliculasRepo
}

func newFakeRepoMgr() *fakeRepoMgr {
	return &fakeRepoMgr{
		users:      newFakeUsersRepo(),
		categorias: &fakeCategoriasRepo{items: map[int]*models.Categoria{}},
		peliculas:  &fakePeliculasRepo{items: map[int]*models.Pelicula{}},
	}
}

func (m *fakeRepoMgr) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoMgr) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoMgr) Categorias(dbx.DBTX) categorias.Repository   { return m.categorias }
func (m *fakeRepoMgr) Peliculas(dbx.DBTX) peliculas.Repository     { return m.peliculas }

// ---- users ----

type fakeUsersRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*models.User
	roles     map[string][]string
	getErr    error
	findErr   error
	createN   int
	assignErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}, roles: map[string][]string{}}
}

func (r *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	r.createN++
	cp := *u
	cp.ID = "id-" + u.Email
	r.byEmail[u.Email] = &cp
	return &cp, nil
}

func (r *fakeUsersRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *fakeUsersRepo) FindPrincipal(_ context.Context, id string) (*auth.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byEmail {
		if u.ID == id {
			return &auth.Principal{
				ID:       u.ID,
				UserName: u.UserName,
				Email:    u.Email,
				Name:     u.Nombre,
				Roles:    append([]string(nil), r.roles[u.ID]...),
			}, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) AssignRole(_ context.Context, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.assignErr != nil {
		return r.assignErr
	}
	for _, have := range r.roles[userID] {
		if have == role {
			return nil
		}
	}
	r.roles[userID] = append(r.roles[userID], role)
	return nil
}

func (r *fakeUsersRepo) AddClaim(context.Context, string, models.UserClaim) error { return nil }

// ---- categorias ----

type fakeCategoriasRepo struct {
	items   map[int]*models.Categoria
	nextID  int
	renamed map[int]string
	deleted []int
}

func (r *fakeCategoriasRepo) List(context.Context) ([]models.Categoria, error) {
	out := make([]models.Categoria, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoriasRepo) Get(_ context.Context, id int) (*models.Categoria, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoriasRepo) Create(_ context.Context, c *models.Categoria) (*models.Categoria, error) {
	for _, have := range r.items {
		if have.Nombre == c.Nombre {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.nextID++
	cp := *c
	cp.ID = r.nextID
	r.items[cp.ID] = &cp
	return &cp, nil
}

func (r *fakeCategoriasRepo) Rename(_ context.Context, id int, nombre string) error {
	c, ok := r.items[id]
	if !ok || c.Protegida {
		return common.ErrorNotFound
	}
	if r.renamed == nil {
		r.renamed = map[int]string{}
	}
	r.renamed[id] = nombre
	c.Nombre = nombre
	return nil
}

func (r *fakeCategoriasRepo) Delete(_ context.Context, id int) error {
	c, ok := r.items[id]
	if !ok || c.Protegida {
		return common.ErrorNotFound
	}
	delete(r.items, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// ---- peliculas ----

type fakePeliculasRepo struct {
	items      map[int]*models.Pelicula
	links      map[int][]int
	nextID     int
	setCalls   int
	setErr     error
	posters    map[int]string
	addedLinks [][2]int
}

func (r *fakePeliculasRepo) List(context.Context, string) ([]*models.Pelicula, error) {
	out := make([]*models.Pelicula, 0, len(r.items))
	for _, p := range r.items {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePeliculasRepo) Get(_ context.Context, id int) (*models.Pelicula, error) {
	p, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	for _, cid := range r.links[id] {
		cp.Categorias = append(cp.Categorias, models.Categoria{ID: cid})
	}
	return &cp, nil
}

func (r *fakePeliculasRepo) Create(_ context.Context, p *models.Pelicula) (*models.Pelicula, error) {
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.items[p.ID] = &cp
	return p, nil
}

func (r *fakePeliculasRepo) Update(_ context.Context, p *models.Pelicula) error {
	if _, ok := r.items[p.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakePeliculasRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.items[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakePeliculasRepo) SetPoster(_ context.Context, id int, poster string) error {
	p, ok := r.items[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Poster = poster
	if r.posters == nil {
		r.posters = map[int]string{}
	}
	r.posters[id] = poster
	return nil
}

func (r *fakePeliculasRepo) SetCategorias(_ context.Context, id int, ids []int) error {
	r.setCalls++
	if r.setErr != nil {
		return r.setErr
	}
	if r.links == nil {
		r.links = map[int][]int{}
	}
	r.links[id] = append([]int(nil), ids...)
	return nil
}

func (r *fakePeliculasRepo) AddCategoria(_ context.Context, peliculaID, categoriaID int) error {
	r.addedLinks = append(r.addedLinks, [2]int{peliculaID, categoriaID})
	return nil
}

func (r *fakePeliculasRepo) RemoveCategoria(context.Context, int, int) error { return nil }
