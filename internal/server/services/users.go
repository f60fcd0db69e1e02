package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/dbx"
	"github.com/cuxvas/peliculas/internal/logging"
	"github.com/cuxvas/peliculas/internal/server/auth"
	"github.com/cuxvas/peliculas/internal/server/models"
	"github.com/cuxvas/peliculas/internal/server/repositories/repomanager"
)

var (
	hashPassword  = auth.HashPassword
	checkPassword = auth.CheckPassword
)

// PrincipalInvalidator drops cached copies of a principal after its roles
// or claims change.
type PrincipalInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// SeedAccount is an identity created by SeedIdentity when missing.
type SeedAccount struct {
	Email     string
	Nombre    string
	Protegido bool
	Role      string
}

// SeedAccounts are the accounts every fresh installation starts with.
var SeedAccounts = []SeedAccount{
	{Email: "cuxvas@uv.mx", Nombre: "Victor AugustoCuevas Barradas", Protegido: true, Role: common.RoleAdministrador},
	{Email: "patito@uv.mx", Nombre: "Usuario patito", Role: common.RoleUsuario},
}

type UserService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	issuer       *auth.Issuer
	clock        auth.Clock
	seedPassword string
	invalidator  PrincipalInvalidator
	logger       logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer, clock auth.Clock, seedPassword string, logger logging.Logger) *UserService {
	return &UserService{
		db:           db,
		repomanager:  m,
		issuer:       issuer,
		clock:        clock,
		seedPassword: seedPassword,
		logger:       logger,
	}
}

// WithInvalidator registers the principal cache to clear on identity changes.
func (s *UserService) WithInvalidator(inv PrincipalInvalidator) *UserService {
	s.invalidator = inv
	return s
}

// Login checks the credentials and issues an access token carrying the
// user's current roles and claims.
func (s *UserService) Login(ctx context.Context, email, password string) (*auth.Token, error) {

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "login lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := checkPassword(user.PasswordHash, password)
	if err != nil {
		s.logger.Error(ctx, "password check failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	principal, err := repo.FindPrincipal(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "principal lookup failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}

	token, err := s.issuer.Issue(*principal, s.clock.Now())
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return token, nil
}

// Me returns the current state of the principal with the given id.
func (s *UserService) Me(ctx context.Context, id string) (*auth.Principal, error) {
	return s.repomanager.Users(s.db).FindPrincipal(ctx, id)
}

// SeedIdentity creates the seed accounts that do not exist yet and makes
// sure each holds its role. Running it again changes nothing.
func (s *UserService) SeedIdentity(ctx context.Context) error {
	for _, acc := range SeedAccounts {
		if err := s.seedAccount(ctx, acc); err != nil {
			return fmt.Errorf("seed %s: %w", acc.Email, err)
		}
	}
	return nil
}

func (s *UserService) seedAccount(ctx context.Context, acc SeedAccount) error {
	var userID string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetUserByEmail(ctx, acc.Email)
		switch {
		case err == nil:
		case errors.Is(err, common.ErrorNotFound):
			hash, err := hashPassword(s.seedPassword)
			if err != nil {
				return err
			}
			user, err = repo.Create(ctx, &models.User{
				UserName:     acc.Email,
				Email:        acc.Email,
				Nombre:       acc.Nombre,
				PasswordHash: hash,
				Protegido:    acc.Protegido,
			})
			if err != nil {
				return err
			}
			s.logger.Info(ctx, "seed account created", "email", acc.Email)
		default:
			return err
		}

		userID = user.ID
		return repo.AssignRole(ctx, user.ID, acc.Role)
	})
	if err != nil {
		return err
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, userID); err != nil {
			s.logger.Warn(ctx, "principal cache invalidation failed", "user_id", userID, "error", err)
		}
	}
	return nil
}
