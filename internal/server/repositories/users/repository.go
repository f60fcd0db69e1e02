package users

import (
	"context"

	"github.com/cuxvas/peliculas/internal/server/auth"
	"github.com/cuxvas/peliculas/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindPrincipal(ctx context.Context, id string) (*auth.Principal, error)
	AssignRole(ctx context.Context, userID, role string) error
	AddClaim(ctx context.Context, userID string, claim models.UserClaim) error
}
