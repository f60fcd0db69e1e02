package users

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
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, nombre, password_hash, protegido)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.Nombre, user.PasswordHash, user.Protegido).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, username, email, nombre, password_hash, protegido, created_at FROM users
		 WHERE lower(email) = lower($1)
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.UserName, &user.Email, &user.Nombre, &user.PasswordHash, &user.Protegido, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// FindPrincipal loads the user with its roles and custom claims. An id that
// is not a valid uuid is reported as not found.
func (r *PostgresRepository) FindPrincipal(ctx context.Context, id string) (*auth.Principal, error) {
	query :=
		`SELECT u.id, u.username, u.email, u.nombre,
		        COALESCE(string_agg(r.name, ',' ORDER BY r.name), '')
		 FROM users u
		 LEFT JOIN user_roles ur ON ur.user_id = u.id
		 LEFT JOIN roles r ON r.id = ur.role_id
		 WHERE u.id = $1
		 GROUP BY u.id
		 `

	p := &auth.Principal{}
	var roles string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.UserName, &p.Email, &p.Name, &roles)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if roles != "" {
		p.Roles = strings.Split(roles, ",")
	}

	claims, err := r.claims(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Claims = claims

	return p, nil
}

func (r *PostgresRepository) claims(ctx context.Context, userID string) (map[string]string, error) {
	query :=
		`SELECT claim_type, claim_value FROM user_claims
		 WHERE user_id = $1
		 ORDER BY claim_type
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var claims map[string]string
	for rows.Next() {
		var c models.UserClaim
		if err := rows.Scan(&c.Type, &c.Value); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if claims == nil {
			claims = make(map[string]string)
		}
		claims[c.Type] = c.Value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return claims, nil
}

// AssignRole grants role to the user. Granting a role twice is a no-op;
// an unknown role is common.ErrorNotFound.
func (r *PostgresRepository) AssignRole(ctx context.Context, userID, role string) error {
	var roleID int
	err := r.db.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = $1`, role).Scan(&roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	query :=
		`INSERT INTO user_roles (user_id, role_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, roleID); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// AddClaim sets a custom claim, replacing any earlier value of the same type.
func (r *PostgresRepository) AddClaim(ctx context.Context, userID string, claim models.UserClaim) error {
	query :=
		`INSERT INTO user_claims (user_id, claim_type, claim_value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, claim_type) DO UPDATE SET claim_value = EXCLUDED.claim_value
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, claim.Type, claim.Value); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
