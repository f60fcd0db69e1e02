package auth

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of an access token: the registered claims plus the
// principal's profile, roles and custom claims.
type Claims struct {
	jwt.RegisteredClaims
	Email string            `json:"email,omitempty"`
	Name  string            `json:"name,omitempty"`
	Roles []string          `json:"roles,omitempty"`
	Extra map[string]string `json:"ext,omitempty"`
}

// Token is an issued access token. It is never mutated after Issue returns.
type Token struct {
	Raw       string
	ID        string
	Subject   string
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Roles     []string
	Claims    map[string]string
}

// Settings configures an Issuer.
type Settings struct {
	SecretKey string
	Issuer    string
	Audience  string
	Lifetime  time.Duration
}

// Issuer signs and verifies HS256 access tokens. It holds only read-only
// state and is safe for concurrent use.
type Issuer struct {
	key      []byte
	issuer   string
	audience string
	lifetime time.Duration
}

// NewIssuer validates s and returns an Issuer.
func NewIssuer(s Settings) (*Issuer, error) {
	if s.SecretKey == "" {
		return nil, common.ErrSigningKeyUnavailable
	}
	if s.Lifetime <= 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidLifetime, s.Lifetime)
	}
	return &Issuer{
		key:      []byte(s.SecretKey),
		issuer:   s.Issuer,
		audience: s.Audience,
		lifetime: s.Lifetime,
	}, nil
}

// Lifetime returns the validity period given to every issued token.
func (i *Issuer) Lifetime() time.Duration { return i.lifetime }

// Issue mints a token for p valid from now until now + lifetime.
func (i *Issuer) Issue(p Principal, now time.Time) (*Token, error) {
	if p.ID == "" {
		return nil, common.ErrInvalidPrincipal
	}
	if i == nil || len(i.key) == 0 {
		return nil, common.ErrSigningKeyUnavailable
	}

	iat := jwt.NewNumericDate(now)
	exp := jwt.NewNumericDate(now.Add(i.lifetime))

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			Issuer:    i.issuer,
			IssuedAt:  iat,
			NotBefore: iat,
			ExpiresAt: exp,
		},
		Email: p.Email,
		Name:  p.Name,
		Roles: slices.Clone(p.Roles),
		Extra: maps.Clone(p.Claims),
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{
		Raw:       raw,
		ID:        claims.ID,
		Subject:   p.ID,
		Issuer:    i.issuer,
		Audience:  i.audience,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
		Roles:     claims.Roles,
		Claims:    claims.Extra,
	}, nil
}

// Validate fully verifies raw at instant now: signature, algorithm, issuer,
// audience and the time-based claims.
func (i *Issuer) Validate(raw string, now time.Time) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}
	return i.parse(raw, opts...)
}

// Inspect verifies signature, algorithm, issuer and audience of raw but
// ignores the time-based claims, so callers can look at a token that is
// close to (or past) its expiration.
func (i *Issuer) Inspect(raw string) (*Claims, error) {
	claims, err := i.parse(raw,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, err
	}
	// WithoutClaimsValidation skips iss and aud as well.
	if i.issuer != "" && claims.Issuer != i.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", common.ErrInvalidToken)
	}
	if i.audience != "" && !slices.Contains(claims.Audience, i.audience) {
		return nil, fmt.Errorf("%w: unexpected audience", common.ErrInvalidToken)
	}
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing sub, iat or exp", common.ErrInvalidToken)
	}
	return claims, nil
}

func (i *Issuer) parse(raw string, opts ...jwt.ParserOption) (*Claims, error) {
	if i == nil || len(i.key) == 0 {
		return nil, common.ErrSigningKeyUnavailable
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return i.key, nil
	}, opts...)
	if err != nil {
		return nil, mapParseError(err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", common.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
}

// PrincipalFromClaims rebuilds the principal a token was issued for.
func PrincipalFromClaims(c *Claims) Principal {
	if c == nil {
		return Principal{}
	}
	return Principal{
		ID:     c.Subject,
		Email:  c.Email,
		Name:   c.Name,
		Roles:  slices.Clone(c.Roles),
		Claims: maps.Clone(c.Extra),
	}
}
