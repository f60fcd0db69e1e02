package sliding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/logging"
	"github.com/cuxvas/peliculas/internal/server/auth"
)

// PrincipalFinder loads the current state of a principal, so a renewed
// token reflects role or claim changes made since the original was issued.
type PrincipalFinder interface {
	FindPrincipal(ctx context.Context, id string) (*auth.Principal, error)
}

// Renewer decides whether a presented token should be reissued and mints
// the replacement. It is transport independent; see Middleware and
// UnaryServerInterceptor for the adapters.
type Renewer struct {
	issuer    *auth.Issuer
	finder    PrincipalFinder
	clock     auth.Clock
	threshold time.Duration
	logger    logging.Logger
}

type Option func(*Renewer)

// WithPrincipalFinder makes the renewer reload the principal from a store.
// Without one, the principal embedded in the presented token is reused.
func WithPrincipalFinder(f PrincipalFinder) Option {
	return func(r *Renewer) { r.finder = f }
}

func WithClock(c auth.Clock) Option {
	return func(r *Renewer) { r.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(r *Renewer) { r.logger = l }
}

// NewRenewer returns a Renewer reissuing tokens whose remaining lifetime is
// at most threshold.
func NewRenewer(issuer *auth.Issuer, threshold time.Duration, opts ...Option) (*Renewer, error) {
	if issuer == nil {
		return nil, common.ErrSigningKeyUnavailable
	}
	if threshold < 0 || threshold >= issuer.Lifetime() {
		return nil, fmt.Errorf("refresh threshold %s must be in [0, %s)", threshold, issuer.Lifetime())
	}

	r := &Renewer{
		issuer:    issuer,
		clock:     auth.SystemClock{},
		threshold: threshold,
		logger:    logging.NewSlogLogger(slog.New(slog.DiscardHandler)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Renew returns a replacement for raw when the refresh policy asks for one.
// Every failure is logged and reported as "no renewal"; Renew never panics
// on behalf of its collaborators.
func (r *Renewer) Renew(ctx context.Context, raw string) (tok *auth.Token, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error(ctx, "token renewal panicked", "panic", p)
			tok, ok = nil, false
		}
	}()

	claims, err := r.issuer.Inspect(raw)
	if err != nil {
		// Rejection belongs to the authentication stage.
		r.logger.Debug(ctx, "token not eligible for renewal", "error", err)
		return nil, false
	}

	now := r.clock.Now()
	if Decide(now, claims.IssuedAt.Time, claims.ExpiresAt.Time, r.threshold) != Renew {
		return nil, false
	}

	principal, err := r.principal(ctx, claims)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			r.logger.Warn(ctx, "principal no longer exists, token not renewed", "subject", claims.Subject)
		} else {
			r.logger.Error(ctx, "principal lookup failed, token not renewed", "subject", claims.Subject, "error", err)
		}
		return nil, false
	}

	tok, err = r.issuer.Issue(principal, now)
	if err != nil {
		r.logger.Error(ctx, "token renewal failed", "subject", claims.Subject, "error", err)
		return nil, false
	}

	r.logger.Info(ctx, "token renewed",
		"subject", tok.Subject,
		"previous_expires_at", claims.ExpiresAt.Time,
		"expires_at", tok.ExpiresAt,
	)
	return tok, true
}

func (r *Renewer) principal(ctx context.Context, claims *auth.Claims) (auth.Principal, error) {
	if r.finder == nil {
		return auth.PrincipalFromClaims(claims), nil
	}

	p, err := r.finder.FindPrincipal(ctx, claims.Subject)
	if err != nil {
		return auth.Principal{}, err
	}
	if p == nil {
		return auth.Principal{}, common.ErrorNotFound
	}
	out := *p
	out.ID = claims.Subject
	return out, nil
}
