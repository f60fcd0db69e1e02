// Package sliding keeps sessions alive by reissuing access tokens that are
// close to expiring. Renewal is advisory: the old token stays valid and the
// request always proceeds.
package sliding

import (
	"time"

	"github.com/cuxvas/peliculas/internal/server/auth"
)

// Decision is the outcome of the refresh policy for one request.
type Decision int

const (
	PassThrough Decision = iota
	Renew
)

func (d Decision) String() string {
	switch d {
	case Renew:
		return "renew"
	default:
		return "pass-through"
	}
}

// Decide returns Renew when the token's remaining lifetime at now is
// positive and no greater than threshold.
//
// A token is never renewed at the instant it was issued: the replacement
// would carry the same issued-at, and issued-at is kept at whole seconds.
func Decide(now, issuedAt, expiresAt time.Time, threshold time.Duration) Decision {
	if !auth.Truncate(now).After(issuedAt) {
		return PassThrough
	}
	remaining := expiresAt.Sub(now)
	if remaining <= 0 || remaining > threshold {
		return PassThrough
	}
	return Renew
}
