package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Clock supplies the current time. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Truncate drops the sub-precision part of t, matching what survives a
// round trip through a token's NumericDate fields.
func Truncate(t time.Time) time.Time {
	return t.Truncate(jwt.TimePrecision)
}
