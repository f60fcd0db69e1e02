package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"  BEARER   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer a b", "", false},
		{"abc.def.ghi", "", false},
	}

	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, "header %q", tt.header)
		assert.Equal(t, tt.want, got, "header %q", tt.header)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("patito")
	require.NoError(t, err)
	assert.NotEqual(t, "patito", hash)

	ok, err := CheckPassword(hash, "patito")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "pato")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-bcrypt-hash", "patito")
	assert.Error(t, err)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	p := &Principal{ID: "u1", Roles: []string{"Administrador"}}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Same(t, p, got)
}

func TestHasRole(t *testing.T) {
	p := &Principal{Roles: []string{"Usuario"}}
	assert.True(t, p.HasRole("Administrador", "Usuario"))
	assert.False(t, p.HasRole("Administrador"))
	assert.False(t, p.HasRole())

	var none *Principal
	assert.False(t, none.HasRole("Usuario"))
}
