package grpc

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/logging"
	"github.com/cuxvas/peliculas/internal/server/auth"
	"github.com/cuxvas/peliculas/internal/server/sliding"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// helper to build server
func newTestServer(t *testing.T) *GRPCServer {
	t.Helper()
	iss, err := auth.NewIssuer(auth.Settings{SecretKey: "secret", Issuer: "backendnet", Audience: "backendnet-clients", Lifetime: time.Hour})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	r, err := sliding.NewRenewer(iss, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewRenewer: %v", err)
	}
	s := NewGRPCServer("127.0.0.1:0", nopLogger{}, iss, r, common.DefaultRenewedTokenHeader)
	s.clock = auth.ClockFunc(func() time.Time { return t0.Add(10 * time.Minute) })
	return s
}

func withBearer(raw string) context.Context {
	md := metadata.New(map[string]string{common.AuthorizationMetadataKey: "Bearer " + raw})
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestInterceptor_HealthIsPublic(t *testing.T) {
	s := newTestServer(t)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	handlerCalled := false

	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newTestServer(t)
	info := &grpc.UnaryServerInfo{FullMethod: "/peliculas.Catalog/List"}

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "missing token" {
		t.Fatalf("expected 'missing token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_InvalidToken(t *testing.T) {
	s := newTestServer(t)
	info := &grpc.UnaryServerInfo{FullMethod: "/peliculas.Catalog/List"}

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called with invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(withBearer("not-a-valid-jwt"), nil, info, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestInterceptor_ExpiredToken(t *testing.T) {
	s := newTestServer(t)
	tok, err := s.issuer.Issue(auth.Principal{ID: "u1"}, t0.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = s.accessTokenInterceptor(withBearer(tok.Raw), nil, &grpc.UnaryServerInfo{FullMethod: "/peliculas.Catalog/List"},
		func(ctx context.Context, req any) (any, error) { return nil, nil })
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestInterceptor_ValidToken_PutsPrincipal(t *testing.T) {
	s := newTestServer(t)
	tok, err := s.issuer.Issue(auth.Principal{ID: "u1", Roles: []string{common.RoleUsuario}}, t0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var got *auth.Principal
	h := func(ctx context.Context, req any) (any, error) {
		got, _ = auth.PrincipalFromContext(ctx)
		return "ok", nil
	}

	if _, err := s.accessTokenInterceptor(withBearer(tok.Raw), nil, &grpc.UnaryServerInfo{FullMethod: "/peliculas.Catalog/List"}, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != "u1" || !got.HasRole(common.RoleUsuario) {
		t.Fatalf("principal not propagated: %+v", got)
	}
}
