package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/server/auth"
)

// publicServices can be called without a token.
var publicServices = []string{
	"/" + healthpb.Health_ServiceDesc.ServiceName + "/",
	"/grpc.reflection.",
}

func isPublic(method string) bool {
	for _, prefix := range publicServices {
		if strings.HasPrefix(method, prefix) {
			return true
		}
	}
	return false
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if isPublic(info.FullMethod) {
		return handler(ctx, req)
	}

	var raw string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationMetadataKey); len(values) > 0 {
			raw, _ = auth.BearerToken(values[0])
		}
	}
	if raw == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.issuer.Validate(raw, s.clock.Now())
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	p := auth.PrincipalFromClaims(claims)
	return handler(auth.WithPrincipal(ctx, &p), req)
}
