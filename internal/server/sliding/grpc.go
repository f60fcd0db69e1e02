package sliding

import (
	"context"
	"strings"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// UnaryServerInterceptor is the gRPC counterpart of Middleware. A renewed
// token is sent back as response header metadata under the lowercased
// header name.
func UnaryServerInterceptor(r *Renewer, header string) grpc.UnaryServerInterceptor {
	key := strings.ToLower(header)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if raw, ok := bearerFromMetadata(ctx); ok {
			if tok, ok := r.Renew(ctx, raw); ok {
				if err := grpc.SetHeader(ctx, metadata.Pairs(key, tok.Raw)); err != nil {
					r.logger.Warn(ctx, "could not attach renewed token", "method", info.FullMethod, "error", err)
				}
			}
		}
		return handler(ctx, req)
	}
}

func bearerFromMetadata(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	values := md.Get(common.AuthorizationMetadataKey)
	if len(values) == 0 {
		return "", false
	}
	return auth.BearerToken(values[0])
}
