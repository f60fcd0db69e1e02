package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cuxvas/peliculas/internal/logging"
	"github.com/cuxvas/peliculas/internal/server/auth"
	"github.com/cuxvas/peliculas/internal/server/sliding"
)

type GRPCServer struct {
	address string
	issuer  *auth.Issuer
	renewer *sliding.Renewer
	header  string
	clock   auth.Clock
	health  *health.Server
	logger  logging.Logger
}

// NewGRPCServer builds a server exposing the standard health service. Every
// unary call passes through sliding renewal and then token authentication.
func NewGRPCServer(a string, l logging.Logger, issuer *auth.Issuer, renewer *sliding.Renewer, renewedHeader string) *GRPCServer {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		issuer:  issuer,
		renewer: renewer,
		header:  renewedHeader,
		clock:   auth.SystemClock{},
		health:  health.NewServer(),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		sliding.UnaryServerInterceptor(s.renewer, s.header),
		s.accessTokenInterceptor,
	))
	healthpb.RegisterHealthServer(srv, s.health)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
