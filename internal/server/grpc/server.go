// Package grpc exposes the step-up Verification API over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/pinkeeper/internal/logging"
	"github.com/dmitrijs2005/pinkeeper/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GrantValidator checks a step-up grant and returns the principal it was
// issued to. Implemented by *auth.GrantIssuer.
type GrantValidator interface {
	Validate(grant string) (string, error)
}

type GRPCServer struct {
	address   string
	stepup    *services.StepUpService
	grants    GrantValidator
	logger    logging.Logger
	jwtSecret []byte
}

// NewGRPCServer builds the server. grants may be nil, in which case
// CheckGrant answers Unimplemented.
func NewGRPCServer(a string, l logging.Logger, svc *services.StepUpService, grants GrantValidator, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		stepup:    svc,
		grants:    grants,
		jwtSecret: []byte(secretKey),
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestIDInterceptor, s.accessTokenInterceptor))

	RegisterStepUpServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
