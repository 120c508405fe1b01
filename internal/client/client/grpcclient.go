package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	gs "github.com/dmitrijs2005/pinkeeper/internal/server/grpc"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *gs.StepUpClient
	health      healthpb.HealthClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewStepUpClientService connects to endpointURL. extra dial options are
// appended after the defaults (insecure transport, token interceptor).
func NewStepUpClientService(endpointURL, accessToken string, extra ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}
	if err := c.InitGRPCClient(extra...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(extra ...grpc.DialOption) error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = gs.NewStepUpClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: gs.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Verify(ctx context.Context, pin string) (*VerifyResult, error) {
	req, err := structpb.NewStruct(map[string]any{"pin": pin})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Verify(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	res := &VerifyResult{
		Success:           f["success"].GetBoolValue(),
		Reason:            f["reason"].GetStringValue(),
		AttemptsRemaining: int(f["attempts_remaining"].GetNumberValue()),
		RemainingTime:     f["remaining_time"].GetStringValue(),
		Grant:             f["grant"].GetStringValue(),
		Message:           f["message"].GetStringValue(),
	}
	if v := f["locked_until"].GetStringValue(); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			res.LockedUntil = t
		}
	}
	return res, nil
}

func (s *GRPCClient) Status(ctx context.Context) (*StatusResult, error) {
	resp, err := s.client.Status(ctx, &structpb.Struct{})
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	return &StatusResult{
		IsLocked:          f["is_locked"].GetBoolValue(),
		AttemptsRemaining: int(f["attempts_remaining"].GetNumberValue()),
		RemainingTime:     f["remaining_time"].GetStringValue(),
		Message:           f["message"].GetStringValue(),
	}, nil
}

func (s *GRPCClient) CheckGrant(ctx context.Context, grant string) (*GrantResult, error) {
	req, err := structpb.NewStruct(map[string]any{"grant": grant})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.CheckGrant(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	return &GrantResult{
		Valid:       f["valid"].GetBoolValue(),
		PrincipalID: f["principal_id"].GetStringValue(),
	}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument:
		return ErrInvalidPIN
	case codes.FailedPrecondition:
		return ErrMisconfigured
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

var _ Client = (*GRPCClient)(nil)
