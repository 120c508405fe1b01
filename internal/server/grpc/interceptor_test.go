package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/logging"
	"github.com/dmitrijs2005/pinkeeper/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func newInterceptorServer(secret string) *GRPCServer {
	return &GRPCServer{logger: logging.Nop(), jwtSecret: []byte(secret)}
}

func TestInterceptor_OtherServices_AllowWithoutToken(t *testing.T) {
	s := newInterceptorServer("secret")

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	handlerCalled := false
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled || resp != "ok" {
		t.Fatalf("handler not called properly: called=%v resp=%v", handlerCalled, resp)
	}
}

func TestInterceptor_MissingToken(t *testing.T) {
	s := newInterceptorServer("secret")

	info := &grpc.UnaryServerInfo{FullMethod: MethodVerify}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
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
	s := newInterceptorServer("secret")

	md := metadata.New(map[string]string{common.AccessTokenHeaderName: "not-a-valid-jwt"})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: MethodStatus}

	_, err := s.accessTokenInterceptor(ctx, nil, info, func(context.Context, interface{}) (interface{}, error) {
		t.Fatal("handler should not be called with invalid token")
		return nil, nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
}

func TestInterceptor_ValidToken_SetsUserID(t *testing.T) {
	s := newInterceptorServer("secret")

	tok, err := auth.GenerateToken("user-42", []byte("secret"), time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	md := metadata.New(map[string]string{common.AccessTokenHeaderName: tok})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: MethodVerify}

	var got string
	_, err = s.accessTokenInterceptor(ctx, nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		got, _ = userIDFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "user-42" {
		t.Fatalf("expected user-42 in context, got %q", got)
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	s := newInterceptorServer("secret")
	info := &grpc.UnaryServerInfo{FullMethod: MethodStatus}

	var generated string
	_, _ = s.requestIDInterceptor(context.Background(), nil, info, func(ctx context.Context, _ interface{}) (interface{}, error) {
		generated = requestIDFromContext(ctx)
		return nil, nil
	})
	if len(generated) != 36 {
		t.Fatalf("expected generated uuid, got %q", generated)
	}

	md := metadata.Pairs(RequestIDHeaderName, "req-1")
	ctx := metadata.NewIncomingContext(context.Background(), md)
	var forwarded string
	_, _ = s.requestIDInterceptor(ctx, nil, info, func(ctx context.Context, _ interface{}) (interface{}, error) {
		forwarded = requestIDFromContext(ctx)
		return nil, nil
	})
	if forwarded != "req-1" {
		t.Fatalf("expected caller request id, got %q", forwarded)
	}
}
