package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/lockout"
	"github.com/dmitrijs2005/pinkeeper/internal/pinhash"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Verify(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	principalID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	pin := req.GetFields()["pin"].GetStringValue()

	out, err := s.stepup.RequestVerification(ctx, principalID, pin)
	if err != nil {
		switch {
		case errors.Is(err, pinhash.ErrInvalidPINFormat):
			return nil, status.Error(codes.InvalidArgument, "PIN must be exactly 4 digits")
		case errors.Is(err, common.ErrInvalidCredentialFormat):
			s.logger.Error(ctx, "stored credential is malformed",
				"principal_id", principalID, "request_id", requestIDFromContext(ctx), "error", err)
			return nil, status.Error(codes.FailedPrecondition, "credential misconfigured")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, status.FromContextError(err).Err()
		case out != nil:
			s.logger.Error(ctx, "verification failed closed",
				"principal_id", principalID, "request_id", requestIDFromContext(ctx), "error", err)
		default:
			s.logger.Error(ctx, "verification failed", "principal_id", principalID, "error", err)
			return nil, status.Error(codes.Internal, "internal error")
		}
	}

	fields := map[string]any{
		"success":            out.Success,
		"reason":             string(out.Reason),
		"attempts_remaining": out.AttemptsRemaining,
		"remaining_time":     out.RemainingTime,
		"grant":              out.Grant,
		"message":            out.Message(),
	}
	if !out.LockedUntil.IsZero() {
		fields["locked_until"] = out.LockedUntil.UTC().Format(time.RFC3339)
	}
	return newStruct(fields)
}

func (s *GRPCServer) Status(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	principalID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	st, err := s.stepup.CheckStatus(ctx, principalID)
	if err != nil {
		if st == nil {
			return nil, status.FromContextError(err).Err()
		}
		s.logger.Error(ctx, "status failed closed",
			"principal_id", principalID, "request_id", requestIDFromContext(ctx), "error", err)
	}
	return newStruct(statusFields(st))
}

func (s *GRPCServer) CheckGrant(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	principalID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	grant := req.GetFields()["grant"].GetStringValue()
	if grant == "" {
		return nil, status.Error(codes.InvalidArgument, "grant is required")
	}
	if s.grants == nil {
		return nil, status.Error(codes.Unimplemented, "grants are disabled")
	}

	owner, err := s.grants.Validate(grant)
	if err != nil {
		s.logger.Debug(ctx, "grant rejected", "principal_id", principalID, "error", err)
		return newStruct(map[string]any{"valid": false, "principal_id": ""})
	}

	// A grant only vouches for the session it was issued to.
	if owner != principalID {
		s.logger.Warn(ctx, "grant presented by another principal", "principal_id", principalID)
		return newStruct(map[string]any{"valid": false, "principal_id": ""})
	}
	return newStruct(map[string]any{"valid": true, "principal_id": owner})
}

func statusFields(st *lockout.Status) map[string]any {
	fields := map[string]any{
		"is_locked":          st.IsLocked,
		"attempts_remaining": st.AttemptsRemaining,
		"remaining_time":     "",
		"message":            st.Message(),
	}
	if st.IsLocked {
		fields["remaining_time"] = st.FormatRemaining()
	}
	return fields
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

var _ StepUpServer = (*GRPCServer)(nil)
