package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The Verification API uses google.protobuf.Struct for every message, so the
// service descriptor is declared here rather than generated.
const (
	ServiceName = "pinkeeper.StepUpService"

	MethodVerify     = "/" + ServiceName + "/Verify"
	MethodStatus     = "/" + ServiceName + "/Status"
	MethodCheckGrant = "/" + ServiceName + "/CheckGrant"
)

// StepUpServer is the server side of the Verification API.
type StepUpServer interface {
	// Verify takes {pin} and returns {success, reason, attempts_remaining,
	// remaining_time, locked_until, grant, message}.
	Verify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Status returns {is_locked, attempts_remaining, remaining_time, message}.
	Status(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// CheckGrant takes {grant} and returns {valid, principal_id}.
	CheckGrant(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterStepUpServer(s grpc.ServiceRegistrar, srv StepUpServer) {
	s.RegisterService(&StepUpServiceDesc, srv)
}

var StepUpServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StepUpServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Verify", Handler: unaryHandler(MethodVerify, StepUpServer.Verify)},
		{MethodName: "Status", Handler: unaryHandler(MethodStatus, StepUpServer.Status)},
		{MethodName: "CheckGrant", Handler: unaryHandler(MethodCheckGrant, StepUpServer.CheckGrant)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pinkeeper/stepup",
}

type structMethod func(StepUpServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StepUpServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(StepUpServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// StepUpClient is the client side of the Verification API.
type StepUpClient struct {
	cc grpc.ClientConnInterface
}

func NewStepUpClient(cc grpc.ClientConnInterface) *StepUpClient {
	return &StepUpClient{cc: cc}
}

func (c *StepUpClient) Verify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodVerify, in, opts...)
}

func (c *StepUpClient) Status(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStatus, in, opts...)
}

func (c *StepUpClient) CheckGrant(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCheckGrant, in, opts...)
}

func (c *StepUpClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
