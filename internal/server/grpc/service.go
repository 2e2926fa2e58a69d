package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gophauth.v1.AuthService"

// Full method names, as seen by interceptors and passed to ClientConn.Invoke.
const (
	MethodSignup         = "/" + ServiceName + "/Signup"
	MethodLogin          = "/" + ServiceName + "/Login"
	MethodMe             = "/" + ServiceName + "/Me"
	MethodForgotPassword = "/" + ServiceName + "/ForgotPassword"
	MethodResetPassword  = "/" + ServiceName + "/ResetPassword"
	MethodPing           = "/" + ServiceName + "/Ping"
)

// authServiceServer is the server side of gophauth.v1.AuthService. Payloads
// are google.protobuf.Struct so the service needs no generated stubs.
type authServiceServer interface {
	Signup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Me(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ForgotPassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetPassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func newStruct() *structpb.Struct { return new(structpb.Struct) }
func newEmpty() *emptypb.Empty    { return new(emptypb.Empty) }

// unaryMethod builds a MethodDesc the same way protoc-gen-go-grpc does for a
// unary RPC: decode, then run through the interceptor chain if one is set.
func unaryMethod[Req proto.Message](name string, newReq func() Req,
	call func(authServiceServer, context.Context, Req) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(authServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(authServiceServer), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*authServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Signup", newStruct, authServiceServer.Signup),
		unaryMethod("Login", newStruct, authServiceServer.Login),
		unaryMethod("Me", newEmpty, authServiceServer.Me),
		unaryMethod("ForgotPassword", newStruct, authServiceServer.ForgotPassword),
		unaryMethod("ResetPassword", newStruct, authServiceServer.ResetPassword),
		unaryMethod("Ping", newEmpty, authServiceServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/auth.proto",
}
