package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const grpcService = "/gophauth.v1.AuthService/"

type tokenKey struct{}

// GRPCClient talks to the gRPC listener of the server. Requests and replies
// are google.protobuf.Struct values carrying the same fields as the JSON API.
type GRPCClient struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// accessTokenInterceptor copies a token stored in the context by Me into the
// outgoing authorization metadata.
func accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token, ok := ctx.Value(tokenKey{}).(string); ok && token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, "Bearer "+token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient prepares a client for target. No connection is made until
// the first call.
func NewGRPCClient(target string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{conn: conn, timeout: timeout}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) invoke(ctx context.Context, method string, in any) (*structpb.Struct, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, grpcService+method, in, out); err != nil {
		return nil, fromStatus(err)
	}
	return out, nil
}

// fromStatus maps gRPC codes onto the package errors.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return errors.New(st.Message())
	}
}

func stringValue(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func (c *GRPCClient) Signup(ctx context.Context, email, password, name string) error {
	fields := map[string]any{"email": email, "password": password}
	if name != "" {
		fields["name"] = name
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return err
	}
	_, err = c.invoke(ctx, "Signup", in)
	return err
}

func (c *GRPCClient) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	in, err := structpb.NewStruct(map[string]any{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	out, err := c.invoke(ctx, "Login", in)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken: stringValue(out, "access_token"),
		TokenType:   stringValue(out, "token_type"),
		ExpiresIn:   int64(out.GetFields()["expires_in"].GetNumberValue()),
	}, nil
}

func (c *GRPCClient) Me(ctx context.Context, accessToken string) (*User, error) {
	ctx = context.WithValue(ctx, tokenKey{}, accessToken)
	out, err := c.invoke(ctx, "Me", &emptypb.Empty{})
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:    stringValue(out, "id"),
		Email: stringValue(out, "email"),
		Name:  stringValue(out, "name"),
	}
	if v := stringValue(out, "created_at"); v != "" {
		if user.CreatedAt, err = time.Parse(time.RFC3339, v); err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", v, err)
		}
	}
	return user, nil
}

func (c *GRPCClient) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error) {
	in, err := structpb.NewStruct(map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	out, err := c.invoke(ctx, "ForgotPassword", in)
	if err != nil {
		return nil, err
	}
	return &ForgotPasswordResult{
		Message:   stringValue(out, "message"),
		ResetLink: stringValue(out, "reset_link"),
	}, nil
}

func (c *GRPCClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	in, err := structpb.NewStruct(map[string]any{"token": token, "new_password": newPassword})
	if err != nil {
		return err
	}
	_, err = c.invoke(ctx, "ResetPassword", in)
	return err
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	_, err := c.invoke(ctx, "Ping", &emptypb.Empty{})
	return err
}
