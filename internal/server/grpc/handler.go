package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// stringField reads a string value; missing or non-string fields read as "".
func stringField(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

func message(msg string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"message": structpb.NewStringValue(msg),
	}}
}

func (s *GRPCServer) Signup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := services.SignupInput{
		Email:    stringField(req, "email"),
		Password: stringField(req, "password"),
		Name:     stringField(req, "name"),
	}

	if err := s.svc.Signup(ctx, in); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return message("signup_ok"), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tokens, err := s.svc.Login(ctx, stringField(req, "email"), stringField(req, "password"))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"access_token": structpb.NewStringValue(tokens.AccessToken),
		"token_type":   structpb.NewStringValue(tokens.TokenType),
		"expires_in":   structpb.NewNumberValue(float64(tokens.ExpiresIn)),
	}}, nil
}

// Me returns the profile attached to the context by the access token interceptor.
func (s *GRPCServer) Me(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	user, ok := ctx.Value(userKey).(*models.PublicUser)
	if !ok || user == nil {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	fields := map[string]*structpb.Value{
		"id":         structpb.NewStringValue(user.ID),
		"email":      structpb.NewStringValue(user.Email),
		"created_at": structpb.NewStringValue(user.CreatedAt.UTC().Format(time.RFC3339)),
	}
	if user.Name != "" {
		fields["name"] = structpb.NewStringValue(user.Name)
	}
	return &structpb.Struct{Fields: fields}, nil
}

func (s *GRPCServer) ForgotPassword(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.svc.ForgotPassword(ctx, stringField(req, "email"))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	out := message(res.Message)
	if res.ResetLink != "" {
		out.Fields["reset_link"] = structpb.NewStringValue(res.ResetLink)
	}
	return out, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	err := s.svc.ResetPassword(ctx, stringField(req, "token"), stringField(req, "new_password"))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return message("password_reset_ok"), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"status": structpb.NewStringValue("OK"),
	}}, nil
}
