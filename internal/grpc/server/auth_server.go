// Package server реализует gRPC-сервер проверки учётных данных.
//
// AuthServer принимает имя и пароль, делегирует проверку сервису
// аутентификации и возвращает пользователя или codes.Unauthenticated.
package server

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/magabrotheeeer/task-tracker/internal/grpc/authpb"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Authenticator проверяет пару имя/пароль.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.Principal, error)
}

// AuthServer реализует authpb.AuthServiceServer.
type AuthServer struct {
	authService Authenticator
	log         *slog.Logger
}

// NewAuthServer создает новый экземпляр AuthServer.
func NewAuthServer(authService Authenticator, logger *slog.Logger) *AuthServer {
	return &AuthServer{
		authService: authService,
		log:         logger,
	}
}

// Authenticate проверяет учётные данные и возвращает пользователя.
func (s *AuthServer) Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	creds, err := authpb.ParseAuthenticateRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	principal, err := s.authService.Authenticate(ctx, creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			s.log.Info("Authenticate failed", slog.String("username", creds.Username))
			return nil, status.Error(codes.Unauthenticated, models.ErrUnauthorized.Error())
		}
		s.log.Error("Authenticate failed", slog.String("username", creds.Username), sl.Err(err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	return authpb.NewPrincipalResponse(authpb.Principal{
		ID:      principal.ID,
		Name:    principal.Name,
		IsAdmin: principal.IsAdmin,
	}), nil
}
