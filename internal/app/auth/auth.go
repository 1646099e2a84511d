// Package auth собирает gRPC-сервис проверки учётных данных.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/task-tracker/internal/config"
	"github.com/magabrotheeeer/task-tracker/internal/grpc/authpb"
	"github.com/magabrotheeeer/task-tracker/internal/grpc/server"
	"github.com/magabrotheeeer/task-tracker/internal/lib/password"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	authservices "github.com/magabrotheeeer/task-tracker/internal/services/auth"
	"github.com/magabrotheeeer/task-tracker/internal/storage"
)

type App struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	logger     *slog.Logger
	db         *storage.Storage
}

// New подключает хранилище пользователей и открывает listener на адресе
// из cfg.GRPCAuth.Address.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "auth.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authService := authservices.NewAuthService(db, password.New(cfg.PasswordCost))

	lis, err := net.Listen("tcp", cfg.GRPCAuth.Address)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grpcServer := grpc.NewServer()
	authpb.RegisterAuthServiceServer(grpcServer, server.NewAuthServer(authService, logger))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(authpb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &App{
		grpcServer: grpcServer,
		health:     healthServer,
		listener:   lis,
		logger:     logger,
		db:         db,
	}, nil
}

// Addr возвращает фактический адрес listener.
func (a *App) Addr() net.Addr {
	return a.listener.Addr()
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("Auth gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	var err error
	select {
	case <-ctx.Done():
		a.health.Shutdown()
		a.grpcServer.GracefulStop()
	case err = <-errCh:
	}

	if cerr := a.db.Close(); cerr != nil {
		a.logger.Warn("failed to close storage", sl.Err(cerr))
	}
	return err
}
