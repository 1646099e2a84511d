package client

import (
	"context"
	"fmt"
	"unicode/utf8"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/magabrotheeeer/task-tracker/internal/grpc/authpb"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// AuthClient проверяет учётные данные через удалённый AuthService.
type AuthClient struct {
	conn *grpc.ClientConn
}

// NewAuthClient создаёт клиента. Соединение устанавливается лениво.
func NewAuthClient(addr string, opts ...grpc.DialOption) (*AuthClient, error) {
	const op = "client.NewAuthClient"
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthClient{conn: conn}, nil
}

func (a *AuthClient) Close() error {
	return a.conn.Close()
}

// Authenticate возвращает models.ErrUnauthorized при неверных учётных данных.
func (a *AuthClient) Authenticate(ctx context.Context, username, password string) (*models.Principal, error) {
	const op = "client.Authenticate"
	// Такие строки не проходят маршалинг protobuf, а пользователя с ними быть не может.
	if !utf8.ValidString(username) || !utf8.ValidString(password) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	out := new(structpb.Struct)
	err := a.conn.Invoke(ctx, authpb.AuthenticateMethod, authpb.NewAuthenticateRequest(username, password), out)
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := authpb.ParsePrincipalResponse(out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Principal{ID: p.ID, Name: p.Name, IsAdmin: p.IsAdmin}, nil
}
