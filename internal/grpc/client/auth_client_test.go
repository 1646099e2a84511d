package client

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/magabrotheeeer/task-tracker/internal/grpc/authpb"
	"github.com/magabrotheeeer/task-tracker/internal/grpc/server"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Мок для Authenticator
type AuthenticatorMock struct {
	mock.Mock
}

func (m *AuthenticatorMock) Authenticate(ctx context.Context, username, password string) (*models.Principal, error) {
	args := m.Called(ctx, username, password)
	p, _ := args.Get(0).(*models.Principal)
	return p, args.Error(1)
}

func startServer(t *testing.T, auth server.Authenticator) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	s := grpc.NewServer()
	authpb.RegisterAuthServiceServer(s, server.NewAuthServer(auth, sl.Discard()))
	hs := health.NewServer()
	hs.SetServingStatus(authpb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
	c, err := NewAuthClient("passthrough:///bufnet", dialer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c.conn
}

func TestAuthClient_Authenticate(t *testing.T) {
	auth := new(AuthenticatorMock)
	auth.On("Authenticate", mock.Anything, "alice", "pw1").
		Return(&models.Principal{ID: 7, Name: "alice"}, nil)
	auth.On("Authenticate", mock.Anything, "alice", "bad").
		Return(nil, models.ErrUnauthorized)
	auth.On("Authenticate", mock.Anything, "bob", "pw").
		Return(nil, errors.New("db down"))

	c := &AuthClient{conn: startServer(t, auth)}
	ctx := context.Background()

	p, err := c.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, &models.Principal{ID: 7, Name: "alice"}, p)

	_, err = c.Authenticate(ctx, "alice", "bad")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = c.Authenticate(ctx, "bob", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrUnauthorized)
	assert.Equal(t, codes.Internal, status.Code(errors.Unwrap(err)))

	auth.AssertExpectations(t)
}

func TestAuthClient_InvalidUTF8IsUnauthorized(t *testing.T) {
	auth := new(AuthenticatorMock)
	auth.On("Authenticate", mock.Anything, "bob\x00", "pw").Return(nil, models.ErrUnauthorized).Once()

	c := &AuthClient{conn: startServer(t, auth)}
	ctx := context.Background()

	_, err := c.Authenticate(ctx, "\xffbob", "pw")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = c.Authenticate(ctx, "bob", "\xffpw")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = c.Authenticate(ctx, "bob\x00", "pw")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	auth.AssertExpectations(t)
	auth.AssertNumberOfCalls(t, "Authenticate", 1)
}

func TestAuthServer_RejectsMalformedRequest(t *testing.T) {
	conn := startServer(t, new(AuthenticatorMock))

	err := conn.Invoke(context.Background(), authpb.AuthenticateMethod, &structpb.Struct{}, new(structpb.Struct))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAuthServer_Health(t *testing.T) {
	conn := startServer(t, new(AuthenticatorMock))

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: authpb.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
