package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/task-tracker/internal/lib/password"
	"github.com/magabrotheeeer/task-tracker/internal/models"
	services "github.com/magabrotheeeer/task-tracker/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestAuthService_Authenticate(t *testing.T) {
	hasher := password.New(bcrypt.MinCost)
	aliceHash, err := hasher.Hash("pw1")
	require.NoError(t, err)
	alice := &models.User{ID: 7, Name: "alice", PasswordHash: aliceHash, IsAdmin: false}

	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(r *UserRepoMock)
		want       *models.Principal
		wantErr    error
	}{
		{
			name:     "correct credentials",
			username: "alice",
			password: "pw1",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByName", mock.Anything, "alice").Return(alice, nil).Once()
			},
			want: &models.Principal{ID: 7, Name: "alice"},
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "wrong",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByName", mock.Anything, "alice").Return(alice, nil).Once()
			},
			wantErr: models.ErrUnauthorized,
		},
		{
			name:     "unknown user",
			username: "mallory",
			password: "pw1",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByName", mock.Anything, "mallory").Return(nil, models.ErrNotFound).Once()
			},
			wantErr: models.ErrUnauthorized,
		},
		{
			name:       "invalid UTF-8 name never reaches storage",
			username:   "\xffbob",
			password:   "pw1",
			setupMocks: func(r *UserRepoMock) {},
			wantErr:    models.ErrUnauthorized,
		},
		{
			name:       "NUL byte in name never reaches storage",
			username:   "bob\x00",
			password:   "pw1",
			setupMocks: func(r *UserRepoMock) {},
			wantErr:    models.ErrUnauthorized,
		},
		{
			name:     "storage failure is not masked",
			username: "alice",
			password: "pw1",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByName", mock.Anything, "alice").Return(nil, errors.New("db down")).Once()
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			svc := services.NewAuthService(repo, hasher)

			got, err := svc.Authenticate(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)
				if errors.Is(tt.wantErr, models.ErrUnauthorized) {
					assert.ErrorIs(t, err, models.ErrUnauthorized)
				} else {
					assert.NotErrorIs(t, err, models.ErrUnauthorized)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_UnknownUserAndWrongPasswordLookTheSame(t *testing.T) {
	hasher := password.New(bcrypt.MinCost)
	hash, err := hasher.Hash("pw1")
	require.NoError(t, err)

	repo := new(UserRepoMock)
	repo.On("GetUserByName", mock.Anything, "alice").Return(&models.User{ID: 1, Name: "alice", PasswordHash: hash}, nil)
	repo.On("GetUserByName", mock.Anything, "ghost").Return(nil, models.ErrNotFound)
	svc := services.NewAuthService(repo, hasher)

	_, errWrong := svc.Authenticate(context.Background(), "alice", "bad")
	_, errMissing := svc.Authenticate(context.Background(), "ghost", "bad")
	_, errInvalid := svc.Authenticate(context.Background(), "\xffghost", "bad")
	_, errNul := svc.Authenticate(context.Background(), "gh\x00ost", "bad")

	require.Error(t, errWrong)
	require.Error(t, errMissing)
	assert.Equal(t, errWrong.Error(), errMissing.Error())
	assert.Equal(t, errWrong.Error(), errInvalid.Error())
	assert.Equal(t, errWrong.Error(), errNul.Error())
	repo.AssertNotCalled(t, "GetUserByName", mock.Anything, "\xffghost")
}
