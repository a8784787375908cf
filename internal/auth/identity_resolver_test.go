package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "coworking/internal/errors"
	"coworking/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func TestIdentityResolver_Resolve(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository)
		advance       time.Duration
		expectedError error
	}{
		{
			name: "active user",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ana@example.com").Return(testUser(), nil)
			},
		},
		{
			name: "deleted user",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name: "inactive user",
			setupMock: func(m *MockUserRepository) {
				user := testUser()
				user.IsActive = false
				m.On("FindByEmail", mock.Anything, "ana@example.com").Return(user, nil)
			},
			expectedError: apperrors.ErrUserInactive,
		},
		{
			name:          "expired token never reaches the store",
			setupMock:     func(m *MockUserRepository) {},
			advance:       time.Hour,
			expectedError: apperrors.ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, clock := newTestTokenService(t)
			token, err := tokens.Issue(testUser(), 0)
			require.NoError(t, err)
			clock.now = clock.now.Add(tt.advance)

			repo := new(MockUserRepository)
			tt.setupMock(repo)

			user, err := NewIdentityResolver(tokens, repo).Resolve(context.Background(), token)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(42), user.ID)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestIdentityResolver_StoreFailure(t *testing.T) {
	tokens, _ := newTestTokenService(t)
	token, err := tokens.Issue(testUser(), 0)
	require.NoError(t, err)

	repo := new(MockUserRepository)
	repo.On("FindByEmail", mock.Anything, "ana@example.com").Return(nil, errors.New("connection refused"))

	_, err = NewIdentityResolver(tokens, repo).Resolve(context.Background(), token)
	require.Error(t, err)
	assert.False(t, apperrors.IsAuthFailure(err))
}
