package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Fearce02/Drawlio-sub000/auth"
	"github.com/Fearce02/Drawlio-sub000/domain"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) CreateUser(ctx context.Context, username string, passwordHash string) (string, error) {
	args := m.Called(ctx, username, passwordHash)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hash, password string) (bool, error) {
	args := m.Called(hash, password)
	return args.Bool(0), args.Error(1)
}

type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) Generate(id string, now time.Time) (string, error) {
	args := m.Called(id, now)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func TestService_SignupValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		description string
		username    string
		password    string
		expected    error
	}{
		{"normal", "oussama145", "12345678", nil},
		{"with underscore", "oussama_two", "12345678ermtrmt", nil},
		{"short password", "oussama", "1234567", auth.ErrWeakPassword},
		{"username too short", "ou", "12345678", auth.ErrInvalidUsernameFormat},
		{"username too long", "oussamaermtermtermtermtrm", "12345678", auth.ErrInvalidUsernameFormat},
		{"username with space", "oussama is", "12345678", auth.ErrInvalidUsernameFormat},
		{"uppercase username", "Oussama", "12345678", auth.ErrInvalidUsernameFormat},
		{"symbols in username", "oussama!#", "12345678", auth.ErrInvalidUsernameFormat},
		{"absent username", "", "12345678", auth.ErrInvalidUsernameFormat},
		{"absent password", "oussama", "", auth.ErrWeakPassword},
	}

	for _, tC := range testCases {
		t.Run(tC.description, func(t *testing.T) {
			t.Parallel()
			userRepo := &MockUserRepo{}
			hasher := &MockPasswordHasher{}
			tokens := &MockTokenManager{}

			if tC.expected == nil {
				hasher.On("Hash", tC.password).Return("hashed", nil).Once()
				userRepo.On("CreateUser", mock.Anything, tC.username, "hashed").Return("id-1", nil).Once()
				tokens.On("Generate", "id-1", mock.Anything).Return("token", nil).Once()
			}

			service := auth.NewService(userRepo, hasher, tokens)
			token, err := service.Signup(context.Background(), tC.username, tC.password)

			assert.ErrorIs(t, err, tC.expected)
			if tC.expected == nil {
				assert.Equal(t, "token", token)
			}
			userRepo.AssertExpectations(t)
		})
	}
}

func TestService_SignupRejectsOverlongPassword(t *testing.T) {
	t.Parallel()

	service := auth.NewService(&MockUserRepo{}, &MockPasswordHasher{}, &MockTokenManager{})

	long := make([]rune, 257)
	for i := range long {
		long[i] = 'a'
	}

	_, err := service.Signup(context.Background(), "oussama", string(long))
	assert.ErrorIs(t, err, auth.ErrPasswordTooLong)
}

func TestService_SignupDuplicateUsername(t *testing.T) {
	t.Parallel()

	userRepo := &MockUserRepo{}
	hasher := &MockPasswordHasher{}
	tokens := &MockTokenManager{}

	hasher.On("Hash", "12345678").Return("hashed", nil).Once()
	userRepo.On("CreateUser", mock.Anything, "oussama", "hashed").Return("", domain.ErrDuplicateUsername).Once()

	service := auth.NewService(userRepo, hasher, tokens)
	_, err := service.Signup(context.Background(), "oussama", "12345678")

	assert.ErrorIs(t, err, auth.ErrUsernameAlreadyExists)
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		userRepo := &MockUserRepo{}
		hasher := &MockPasswordHasher{}
		tokens := &MockTokenManager{}

		userRepo.On("GetUserByUsername", mock.Anything, "oussama").
			Return(domain.User{Id: "id-1", Username: "oussama", PasswordHash: "hashed"}, nil).Once()
		hasher.On("Compare", "hashed", "12345678").Return(true, nil).Once()
		tokens.On("Generate", "id-1", mock.Anything).Return("token", nil).Once()

		service := auth.NewService(userRepo, hasher, tokens)
		token, err := service.Login(context.Background(), "oussama", "12345678")

		assert.NoError(t, err)
		assert.Equal(t, "token", token)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		userRepo := &MockUserRepo{}
		hasher := &MockPasswordHasher{}

		userRepo.On("GetUserByUsername", mock.Anything, "oussama").
			Return(domain.User{Id: "id-1", PasswordHash: "hashed"}, nil).Once()
		hasher.On("Compare", "hashed", "wrong").Return(false, nil).Once()

		service := auth.NewService(userRepo, hasher, &MockTokenManager{})
		_, err := service.Login(context.Background(), "oussama", "wrong")

		assert.ErrorIs(t, err, auth.ErrIncorrectPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		userRepo := &MockUserRepo{}
		userRepo.On("GetUserByUsername", mock.Anything, "ghost").
			Return(domain.User{}, domain.ErrUserNotFound).Once()

		service := auth.NewService(userRepo, &MockPasswordHasher{}, &MockTokenManager{})
		_, err := service.Login(context.Background(), "ghost", "12345678")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestService_GetUser(t *testing.T) {
	t.Parallel()

	userRepo := &MockUserRepo{}
	userRepo.On("GetUserById", mock.Anything, "id-1").
		Return(domain.User{Id: "id-1", Username: "oussama"}, nil).Once()

	service := auth.NewService(userRepo, &MockPasswordHasher{}, &MockTokenManager{})

	user, err := service.GetUser(context.Background(), "id-1")
	assert.NoError(t, err)
	assert.Equal(t, "oussama", user.Username)
	userRepo.AssertExpectations(t)
}

func TestService_VerifyToken(t *testing.T) {
	t.Parallel()

	tokens := &MockTokenManager{}
	tokens.On("Verify", "good").Return("id-1", nil).Once()
	tokens.On("Verify", "bad").Return("", domain.ErrCorruptedToken).Once()

	service := auth.NewService(&MockUserRepo{}, &MockPasswordHasher{}, tokens)

	id, err := service.VerifyToken("good")
	assert.NoError(t, err)
	assert.Equal(t, "id-1", id)

	_, err = service.VerifyToken("bad")
	assert.ErrorIs(t, err, domain.ErrCorruptedToken)
}
