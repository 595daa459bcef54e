package service

import (
	"testing"
	"time"

	"bizhub/internal/config"
	"bizhub/internal/httpapi/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func TestRegister_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig())

	mockUserRepo.On("FindByUsername", "testuser").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("FindByEmail", "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil)

	user, err := authService.Register("testuser", "password123", "test@example.com")

	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "testuser", user.Username)
	assert.NotEqual(t, "password123", user.Password)
	mockUserRepo.AssertExpectations(t)
}

func TestRegister_UsernameExists(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig())

	mockUserRepo.On("FindByUsername", "taken").Return(&models.User{Username: "taken"}, nil)

	_, err := authService.Register("taken", "password123", "test@example.com")

	assert.ErrorIs(t, err, ErrNameInUse)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockUserRepo.On("FindByUsername", "testuser").Return(&models.User{
		ID:       "user-1",
		Username: "testuser",
		Password: string(hashed),
	}, nil)

	access, refresh, user, err := authService.Login("testuser", "password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, "testuser", user.Username)

	// the access token must validate and carry the expected claims
	token, err := authService.ValidateToken(access)
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "access", claims["type"])
}

func TestLogin_WrongPassword(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockUserRepo.On("FindByUsername", "testuser").Return(&models.User{
		Username: "testuser",
		Password: string(hashed),
	}, nil)

	_, _, _, err := authService.Login("testuser", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig())

	mockUserRepo.On("FindByUsername", "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, _, _, err := authService.Login("ghost", "password123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshAccessToken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-1", Username: "testuser", Password: string(hashed)}
	mockUserRepo.On("FindByUsername", "testuser").Return(user, nil)
	mockUserRepo.On("FindByID", "user-1").Return(user, nil)

	_, refresh, _, err := authService.Login("testuser", "password123")
	assert.NoError(t, err)

	access, err := authService.RefreshAccessToken(refresh)
	assert.NoError(t, err)

	token, err := authService.ValidateToken(access)
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "access", claims["type"])
}

func TestRefreshAccessToken_RejectsAccessToken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := NewAuthService(mockUserRepo, testAuthConfig())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockUserRepo.On("FindByUsername", "testuser").Return(&models.User{
		ID:       "user-1",
		Username: "testuser",
		Password: string(hashed),
	}, nil)

	access, _, _, err := authService.Login("testuser", "password123")
	assert.NoError(t, err)

	_, err = authService.RefreshAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	authService := NewAuthService(new(MockUserRepository), testAuthConfig())

	_, err := authService.ValidateToken("not-a-token")
	assert.Error(t, err)
}
