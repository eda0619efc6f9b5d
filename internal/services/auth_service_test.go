package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

const testJWTSecret = "test_jwt_secret"

func TestHashPassword(t *testing.T) {
	hashed, err := services.HashPassword("password123")

	require.NoError(t, err)
	assert.NotEqual(t, "password123", hashed)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("password123")))
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, zap.NewNop())
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:       "user-123",
		Name:     "Administrator",
		Email:    "admin@example.com",
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	// Test successful login
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	token, err := authService.LoginUser(ctx, "admin@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])
	assert.Equal(t, "ADMIN", claims["role"])
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	_, err = authService.LoginUser(ctx, "admin@example.com", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").
		Return(nil, fmt.Errorf("user with email nobody@example.com: %w", repositories.ErrRecordNotFound)).Once()
	_, err = authService.LoginUser(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials") // Should return generic invalid credentials message
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, zap.NewNop())

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"email":   "admin@example.com",
		"role":    "SUPER_ADMIN",
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(), // Expires in 1 hour
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	// Test valid token
	caller, err := authService.ValidateToken(validTokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-123", caller.UserID)
	assert.Equal(t, "admin@example.com", caller.Email)
	assert.Equal(t, models.RoleSuperAdmin, caller.Role)

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid token")

	// Test wrong secret
	forged, _ := token.SignedString([]byte("another_secret"))
	_, err = authService.ValidateToken(forged)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(), // Expired 1 hour ago
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Test token without a subject
	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	anonymousString, _ := anonymous.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(anonymousString)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAuthService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, zap.NewNop())
	ctx := context.Background()

	sign := func(userID string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": userID,
			"email":   "admin@example.com",
			"role":    "ADMIN",
			"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(testJWTSecret))
		require.NoError(t, err)
		return signed
	}

	// The stored role wins over the signed one
	mockRepo.On("GetByID", ctx, "user-123").
		Return(&models.User{ID: "user-123", Email: "admin@example.com", Role: models.RoleCustomer}, nil).Once()
	caller, err := authService.Authenticate(ctx, sign("user-123"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, caller.Role)

	// Deleted user
	mockRepo.On("GetByID", ctx, "gone").
		Return(nil, fmt.Errorf("user with ID gone: %w", repositories.ErrRecordNotFound)).Once()
	_, err = authService.Authenticate(ctx, sign("gone"))
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// Store failure is not an authentication failure
	mockRepo.On("GetByID", ctx, "user-456").Return(nil, errors.New("connection refused")).Once()
	_, err = authService.Authenticate(ctx, sign("user-456"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrUnauthorized)

	// Invalid tokens never reach the store
	_, err = authService.Authenticate(ctx, "invalid.token.string")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginAgainstDatabase(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	ctx := context.Background()

	hashed, err := services.HashPassword("s3cret!")
	require.NoError(t, err)
	require.NoError(t, users.Upsert(ctx, &models.User{Name: "Admin", Email: "root@example.com", Password: hashed, Role: models.RoleSuperAdmin}))

	authService := services.NewAuthService(users, testJWTSecret, time.Minute, zap.NewNop())
	token, err := authService.LoginUser(ctx, "root@example.com", "s3cret!")
	require.NoError(t, err)

	caller, err := authService.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", caller.Email)
	assert.Equal(t, models.RoleSuperAdmin, caller.Role)
	assert.NoError(t, services.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)(caller))
}
