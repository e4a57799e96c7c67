package auth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/cinelog/backend/internal/database"
	"github.com/cinelog/backend/internal/logger"
	"github.com/cinelog/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Initialize("error", os.DevNull)
	os.Exit(m.Run())
}

func setupAuth(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	database.DB = db
	return NewService([]byte("test-secret"))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupAuth(t)

	resp, err := svc.Register(RegisterRequest{
		Email:    "viewer@example.com",
		Username: "viewer",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "viewer", resp.User.Username)
	assert.Equal(t, "viewer", resp.User.DisplayName, "display name defaults to username")

	login, err := svc.Login(LoginRequest{Email: "viewer@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(LoginRequest{Email: "viewer@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicates(t *testing.T) {
	svc := setupAuth(t)

	_, err := svc.Register(RegisterRequest{
		Email:    "viewer@example.com",
		Username: "viewer",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(RegisterRequest{
		Email:    "Viewer@Example.com",
		Username: "someone_else",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUserExists, "email comparison is case-insensitive")

	_, err = svc.Register(RegisterRequest{
		Email:    "other@example.com",
		Username: "Viewer",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestValidateToken(t *testing.T) {
	svc := setupAuth(t)

	resp, err := svc.Register(RegisterRequest{
		Email:    "viewer@example.com",
		Username: "viewer",
		Password: "password123",
	})
	require.NoError(t, err)

	user, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	other := NewService([]byte("different-secret"))
	_, err = other.ValidateToken(resp.Token)
	assert.Error(t, err, "tokens signed with another secret are rejected")
}

func TestMiddleware(t *testing.T) {
	svc := setupAuth(t)

	resp, err := svc.Register(RegisterRequest{
		Email:    "viewer@example.com",
		Username: "viewer",
		Password: "password123",
	})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/protected", svc.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"missing bearer prefix", resp.Token, http.StatusUnauthorized},
		{"bad token", "Bearer junk", http.StatusUnauthorized},
		{"valid token", "Bearer " + resp.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
