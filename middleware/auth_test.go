package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freshwash/freshwash-api/config"
	"github.com/freshwash/freshwash-api/models"
)

const testSecret = "test-secret"

func setupAuthTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	config.SetDB(db)
	config.SetConfig(&config.Config{JWTSecret: testSecret, GoEnv: "test"})
	return db
}

func createAuthUser(t *testing.T, db *gorm.DB, email string, isAdmin, isActive bool) *models.User {
	t.Helper()
	user := models.User{Name: "Auth Test", Email: email, IsAdmin: isAdmin, IsActive: isActive}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{Protect()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user, _ := GetUser(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "email": user.Email})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestGenerateAndParseToken(t *testing.T) {
	user := &models.User{Name: "Token User", IsAdmin: true}
	user.ID = 42

	token, err := GenerateToken(user, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestParseTokenWrongSecret(t *testing.T) {
	user := &models.User{}
	user.ID = 1

	token, err := GenerateToken(user, testSecret)
	require.NoError(t, err)

	_, err = ParseToken(token, "some-other-secret")
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestProtectMissingToken(t *testing.T) {
	setupAuthTest(t)
	router := protectedRouter()

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"empty bearer", "Bearer "},
		{"wrong scheme", "Basic abc123"},
		{"token without scheme", "justatoken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Not authorized, no token")
		})
	}
}

func TestProtectInvalidToken(t *testing.T) {
	setupAuthTest(t)
	router := protectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid.token.here")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Not authorized, token failed")
}

func TestProtectValidToken(t *testing.T) {
	db := setupAuthTest(t)
	user := createAuthUser(t, db, "active@test.com", false, true)
	router := protectedRouter()

	token, err := GenerateToken(user, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "active@test.com")
}

func TestProtectDeactivatedAccount(t *testing.T) {
	db := setupAuthTest(t)
	user := createAuthUser(t, db, "inactive@test.com", false, false)
	router := protectedRouter()

	token, err := GenerateToken(user, testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Account has been deactivated")
}

func TestAdminMiddleware(t *testing.T) {
	db := setupAuthTest(t)
	customer := createAuthUser(t, db, "customer@test.com", false, true)
	admin := createAuthUser(t, db, "admin@test.com", true, true)
	router := protectedRouter(Admin())

	tests := []struct {
		name     string
		user     *models.User
		wantCode int
	}{
		{"customer is rejected", customer, http.StatusForbidden},
		{"admin is allowed", admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.user, testSecret)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	db := setupAuthTest(t)
	user := createAuthUser(t, db, "optional@test.com", false, true)

	router := gin.New()
	router.GET("/public", OptionalAuth(), func(c *gin.Context) {
		if u, err := GetUser(c); err == nil {
			c.JSON(http.StatusOK, gin.H{"email": u.Email})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": nil})
	})

	// Anonymous request passes through
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")

	// Garbage token is ignored, not rejected
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Valid token attaches the user
	token, err := GenerateToken(user, testSecret)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "optional@test.com")
}
