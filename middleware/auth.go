package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/freshwash/freshwash-api/config"
	"github.com/freshwash/freshwash-api/models"
)

const userContextKey = "current_user"

// Claims carries the authenticated user identity inside the JWT
type Claims struct {
	UserID  uint `json:"userId"`
	IsAdmin bool `json:"isAdmin"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed HS256 token for the given user, valid for 30 days
func GenerateToken(user *models.User, secret string) (string, error) {
	claims := Claims{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a signed token and returns its claims
func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func loadUser(c *gin.Context, tokenString string) (*models.User, error) {
	cfg := config.GetConfig()
	claims, err := ParseToken(tokenString, cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, claims.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}
	return &user, nil
}

// Protect requires a valid bearer token belonging to an active user
func Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			c.Abort()
			return
		}

		user, err := loadUser(c, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			c.Abort()
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"message": "Account has been deactivated"})
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// Admin requires the authenticated user to have the admin role.
// Must run after Protect.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUser(c)
		if err != nil || !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized as an admin"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present but never rejects
// the request. Used on public endpoints whose responses vary for admins.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if user, err := loadUser(c, token); err == nil && user.IsActive {
				c.Set(userContextKey, user)
			}
		}
		c.Next()
	}
}

// GetUser returns the authenticated user stored by Protect or OptionalAuth
func GetUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil, fmt.Errorf("unexpected user type in context")
	}
	return user, nil
}

// SetUser stores a user in the request context (used by tests)
func SetUser(c *gin.Context, user *models.User) {
	c.Set(userContextKey, user)
}
