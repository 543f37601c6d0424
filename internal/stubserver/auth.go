package stubserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vidconv/vidconv/pkg/models"
)

const authContextKey = "auth_user"

// claims carries the stub's JWT payload.
type claims struct {
	models.JWTClaims
	jwt.RegisteredClaims
}

// issueToken signs a 24h token for the user.
func (s *Server) issueToken(u *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		JWTClaims: models.JWTClaims{
			UserID:   u.ID,
			Username: u.Username,
			Role:     u.Role,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	})
	return token.SignedString([]byte(s.jwtSecret))
}

// bearerAuth validates the Authorization header and stores the authenticated
// user in the request context.
func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(s.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		tokenClaims, ok := token.Claims.(*claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		user, ok := s.store.userByID(tokenClaims.UserID)
		if !ok || !user.Active {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown or inactive user"})
			c.Abort()
			return
		}

		c.Set(authContextKey, user)
		c.Next()
	}
}

// adminOnly rejects requests from non-admin users. Must run after bearerAuth.
func (s *Server) adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role != models.UserRoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, _ := c.Get(authContextKey)
	u, _ := v.(*models.User)
	return u
}
