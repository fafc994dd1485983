package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jakeh134/motionflow/config"
	"github.com/jakeh134/motionflow/model"
	"github.com/jakeh134/motionflow/pkg/logger"
	"github.com/jakeh134/motionflow/service"
)

const sessionKey = "session"

// Claims represents the JWT claims. The registered ID is the token id used
// for logout revocation.
type Claims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	FullName string `json:"name"`
	Role     string `json:"role"`
	CourtID  string `json:"court_id"`
	CountyID string `json:"county_id"`
	jwt.RegisteredClaims
}

// GenerateToken issues a session token for a clerk
func GenerateToken(user *config.User, cfg *config.AuthConfig) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(cfg.TokenExpireHours) * time.Hour)

	claims := Claims{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		CourtID:  user.CourtID,
		CountyID: user.CountyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseToken validates tokenString and returns the session it carries.
func ParseToken(tokenString string, cfg *config.AuthConfig) (*model.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" || claims.CourtID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	sess := &model.Session{
		TokenID:  claims.ID,
		UserID:   claims.UserID,
		Email:    claims.Email,
		FullName: claims.FullName,
		Role:     claims.Role,
		CourtID:  claims.CourtID,
		CountyID: claims.CountyID,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// AuthMiddleware validates the bearer token, refuses revoked sessions and
// stores the session in the gin context.
func AuthMiddleware(cfg *config.AuthConfig, revocations service.RevocationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		sess, err := ParseToken(parts[1], cfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		revoked, err := revocations.IsRevoked(c.Request.Context(), sess.TokenID)
		if err != nil {
			logger.Error(c.Request.Context(), "failed to check session revocation", "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session has ended, please log in again"})
			return
		}

		c.Set(sessionKey, sess)
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), sess.UserID, sess.CourtID))

		c.Next()
	}
}

// GetSession gets the authenticated session from context
func GetSession(c *gin.Context) *model.Session {
	if v, exists := c.Get(sessionKey); exists {
		if sess, ok := v.(*model.Session); ok {
			return sess
		}
	}
	return nil
}
