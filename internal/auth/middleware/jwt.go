package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/typetester/font-tester-backend/internal/auth"
	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
	"github.com/typetester/font-tester-backend/internal/pkg/logger"
	"github.com/typetester/font-tester-backend/internal/pkg/response"
	"go.uber.org/zap"
)

const usernameKey = "username"

// NonceHeader carries the per-session action token on mutating admin requests
const NonceHeader = "X-Font-Nonce"

// JWTAuth rejects requests without a valid admin session token
func JWTAuth(jwtManager *auth.JWTManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithCode(c, apperrors.ErrUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		token, err := auth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyAccessToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			response.ErrorWithCode(c, apperrors.ErrAuthInvalidToken)
			c.Abort()
			return
		}

		c.Set(usernameKey, claims.Username)
		c.Next()
	}
}

// NonceRequired rejects mutating requests that do not present a valid action
// token in the NonceHeader header. Must run after JWTAuth.
func NonceRequired(nonces *auth.NonceManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, _ := GetUsername(c)

		nonce := c.GetHeader(NonceHeader)
		if err := nonces.Verify(c.Request.Context(), username, nonce); err != nil {
			log.Warn("rejected request with bad action token",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()))
			response.HandleError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUsername returns the authenticated admin username from the context
func GetUsername(c *gin.Context) (string, bool) {
	username, exists := c.Get(usernameKey)
	if !exists {
		return "", false
	}
	s, ok := username.(string)
	return s, ok
}

// CORS allows the preview panel to call the API from another origin
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		origin := c.Request.Header.Get("Origin")

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
			c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, "+NonceHeader)
			c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Type")
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
