package service

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/typetester/font-tester-backend/internal/auth"
	"github.com/typetester/font-tester-backend/internal/auth/middleware"
	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
	"github.com/typetester/font-tester-backend/internal/pkg/logger"
	"github.com/typetester/font-tester-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// AuthService handles admin sessions and action tokens
type AuthService struct {
	jwtManager    *auth.JWTManager
	nonces        *auth.NonceManager
	adminUser     string
	adminPassword string
	logger        *logger.Logger
}

func NewAuthService(jwtManager *auth.JWTManager, nonces *auth.NonceManager, adminUser, adminPassword string, logger *logger.Logger) *AuthService {
	return &AuthService{
		jwtManager:    jwtManager,
		nonces:        nonces,
		adminUser:     adminUser,
		adminPassword: adminPassword,
		logger:        logger,
	}
}

// LoginRequest carries admin credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login handles POST /api/v1/auth/login
func (s *AuthService) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.adminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.adminPassword)) == 1
	if !userOK || !passOK {
		s.logger.Warn("failed admin login attempt",
			zap.String("username", req.Username),
			zap.String("ip", c.ClientIP()))
		response.ErrorWithCode(c, apperrors.ErrAuthInvalidCredentials)
		return
	}

	token, err := s.jwtManager.GenerateAccessToken(req.Username)
	if err != nil {
		s.logger.Error("failed to sign session token", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
		return
	}

	response.Success(c, &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(auth.AccessTokenDuration.Seconds()),
	})
}

// NonceResponse carries a fresh action token
type NonceResponse struct {
	Nonce string `json:"nonce"`
}

// IssueNonce handles GET /api/v1/admin/nonce. Requires an authenticated
// session; the nonce is bound to it.
func (s *AuthService) IssueNonce(c *gin.Context) {
	username, ok := middleware.GetUsername(c)
	if !ok {
		response.ErrorWithCode(c, apperrors.ErrUnauthorized)
		return
	}

	nonce, err := s.nonces.Issue(c.Request.Context(), username)
	if err != nil {
		s.logger.Error("failed to issue action token", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrInternalServer)
		return
	}

	response.Success(c, &NonceResponse{Nonce: nonce})
}
