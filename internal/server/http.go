package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	authservice "github.com/typetester/font-tester-backend/internal/auth/service"
	"github.com/typetester/font-tester-backend/internal/conf"
	fontservice "github.com/typetester/font-tester-backend/internal/font/service"
	"github.com/typetester/font-tester-backend/internal/pkg/logger"
	"github.com/typetester/font-tester-backend/internal/pkg/redis"
	"go.uber.org/zap"

	"github.com/typetester/font-tester-backend/internal/auth"
	"github.com/typetester/font-tester-backend/internal/auth/middleware"
)

// HTTPServer hosts the font tester API
type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	jwtManager *auth.JWTManager,
	nonceManager *auth.NonceManager,
	authService *authservice.AuthService,
	fontService *fontservice.FontService,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log))
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// local backend serves font files directly; minio serves them itself
	if config.Assets.Backend == "local" {
		router.Static("/fonts", config.Assets.Dir)
	}

	api := router.Group("/api/v1")

	api.POST("/auth/login", middleware.LoginRateLimiter(redisClient, log), authService.Login)

	// public surface consumed by the preview panel
	api.GET("/fonts", fontService.ListFonts)
	api.GET("/fonts/:id", fontService.GetFont)
	api.GET("/preview/config", fontService.GetPreviewConfig)

	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuth(jwtManager, log))
	{
		admin.GET("/nonce", authService.IssueNonce)

		mutating := admin.Group("")
		mutating.Use(middleware.NonceRequired(nonceManager, log))
		{
			mutating.POST("/fonts", middleware.UploadRateLimiter(redisClient, log), fontService.UploadFont)
			mutating.DELETE("/fonts/:id", fontService.DeleteFont)
			mutating.POST("/deactivate", fontService.Deactivate)
		}
	}

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
