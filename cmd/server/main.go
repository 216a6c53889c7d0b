package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/typetester/font-tester-backend/internal/auth"
	authservice "github.com/typetester/font-tester-backend/internal/auth/service"
	"github.com/typetester/font-tester-backend/internal/conf"
	"github.com/typetester/font-tester-backend/internal/font/biz"
	"github.com/typetester/font-tester-backend/internal/font/data"
	"github.com/typetester/font-tester-backend/internal/font/lifecycle"
	fontservice "github.com/typetester/font-tester-backend/internal/font/service"
	"github.com/typetester/font-tester-backend/internal/font/storage"
	"github.com/typetester/font-tester-backend/internal/font/validator"
	"github.com/typetester/font-tester-backend/internal/pkg/database"
	"github.com/typetester/font-tester-backend/internal/pkg/logger"
	"github.com/typetester/font-tester-backend/internal/pkg/redis"
	"github.com/typetester/font-tester-backend/internal/server"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Database
	dbConfig := database.DefaultConfig()
	dbConfig.Host = config.Database.Host
	dbConfig.Port = config.Database.Port
	dbConfig.User = config.Database.User
	dbConfig.Password = config.Database.Password
	dbConfig.DBName = config.Database.DBName
	dbConfig.SSLMode = config.Database.SSLMode

	db, err := database.New(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Redis
	redisConfig := redis.DefaultConfig()
	if config.Redis.Addr != "" {
		redisConfig.Addr = config.Redis.Addr
	}
	redisConfig.Password = config.Redis.Password
	redisConfig.DB = config.Redis.DB

	redisClient, err := redis.New(redisConfig, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Font storage backend
	store, err := newStore(config, log)
	if err != nil {
		log.Fatal("failed to initialize font storage", zap.Error(err))
	}

	// Font domain
	fontRepo := data.NewFontAssetRepo(db)
	registry := biz.NewRegistry(
		fontRepo,
		store,
		redisClient,
		validator.New(config.Assets.MaxUploadSize),
		config.Assets.CacheTTL,
		log,
	)
	lifecycleManager := lifecycle.NewManager(store, db, registry, []interface{}{&data.FontAssetPO{}}, log)

	ctx := context.Background()
	if err := lifecycleManager.Activate(ctx); err != nil {
		log.Fatal("failed to activate font service", zap.Error(err))
	}

	// Auth
	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret)
	nonceManager := auth.NewNonceManager(redisClient, config.Auth.NonceTTL)

	// HTTP services
	authSvc := authservice.NewAuthService(jwtManager, nonceManager, config.Auth.AdminUser, config.Auth.AdminPassword, log)
	fontSvc := fontservice.NewFontService(registry, lifecycleManager, log)

	httpServer := server.NewHTTPServer(config, log, redisClient, jwtManager, nonceManager, authSvc, fontSvc)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

func newStore(config *conf.Config, log *logger.Logger) (storage.Store, error) {
	switch config.Assets.Backend {
	case "local":
		baseURL := config.Assets.BaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://%s:%d/fonts", config.Server.Host, config.Server.Port)
		}
		return storage.NewLocalStore(config.Assets.Dir, baseURL, log), nil
	case "minio":
		return storage.NewMinIOStore(storage.MinIOOptions{
			Endpoint:  config.Assets.MinIO.Endpoint,
			AccessKey: config.Assets.MinIO.AccessKey,
			SecretKey: config.Assets.MinIO.SecretKey,
			UseSSL:    config.Assets.MinIO.UseSSL,
			Bucket:    config.Assets.MinIO.Bucket,
			BaseURL:   config.Assets.BaseURL,
		}, log)
	default:
		return nil, fmt.Errorf("unknown assets backend: %q", config.Assets.Backend)
	}
}
