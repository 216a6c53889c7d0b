package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AssetsConfig controls where uploaded font files live and how they are served
type AssetsConfig struct {
	Backend       string        `mapstructure:"backend"` // local, minio
	Dir           string        `mapstructure:"dir"`     // local backend root directory
	BaseURL       string        `mapstructure:"base_url"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"` // bytes; 0 means default (10 MiB)
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`       // 0 means default (1 hour)
	MinIO         MinIOConfig   `mapstructure:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	AdminUser     string        `mapstructure:"admin_user"`
	AdminPassword string        `mapstructure:"admin_password"`
	NonceTTL      time.Duration `mapstructure:"nonce_ttl"` // 0 means default (12 hours)
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Assets.Backend == "" {
		c.Assets.Backend = "local"
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = "data/fonts"
	}
	if c.Assets.MaxUploadSize <= 0 {
		c.Assets.MaxUploadSize = 10 << 20 // 10 MiB
	}
	if c.Assets.CacheTTL <= 0 {
		c.Assets.CacheTTL = time.Hour
	}
	if c.Auth.NonceTTL <= 0 {
		c.Auth.NonceTTL = 12 * time.Hour
	}
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
