package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/nsg-intelligence-backend/internal/platform/logger"
)

type Config struct {
	Addr         string
	LogMode      string
	ServiceName  string
	Environment  string
	DrainTimeout time.Duration

	DBDriver          string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	AutoMigrate       bool
	SeedLibrary       bool

	JWTSecretKey   string
	JWTIssuer      string
	AccessTokenTTL time.Duration

	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	SessionMaxCount int
	SessionTTL      time.Duration
	TypingDelay     time.Duration

	MetricsInterval time.Duration
}

const defaultJWTSecret = "defaultsecret"

// NewViper returns a viper instance bound to the process environment. Keys
// are read as upper-case env vars (db_driver -> DB_DRIVER).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("log_mode", "development")
	v.SetDefault("service_name", "nsg-intelligence-backend")
	v.SetDefault("environment", "development")
	v.SetDefault("drain_timeout", "15s")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("database_url", "")
	v.SetDefault("db_max_open_conns", 20)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", "30m")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("seed_library", true)

	v.SetDefault("jwt_secret_key", defaultJWTSecret)
	v.SetDefault("jwt_issuer", "")
	v.SetDefault("access_token_ttl", "1h")

	v.SetDefault("cors_origins", "")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_channel", "nsg:sse")

	v.SetDefault("calibration_max_sessions", 10000)
	v.SetDefault("calibration_session_ttl", "2h")
	v.SetDefault("calibration_typing_delay", "0s")

	v.SetDefault("metrics_interval", "15s")
	return v
}

// LoadConfig reads the optional config file (if path is set) on top of the
// environment. Env vars win over file values.
func LoadConfig(log *logger.Logger, v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = NewViper()
	}
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := Config{
		Addr:         v.GetString("addr"),
		LogMode:      v.GetString("log_mode"),
		ServiceName:  v.GetString("service_name"),
		Environment:  v.GetString("environment"),
		DrainTimeout: v.GetDuration("drain_timeout"),

		DBDriver:          strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
		DatabaseURL:       v.GetString("database_url"),
		DBMaxOpenConns:    v.GetInt("db_max_open_conns"),
		DBMaxIdleConns:    v.GetInt("db_max_idle_conns"),
		DBConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		AutoMigrate:       v.GetBool("auto_migrate"),
		SeedLibrary:       v.GetBool("seed_library"),

		JWTSecretKey:   v.GetString("jwt_secret_key"),
		JWTIssuer:      v.GetString("jwt_issuer"),
		AccessTokenTTL: v.GetDuration("access_token_ttl"),

		CORSOrigins: splitList(v.GetString("cors_origins")),

		RedisAddr:     strings.TrimSpace(v.GetString("redis_addr")),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		RedisChannel:  v.GetString("redis_channel"),

		SessionMaxCount: v.GetInt("calibration_max_sessions"),
		SessionTTL:      v.GetDuration("calibration_session_ttl"),
		TypingDelay:     v.GetDuration("calibration_typing_delay"),

		MetricsInterval: v.GetDuration("metrics_interval"),
	}

	if cfg.JWTSecretKey == defaultJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY not set; using insecure default")
	}
	if cfg.AccessTokenTTL <= 0 {
		return Config{}, fmt.Errorf("access_token_ttl must be positive")
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
