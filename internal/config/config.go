package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	OTP        OTPConfig
	Mail       MailConfig
	Storage    StorageConfig
	LLM        LLMConfig
	Migrations MigrationsConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	LogJSON     bool
	LogDebug    bool
	CORSOrigins string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type OTPConfig struct {
	Length         int
	TTL            time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Workers  int

	RatePerSecond int
}

type StorageConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	PublicBaseURL  string
	MaxUploadBytes int64
	PresignExpiry  time.Duration
}

type LLMConfig struct {
	GeminiAPIKey string
	Model        string
	Timeout      time.Duration
}

type MigrationsConfig struct {
	Dir        string
	RunOnStart bool
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; variables already set win.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}
	dur := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	integer := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	boolean := func(key string, def bool) bool {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		LogJSON:     boolean("LOG_JSON", false),
		LogDebug:    boolean("LOG_DEBUG", false),
		CORSOrigins: optDefault("CORS_ALLOW_ORIGINS", "*"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     req("DB_HOST"),
		DBPort:     optDefault("DB_PORT", "5432"),
		DBName:     req("DB_NAME"),
		DBUser:     req("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  optDefault("DB_SSL_MODE", "disable"),

		ConnectTimeout:        dur("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(integer("DB_POOL_MAX_CONNS", 10)),
		PoolMinConns:          int32(integer("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   dur("DB_POOL_MAX_CONN_LIFETIME", time.Hour),
		PoolMaxConnIdleTime:   dur("DB_POOL_MAX_CONN_IDLE_TIME", 30*time.Minute),
		PoolHealthCheckPeriod: dur("DB_POOL_HEALTH_CHECK_PERIOD", time.Minute),
	}

	cfg.Redis = RedisConfig{
		Addr:     optDefault("REDIS_ADDR", "localhost:6379"),
		Password: opt("REDIS_PASSWORD"),
		DB:       integer("REDIS_DB", 0),
		CacheTTL: dur("REDIS_CACHE_TTL", 10*time.Minute),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  dur("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
		RefreshExpiresIn: dur("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
	}

	cfg.OTP = OTPConfig{
		Length:         integer("OTP_LENGTH", 6),
		TTL:            dur("OTP_TTL", 10*time.Minute),
		ResendCooldown: dur("OTP_RESEND_COOLDOWN", 60*time.Second),
		MaxAttempts:    integer("OTP_MAX_ATTEMPTS", 5),
	}
	if cfg.OTP.Length < 4 || cfg.OTP.Length > 10 {
		invalid = append(invalid, "OTP_LENGTH")
	}

	cfg.Mail = MailConfig{
		Host:     opt("SMTP_HOST"),
		Port:     integer("SMTP_PORT", 587),
		Username: opt("SMTP_USERNAME"),
		Password: opt("SMTP_PASSWORD"),
		From:     optDefault("SMTP_FROM", "no-reply@talenthub.local"),
		Workers:  integer("SMTP_WORKERS", 2),
		// messages per second across all workers, 0 disables throttling
		RatePerSecond: integer("SMTP_RATE_PER_SECOND", 5),
	}

	cfg.Storage = StorageConfig{
		Endpoint:       opt("STORAGE_ENDPOINT"),
		AccessKey:      opt("STORAGE_ACCESS_KEY"),
		SecretKey:      opt("STORAGE_SECRET_KEY"),
		Bucket:         optDefault("STORAGE_BUCKET", "talenthub"),
		UseSSL:         boolean("STORAGE_USE_SSL", false),
		PublicBaseURL:  strings.TrimRight(opt("STORAGE_PUBLIC_BASE_URL"), "/"),
		MaxUploadBytes: int64(integer("STORAGE_MAX_UPLOAD_BYTES", 10<<20)),
		PresignExpiry:  dur("STORAGE_PRESIGN_EXPIRY", 15*time.Minute),
	}

	cfg.LLM = LLMConfig{
		GeminiAPIKey: opt("GEMINI_API_KEY"),
		Model:        optDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		Timeout:      dur("LLM_TIMEOUT", 60*time.Second),
	}

	cfg.Migrations = MigrationsConfig{
		Dir:        opt("MIGRATIONS_DIR"),
		RunOnStart: boolean("MIGRATIONS_RUN_ON_START", false),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}
