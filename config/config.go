package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const devJWTSecret = "dev-only-secret-change-me"

type Config struct {
	Port        string
	BindAddress string
	Environment string
	APIPrefix   string

	DatabaseURL      string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	PGPoolMax        int
	PGIdleTimeout    time.Duration
	PGConnectTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	CORSOrigins     []string
	TrustedProxies  []string
	RateLimitMax    int
	RateLimitWindow time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads the environment, preferring values from a .env file when one
// exists in the working directory.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	env := getEnv("APP_ENV", getEnv("NODE_ENV", "development"))
	sslMode := "disable"
	if env == "production" {
		sslMode = "require"
	}

	return &Config{
		Port:        getEnv("PORT", "3000"),
		BindAddress: getEnv("BIND_ADDRESS", ""),
		Environment: env,
		APIPrefix:   "/" + strings.Trim(getEnv("API_PREFIX", "/api"), "/"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           getEnv("DB_NAME", "quiz_app"),
		DBSSLMode:        getEnv("DB_SSLMODE", sslMode),
		PGPoolMax:        getInt("PG_POOL_MAX", 20),
		PGIdleTimeout:    time.Duration(getInt("PG_IDLE_TIMEOUT_MS", 30000)) * time.Millisecond,
		PGConnectTimeout: time.Duration(getInt("PG_CONN_TIMEOUT_MS", 5000)) * time.Millisecond,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTTTL:     getDuration("JWT_TTL", 7*24*time.Hour),
		BcryptCost: getInt("BCRYPT_COST", 12),

		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", getEnv("FRONTEND_URL", "http://localhost:5173"))),
		TrustedProxies:  splitList(os.Getenv("TRUSTED_PROXIES")),
		RateLimitMax:    getInt("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		ReadTimeout:  getDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  getDuration("IDLE_TIMEOUT", 90*time.Second),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects configurations the server must not start with. Outside
// production a missing JWT secret is replaced by a development one.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else {
			log.Println("JWT_SECRET not set, using an insecure development secret")
			c.JWTSecret = devJWTSecret
		}
	}
	if c.BcryptCost < 10 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least 10, got %d", c.BcryptCost))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.RateLimitMax < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MAX must be at least 1, got %d", c.RateLimitMax))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.PGPoolMax < 1 {
		errs = append(errs, fmt.Errorf("PG_POOL_MAX must be at least 1, got %d", c.PGPoolMax))
	}
	if len(c.CORSOrigins) == 0 {
		errs = append(errs, errors.New("at least one CORS origin is required"))
	}
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			errs = append(errs, errors.New("CORS_ORIGINS must list explicit origins, not *"))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return c.BindAddress + ":" + c.Port
}

// DSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (c *Config) DSN() string {
	timeout := strconv.Itoa(int(c.PGConnectTimeout.Seconds()))
	if c.DatabaseURL != "" {
		u, err := url.Parse(c.DatabaseURL)
		if err != nil || u.Scheme == "" {
			return c.DatabaseURL
		}
		q := u.Query()
		if q.Get("connect_timeout") == "" && c.PGConnectTimeout >= time.Second {
			q.Set("connect_timeout", timeout)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
	if c.PGConnectTimeout >= time.Second {
		dsn += " connect_timeout=" + timeout
	}
	return dsn
}

var passwordParam = regexp.MustCompile(`password=\S*`)

// MaskDSN hides the password of a URL or key=value connection string.
func MaskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		return u.Redacted()
	}
	return passwordParam.ReplaceAllString(dsn, "password=xxxxx")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

const (
	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 NewGormLogger(cfg.IsProduction()),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", MaskDSN(cfg.DSN()), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.PGPoolMax)
	sqlDB.SetMaxIdleConns(cfg.PGPoolMax)
	sqlDB.SetConnMaxIdleTime(cfg.PGIdleTimeout)

	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.PGConnectTimeout)
		err = sqlDB.PingContext(ctx)
		cancel()
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			sqlDB.Close()
			return nil, fmt.Errorf("database %s unreachable after %d attempts: %w", MaskDSN(cfg.DSN()), attempt, err)
		}
		log.Printf("Database not ready (attempt %d/%d): %v", attempt, connectAttempts, err)
		time.Sleep(retryDelay)
	}

	log.Println("Database connected")
	return db, nil
}

// InitRedis returns nil when REDIS_ADDR is unset.
func InitRedis(cfg *Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.PGConnectTimeout)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			log.Printf("Redis connected at %s", cfg.RedisAddr)
			return client, nil
		}
		log.Printf("Redis not ready (attempt %d/%d): %v", attempt, connectAttempts, err)
		if attempt < connectAttempts {
			time.Sleep(retryDelay)
		}
	}

	client.Close()
	return nil, fmt.Errorf("redis at %s unreachable: %w", cfg.RedisAddr, err)
}
