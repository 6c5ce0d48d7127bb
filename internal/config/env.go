package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const devJWTSecret = "change-me"

type Env struct {
	AppAddr        string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	DB DBConfig

	// MinCancelLead is the minimum time before departure during which a
	// ticket can still be cancelled.
	MinCancelLead time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	// AdminUsername and AdminPassword seed the admin agent at startup when
	// both are set.
	AdminUsername string
	AdminPassword string

	CORSAllowedOrigins []string

	NATSURL       string
	NATSClusterID string
	NATSClientID  string

	UsageSweepInterval time.Duration
}

// LoadEnv reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr:        getEnv("APP_ADDR", ":8080"),
		GinMode:        strings.TrimSpace(os.Getenv("GIN_MODE")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 5)) * time.Second,

		DB: DBConfig{
			Host:               getEnv("DB_HOST", "127.0.0.1"),
			Port:               getEnvInt("DB_PORT", 3306),
			User:               getEnv("DB_USER", "root"),
			Password:           os.Getenv("DB_PASSWORD"),
			Name:               getEnv("DB_NAME", "ticketoffice"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 10),
			RunMigrations:      getEnvBool("DB_RUN_MIGRATIONS", true),
		},

		MinCancelLead: getEnvDuration("MIN_CANCEL_LEAD", 2*time.Hour),

		JWTSecret: getEnv("JWT_SECRET", devJWTSecret),
		JWTTTL:    getEnvDuration("JWT_TTL", 12*time.Hour),

		AdminUsername: strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}),

		NATSURL:       strings.TrimSpace(os.Getenv("NATS_URL")),
		NATSClusterID: getEnv("NATS_CLUSTER_ID", "ticketoffice"),
		NATSClientID:  getEnv("NATS_CLIENT_ID", "ticketoffice-api"),

		UsageSweepInterval: getEnvDuration("USAGE_SWEEP_INTERVAL", 5*time.Minute),
	}
}

// Validate rejects settings that are only acceptable in development. In
// release mode JWT_SECRET must be set to something other than the default.
func (e Env) Validate() error {
	if e.GinMode == gin.ReleaseMode && (e.JWTSecret == "" || e.JWTSecret == devJWTSecret) {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	out := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
