package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
// It is constructed once at startup and treated as immutable afterwards.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Database
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis (optional; greeting cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret string
	TokenTTL  time.Duration

	// Google Sign-In. One client ID per application variant (web, android, ...).
	GoogleClientID        string
	GoogleAndroidClientID string

	// When false, a Google sign-in whose email matches an account created
	// through the password flow is rejected instead of attached to.
	GoogleAttachExisting bool

	// Welcome notifier (optional; external greeting service)
	NotifierURL     string
	NotifierTimeout time.Duration

	// Google Cloud Storage (optional; avatar uploads)
	GCSBucket              string
	GCSCredentialsJSONPath string

	// RabbitMQ (optional; welcome email queue)
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Mailgun (email worker)
	MailgunDomain   string
	MailgunAPIKey   string
	MailgunSender   string
	MailSendEnabled bool

	// Elasticsearch (optional; user profile index)
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESUsersIndex       string

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Migrations
	MigrationsDir string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "registery-auth-api"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "registery"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		JWTSecret: getenv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
		TokenTTL:  getdur("JWT_TTL", 24*time.Hour),

		GoogleClientID:        getenv("GOOGLE_CLIENT_ID", ""),
		GoogleAndroidClientID: getenv("GOOGLE_ANDROID_CLIENT_ID", ""),
		GoogleAttachExisting:  getbool("GOOGLE_ATTACH_EXISTING_ACCOUNTS", true),

		NotifierURL:     getenv("NOTIFIER_URL", ""),
		NotifierTimeout: getdur("NOTIFIER_TIMEOUT", 5*time.Second),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),

		MailgunDomain:   getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:   getenv("MAILGUN_API_KEY", ""),
		MailgunSender:   getenv("MAILGUN_SENDER", ""),
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", true),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESUsersIndex:       getenv("ES_USERS_INDEX", "users"),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "*"),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),
	}
}

// Validate checks the configuration that must be present before the server
// can accept requests. Failures here abort startup; they are never surfaced
// as per-request errors.
func (c *Config) Validate() error {
	if len(c.GoogleClientIDs()) == 0 {
		return errors.New("at least one Google client ID must be set (GOOGLE_CLIENT_ID or GOOGLE_ANDROID_CLIENT_ID)")
	}
	if c.DBHost == "" || c.DBName == "" {
		return errors.New("database configuration is incomplete (DB_HOST, DB_NAME)")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	return nil
}

// GoogleClientIDs returns the accepted token audiences in verification order.
func (c *Config) GoogleClientIDs() []string {
	ids := make([]string, 0, 2)
	if c.GoogleClientID != "" {
		ids = append(ids, c.GoogleClientID)
	}
	if c.GoogleAndroidClientID != "" {
		ids = append(ids, c.GoogleAndroidClientID)
	}
	return ids
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// CORSOrigins returns the allowed origins as a slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	parts := strings.Split(c.ElasticsearchAddrs, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
