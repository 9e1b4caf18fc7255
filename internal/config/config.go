package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Auth       `yaml:"auth"`
	OAuth      `yaml:"oauth"`
	Analytics  `yaml:"analytics"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Port            int           `yaml:"port" env:"HTTP_SERVER_PORT" env-default:"8081"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
	FrontendURL     string        `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:8080"`
}

// Database holds PostgreSQL connection configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD" env-default:""`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"linkboard"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"100"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	SeedAdmin       bool   `yaml:"seed_admin" env:"DB_SEED_ADMIN" env-default:"false"`
	AdminUsername   string `yaml:"admin_username" env:"DB_ADMIN_USERNAME" env-default:"admin"`
	AdminPassword   string `yaml:"admin_password" env:"DB_ADMIN_PASSWORD" env-default:""`
}

// Auth holds JWT configuration.
type Auth struct {
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenDuration time.Duration `yaml:"token_duration" env:"JWT_TOKEN_DURATION" env-default:"24h"`
	Issuer        string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"linkboard"`
}

// OAuth holds the Google sign-in configuration. Sign-in is disabled when
// the client credentials are empty.
type OAuth struct {
	GoogleClientID     string `yaml:"google_client_id" env:"GOOGLE_CLIENT_ID" env-default:""`
	GoogleClientSecret string `yaml:"google_client_secret" env:"GOOGLE_CLIENT_SECRET" env-default:""`
	GoogleRedirectURL  string `yaml:"google_redirect_url" env:"GOOGLE_REDIRECT_URL" env-default:"http://localhost:8081/api/auth/google/callback"`
}

// Analytics holds the access processor configuration.
type Analytics struct {
	WorkerCount int `yaml:"worker_count" env:"ANALYTICS_WORKER_COUNT" env-default:"3"`
	BufferSize  int `yaml:"buffer_size" env:"ANALYTICS_BUFFER_SIZE" env-default:"1000"`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	return &cfg
}
