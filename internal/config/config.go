package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Store    StoreConfig
	Document DocumentConfig
	Quota    QuotaConfig
	Cache    CacheConfig
	Grading  GradingConfig
	Data     DataConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30m"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"tcg-inventory-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// StoreConfig selects the relational system of record.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"sqlite"` // sqlite, postgres or mysql
	Path string `envconfig:"STORE_PATH" default:"./data/inventory.db"`

	Host     string `envconfig:"STORE_HOST" default:"localhost"`
	Port     int    `envconfig:"STORE_PORT" default:"0"`
	Name     string `envconfig:"STORE_NAME" default:"tcg_inventory"`
	User     string `envconfig:"STORE_USER" default:""`
	Password string `envconfig:"STORE_PASS" default:""`
	SSLMode  string `envconfig:"STORE_SSLMODE" default:"disable"`
}

// DocumentConfig selects where the inventory document lives.
type DocumentConfig struct {
	Type string `envconfig:"DOCUMENT_TYPE" default:"file"` // file or mongodb
	Path string `envconfig:"DOCUMENT_PATH" default:"./data/inventory.json"`

	MongoURI        string `envconfig:"MONGODB_URI" default:""`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"tcg_inventory"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"inventory"`
}

// QuotaConfig holds the grading-service call budget.
type QuotaConfig struct {
	Store      string `envconfig:"QUOTA_STORE" default:"file"` // file or redis
	Path       string `envconfig:"QUOTA_PATH" default:"./data/psa_api_calls.json"`
	DailyLimit int    `envconfig:"QUOTA_DAILY_LIMIT" default:"100"`
	Key        string `envconfig:"QUOTA_KEY" default:"psa:quota"`
}

// CacheConfig holds Redis settings.
type CacheConfig struct {
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix     string `envconfig:"REDIS_KEY_PREFIX" default:"tcg-inventory"`
}

// GradingConfig holds the certificate API client settings.
type GradingConfig struct {
	BaseURL   string        `envconfig:"PSA_BASE_URL" default:"https://api.psacard.com/publicapi/cert"`
	Token     string        `envconfig:"PSA_TOKEN" default:""`
	TokenFile string        `envconfig:"PSA_TOKEN_FILE" default:""`
	Timeout   time.Duration `envconfig:"PSA_TIMEOUT" default:"10s"`
	CallDelay time.Duration `envconfig:"PSA_CALL_DELAY" default:"1s"`
}

// DataConfig holds on-disk locations.
type DataConfig struct {
	Dir        string `envconfig:"DATA_DIR" default:"./data"`
	ImportDir  string `envconfig:"IMPORT_DIR" default:""`
	SlabDir    string `envconfig:"SLAB_DIR" default:""`
	ImageDir   string `envconfig:"IMAGE_DIR" default:""`
	SeriesPath string `envconfig:"CATALOG_SERIES_PATH" default:""`
	SetsPath   string `envconfig:"CATALOG_SETS_PATH" default:""`
}

// AuthConfig holds API keys required on mutating requests.
type AuthConfig struct {
	APIKeys []string `envconfig:"API_KEYS" default:""`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func (s *StoreConfig) port(fallback int) int {
	if s.Port > 0 {
		return s.Port
	}
	return fallback
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StoreConfig) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.User, s.Password),
		Host:     fmt.Sprintf("%s:%d", s.Host, s.port(5432)),
		Path:     "/" + s.Name,
		RawQuery: "sslmode=" + url.QueryEscape(s.SSLMode),
	}
	return u.String()
}

// MySQLDSN returns the MySQL data source name. Affected-row counts report
// matched rows so unchanged updates are not mistaken for missing ones.
func (s *StoreConfig) MySQLDSN() string {
	c := mysql.NewConfig()
	c.User = s.User
	c.Passwd = s.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", s.Host, s.port(3306))
	c.DBName = s.Name
	c.ClientFoundRows = true
	return c.FormatDSN()
}

// ImportPath returns the directory uploads are copied to.
func (d *DataConfig) ImportPath() string {
	return d.orDefault(d.ImportDir, "imports")
}

// SlabPath returns the directory holding one folder per certificate.
func (d *DataConfig) SlabPath() string {
	return d.orDefault(d.SlabDir, "slabs")
}

// ImagePath returns the directory slab images are downloaded to.
func (d *DataConfig) ImagePath() string {
	return d.orDefault(d.ImageDir, "slabs")
}

// SeriesFile returns the series-shaped catalog file.
func (d *DataConfig) SeriesFile() string {
	return d.orDefault(d.SeriesPath, "pokemon_sets.json")
}

// SetsFile returns the sets-shaped catalog file.
func (d *DataConfig) SetsFile() string {
	return d.orDefault(d.SetsPath, "sets_database.json")
}

// TokenFile returns the grading-service token file.
func (c *Config) TokenFile() string {
	if c.Grading.TokenFile != "" {
		return c.Grading.TokenFile
	}
	return filepath.Join(c.Data.Dir, "oauthtoken")
}

func (d *DataConfig) orDefault(value, name string) string {
	if value != "" {
		return value
	}
	return filepath.Join(d.Dir, name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Validate rejects unknown backend names.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Type) {
	case "sqlite", "postgres", "postgresql", "mysql":
	default:
		return fmt.Errorf("unknown STORE_TYPE %q", c.Store.Type)
	}
	switch strings.ToLower(c.Document.Type) {
	case "file", "mongodb", "mongo":
	default:
		return fmt.Errorf("unknown DOCUMENT_TYPE %q", c.Document.Type)
	}
	switch strings.ToLower(c.Quota.Store) {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("unknown QUOTA_STORE %q", c.Quota.Store)
	}
	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("QUOTA_DAILY_LIMIT must be positive, got %d", c.Quota.DailyLimit)
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
