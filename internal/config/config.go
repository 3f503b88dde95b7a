package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-storefront/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// URIConfig holds URI resolver configuration
type URIConfig struct {
	IPFSGateways []string      `mapstructure:"ipfs_gateways"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// NATSConfig holds NATS configuration used by the bid event transport
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

// VendorsConfig holds vendor API configurations
type VendorsConfig struct {
	OpenSeaURL    string `mapstructure:"opensea_url"`
	OpenSeaAPIKey string `mapstructure:"opensea_api_key"`
	MoralisURL    string `mapstructure:"moralis_url"`
	MoralisAPIKey string `mapstructure:"moralis_api_key"`
	IndexerChain  string `mapstructure:"indexer_chain"`
	// OpenSeaCollections maps a category to a marketplace collection slug.
	// Categories without an entry use their own name as the slug.
	OpenSeaCollections map[string]string `mapstructure:"opensea_collections"`
	// IndexerContracts overrides the per-category contract registry of the indexer source
	IndexerContracts map[string][]string `mapstructure:"indexer_contracts"`
	// HTTPTimeout bounds a single upstream request
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	// MaxRetryElapsed bounds the 429 backoff loop of a single request
	MaxRetryElapsed time.Duration `mapstructure:"max_retry_elapsed"`
}

// RateLimitConfig holds per-provider rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int     `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	// Distributed switches the limiter to the shared redis backend
	Distributed bool `mapstructure:"distributed"`
	PoolSize    int  `mapstructure:"pool_size"`
}

// FeedsConfig holds refresh scheduler configuration
type FeedsConfig struct {
	WalletInterval   time.Duration `mapstructure:"wallet_interval"`
	LiveInterval     time.Duration `mapstructure:"live_interval"`
	SidebarInterval  time.Duration `mapstructure:"sidebar_interval"`
	LimitPerCategory int           `mapstructure:"limit_per_category"`
	MaxFeeds         int           `mapstructure:"max_feeds"`

	// AggregatorConcurrency bounds provider calls in flight across all feeds,
	// searches and lookups. The rate limit proxy still applies on top of it.
	AggregatorConcurrency int `mapstructure:"aggregator_concurrency"`
}

// AuctionConfig holds auction engine configuration
type AuctionConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

// PubSubConfig selects the bid event transport
type PubSubConfig struct {
	// Driver is one of memory, redis, nats
	Driver string `mapstructure:"driver"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// CORSOrigins restricts browser origins; empty allows all
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// StorefrontConfig holds configuration for the storefront service
type StorefrontConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Database   DatabaseConfig  `mapstructure:"database"`
	URI        URIConfig       `mapstructure:"uri"`
	Vendors    VendorsConfig   `mapstructure:"vendors"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Feeds      FeedsConfig     `mapstructure:"feeds"`
	Auction    AuctionConfig   `mapstructure:"auction"`
	PubSub     PubSubConfig    `mapstructure:"pubsub"`
	Redis      RedisConfig     `mapstructure:"redis"`
	NATS       NATSConfig      `mapstructure:"nats"`
}

const (
	PubSubDriverMemory = "memory"
	PubSubDriverRedis  = "redis"
	PubSubDriverNATS   = "nats"
)

// LoadStorefrontConfig loads configuration for the storefront service.
// Provider API keys are optional; an adapter without a key degrades to
// reporting its source as unavailable.
func LoadStorefrontConfig(configFile string, envPath string) (*StorefrontConfig, error) {
	v := configureViper("storefront", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("uri.ipfs_gateways", domain.DefaultIPFSGateways)
	v.SetDefault("uri.probe_timeout", "5s")
	v.SetDefault("vendors.opensea_url", "https://api.opensea.io/api/v2")
	v.SetDefault("vendors.moralis_url", "https://deep-index.moralis.io/api/v2.2")
	v.SetDefault("vendors.indexer_chain", "eth")
	v.SetDefault("vendors.http_timeout", "10s")
	v.SetDefault("vendors.max_retry_elapsed", "30s")
	v.SetDefault("rate_limit.requests_per_second", 4)
	v.SetDefault("rate_limit.burst", 4)
	v.SetDefault("rate_limit.distributed", false)
	v.SetDefault("rate_limit.pool_size", 16)
	v.SetDefault("feeds.wallet_interval", "15s")
	v.SetDefault("feeds.live_interval", "30s")
	v.SetDefault("feeds.sidebar_interval", "45s")
	v.SetDefault("feeds.limit_per_category", 20)
	v.SetDefault("feeds.max_feeds", 1000)
	v.SetDefault("feeds.aggregator_concurrency", 64)
	v.SetDefault("auction.tick", "1s")
	v.SetDefault("pubsub.driver", PubSubDriverMemory)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.channel_prefix", "bids:")
	v.SetDefault("nats.subject_prefix", "bids.")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "ff-storefront")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg StorefrontConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *StorefrontConfig) validate() error {
	if len(c.URI.IPFSGateways) == 0 {
		return errors.New("uri.ipfs_gateways must not be empty")
	}
	switch c.PubSub.Driver {
	case PubSubDriverMemory, PubSubDriverRedis, PubSubDriverNATS:
	default:
		return fmt.Errorf("unknown pubsub.driver %q", c.PubSub.Driver)
	}
	if c.Auction.Tick <= 0 {
		return errors.New("auction.tick must be positive")
	}
	if c.Feeds.WalletInterval <= 0 || c.Feeds.LiveInterval <= 0 || c.Feeds.SidebarInterval <= 0 {
		return errors.New("feeds intervals must be positive")
	}
	if c.Feeds.AggregatorConcurrency <= 0 {
		return errors.New("feeds.aggregator_concurrency must be positive")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		// URI
		"uri.ipfs_gateways",
		"uri.probe_timeout",
		// Vendors
		"vendors.opensea_url",
		"vendors.opensea_api_key",
		"vendors.moralis_url",
		"vendors.moralis_api_key",
		"vendors.indexer_chain",
		"vendors.http_timeout",
		"vendors.max_retry_elapsed",
		// Rate limit
		"rate_limit.requests_per_second",
		"rate_limit.burst",
		"rate_limit.distributed",
		"rate_limit.pool_size",
		// Feeds
		"feeds.wallet_interval",
		"feeds.live_interval",
		"feeds.sidebar_interval",
		"feeds.limit_per_category",
		"feeds.max_feeds",
		"feeds.aggregator_concurrency",
		// Auction
		"auction.tick",
		// PubSub
		"pubsub.driver",
		"redis.addr",
		"redis.password",
		"redis.db",
		"redis.channel_prefix",
		"nats.url",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Configured reports whether enough database settings exist to open a connection
func (c *DatabaseConfig) Configured() bool {
	return c.Host != "" && c.DBName != ""
}

// Interval returns the refresh period for a feed class
func (c *FeedsConfig) Interval(class string) (time.Duration, bool) {
	switch class {
	case "wallet":
		return c.WalletInterval, true
	case "live":
		return c.LiveInterval, true
	case "sidebar":
		return c.SidebarInterval, true
	default:
		return 0, false
	}
}
