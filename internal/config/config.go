package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the scraper
type Config struct {
	Property24    Property24Config
	Proxy         ProxyConfig
	Fetch         FetchConfig
	Output        OutputConfig
	Redis         RedisConfig
	Postgres      PostgresConfig
	Elasticsearch ESConfig
}

type Property24Config struct {
	// Search URL template with a %d page-number placeholder
	SearchURLTemplate string
	MaxPages          int
	BatchSize         int
	// Inter-batch delay ranges, per phase
	PageDelayMin    time.Duration
	PageDelayMax    time.Duration
	ListingDelayMin time.Duration
	ListingDelayMax time.Duration
}

// ProxyConfig carries the rotating-proxy credentials. All four parts must be
// set for the proxy to be used.
type ProxyConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

// URL assembles the proxy URL, or returns "" when any part is missing.
func (p ProxyConfig) URL() string {
	if p.Username == "" || p.Password == "" || p.Host == "" || p.Port == "" {
		return ""
	}
	return fmt.Sprintf("http://%s:%s@%s:%s", p.Username, p.Password, p.Host, p.Port)
}

type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
}

type OutputConfig struct {
	// Path of the JSON artifact
	Path string
}

// RedisConfig enables the shared dedup registry when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PostgresConfig enables the Postgres sink when ConnectionString is set.
type PostgresConfig struct {
	ConnectionString string
	TableName        string
}

// ESConfig enables the Elasticsearch sink when URL is set.
type ESConfig struct {
	URL   string
	Index string
}

// Load creates a Config from environment variables with defaults
func Load() *Config {
	return &Config{
		Property24: Property24Config{
			SearchURLTemplate: getEnv("P24_SEARCH_URL_TEMPLATE", "https://www.property24.com/for-sale/gauteng/1/p%d"),
			MaxPages:          getEnvInt("P24_MAX_PAGES", 10),
			BatchSize:         getEnvInt("P24_BATCH_SIZE", 10),
			PageDelayMin:      getEnvDuration("P24_PAGE_DELAY_MIN_MS", 3000),
			PageDelayMax:      getEnvDuration("P24_PAGE_DELAY_MAX_MS", 6000),
			ListingDelayMin:   getEnvDuration("P24_LISTING_DELAY_MIN_MS", 5000),
			ListingDelayMax:   getEnvDuration("P24_LISTING_DELAY_MAX_MS", 10000),
		},
		Proxy: ProxyConfig{
			Username: getEnv("PROXY_USERNAME", ""),
			Password: getEnv("PROXY_PASSWORD", ""),
			Host:     getEnv("PROXY_HOST", ""),
			Port:     getEnv("PROXY_PORT", ""),
		},
		Fetch: FetchConfig{
			Timeout:   getEnvDuration("FETCH_TIMEOUT_MS", 30000),
			UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
		Output: OutputConfig{
			Path: getEnv("OUTPUT_PATH", "gauteng_listings.json"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			ConnectionString: getEnv("POSTGRES_URL", ""),
			TableName:        getEnv("POSTGRES_TABLE", "p24_listings"),
		},
		Elasticsearch: ESConfig{
			URL:   getEnv("ELASTICSEARCH_URL", ""),
			Index: getEnv("ELASTICSEARCH_INDEX", "p24-listings"),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}
