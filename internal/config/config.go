package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

const (
	EnvUAT        = "uat"
	EnvProduction = "production"

	capiKeyEnv     = "CAPI_API_KEY"
	postgresDsnEnv = "POSTGRES_DSN"
)

type Config struct {
	Environment string `yaml:"environment"` // uat, production
	Server      Server `yaml:"server"`
	CAPI        CAPI   `yaml:"capi"`
	Auth        Auth   `yaml:"auth"`
	Ingest      Ingest `yaml:"ingest"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	// QueryCacheTTLSeconds bounds the memcached read-through on the query
	// endpoint. A tombstoned collection can stay visible there for up to
	// this long.
	QueryCacheTTLSeconds int    `yaml:"queryCacheTTLSeconds"`
	EnableTrace          bool   `yaml:"enableTrace"`
	TraceEndpoint        string `yaml:"traceEndpoint"`
}

func (s Server) QueryCacheTTL() int32 {
	if s.QueryCacheTTLSeconds <= 0 {
		return 60
	}
	return int32(s.QueryCacheTTLSeconds)
}

type CAPI struct {
	BaseURL        string `yaml:"baseUrl"`
	APIKey         string `yaml:"apiKey"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout bounds the outbound collection fetch.
func (c CAPI) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type Auth struct {
	KeyHeader         string `yaml:"keyHeader"`
	UATKeyName        string `yaml:"uatKeyName"`
	ProductionKeyName string `yaml:"productionKeyName"`
	CacheTTLSeconds   int    `yaml:"cacheTTLSeconds"`
}

func (a Auth) CacheTTL() time.Duration {
	if a.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(a.CacheTTLSeconds) * time.Second
}

type Ingest struct {
	// LegacyCrops preserves the historical 5:3-into-16:9 crop routing for
	// non-video references. Defaults to on; nil means unset.
	LegacyCrops *bool `yaml:"legacyCrops"`
}

func (i Ingest) LegacyCropsEnabled() bool {
	if i.LegacyCrops == nil {
		return true
	}
	return *i.LegacyCrops
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if v := os.Getenv(capiKeyEnv); v != "" {
		config.CAPI.APIKey = v
	}
	if v := os.Getenv(postgresDsnEnv); v != "" {
		config.Server.PostgresDsn = v
	}

	config.applyDefaults()

	if config.Environment != EnvUAT && config.Environment != EnvProduction {
		return Config{}, fmt.Errorf("unknown environment: %s", config.Environment)
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvUAT
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8000"
	}
	if c.CAPI.BaseURL == "" {
		c.CAPI.BaseURL = "https://content.api.news"
	}
	if c.Auth.KeyHeader == "" {
		c.Auth.KeyHeader = "X-Api-Key"
	}
	if c.Auth.UATKeyName == "" {
		c.Auth.UATKeyName = "capi-webhook-uat"
	}
	if c.Auth.ProductionKeyName == "" {
		c.Auth.ProductionKeyName = "capi-webhook"
	}
}

// AuthKeyName resolves the environment-qualified lookup name of the inbound
// webhook secret.
func (c Config) AuthKeyName() string {
	if c.Environment == EnvProduction {
		return c.Auth.ProductionKeyName
	}
	return c.Auth.UATKeyName
}
