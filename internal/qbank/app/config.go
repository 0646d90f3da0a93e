package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime configuration for the provisioning service. All
// values come from the environment; sensible defaults cover local development
// except for the identity provider credentials, which are always required.
type Config struct {
	DatabaseFile string `env:"QBANK_DATABASE_FILE" envDefault:"qbank.db"`

	Identity IdentityConfig `envPrefix:"IDENTITY_"`

	Env       string `env:"ENV"        envDefault:"dev"`  // Environment (dev, staging, prod)
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"` // Log level (debug, info, warn, error)
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // Log format (json, text)

	Port                 int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// IdentityConfig configures the connection to the external identity provider.
// JWKSURL and Issuer derive from Endpoint when left empty.
type IdentityConfig struct {
	Endpoint     string `env:"ENDPOINT,required"`
	M2MAppID     string `env:"M2M_APP_ID,required"`
	M2MAppSecret string `env:"M2M_APP_SECRET,required"`

	JWKSURL     string        `env:"JWKS_URL"`
	Issuer      string        `env:"ISSUER"`
	Audience    string        `env:"AUDIENCE"`
	JWKSRefresh time.Duration `env:"JWKS_REFRESH" envDefault:"15m"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Identity.Endpoint, "/")
	cfg.Identity.Endpoint = endpoint
	if cfg.Identity.JWKSURL == "" {
		cfg.Identity.JWKSURL = endpoint + "/oidc/jwks"
	}
	if cfg.Identity.Issuer == "" {
		cfg.Identity.Issuer = endpoint + "/oidc"
	}

	return cfg, nil
}

// DevMode reports whether development-only endpoints should be registered.
func (c Config) DevMode() bool {
	return c.Env == "dev"
}
