package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Roles a process can run as. Validate checks only the sections a role needs.
const (
	RoleGateway    = "gateway"
	RoleAuthorizer = "authorizer"
	RoleAccounts   = "accounts"
	RoleRecipes    = "recipes"
	RoleMigrate    = "migrate"
)

const (
	JWTModeHS256 = "hs256"
	JWTModeJWKS  = "jwks"

	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	minKeyLength          = 32
	maxExpirationMinutes  = 43200
	maxRefreshExpMinutes  = 525600
	defaultAuthzTimeout   = 5 * time.Second
	defaultContextTTL     = 5 * time.Minute
	defaultExpiration     = 60 * time.Minute
	defaultRefreshExpires = 10080 * time.Minute
)

type Route struct {
	Prefix   string `mapstructure:"prefix"`
	Upstream string `mapstructure:"upstream"`
	Service  string `mapstructure:"service"`
	Public   bool   `mapstructure:"public"`
}

type Config struct {
	Server struct {
		GatewayAddr         string        `mapstructure:"gateway_addr"`
		AuthorizerAddr      string        `mapstructure:"authorizer_addr"`
		AccountsAddr        string        `mapstructure:"accounts_addr"`
		RecipesAddr         string        `mapstructure:"recipes_addr"`
		Mode                string        `mapstructure:"mode"`
		ReadTimeout         time.Duration `mapstructure:"read_timeout"`
		WriteTimeout        time.Duration `mapstructure:"write_timeout"`
		PlatformInvocations bool          `mapstructure:"platform_invocations"`
	} `mapstructure:"server"`

	JWT struct {
		Mode              string        `mapstructure:"mode"`
		SecretKey         string        `mapstructure:"secret_key"`
		Issuer            string        `mapstructure:"issuer"`
		Audience          string        `mapstructure:"audience"`
		Expiration        time.Duration `mapstructure:"expiration"`
		RefreshExpiration time.Duration `mapstructure:"refresh_expiration"`
		JWKSURL           string        `mapstructure:"jwks_url"`
	} `mapstructure:"jwt"`

	Gateway struct {
		AuthorizerURL     string        `mapstructure:"authorizer_url"`
		AuthorizerTimeout time.Duration `mapstructure:"authorizer_timeout"`
		ContextSigningKey string        `mapstructure:"context_signing_key"`
		ContextTTL        time.Duration `mapstructure:"context_ttl"`
		Routes            []Route       `mapstructure:"routes"`
	} `mapstructure:"gateway"`

	Database struct {
		Driver      string `mapstructure:"driver"`
		DSN         string `mapstructure:"dsn"`
		SeedOnStart bool   `mapstructure:"seed_on_start"`
	} `mapstructure:"database"`

	Redis struct {
		URL      string        `mapstructure:"url"`
		PoolSize int           `mapstructure:"pool_size"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`

	Storage struct {
		S3 struct {
			Endpoint        string `mapstructure:"endpoint"`
			Region          string `mapstructure:"region"`
			Bucket          string `mapstructure:"bucket"`
			AccessKeyID     string `mapstructure:"access_key_id"`
			SecretAccessKey string `mapstructure:"secret_access_key"`
			PublicBaseURL   string `mapstructure:"public_base_url"`
		} `mapstructure:"s3"`
	} `mapstructure:"storage"`

	Seed struct {
		Email    string `mapstructure:"email"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"seed"`

	Observability struct {
		TraceEnabled       bool    `mapstructure:"trace_enabled"`
		TracingEndpointURL string  `mapstructure:"tracing_endpoint_url"`
		SampleRatio        float64 `mapstructure:"sample_ratio"`
		LogLevel           string  `mapstructure:"log_level"`
		Format             string  `mapstructure:"log_format"`
		LogSource          bool    `mapstructure:"log_source"`
	} `mapstructure:"observability"`

	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

// Load reads config.yaml from the given paths (./config and . when none are
// given), merges config.<APP_ENV>.yaml when present and applies RECIPEBOX_*
// environment overrides.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("RECIPEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Default().Info("No config file found, using defaults and environment")
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		if err := v.MergeInConfig(); err != nil {
			slog.Default().Info("No environment-specific config (optional)", slog.String("env", env))
		} else {
			slog.Default().Info("Environment-specific config loaded", slog.String("env", env))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// MustLoad is Load followed by Validate for role; it exits the process on error.
func MustLoad(role string, paths ...string) *Config {
	logger := slog.Default()

	cfg, err := Load(paths...)
	if err != nil {
		logger.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := cfg.Validate(role); err != nil {
		logger.Error("Invalid config", slog.String("role", role), slog.Any("error", err))
		os.Exit(1)
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.gateway_addr", ":3000")
	v.SetDefault("server.authorizer_addr", ":5003")
	v.SetDefault("server.accounts_addr", ":5001")
	v.SetDefault("server.recipes_addr", ":5002")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("jwt.mode", JWTModeHS256)
	v.SetDefault("jwt.issuer", "RecipeApp")
	v.SetDefault("jwt.audience", "RecipeAppUsers")
	v.SetDefault("jwt.expiration", defaultExpiration)
	v.SetDefault("jwt.refresh_expiration", defaultRefreshExpires)

	v.SetDefault("gateway.authorizer_url", "http://localhost:5003")
	v.SetDefault("gateway.authorizer_timeout", defaultAuthzTimeout)
	v.SetDefault("gateway.context_ttl", defaultContextTTL)
	v.SetDefault("gateway.routes", []map[string]any{
		{"prefix": "/auth/profile", "upstream": "http://localhost:5001", "service": "user", "public": false},
		{"prefix": "/auth", "upstream": "http://localhost:5001", "service": "user", "public": true},
		{"prefix": "/recipes", "upstream": "http://localhost:5002", "service": "recipe", "public": false},
	})

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "recipebox.db")

	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.cache_ttl", 5*time.Minute)

	v.SetDefault("storage.s3.region", "us-east-1")

	v.SetDefault("seed.email", "demo@example.com")
	v.SetDefault("seed.password", "DemoPassword123!")
	v.SetDefault("seed.name", "Demo User")

	v.SetDefault("observability.sample_ratio", 1.0)
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.log_format", "json")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
}

// Validate checks the sections role depends on and returns every problem found.
func (c *Config) Validate(role string) error {
	var errs []error

	needsJWT := role == RoleAuthorizer || role == RoleAccounts
	needsContextKey := role == RoleGateway || role == RoleAccounts || role == RoleRecipes
	needsDB := role == RoleAccounts || role == RoleRecipes || role == RoleMigrate

	if needsJWT {
		errs = append(errs, c.validateJWT(role)...)
	}

	if needsContextKey && len(c.Gateway.ContextSigningKey) < minKeyLength {
		errs = append(errs, fmt.Errorf("gateway.context_signing_key must be at least %d characters", minKeyLength))
	}

	if role == RoleGateway {
		if c.Gateway.AuthorizerURL == "" {
			errs = append(errs, errors.New("gateway.authorizer_url is required"))
		}
		if c.Gateway.AuthorizerTimeout <= 0 {
			errs = append(errs, errors.New("gateway.authorizer_timeout must be positive"))
		}
		if len(c.Gateway.Routes) == 0 {
			errs = append(errs, errors.New("gateway.routes must not be empty"))
		}
		for i, r := range c.Gateway.Routes {
			if !strings.HasPrefix(r.Prefix, "/") {
				errs = append(errs, fmt.Errorf("gateway.routes[%d].prefix must start with /", i))
			}
			if r.Upstream == "" {
				errs = append(errs, fmt.Errorf("gateway.routes[%d].upstream is required", i))
			}
		}
	}

	if needsDB {
		switch c.Database.Driver {
		case DriverSQLite, DriverPostgres:
		default:
			errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
		}
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required"))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) validateJWT(role string) []error {
	var errs []error

	switch c.JWT.Mode {
	case JWTModeHS256:
		if len(c.JWT.SecretKey) < minKeyLength {
			errs = append(errs, fmt.Errorf("jwt.secret_key must be at least %d characters", minKeyLength))
		}
	case JWTModeJWKS:
		if role == RoleAccounts {
			errs = append(errs, errors.New("accounts service issues tokens and requires jwt.mode hs256"))
		}
		if c.JWT.JWKSURL == "" {
			errs = append(errs, errors.New("jwt.jwks_url is required in jwks mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("jwt.mode %q is not supported", c.JWT.Mode))
	}

	if c.JWT.Issuer == "" {
		errs = append(errs, errors.New("jwt.issuer is required"))
	}
	if c.JWT.Audience == "" {
		errs = append(errs, errors.New("jwt.audience is required"))
	}
	if c.JWT.Expiration < time.Minute || c.JWT.Expiration > maxExpirationMinutes*time.Minute {
		errs = append(errs, fmt.Errorf("jwt.expiration must be between 1m and %dm", maxExpirationMinutes))
	}
	if c.JWT.RefreshExpiration < time.Minute || c.JWT.RefreshExpiration > maxRefreshExpMinutes*time.Minute {
		errs = append(errs, fmt.Errorf("jwt.refresh_expiration must be between 1m and %dm", maxRefreshExpMinutes))
	}

	return errs
}

// Addr returns the listen address configured for role.
func (c *Config) Addr(role string) string {
	switch role {
	case RoleGateway:
		return c.Server.GatewayAddr
	case RoleAuthorizer:
		return c.Server.AuthorizerAddr
	case RoleAccounts:
		return c.Server.AccountsAddr
	case RoleRecipes:
		return c.Server.RecipesAddr
	default:
		return ""
	}
}
