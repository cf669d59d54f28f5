package appconf

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds the configuration in layers: defaults, then the YAML file named
// by -config, then the .env file and process environment, then command-line
// flags. The result is validated.
func Load(name string, args []string, output io.Writer) (Config, error) {
	cfg, _, err := LoadWithArgs(name, args, output)
	return cfg, err
}

// LoadWithArgs is Load that also returns the arguments left after the flags.
func LoadWithArgs(name string, args []string, output io.Writer) (Config, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	var (
		configPath  string
		envFile     string
		port        int
		env         string
		apiKeys     string
		providerURL string
		backend     string
		sqlitePath  string
		logLevel    string
	)
	fs.StringVar(&configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&envFile, "env-file", ".env", "Path to a .env file; missing files are ignored")
	fs.IntVar(&port, "port", 4000, "API server port")
	fs.StringVar(&env, "env", "development", "Environment (development|test|production)")
	fs.StringVar(&apiKeys, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	fs.StringVar(&providerURL, "provider-url", "", "Base URL of the EFA provider")
	fs.StringVar(&backend, "cache-backend", "memory", "Cache backend (memory|sqlite|postgres)")
	fs.StringVar(&sqlitePath, "sqlite-path", "", "SQLite cache file")
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}

	cfg := Default()
	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return Config{}, nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, nil, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = port
		case "env":
			cfg.Server.Env = env
		case "api-keys":
			cfg.Server.APIKeys = splitList(apiKeys)
		case "provider-url":
			cfg.Provider.BaseURL = providerURL
		case "cache-backend":
			cfg.Cache.Backend = backend
		case "sqlite-path":
			cfg.Cache.SQLitePath = sqlitePath
		case "log-level":
			cfg.Log.Level = logLevel
		}
	})

	if err := Validate(cfg); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays TRANSIT_* variables. DATABASE_URL is accepted as the
// postgres DSN when TRANSIT_POSTGRES_DSN is unset.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	integer("TRANSIT_PORT", &cfg.Server.Port)
	str("TRANSIT_ENV", &cfg.Server.Env)
	if v, ok := lookup("TRANSIT_API_KEYS"); ok && v != "" {
		cfg.Server.APIKeys = splitList(v)
	}
	integer("TRANSIT_RATE_LIMIT", &cfg.Server.RateLimit)
	if v, ok := lookup("TRANSIT_CORS_ORIGINS"); ok && v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	str("TRANSIT_PROVIDER_URL", &cfg.Provider.BaseURL)
	duration("TRANSIT_PROVIDER_TIMEOUT", &cfg.Provider.Timeout)
	str("TRANSIT_PROVIDER_TIMEZONE", &cfg.Provider.Timezone)
	float("TRANSIT_PROVIDER_RATE_LIMIT", &cfg.Provider.RateLimit)
	str("TRANSIT_PROVIDER_LANGUAGE", &cfg.Provider.Language)

	str("TRANSIT_CACHE_BACKEND", &cfg.Cache.Backend)
	str("TRANSIT_SQLITE_PATH", &cfg.Cache.SQLitePath)
	str("DATABASE_URL", &cfg.Cache.PostgresDSN)
	str("TRANSIT_POSTGRES_DSN", &cfg.Cache.PostgresDSN)
	duration("TRANSIT_CACHE_TIMEOUT", &cfg.Cache.Timeout)

	str("TRANSIT_LOG_LEVEL", &cfg.Log.Level)

	return errors.Join(errs...)
}

// Validate checks cfg against its struct rules and that the provider
// timezone exists.
func Validate(cfg Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Provider.Timezone); err != nil {
		return fmt.Errorf("invalid configuration: provider timezone: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
