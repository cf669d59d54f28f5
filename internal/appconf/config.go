package appconf

import (
	"time"
)

// Config is the root configuration of the transit service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" validate:"gt=0,lte=65535"`
	Env         string   `yaml:"env" validate:"oneof=development test production"`
	APIKeys     []string `yaml:"apiKeys" validate:"dive,required"`
	RateLimit   int      `yaml:"rateLimit" validate:"gte=0"` // requests per second per API key, 0 disables
	CORSOrigins []string `yaml:"corsOrigins"`
}

// ProviderConfig configures access to the upstream transit provider.
type ProviderConfig struct {
	BaseURL   string        `yaml:"baseURL" validate:"required,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0,lte=30s"`
	Timezone  string        `yaml:"timezone" validate:"required"`
	RateLimit float64       `yaml:"rateLimit" validate:"gt=0"`
	Burst     int           `yaml:"burst" validate:"gt=0"`
	Language  string        `yaml:"language" validate:"omitempty,alpha,len=2"`
	MaxRadius float64       `yaml:"maxRadius" validate:"gt=0"`
}

// CacheConfig configures the query cache.
type CacheConfig struct {
	Backend       string        `yaml:"backend" validate:"oneof=memory sqlite postgres"`
	SQLitePath    string        `yaml:"sqlitePath" validate:"required_if=Backend sqlite"`
	PostgresDSN   string        `yaml:"postgresDSN" validate:"required_if=Backend postgres"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
	PurgeInterval time.Duration `yaml:"purgeInterval" validate:"gte=0"`
	TTL           TTLConfig     `yaml:"ttl"`
}

// TTLConfig holds the lifetime of cached results per query kind.
type TTLConfig struct {
	Route      time.Duration `yaml:"route" validate:"gt=0"`
	Stations   time.Duration `yaml:"stations" validate:"gt=0"`
	Nearby     time.Duration `yaml:"nearby" validate:"gt=0"`
	Departures time.Duration `yaml:"departures" validate:"gt=0"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:      4000,
			Env:       "development",
			APIKeys:   []string{"test"},
			RateLimit: 100,
		},
		Provider: ProviderConfig{
			BaseURL:   "https://efa.sta.bz.it/apb/",
			Timeout:   8 * time.Second,
			Timezone:  "Europe/Rome",
			RateLimit: 10,
			Burst:     20,
			Language:  "de",
			MaxRadius: 10000,
		},
		Cache: CacheConfig{
			Backend:       "memory",
			Timeout:       250 * time.Millisecond,
			PurgeInterval: 5 * time.Minute,
			TTL: TTLConfig{
				Route:      300 * time.Second,
				Stations:   3600 * time.Second,
				Nearby:     3600 * time.Second,
				Departures: 60 * time.Second,
			},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Environment returns the parsed server environment.
func (c Config) Environment() Environment {
	return EnvFlagToEnvironment(c.Server.Env)
}
