package webui

import "ridehub.org/transit/internal/appconf"

const redacted = "[redacted]"

// redactedConfig hides API keys and database credentials.
func redactedConfig(cfg appconf.Config) appconf.Config {
	keys := make([]string, len(cfg.Server.APIKeys))
	for i := range keys {
		keys[i] = redacted
	}
	cfg.Server.APIKeys = keys
	if cfg.Cache.PostgresDSN != "" {
		cfg.Cache.PostgresDSN = redacted
	}
	return cfg
}
