package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	// PublicBaseURL is prepended to chart paths embedded in chat panels.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"true"`
	LogRoutes      bool `env:"LOG_ROUTES" envDefault:"false"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
