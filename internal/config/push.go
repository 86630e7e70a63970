package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type PushConfig struct {
	Enabled        bool          `env:"PUSH_ENABLED" envDefault:"false"`
	ConfigPath     string        `env:"PUSH_CONFIG_PATH"`
	ConfigReload   time.Duration `env:"PUSH_CONFIG_RELOAD" envDefault:"30s"`
	WebhookURL     string        `env:"PUSH_WEBHOOK_URL"`
	Workers        int           `env:"PUSH_WORKERS" envDefault:"2"`
	RetryMax       int           `env:"PUSH_RETRY_MAX" envDefault:"3"`
	RetryBase      time.Duration `env:"PUSH_RETRY_BASE" envDefault:"500ms"`
	RequestTimeout time.Duration `env:"PUSH_REQUEST_TIMEOUT" envDefault:"5s"`

	FailureThreshold    int           `env:"PUSH_FAILURE_THRESHOLD" envDefault:"3"`
	CircuitOpenDuration time.Duration `env:"PUSH_CIRCUIT_OPEN" envDefault:"30s"`
}

func LoadPush() (PushConfig, error) {
	var cfg PushConfig
	err := env.Parse(&cfg)
	return cfg, err
}
