package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// GameConfig describes how the dedicated server is reached.
type GameConfig struct {
	APIBaseURL string `env:"GAME_API_BASE_URL"`
	APICode    string `env:"GAME_API_CODE"`

	FTPHost        string        `env:"FTP_HOST"`
	FTPPort        int           `env:"FTP_PORT" envDefault:"21"`
	FTPUser        string        `env:"FTP_USER"`
	FTPPass        string        `env:"FTP_PASS"`
	FTPSavegameDir string        `env:"FTP_SAVEGAME_DIR" envDefault:"savegame1"`
	FTPCacheTTL    time.Duration `env:"FTP_CACHE_TTL" envDefault:"5m"`
	FTPCacheSize   int           `env:"FTP_CACHE_SIZE" envDefault:"16"`

	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	StatusInterval  time.Duration `env:"FTP_POLL_INTERVAL" envDefault:"30m"`
	APIPollInterval time.Duration `env:"API_POLL_INTERVAL" envDefault:"15m"`

	FarmID string `env:"FARM_ID" envDefault:"1"`
	// VehicleCatalog names a YAML or JSON list with vehicle names and tanks.
	VehicleCatalog string `env:"GAME_VEHICLE_CATALOG"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}

// FTPEnabled reports whether savegame files can be fetched.
func (c GameConfig) FTPEnabled() bool {
	return c.FTPHost != ""
}

// APIEnabled reports whether the web stats feed is configured.
func (c GameConfig) APIEnabled() bool {
	return c.APIBaseURL != ""
}
