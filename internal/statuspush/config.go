package statuspush

import (
	"fmt"
	"os"
	"strings"
	"time"

	"farmwatch/internal/config"

	"gopkg.in/yaml.v3"
)

func ConfigFromPush(cfg config.PushConfig) (Config, error) {
	out := Config{
		Enabled:             cfg.Enabled,
		ConfigPath:          strings.TrimSpace(cfg.ConfigPath),
		ConfigReload:        cfg.ConfigReload,
		Workers:             cfg.Workers,
		RetryMax:            cfg.RetryMax,
		RetryBase:           cfg.RetryBase,
		FailureThreshold:    cfg.FailureThreshold,
		CircuitOpenDuration: cfg.CircuitOpenDuration,
		RequestTimeout:      cfg.RequestTimeout,
		DispatchBuffer:      64,
	}
	if !out.Enabled {
		return out, nil
	}

	if out.Workers <= 0 {
		out.Workers = 2
	}
	if out.RetryMax < 0 {
		out.RetryMax = 0
	}
	if out.RetryBase <= 0 {
		out.RetryBase = 500 * time.Millisecond
	}
	if out.ConfigReload <= 0 {
		out.ConfigReload = 30 * time.Second
	}

	if out.ConfigPath != "" {
		raw, err := os.ReadFile(out.ConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("read push config path %q: %w", out.ConfigPath, err)
		}
		targets, err := parseTargets(raw)
		if err != nil {
			return Config{}, err
		}
		out.Targets = targets
		return out, nil
	}
	if url := strings.TrimSpace(cfg.WebhookURL); url != "" {
		out.Targets = []PushTarget{{Platform: "discord", Endpoint: url, Enabled: true}}
	}
	return out, nil
}

// parseTargets reads a YAML or JSON list of targets and keeps the
// enabled ones that name an endpoint.
func parseTargets(raw []byte) ([]PushTarget, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}
	var targets []PushTarget
	if err := yaml.Unmarshal(raw, &targets); err != nil {
		return nil, fmt.Errorf("parse push targets: %w", err)
	}
	filtered := make([]PushTarget, 0, len(targets))
	for _, target := range targets {
		target.Platform = strings.ToLower(strings.TrimSpace(target.Platform))
		if target.Platform == "" {
			target.Platform = "discord"
		}
		target.Endpoint = strings.TrimSpace(target.Endpoint)
		if target.Endpoint == "" || !target.Enabled {
			continue
		}
		panels := make([]string, 0, len(target.Panels))
		for _, p := range target.Panels {
			p = strings.ToLower(strings.TrimSpace(p))
			if Panel(p).Valid() {
				panels = append(panels, p)
			}
		}
		if len(target.Panels) > 0 && len(panels) == 0 {
			continue
		}
		target.Panels = panels
		filtered = append(filtered, target)
	}
	return filtered, nil
}
