package statuspush

import (
	"slices"
	"time"
)

// Panel names a chat message that is kept up to date in place.
type Panel string

const (
	PanelServerStatus Panel = "server_status"
	PanelTopWeek      Panel = "top_week"
	PanelTopLastWeek  Panel = "top_last_week"
	PanelTopTotal     Panel = "top_total"

	PanelFieldsStatus       Panel = "fields_status"
	PanelVehicleMaintenance Panel = "vehicle_maintenance"
)

var AllPanels = []Panel{
	PanelServerStatus,
	PanelTopWeek,
	PanelTopLastWeek,
	PanelTopTotal,
	PanelFieldsStatus,
	PanelVehicleMaintenance,
}

func (p Panel) Valid() bool {
	return slices.Contains(AllPanels, p)
}

// PushTarget is one webhook. An empty Panels list receives every panel.
type PushTarget struct {
	Platform string   `json:"platform" yaml:"platform"`
	Endpoint string   `json:"endpoint" yaml:"endpoint"`
	Secret   string   `json:"secret" yaml:"secret"`
	Panels   []string `json:"panels" yaml:"panels"`
	Enabled  bool     `json:"enabled" yaml:"enabled"`
}

// Wants reports whether the target carries panel p.
func (t PushTarget) Wants(p Panel) bool {
	return t.Enabled && (len(t.Panels) == 0 || slices.Contains(t.Panels, string(p)))
}

type Config struct {
	Enabled             bool
	ConfigPath          string
	ConfigReload        time.Duration
	Targets             []PushTarget
	Workers             int
	RetryMax            int
	RetryBase           time.Duration
	FailureThreshold    int
	CircuitOpenDuration time.Duration
	RequestTimeout      time.Duration
	DispatchBuffer      int
}

type MessageField struct {
	Name   string
	Value  string
	Inline bool
}

type FormattedMessage struct {
	Panel       Panel
	Title       string
	Content     string
	Description string
	Color       int
	Timestamp   string
	Footer      string
	ImageURL    string
	Fields      []MessageField
}

type pushJob struct {
	Target    PushTarget
	Formatted FormattedMessage
	Attempt   int
}

func (j pushJob) key() string {
	return targetKey(j.Target)
}

func (j pushJob) panelKey() string {
	return panelStateKey(j.Target, j.Formatted.Panel)
}

func targetKey(t PushTarget) string {
	return t.Platform + "|" + t.Endpoint
}

func panelStateKey(t PushTarget, p Panel) string {
	return targetKey(t) + "|" + string(p)
}
