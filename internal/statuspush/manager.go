package statuspush

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"farmwatch/internal/metrics"
	"farmwatch/internal/statuspush/platforms"

	"github.com/rs/zerolog/log"
)

// panelState coalesces updates of one panel on one target: at most one
// send is in flight and only the newest pending render is kept.
type panelState struct {
	target   PushTarget
	latest   FormattedMessage
	dirty    bool
	inflight bool
}

type Manager struct {
	cfg      Config
	adapters map[string]platforms.Adapter
	breaker  *breaker

	dispatchCh chan pushJob
	done       chan struct{}

	mu         sync.Mutex
	started    bool
	panelByKey map[string]*panelState
}

// restorer is implemented by adapters that remember panel messages.
type restorer interface {
	Restore(ctx context.Context) (int, error)
}

// NewManager builds the push manager. messages may be nil, in which case
// panel message ids live only as long as the process.
func NewManager(cfg Config, messages platforms.MessageStore) *Manager {
	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	adapters := map[string]platforms.Adapter{
		"discord": platforms.NewDiscordAdapter(client, messages),
	}
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}

	return &Manager{
		cfg:        cfg,
		adapters:   adapters,
		breaker:    newBreaker(cfg.FailureThreshold, cfg.CircuitOpenDuration),
		dispatchCh: make(chan pushJob, cfg.DispatchBuffer),
		done:       make(chan struct{}),
		panelByKey: map[string]*panelState{},
	}
}

func (m *Manager) Enabled() bool {
	return m.cfg.Enabled && (len(m.currentTargets()) > 0 || m.cfg.ConfigPath != "")
}

func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	for name, adapter := range m.adapters {
		r, ok := adapter.(restorer)
		if !ok {
			continue
		}
		n, err := r.Restore(ctx)
		if err != nil {
			// panels are re-created on the next send
			log.Warn().Err(err).Str("platform", name).Msg("panel_messages_restore_failed")
			continue
		}
		log.Info().Str("platform", name).Int("panels", n).Msg("panel_messages_restored")
	}
	for i := 0; i < m.cfg.Workers; i++ {
		go m.runWorker(ctx)
	}
	if m.cfg.ConfigPath != "" {
		go m.watchConfigLoop(ctx)
	}
	go func() {
		<-ctx.Done()
		close(m.done)
	}()
	log.Info().Int("targets", len(m.currentTargets())).Int("workers", m.cfg.Workers).Msg("status_push_started")
	return nil
}

// Publish replaces the content of msg.Panel on every subscribed target.
// It never blocks; a panel that is still being delivered picks up the
// newest content once the current send finishes.
func (m *Manager) Publish(msg FormattedMessage) int {
	if !m.cfg.Enabled || !msg.Panel.Valid() {
		return 0
	}
	targets := subscribers(m.currentTargets(), msg.Panel)
	for _, target := range targets {
		key := panelStateKey(target, msg.Panel)
		m.mu.Lock()
		panel := m.panelByKey[key]
		if panel == nil {
			panel = &panelState{}
			m.panelByKey[key] = panel
		}
		panel.target = target
		panel.latest = msg
		panel.dirty = true
		m.mu.Unlock()
		m.flushPanel(key)
	}
	return len(targets)
}

func (m *Manager) flushPanel(key string) {
	m.mu.Lock()
	panel := m.panelByKey[key]
	if panel == nil || !panel.dirty || panel.inflight {
		m.mu.Unlock()
		return
	}
	panel.inflight = true
	panel.dirty = false
	job := pushJob{Target: panel.target, Formatted: panel.latest}
	m.mu.Unlock()

	if !m.enqueue(job) {
		metrics.IncPush(metrics.PushDropped)
		m.markPanelDeliveryDropped(job)
	}
}

func (m *Manager) markPanelDeliverySuccess(job pushJob) {
	key := job.panelKey()
	m.mu.Lock()
	panel := m.panelByKey[key]
	if panel == nil {
		m.mu.Unlock()
		return
	}
	panel.inflight = false
	pending := panel.dirty
	m.mu.Unlock()
	if pending {
		m.flushPanel(key)
	}
}

func (m *Manager) markPanelDeliveryDropped(job pushJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	panel := m.panelByKey[job.panelKey()]
	if panel == nil {
		return
	}
	panel.inflight = false
	panel.dirty = true
}

func (m *Manager) enqueue(job pushJob) bool {
	select {
	case <-m.done:
		return false
	case m.dispatchCh <- job:
		metrics.IncPush(metrics.PushQueued)
		metrics.SetPushQueueLen(len(m.dispatchCh))
		return true
	default:
		return false
	}
}

func subscribers(targets []PushTarget, p Panel) []PushTarget {
	var out []PushTarget
	for _, t := range targets {
		if t.Wants(p) {
			out = append(out, t)
		}
	}
	return out
}

func (m *Manager) currentTargets() []PushTarget {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PushTarget, len(m.cfg.Targets))
	copy(out, m.cfg.Targets)
	return out
}

func (m *Manager) watchConfigLoop(ctx context.Context) {
	lastRaw := ""
	if raw, err := os.ReadFile(m.cfg.ConfigPath); err == nil {
		lastRaw = strings.TrimSpace(string(raw))
	}
	ticker := time.NewTicker(m.cfg.ConfigReload)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			raw, err := os.ReadFile(m.cfg.ConfigPath)
			if err != nil {
				log.Warn().Err(err).Str("path", m.cfg.ConfigPath).Msg("push_config_reload_failed")
				continue
			}
			nextRaw := strings.TrimSpace(string(raw))
			if nextRaw == lastRaw {
				continue
			}
			targets, err := parseTargets(raw)
			if err != nil {
				log.Warn().Err(err).Str("path", m.cfg.ConfigPath).Msg("push_config_reload_failed")
				continue
			}
			m.mu.Lock()
			m.cfg.Targets = targets
			m.mu.Unlock()
			lastRaw = nextRaw
			log.Info().Int("targets", len(targets)).Msg("push_config_reloaded")
		}
	}
}
