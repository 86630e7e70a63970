package statuspush

import (
	"context"
	"errors"
	"time"

	"farmwatch/internal/metrics"
	"farmwatch/internal/statuspush/platforms"

	"github.com/rs/zerolog/log"
)

var (
	errCircuitOpen     = errors.New("circuit_open")
	errUnknownPlatform = errors.New("unknown_platform")
)

// runWorker drains the dispatch queue until the manager stops.
func (m *Manager) runWorker(ctx context.Context) {
	for {
		var job pushJob
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case job = <-m.dispatchCh:
		}
		metrics.SetPushQueueLen(len(m.dispatchCh))
		m.settle(job, m.deliver(ctx, job))
	}
}

// deliver makes a single send attempt.
func (m *Manager) deliver(ctx context.Context, job pushJob) error {
	adapter, ok := m.adapters[job.Target.Platform]
	if !ok {
		return errUnknownPlatform
	}
	key := job.key()
	if !m.breaker.allow(key, time.Now()) {
		return errCircuitOpen
	}
	if err := adapter.Send(ctx, job.Target.Endpoint, job.Target.Secret, toPlatformMessage(job.Formatted)); err != nil {
		if m.breaker.failure(key, time.Now()) {
			log.Warn().Err(err).Str("platform", job.Target.Platform).Dur("cooldown", m.cfg.CircuitOpenDuration).Msg("push_circuit_opened")
		}
		return err
	}
	m.breaker.success(key)
	return nil
}

// settle accounts for one attempt. Failed attempts are retried with
// backoff until RetryMax; a panel whose job is given up stays dirty so
// the next publish sends it again.
func (m *Manager) settle(job pushJob, err error) {
	switch {
	case err == nil:
		metrics.IncPush(metrics.PushSent)
		m.markPanelDeliverySuccess(job)
		return
	case errors.Is(err, errUnknownPlatform):
		metrics.IncPush(metrics.PushDropped)
		log.Warn().Str("platform", job.Target.Platform).Msg("push_platform_unknown")
		m.markPanelDeliveryDropped(job)
		return
	case errors.Is(err, errCircuitOpen):
		metrics.IncPush(metrics.PushCircuitOpen)
	default:
		metrics.IncPush(metrics.PushFailed)
	}

	if job.Attempt >= m.cfg.RetryMax {
		metrics.IncPush(metrics.PushRetryDropped)
		log.Warn().Err(err).Str("panel", string(job.Formatted.Panel)).Int("attempt", job.Attempt).Msg("push_dropped")
		m.markPanelDeliveryDropped(job)
		return
	}
	m.retryLater(job)
}

func (m *Manager) retryLater(job pushJob) {
	job.Attempt++
	metrics.IncPush(metrics.PushRetry)
	time.AfterFunc(backoff(m.cfg.RetryBase, job.Attempt), func() {
		select {
		case <-m.done:
		case m.dispatchCh <- job:
			metrics.SetPushQueueLen(len(m.dispatchCh))
		}
	})
}

// backoff is base for the first retry and doubles for each one after.
func backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 1 {
		return base
	}
	return base << (attempt - 1)
}

func toPlatformMessage(msg FormattedMessage) platforms.Message {
	out := platforms.Message{
		PanelKey:    string(msg.Panel),
		Title:       msg.Title,
		Content:     msg.Content,
		Description: msg.Description,
		Color:       msg.Color,
		Timestamp:   msg.Timestamp,
		Footer:      msg.Footer,
		ImageURL:    msg.ImageURL,
		Fields:      make([]platforms.Field, len(msg.Fields)),
	}
	for i, f := range msg.Fields {
		out.Fields[i] = platforms.Field(f)
	}
	return out
}
