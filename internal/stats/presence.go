package stats

import (
	"context"
	"fmt"
	"time"

	"farmwatch/internal/activity"
	"farmwatch/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Recorder turns polled player lists into presence samples.
type Recorder struct {
	repo  PresenceWriter
	clock activity.Clock
}

func NewRecorder(repo PresenceWriter, clock activity.Clock) *Recorder {
	return &Recorder{repo: repo, clock: clock}
}

// Record stores one sample per valid name in the slot containing at and
// returns how many rows were new. Repeating a call is a no-op.
func (r *Recorder) Record(ctx context.Context, names []string, at time.Time) (int64, error) {
	clean := activity.CleanNames(names)
	if len(clean) == 0 {
		log.Debug().Str("task", "presence").Time("slot", r.clock.SlotStart(at)).Msg("no_players_online")
		return 0, nil
	}
	samples := make([]activity.Sample, 0, len(clean))
	for _, name := range clean {
		samples = append(samples, activity.NewSample(name, at, r.clock))
	}
	inserted, err := r.repo.RecordSamples(ctx, samples)
	if err != nil {
		return 0, fmt.Errorf("record samples: %w", err)
	}
	metrics.AddSamplesRecorded(inserted)
	log.Info().
		Str("task", "presence").
		Time("slot", samples[0].SlotStart).
		Int("players", len(clean)).
		Int64("rows", inserted).
		Msg("presence_recorded")
	return inserted, nil
}

// Sweeper deletes samples past the retention window.
type Sweeper struct {
	repo          PresencePurger
	retentionDays int
	now           func() time.Time
}

func NewSweeper(repo PresencePurger, retentionDays int) *Sweeper {
	return &Sweeper{repo: repo, retentionDays: retentionDays, now: time.Now}
}

// Cutoff is the oldest observed_at kept at now.
func (s *Sweeper) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -s.retentionDays)
}

func (s *Sweeper) Run(ctx context.Context) error {
	cutoff := s.Cutoff(s.now())
	n, err := s.repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge presence: %w", err)
	}
	metrics.AddSamplesPurged(n)
	log.Info().Str("task", "retention").Time("cutoff", cutoff).Int64("rows", n).Msg("presence_purged")
	return nil
}
