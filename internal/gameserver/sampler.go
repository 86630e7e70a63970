package gameserver

import (
	"context"
	"fmt"
	"time"
)

// Recorder stores the players seen online at a point in time.
type Recorder interface {
	Record(ctx context.Context, names []string, at time.Time) (int64, error)
}

// Sampler polls the stats feed once per slot and records who is online.
type Sampler struct {
	api StatsSource
	rec Recorder
	now func() time.Time
}

func NewSampler(api StatsSource, rec Recorder) *Sampler {
	return &Sampler{api: api, rec: rec, now: time.Now}
}

// Run takes one sample. A fetch or parse failure records nothing.
func (s *Sampler) Run(ctx context.Context) error {
	at := s.now()
	body, err := s.api.FetchServerStats(ctx)
	if err != nil {
		return fmt.Errorf("sample players: %w", err)
	}
	names, err := ParsePlayersOnline(body)
	if err != nil {
		return fmt.Errorf("sample players: %w", err)
	}
	_, err = s.rec.Record(ctx, names, at)
	return err
}
