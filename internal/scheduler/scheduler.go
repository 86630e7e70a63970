// Package scheduler runs periodic tasks as independent loops.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmwatch/internal/activity"
	"farmwatch/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultRetryDelay = 5 * time.Second

var ErrInvalidJob = errors.New("invalid job")

// NextFunc returns the next wake time after now.
type NextFunc func(now time.Time) (time.Time, error)

type Job struct {
	Name string
	Run  func(ctx context.Context) error
	Next NextFunc
	// RunAtStart runs once before the first wait.
	RunAtStart bool
	// RetryOnError runs again after RetryDelay when an iteration fails.
	// Otherwise the job waits RetryDelay and resumes its schedule.
	RetryOnError bool
	RetryDelay   time.Duration
}

func Every(d time.Duration) NextFunc {
	return func(now time.Time) (time.Time, error) {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("%w: interval %s", ErrInvalidJob, d)
		}
		return now.Add(d), nil
	}
}

// SlotAligned wakes at each sampling slot boundary of the clock.
func SlotAligned(c activity.Clock) NextFunc {
	return func(now time.Time) (time.Time, error) {
		if c.Slice <= 0 || c.Location == nil {
			return time.Time{}, fmt.Errorf("%w: slot clock", ErrInvalidJob)
		}
		return c.NextSlot(now), nil
	}
}

// WeeklyAt wakes at each week window boundary.
func WeeklyAt(w activity.WeekWindow) NextFunc {
	return w.NextBoundary
}

// Run starts every job and blocks until ctx is cancelled and all loops
// have finished their current iteration.
func Run(ctx context.Context, jobs ...Job) error {
	for _, j := range jobs {
		if j.Name == "" || j.Run == nil || j.Next == nil {
			return fmt.Errorf("%w: %q", ErrInvalidJob, j.Name)
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		g.Go(func() error {
			loop(gctx, j)
			return nil
		})
	}
	return g.Wait()
}

func loop(ctx context.Context, j Job) {
	delay := j.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	// in-flight iterations finish even after shutdown starts
	runCtx := context.WithoutCancel(ctx)
	runNow := j.RunAtStart
	log.Info().Str("task", j.Name).Bool("run_at_start", j.RunAtStart).Msg("task_started")
	defer log.Info().Str("task", j.Name).Msg("task_stopped")

	for {
		if !runNow {
			next, err := j.Next(time.Now())
			if err != nil {
				log.Error().Err(err).Str("task", j.Name).Msg("task_schedule_failed")
				if !sleep(ctx, delay) {
					return
				}
				continue
			}
			log.Debug().Str("task", j.Name).Time("next_run", next).Msg("task_waiting")
			if !sleepUntil(ctx, next) {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		err := runOnce(runCtx, j)
		runNow = false
		if err == nil {
			continue
		}
		log.Error().Err(err).Str("task", j.Name).Dur("retry_in", delay).Msg("task_failed")
		if !sleep(ctx, delay) {
			return
		}
		runNow = j.RetryOnError
	}
}

func runOnce(ctx context.Context, j Job) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", j.Name, r)
		}
		metrics.ObserveTask(j.Name, time.Since(start), err)
	}()
	return j.Run(ctx)
}

// sleepUntil waits for the wall clock to reach target, re-checking after
// each wake so an early timer or clock step never runs a task early.
func sleepUntil(ctx context.Context, target time.Time) bool {
	for {
		d := time.Until(target)
		if d <= 0 {
			return true
		}
		if !sleep(ctx, d) {
			return false
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
