// Package scheduler runs a job once a day at a fixed wall-clock time.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job is the work run at each firing.
type Job func(ctx context.Context) error

// Clock abstracts time so tests can drive the scheduler.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

type Timer interface {
	C() <-chan time.Time
	Reset(d time.Duration) bool
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTimer(d time.Duration) Timer {
	return &realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (r *realTimer) C() <-chan time.Time        { return r.t.C }
func (r *realTimer) Reset(d time.Duration) bool { return r.t.Reset(d) }
func (r *realTimer) Stop() bool                 { return r.t.Stop() }

// Daily fires job at hour:minute in loc. It owns a single timer: the first
// deadline is computed once when Run starts and each firing moves it forward
// by exactly one day.
type Daily struct {
	hour   int
	minute int
	loc    *time.Location
	job    Job
	log    *zap.SugaredLogger
	clock  Clock
}

func NewDaily(hour, minute int, loc *time.Location, job Job, log *zap.SugaredLogger) *Daily {
	return &Daily{
		hour:   hour,
		minute: minute,
		loc:    loc,
		job:    job,
		log:    log,
		clock:  realClock{},
	}
}

// WithClock replaces the clock. Used in tests.
func (d *Daily) WithClock(c Clock) *Daily {
	d.clock = c
	return d
}

// Next returns the first target time strictly after now: today's if it is
// still ahead, otherwise tomorrow's.
func (d *Daily) Next(now time.Time) time.Time {
	local := now.In(d.loc)
	target := time.Date(local.Year(), local.Month(), local.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !target.After(local) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// Run blocks until ctx is done. A failing job is logged and the schedule
// continues with the next day.
func (d *Daily) Run(ctx context.Context) {
	next := d.Next(d.clock.Now())
	timer := d.clock.NewTimer(next.Sub(d.clock.Now()))
	defer timer.Stop()

	d.log.Infow("Daily sync scheduled", "next", next)

	for {
		select {
		case <-ctx.Done():
			d.log.Infow("Daily sync stopped")
			return

		case <-timer.C():
			d.log.Infow("Daily sync firing", "scheduled", next)
			if err := d.job(ctx); err != nil {
				d.log.Errorw("Daily sync failed", "error", err)
			}

			next = next.AddDate(0, 0, 1)
			// A job that overran a whole day skips the missed slots.
			if now := d.clock.Now(); !next.After(now) {
				next = d.Next(now)
			}
			timer.Reset(next.Sub(d.clock.Now()))
			d.log.Infow("Daily sync scheduled", "next", next)
		}
	}
}
