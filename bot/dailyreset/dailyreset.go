// Package dailyreset zeroes per-day counters once the local day rolls over.
package dailyreset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/signalbot/bot/session"
	"github.com/m3rciful/signalbot/core/logger"

	// The reset zone must resolve on hosts without a tz database.
	_ "time/tzdata"
)

// Result counts what one sweep did.
type Result struct {
	Checked int
	Reset   int
	Skipped int
	Failed  int
}

// Sweep resets every record whose lastSignalDate is not today. Records
// already stamped today are left alone, so repeated sweeps are harmless.
func Sweep(ctx context.Context, store session.Store, today string) (Result, error) {
	var res Result
	listings, err := store.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("dailyreset: list records: %w", err)
	}
	for _, l := range listings {
		res.Checked++
		if l.Err != nil {
			res.Failed++
			logger.Warn(ctx, "reset", "reset.read_failed", slog.Int64("user_id", l.UserID), slog.Any("err", l.Err))
			continue
		}
		if l.Record.LastSignalDate == today {
			res.Skipped++
			continue
		}
		l.Record.ResetDaily(today)
		if err := store.Put(ctx, l.UserID, l.Record); err != nil {
			res.Failed++
			logger.Warn(ctx, "reset", "reset.write_failed", slog.Int64("user_id", l.UserID), slog.Any("err", err))
			continue
		}
		res.Reset++
	}
	return res, nil
}

// NextRun returns the first hour:minute in now's zone strictly after now.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

// Scheduler runs Sweep once at start and then daily at a fixed local time.
type Scheduler struct {
	store  session.Store
	clock  session.Clock
	hour   int
	minute int

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewScheduler builds a scheduler firing at hour:minute on clock's zone.
func NewScheduler(store session.Store, clock session.Clock, hour, minute int) *Scheduler {
	return &Scheduler{
		store:  store,
		clock:  clock,
		hour:   hour,
		minute: minute,
		stopCh: make(chan struct{}),
	}
}

// Start launches the loop. The first sweep catches up on a reset missed
// while the bot was down.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunOnce("startup")
		s.loop()
	}()
}

// Stop ends the loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	for {
		now := s.clock.Now()
		next := NextRun(now, s.hour, s.minute)
		logger.Debug(context.Background(), "reset", "reset.scheduled", slog.Time("at", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
		case <-s.stopCh:
			timer.Stop()
			return
		}
		s.RunOnce("schedule")
	}
}

// RunOnce performs one sweep for the current local day and logs it.
func (s *Scheduler) RunOnce(trigger string) Result {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	today := s.clock.Today()
	res, err := Sweep(ctx, s.store, today)
	attrs := []slog.Attr{
		slog.String("trigger", trigger),
		slog.String("day", today),
		slog.Int("total", res.Checked),
		slog.Int("reset", res.Reset),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		logger.Error(ctx, "reset", "reset.sweep", append(attrs, slog.Any("err", err))...)
		return res
	}
	logger.Info(ctx, "reset", "reset.sweep", attrs...)
	return res
}
