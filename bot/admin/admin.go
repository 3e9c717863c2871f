// Package admin implements the operator utilities: broadcast, bulk
// daily reset and global statistics. Every scan visits all records and
// counts failures instead of stopping on the first bad one.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/session"
	"github.com/m3rciful/signalbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Copier re-sends an existing message to another chat. *tele.Bot
// satisfies it.
type Copier interface {
	Copy(to tele.Recipient, msg tele.Editable, opts ...any) (*tele.Message, error)
}

// Options configures a Service.
type Options struct {
	Store   session.Store
	Clock   session.Clock
	IsAdmin func(userID int64) bool
	Copier  Copier
	// Interval is the minimum gap between two broadcast sends.
	Interval time.Duration
}

// Service runs admin operations over the session store.
type Service struct {
	store    session.Store
	clock    session.Clock
	isAdmin  func(int64) bool
	copier   Copier
	interval time.Duration
}

// New builds a Service.
func New(opts Options) *Service {
	return &Service{
		store:    opts.Store,
		clock:    opts.Clock,
		isAdmin:  opts.IsAdmin,
		copier:   opts.Copier,
		interval: opts.Interval,
	}
}

// SetCopier attaches the message copier once the bot exists.
func (s *Service) SetCopier(c Copier) {
	s.copier = c
}

// IsAdmin reports whether userID may run admin operations.
func (s *Service) IsAdmin(userID int64) bool {
	return s.isAdmin != nil && s.isAdmin(userID)
}

// BroadcastReport counts broadcast deliveries.
type BroadcastReport struct {
	Sent   int
	Failed int
}

// Broadcast copies msg verbatim to every record owner except the sender.
// Unreadable records and failed sends count as failures. A cancelled ctx
// stops the loop and returns the partial report with the context error.
func (s *Service) Broadcast(ctx context.Context, from int64, msg tele.Editable) (BroadcastReport, error) {
	var rep BroadcastReport
	if s.copier == nil {
		return rep, fmt.Errorf("admin: no copier configured")
	}
	listings, err := s.store.ListAll(ctx)
	if err != nil {
		return rep, fmt.Errorf("admin: list records: %w", err)
	}

	start := time.Now()
	limiter := rate.NewLimiter(rate.Inf, 1)
	if s.interval > 0 {
		limiter = rate.NewLimiter(rate.Every(s.interval), 1)
	}
	for _, l := range listings {
		if l.UserID == from {
			continue
		}
		if l.Err != nil {
			rep.Failed++
			logger.Warn(ctx, "admin", "broadcast.read_failed", slog.Int64("user_id", l.UserID), slog.Any("err", l.Err))
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return rep, err
		}
		if _, err := s.copier.Copy(tele.ChatID(l.UserID), msg); err != nil {
			rep.Failed++
			logger.Debug(ctx, "admin", "broadcast.send_failed", slog.Int64("user_id", l.UserID), slog.Any("err", err))
			continue
		}
		rep.Sent++
	}
	logger.Info(ctx, "admin", "broadcast.done",
		slog.Int("sent", rep.Sent),
		slog.Int("failed", rep.Failed),
		slog.Duration("duration", logger.Took(start)),
	)
	return rep, nil
}

// ResetReport counts bulk reset results.
type ResetReport struct {
	Reset  int
	Failed int
}

// ResetAll zeroes both daily counters of every record and stamps today.
func (s *Service) ResetAll(ctx context.Context) (ResetReport, error) {
	var rep ResetReport
	listings, err := s.store.ListAll(ctx)
	if err != nil {
		return rep, fmt.Errorf("admin: list records: %w", err)
	}
	today := s.clock.Today()
	for _, l := range listings {
		if l.Err != nil {
			rep.Failed++
			continue
		}
		l.Record.ResetDaily(today)
		if err := s.store.Put(ctx, l.UserID, l.Record); err != nil {
			rep.Failed++
			logger.Warn(ctx, "admin", "reset.write_failed", slog.Int64("user_id", l.UserID), slog.Any("err", err))
			continue
		}
		rep.Reset++
	}
	logger.Info(ctx, "admin", "reset.done", slog.Int("reset", rep.Reset), slog.Int("failed", rep.Failed))
	return rep, nil
}

// Stats aggregates all records.
type Stats struct {
	Users    int `json:"users"`
	Freemium int `json:"freemium"`
	Premium  int `json:"premium"`
	Pro      int `json:"pro"`
	Other    int `json:"other"`
	Signals  int `json:"signals_today"`
	Plans    int `json:"trading_plans_today"`
	Failed   int `json:"unreadable"`
}

// Stats counts users per tier and sums the daily counters. Users counts
// every stored record; unreadable ones are also tallied in Failed.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	listings, err := s.store.ListAll(ctx)
	if err != nil {
		return st, fmt.Errorf("admin: list records: %w", err)
	}
	for _, l := range listings {
		st.Users++
		if l.Err != nil {
			st.Failed++
			continue
		}
		switch l.Record.Tier {
		case catalog.TierFreemium, "":
			st.Freemium++
		case catalog.TierPremium:
			st.Premium++
		case catalog.TierPro:
			st.Pro++
		default:
			st.Other++
		}
		st.Signals += l.Record.SignalCount
		st.Plans += l.Record.TradingPlanCount
	}
	return st, nil
}
