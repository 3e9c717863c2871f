package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/render"
	"github.com/m3rciful/signalbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Analyzer performs one analysis call.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

// Messenger sends and edits chat messages. *tele.Bot satisfies it.
type Messenger interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
	Edit(msg tele.Editable, what any, opts ...any) (*tele.Message, error)
}

// Job is a completed wizard selection ready for dispatch.
type Job struct {
	Kind       catalog.Kind
	UserID     int64
	AI         catalog.AI
	Market     string
	Symbol     string
	Timeframe  string
	Indicators []string
	// OnSuccess runs once, right after the webhook accepted the request
	// and before the remaining progress edits.
	OnSuccess func(*Result)
}

func (j Job) view() render.Request {
	return render.Request{Kind: j.Kind, AIName: j.AI.Name, Market: j.Market, Symbol: j.Symbol, Timeframe: j.Timeframe}
}

// Dispatcher runs jobs against an Analyzer and reports progress in chat.
type Dispatcher struct {
	analyzer    Analyzer
	msgr        Messenger
	stageDelay  time.Duration
	planDetails string
}

// NewDispatcher builds a Dispatcher. stageDelay paces the progress
// edits; zero edits as soon as each milestone is reached.
func NewDispatcher(a Analyzer, m Messenger, stageDelay time.Duration, planDetails string) *Dispatcher {
	return &Dispatcher{analyzer: a, msgr: m, stageDelay: stageDelay, planDetails: planDetails}
}

// SetMessenger attaches the messenger once the bot exists.
func (d *Dispatcher) SetMessenger(m Messenger) {
	d.msgr = m
}

func (d *Dispatcher) pace(ctx context.Context) {
	if d.stageDelay <= 0 {
		return
	}
	t := time.NewTimer(d.stageDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (d *Dispatcher) edit(ctx context.Context, msg *tele.Message, text string, opts ...any) {
	if _, err := d.msgr.Edit(msg, text, opts...); err != nil {
		logger.Debug(ctx, "analysis", "dispatch.edit_failed", slog.Any("err", err))
	}
}

// Run dispatches job and drives the status message through its stages:
// 0/3 when sent, 1/3 before the call, 2/3 once the webhook answered and
// 3/3 when done. On failure the status message shows the error. The
// returned error is the dispatch failure, if any.
func (d *Dispatcher) Run(ctx context.Context, chat tele.Recipient, job Job) (*Result, error) {
	view := job.view()
	md := &tele.SendOptions{ParseMode: tele.ModeMarkdown}

	if _, err := d.msgr.Send(chat, render.DispatchIntro(view), md); err != nil {
		return nil, err
	}
	status, err := d.msgr.Send(chat, render.Stage(view, 0), md)
	if err != nil {
		return nil, err
	}

	d.pace(ctx)
	d.edit(ctx, status, render.Stage(view, 1), md)

	req := Request{
		UserID:     job.UserID,
		MarketType: job.Market,
		Symbol:     job.Symbol,
		Timeframe:  job.Timeframe,
		AI:         job.AI.ID,
		Type:       job.Kind,
		Indicators: job.Indicators,
	}
	if job.Kind == catalog.KindPlan {
		req.PlanDetails = d.planDetails
	}

	start := time.Now()
	attrs := []slog.Attr{
		slog.String("kind", string(job.Kind)),
		slog.String("ai", job.AI.ID),
		slog.String("market", job.Market),
		slog.String("symbol", job.Symbol),
		slog.String("timeframe", job.Timeframe),
	}
	res, err := d.analyzer.Analyze(ctx, req)
	if err != nil {
		failAttrs := append(attrs, slog.Duration("duration", logger.Took(start)), slog.Any("err", err))
		var se *StatusError
		if errors.As(err, &se) {
			failAttrs = append(failAttrs, slog.Int("http_code", se.Code))
		}
		logger.Warn(ctx, "analysis", "dispatch.fail", failAttrs...)

		d.edit(ctx, status, render.DispatchFailed(job.Kind, err))
		if follow := render.DispatchFollowUp(job.Kind, false); follow != "" {
			_, _ = d.msgr.Send(chat, follow)
		}
		return nil, err
	}
	logger.Info(ctx, "analysis", "dispatch.ok",
		append(attrs, slog.String("request_id", res.RequestID), slog.Duration("duration", logger.Took(start)))...)
	if job.OnSuccess != nil {
		job.OnSuccess(res)
	}

	d.pace(ctx)
	d.edit(ctx, status, render.Stage(view, 2), md)
	d.pace(ctx)
	d.edit(ctx, status, render.Stage(view, render.StageCount), md)

	if res.Text != "" {
		if _, err := d.msgr.Send(chat, res.Text); err != nil {
			logger.Warn(ctx, "analysis", "dispatch.relay_failed", slog.Any("err", err))
		}
	}
	if follow := render.DispatchFollowUp(job.Kind, true); follow != "" {
		_, _ = d.msgr.Send(chat, follow)
	}
	return res, nil
}
