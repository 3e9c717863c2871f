package handlers

import (
	"errors"
	"log/slog"

	"github.com/m3rciful/signalbot/bot/analysis"
	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/render"
	"github.com/m3rciful/signalbot/bot/session"
	"github.com/m3rciful/signalbot/bot/wizard"
	"github.com/m3rciful/signalbot/core/logger"
	"github.com/m3rciful/signalbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/signalbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func invalidChoice(kind catalog.Kind) *wizard.Rejection {
	return &wizard.Rejection{Reason: wizard.ReasonInvalidChoice, Kind: kind}
}

// parse splits the payload into n fields, the first being the kind.
func parse(c tele.Context, n int) (catalog.Kind, []string, bool) {
	parts, err := callbacks.PayloadParts(c, n)
	if err != nil {
		return "", nil, false
	}
	kind, ok := catalog.ParseKind(parts[0])
	if !ok {
		return "", nil, false
	}
	return kind, parts[1:], true
}

// step runs one wizard transition against the record. On success the new
// selection is written back; on rejection the user is told why and false
// is returned.
func (h *Handlers) step(c tele.Context, rec *session.Record, kind catalog.Kind, ev wizard.Event) (wizard.State, bool, error) {
	gate := wizard.NewGate(rec, h.policy, h.clock.Now())
	next, err := h.machine.Transition(wizard.FromRecord(rec), ev, gate)
	if err == nil {
		wizard.Apply(rec, next)
		return next, true, nil
	}

	var rej *wizard.Rejection
	if !errors.As(err, &rej) {
		return nil, false, err
	}
	logger.Debug(tghelpers.BuildContext(c), "wizard", "wizard.rejected",
		slog.String("kind", string(kind)),
		slog.String("reason", string(rej.Reason)),
	)
	return nil, false, h.reject(c, rec, rej)
}

// reject alerts the user. Guard failures leave the selection alone; a
// broken selection is dropped and the main menu shown again.
func (h *Handlers) reject(c tele.Context, rec *session.Record, rej *wizard.Rejection) error {
	_ = tghelpers.Alert(c, render.Rejection(rej))
	switch rej.Reason {
	case wizard.ReasonIncomplete, wizard.ReasonInvalidChoice:
		rec.ClearSelection()
		return send(c, h.render.MainMenu(rec, render.RetryNotice))
	}
	return nil
}

// Begin opens the market step for the kind in the payload.
func (h *Handlers) Begin(c tele.Context) error {
	rec, err := record(c)
	if err != nil {
		return err
	}
	kind, ok := catalog.ParseKind(callbacks.CallbackPayload(c))
	if !ok {
		return h.reject(c, rec, invalidChoice(catalog.KindSignal))
	}
	if _, ok, err := h.step(c, rec, kind, wizard.Begin{Kind: kind}); !ok {
		return err
	}
	return show(c, h.render.MarketPrompt(kind))
}

// PickMarket stores the market and opens the symbol step.
func (h *Handlers) PickMarket(c tele.Context) error {
	rec, err := record(c)
	if err != nil {
		return err
	}
	kind, rest, ok := parse(c, 2)
	if !ok {
		return h.reject(c, rec, invalidChoice(catalog.KindSignal))
	}
	market := rest[0]
	if _, ok, err := h.step(c, rec, kind, wizard.PickMarket{Kind: kind, Market: market}); !ok {
		return err
	}
	return show(c, h.render.SymbolPrompt(kind, market))
}

// PickSymbol stores the symbol and opens the timeframe step.
func (h *Handlers) PickSymbol(c tele.Context) error {
	rec, err := record(c)
	if err != nil {
		return err
	}
	kind, rest, ok := parse(c, 3)
	if !ok {
		return h.reject(c, rec, invalidChoice(catalog.KindSignal))
	}
	ev := wizard.PickSymbol{Kind: kind, Market: rest[0], Symbol: rest[1]}
	if _, ok, err := h.step(c, rec, kind, ev); !ok {
		return err
	}
	return show(c, h.render.TimeframePrompt(kind, ev.Market, ev.Symbol))
}

// PickTimeframe completes the selection and dispatches it. Counters move
// only when the webhook accepted the request; the selection is cleared
// and the main menu re-sent whatever the outcome.
func (h *Handlers) PickTimeframe(c tele.Context) error {
	rec, err := record(c)
	if err != nil {
		return err
	}
	kind, rest, ok := parse(c, 2)
	if !ok {
		return h.reject(c, rec, invalidChoice(catalog.KindSignal))
	}
	next, ok, err := h.step(c, rec, kind, wizard.PickTimeframe{Kind: kind, Timeframe: rest[0]})
	if !ok {
		return err
	}
	ready := next.(wizard.Ready)

	ai, known := h.policy.AI(ready.AI)
	if !known {
		return h.reject(c, rec, &wizard.Rejection{Reason: wizard.ReasonNoAI, Kind: kind})
	}

	_ = tghelpers.Toast(c, render.DispatchToast(kind))
	defer func() {
		rec.ClearSelection()
		_ = send(c, h.render.MainMenu(rec, ""))
	}()

	job := analysis.Job{
		Kind:       kind,
		UserID:     c.Sender().ID,
		AI:         ai,
		Market:     ready.Market,
		Symbol:     ready.Symbol,
		Timeframe:  ready.Timeframe,
		Indicators: h.policy.Tier(rec.Tier).Indicators,
		OnSuccess: func(*analysis.Result) {
			rec.RecordSuccess(kind, ai.ID, ready.Market, h.clock.Now(), h.clock.Today())
		},
	}
	_, err = h.dispatcher.Run(tghelpers.BuildContext(c), c.Chat(), job)
	return err
}
