package handlers

import (
	"log/slog"

	"github.com/m3rciful/signalbot/bot/render"
	"github.com/m3rciful/signalbot/bot/session"
	"github.com/m3rciful/signalbot/core/logger"
	tghelpers "github.com/m3rciful/signalbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// DenyCommand answers a non-admin calling an admin command.
func (h *Handlers) DenyCommand(c tele.Context) error {
	return c.Send(render.AccessDenied)
}

// DenyCallback answers a non-admin pressing an admin button.
func (h *Handlers) DenyCallback(c tele.Context) error {
	return tghelpers.Alert(c, render.AccessDeniedAlert)
}

func (h *Handlers) AdminPanel(c tele.Context) error {
	return send(c, render.AdminPanel())
}

// BroadcastStart arms capture of the admin's next message.
func (h *Handlers) BroadcastStart(c tele.Context) error {
	rec, err := record(c)
	if err != nil {
		return err
	}
	rec.AdminBroadcastMode = true
	return c.Send(render.BroadcastPrompt)
}

func (h *Handlers) ResetConfirm(c tele.Context) error {
	return send(c, render.ResetConfirm())
}

// ResetExecute zeroes the daily counters of every record.
func (h *Handlers) ResetExecute(c tele.Context) error {
	rec, err := record(c)
	if err != nil {
		return err
	}
	if err := c.Send(render.ResetStarted); err != nil {
		return err
	}
	rep, err := h.admin.ResetAll(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	// The caller's own record is saved after this handler; keep it in
	// step with the stored copy.
	rec.ResetDaily(h.clock.Today())
	return c.Send(render.ResetDone(rep.Reset, rep.Failed))
}

// Cancel leaves any pending admin action.
func (h *Handlers) Cancel(c tele.Context) error {
	if rec := session.From(c); rec != nil {
		rec.AdminBroadcastMode = false
	}
	return c.Send(render.ActionCancelled)
}

func (h *Handlers) GlobalStats(c tele.Context) error {
	stats, err := h.admin.Stats(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	return send(c, render.GlobalStats(stats))
}

// Capturing reports whether the sender is an admin with a broadcast armed.
func (h *Handlers) Capturing(c tele.Context) bool {
	rec := session.From(c)
	if rec == nil || !rec.AdminBroadcastMode || c.Sender() == nil {
		return false
	}
	return h.admin.IsAdmin(c.Sender().ID)
}

// Capture copies the captured message to every other user.
func (h *Handlers) Capture(c tele.Context) error {
	rec, err := record(c)
	if err != nil {
		return err
	}
	rec.AdminBroadcastMode = false
	if err := c.Send(render.BroadcastStarted); err != nil {
		return err
	}

	ctx := tghelpers.BuildContext(c)
	rep, err := h.admin.Broadcast(ctx, c.Sender().ID, c.Message())
	if err != nil {
		logger.Error(ctx, "admin", "broadcast.aborted", slog.Any("err", err))
	}
	return c.Send(render.BroadcastDone(rep.Sent, rep.Failed))
}
