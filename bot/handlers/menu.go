package handlers

import (
	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/render"
	"github.com/m3rciful/signalbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/signalbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const unknownText = "🤔 I didn't get that. Use /menu to open the main menu or /help for the guide."

// Start greets the user.
func (h *Handlers) Start(c tele.Context) error {
	if _, err := leave(c); err != nil {
		return err
	}
	return send(c, h.render.Welcome())
}

// Help sends the guide.
func (h *Handlers) Help(c tele.Context) error {
	if _, err := leave(c); err != nil {
		return err
	}
	return send(c, h.render.Help())
}

// Menu sends the main menu as a new message.
func (h *Handlers) Menu(c tele.Context) error {
	rec, err := leave(c)
	if err != nil {
		return err
	}
	return send(c, h.render.MainMenu(rec, ""))
}

// Status sends the plan status.
func (h *Handlers) Status(c tele.Context) error {
	rec, err := leave(c)
	if err != nil {
		return err
	}
	return send(c, h.render.PlanStatus(rec))
}

// UnknownText answers free text that matched nothing.
func (h *Handlers) UnknownText(c tele.Context) error {
	return c.Send(unknownText)
}

func (h *Handlers) MenuButton(c tele.Context) error {
	rec, err := leave(c)
	if err != nil {
		return err
	}
	return show(c, h.render.MainMenu(rec, ""))
}

func (h *Handlers) AIMenu(c tele.Context) error {
	rec, err := leave(c)
	if err != nil {
		return err
	}
	return show(c, h.render.AIMenu(rec))
}

// UseAI selects the model in the payload. A model above the user's tier
// is treated like a locked button.
func (h *Handlers) UseAI(c tele.Context) error {
	rec, err := leave(c)
	if err != nil {
		return err
	}
	ai, ok := h.policy.AI(callbacks.CallbackPayload(c))
	if !ok {
		return tghelpers.Alert(c, render.Rejection(invalidChoice(catalog.KindSignal)))
	}
	if !h.policy.TierAllowsAI(rec.Tier, ai.ID) {
		return h.locked(c, ai)
	}
	rec.SelectedAI = ai.ID
	_ = tghelpers.Toast(c, h.render.AISelected(ai))
	return show(c, h.render.MainMenu(rec, ""))
}

func (h *Handlers) LockedAI(c tele.Context) error {
	ai, ok := h.policy.AI(callbacks.CallbackPayload(c))
	if !ok {
		return tghelpers.Alert(c, render.Rejection(invalidChoice(catalog.KindSignal)))
	}
	return h.locked(c, ai)
}

func (h *Handlers) locked(c tele.Context, ai catalog.AI) error {
	_ = tghelpers.Alert(c, h.render.AILockedAlert(ai))
	return send(c, h.render.AILocked(ai))
}

func (h *Handlers) PlanStatus(c tele.Context) error {
	rec, err := leave(c)
	if err != nil {
		return err
	}
	return show(c, h.render.PlanStatus(rec))
}

func (h *Handlers) Stats(c tele.Context) error {
	rec, err := leave(c)
	if err != nil {
		return err
	}
	return show(c, h.render.Stats(rec))
}

func (h *Handlers) UpgradeMenu(c tele.Context) error {
	rec, err := leave(c)
	if err != nil {
		return err
	}
	return show(c, h.render.UpgradeMenu(rec))
}

// Upgrade switches the tier when self-upgrade is enabled. Otherwise the
// press only reopens the upgrade menu, whose buttons link out.
func (h *Handlers) Upgrade(c tele.Context) error {
	rec, err := leave(c)
	if err != nil {
		return err
	}
	if !h.render.SelfUpgrade {
		return show(c, h.render.UpgradeMenu(rec))
	}
	tier := callbacks.CallbackPayload(c)
	if tier != catalog.TierPremium && tier != catalog.TierPro {
		return tghelpers.Alert(c, render.Rejection(invalidChoice(catalog.KindSignal)))
	}
	rec.SetTier(tier, h.clock.Today())
	_ = tghelpers.Toast(c, h.render.Upgraded(tier))
	return show(c, h.render.MainMenu(rec, ""))
}
