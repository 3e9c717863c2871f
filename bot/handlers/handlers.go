// Package handlers binds the bot's commands and buttons to the session
// record, the wizard and the admin utilities.
package handlers

import (
	"errors"
	"fmt"

	"github.com/m3rciful/signalbot/bot/admin"
	"github.com/m3rciful/signalbot/bot/analysis"
	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/render"
	"github.com/m3rciful/signalbot/bot/session"
	"github.com/m3rciful/signalbot/bot/wizard"
	tg "github.com/m3rciful/signalbot/core/telegram"
	"github.com/m3rciful/signalbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/signalbot/core/telegram/helpers"
	"github.com/m3rciful/signalbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

var errNoSession = errors.New("handlers: no session record on context")

// Options wires a Handlers.
type Options struct {
	Policy     *catalog.Policy
	Renderer   *render.Renderer
	Dispatcher *analysis.Dispatcher
	Admin      *admin.Service
	Clock      session.Clock
}

// Handlers owns every bot endpoint.
type Handlers struct {
	policy     *catalog.Policy
	render     *render.Renderer
	machine    *wizard.Machine
	dispatcher *analysis.Dispatcher
	admin      *admin.Service
	clock      session.Clock
}

// New builds Handlers.
func New(opts Options) *Handlers {
	return &Handlers{
		policy:     opts.Policy,
		render:     opts.Renderer,
		machine:    wizard.New(opts.Policy),
		dispatcher: opts.Dispatcher,
		admin:      opts.Admin,
		clock:      opts.Clock,
	}
}

// Register adds all commands and callbacks to reg.
func (h *Handlers) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{Handler: h.Start, Description: "Restart the bot"})
	reg.RegisterCommand("/menu", commands.Command{Handler: h.Menu, Description: "Open the main menu"})
	reg.RegisterCommand("/help", commands.Command{Handler: h.Help, Description: "Show the help guide"})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     h.Status,
		Description: "View your current plan and signal count",
		Aliases:     []string{"stats"},
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     h.AdminPanel,
		Description: "Admin panel",
		AdminOnly:   true,
		Hidden:      true,
	})

	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		IsAdmin:  h.admin.IsAdmin,
		OnReject: h.DenyCallback,
	})
	callbacks := map[string]tele.HandlerFunc{
		render.KeyMenu:        h.MenuButton,
		render.KeyMenuAI:      h.AIMenu,
		render.KeyUseAI:       h.UseAI,
		render.KeyLockedAI:    h.LockedAI,
		render.KeyPlanStatus:  h.PlanStatus,
		render.KeyStats:       h.Stats,
		render.KeyUpgradeMenu: h.UpgradeMenu,
		render.KeyUpgrade:     h.Upgrade,

		render.KeyBegin:     h.Begin,
		render.KeyMarket:    h.PickMarket,
		render.KeySymbol:    h.PickSymbol,
		render.KeyTimeframe: h.PickTimeframe,

		render.KeyAdminBroadcast:    adminOnly(h.BroadcastStart),
		render.KeyAdminResetConfirm: adminOnly(h.ResetConfirm),
		render.KeyAdminResetExecute: adminOnly(h.ResetExecute),
		render.KeyAdminCancel:       adminOnly(h.Cancel),
		render.KeyAdminStats:        adminOnly(h.GlobalStats),
	}
	for key, fn := range callbacks {
		if err := reg.RegisterCallback(key, fn); err != nil {
			return fmt.Errorf("register %s: %w", key, err)
		}
	}
	// Buttons from an older build land back on the main menu.
	reg.SetCallbackNotFound(h.MenuButton)
	reg.SetTextFallback(h.UnknownText)
	return nil
}

func record(c tele.Context) (*session.Record, error) {
	rec := session.From(c)
	if rec == nil {
		return nil, errNoSession
	}
	return rec, nil
}

// leave returns the record with any wizard selection dropped. Every
// screen outside the wizard goes through it, so abandoned steps never
// resume from an old keyboard.
func leave(c tele.Context) (*session.Record, error) {
	rec, err := record(c)
	if err != nil {
		return nil, err
	}
	rec.ClearSelection()
	return rec, nil
}

func send(c tele.Context, v render.View) error {
	if v.Markdown {
		return tghelpers.SendMD(c, v.Text, v.Markup)
	}
	return tghelpers.SendText(c, v.Text, v.Markup)
}

// show replaces the pressed message, or sends a new one for commands.
func show(c tele.Context, v render.View) error {
	if v.Markdown {
		return tghelpers.EditOrSendMD(c, v.Text, v.Markup)
	}
	return c.EditOrSend(v.Text, v.Options())
}
