// Package render builds the texts and inline keyboards the bot shows.
// Nothing here talks to Telegram; handlers send the returned views.
package render

import (
	tele "gopkg.in/telebot.v4"
)

// View is a message body with its keyboard.
type View struct {
	Text     string
	Markup   *tele.ReplyMarkup
	Markdown bool
}

// Options returns the send options for the view.
func (v View) Options() *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: v.Markup}
	if v.Markdown {
		opts.ParseMode = tele.ModeMarkdown
	}
	return opts
}

// Callback unique keys. Payload fields are joined with "|".
const (
	KeyMenu        = "menu"
	KeyMenuAI      = "menu_ai"
	KeyUseAI       = "use_ai"  // payload: ai id
	KeyLockedAI    = "lock_ai" // payload: ai id
	KeyPlanStatus  = "menu_plan_status"
	KeyStats       = "menu_stats"
	KeyUpgradeMenu = "menu_upgrade"
	KeyUpgrade     = "upgrade" // payload: tier

	KeyBegin     = "begin"  // payload: kind
	KeyMarket    = "market" // payload: kind|market
	KeySymbol    = "symbol" // payload: kind|market|symbol
	KeyTimeframe = "tf"     // payload: kind|timeframe

	KeyAdminBroadcast    = "admin_broadcast_start"
	KeyAdminResetConfirm = "admin_reset_limits_confirm"
	KeyAdminResetExecute = "admin_reset_limits_execute"
	KeyAdminCancel       = "admin_cancel"
	KeyAdminStats        = "admin_show_global_stats"
)
