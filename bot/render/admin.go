package render

import (
	"fmt"

	"github.com/m3rciful/signalbot/bot/admin"

	"github.com/m3rciful/signalbot/core/telegram/keyboard"
)

const (
	AccessDenied      = "🚫 Access Denied: You are not an admin."
	AccessDeniedAlert = "🚫 Access Denied"
	BroadcastPrompt   = "📝 Please send the message you want to broadcast to all users. I will send it exactly as you type/send it. (e.g., text, photo, sticker)."
	BroadcastStarted  = "⏳ Broadcasting message, please wait..."
	ResetStarted      = "⏳ Resetting all daily limits, please wait..."
	ActionCancelled   = "Action cancelled."
)

// AdminPanel is the /admin entry point.
func AdminPanel() View {
	return View{
		Text: "⚙️ Admin Panel",
		Markup: keyboard.InlineButtons([]keyboard.InlineBtn{
			{Text: "📢 Broadcast Message", Unique: KeyAdminBroadcast},
			{Text: "🔄 Reset All Daily Limits", Unique: KeyAdminResetConfirm},
			{Text: "📊 Show Global Stats", Unique: KeyAdminStats},
		}),
	}
}

// ResetConfirm asks before the bulk reset.
func ResetConfirm() View {
	return View{
		Text: "⚠️ Are you sure you want to reset ALL daily signal and trading plan limits for ALL users? This action cannot be undone.",
		Markup: keyboard.InlineButtonsRows([]keyboard.InlineBtn{
			{Text: "✅ Yes, Reset All", Unique: KeyAdminResetExecute},
			{Text: "❌ No, Cancel", Unique: KeyAdminCancel},
		}),
	}
}

// BroadcastDone reports a finished broadcast.
func BroadcastDone(sent, failed int) string {
	return fmt.Sprintf("✅ Broadcast finished!\nSent to %d users. Failed for %d users.", sent, failed)
}

// ResetDone reports a finished bulk reset.
func ResetDone(reset, failed int) string {
	return fmt.Sprintf("✅ All daily limits have been reset for %d users. Failed for %d users.", reset, failed)
}

// GlobalStats renders the admin statistics. Markdown.
func GlobalStats(s admin.Stats) View {
	text := fmt.Sprintf("📊 *GLOBAL BOT STATS*\n\nTotal Users: %d\n  - Freemium: %d\n  - Premium: %d\n  - Pro: %d\n",
		s.Users, s.Freemium, s.Premium, s.Pro)
	if s.Other > 0 {
		text += fmt.Sprintf("  - Other: %d\n", s.Other)
	}
	text += fmt.Sprintf("\nTotal Signals Generated (today/since last reset): %d\nTotal Trading Plans Generated (today/since last reset): %d",
		s.Signals, s.Plans)
	if s.Failed > 0 {
		text += fmt.Sprintf("\n\n⚠️ Unreadable records: %d", s.Failed)
	}
	return View{Text: text, Markdown: true}
}
