package render

import (
	"fmt"
	"strings"

	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/session"
	"github.com/m3rciful/signalbot/core/telegram/format"
	"github.com/m3rciful/signalbot/core/telegram/keyboard"
)

// Renderer carries the catalogs and settings views depend on.
type Renderer struct {
	Policy      *catalog.Policy
	UpgradeURL  string
	SelfUpgrade bool
}

var backToMenu = keyboard.InlineBtn{Text: "🔙 Back to Main Menu", Unique: KeyMenu}

func (r *Renderer) aiName(id string) string {
	if ai, ok := r.Policy.AI(id); ok {
		return ai.Name
	}
	return "❌ Not selected"
}

// MainMenu is the hub every flow returns to. extra is appended verbatim.
func (r *Renderer) MainMenu(rec *session.Record, extra string) View {
	tier := r.Policy.Tier(rec.Tier)
	tierName := rec.Tier
	if tierName == "" {
		tierName = catalog.TierFreemium
	}
	text := fmt.Sprintf("🧠 AI: %s | 📊 Tier: %s\n📊 Signals today: %d/%d\n%s",
		r.aiName(rec.SelectedAI), strings.ToUpper(tierName),
		rec.SignalCount, tier.Limit(catalog.KindSignal).Daily, extra)

	return View{
		Text: text,
		Markup: keyboard.InlineButtonsRows(
			[]keyboard.InlineBtn{{Text: "🔁 Change AI", Unique: KeyMenuAI}},
			[]keyboard.InlineBtn{{Text: "📡 Ask Signal", Unique: KeyBegin, Data: string(catalog.KindSignal)}},
			[]keyboard.InlineBtn{{Text: "📝 Trading Plan", Unique: KeyBegin, Data: string(catalog.KindPlan)}},
			[]keyboard.InlineBtn{
				{Text: "💎 Plan Status", Unique: KeyPlanStatus},
				{Text: "📈 Stats", Unique: KeyStats},
			},
			[]keyboard.InlineBtn{{Text: "⬆️ Upgrade", Unique: KeyUpgradeMenu}},
		),
	}
}

// Welcome is the /start greeting.
func (r *Renderer) Welcome() View {
	free := r.Policy.Tier(catalog.TierFreemium)
	premium := r.Policy.Tier(catalog.TierPremium)
	pro := r.Policy.Tier(catalog.TierPro)

	var b strings.Builder
	b.WriteString("👋 Welcome to CortexSignal AI Bot!\n\n")
	b.WriteString("Get premium trading signals for Forex and Crypto powered by multiple AI models. Choose your plan and start now!\n\n")
	b.WriteString("💼 Available Plans:\n")
	fmt.Fprintf(&b, "⭐️ Freemium: %d signals/day + %d Indicators\n", free.Limit(catalog.KindSignal).Daily, len(free.Indicators))
	fmt.Fprintf(&b, "✨ Premium: %d signals/day + %d Indicators\n", premium.Limit(catalog.KindSignal).Daily, len(premium.Indicators))
	fmt.Fprintf(&b, "🚀 Pro: %d signals/day + access to all AIs + %d Indicators\n\n", pro.Limit(catalog.KindSignal).Daily, len(pro.Indicators))
	b.WriteString("👇 Select an option to continue:")

	return View{
		Text: b.String(),
		Markup: keyboard.InlineButtons([]keyboard.InlineBtn{
			{Text: "⚙️ Choose AI", Unique: KeyMenuAI},
			{Text: "💎 View Plans", Unique: KeyUpgradeMenu},
			{Text: "📄 Main Menu", Unique: KeyMenu},
		}),
	}
}

const helpText = `🤖 *CortexSignal AI Trading Bot Help Guide*

Welcome! Here's how to get started and use the bot effectively:

📌 *Commands:*
/start - Restart the bot
/help - Show this help menu
/menu - Open the main menu
/status - View your current plan and signal count

🧠 *AI Models:*
Choose from multiple AI engines to get tailored trading signals. Use the main menu to select your preferred model.

📈 *How to Request a Signal:*
1. Tap *Ask Signal* in the menu.
2. Select Market Type (Forex or Crypto).
3. Choose your Symbol and Timeframe.
4. Get your signal instantly (subject to your plan limits).

⭐️ *Plans:*
- Free: %d signals/day
- Premium: %d signals/day
- Pro: %d signals/day + advanced models

💎 *Features:*
- Multi-AI selection
- Market & timeframe filtering
- Daily signal limits
- Indicator-based strategies

Happy trading! 🚀`

// Help is the /help guide.
func (r *Renderer) Help() View {
	signals := func(tier string) int { return r.Policy.Tier(tier).Limit(catalog.KindSignal).Daily }
	return View{
		Text:     fmt.Sprintf(helpText, signals(catalog.TierFreemium), signals(catalog.TierPremium), signals(catalog.TierPro)),
		Markdown: true,
		Markup: keyboard.InlineButtons([]keyboard.InlineBtn{
			{Text: "📄 Main Menu", Unique: KeyMenu},
			{Text: "💎 View Plans", Unique: KeyUpgradeMenu},
		}),
	}
}

// AIMenu lists every model, locked ones marked for the user's tier.
func (r *Renderer) AIMenu(rec *session.Record) View {
	tier := r.Policy.Tier(rec.Tier)

	var b strings.Builder
	b.WriteString("🤖 *Choose an AI model:*\n\n")
	b.WriteString("Each AI is trained with different strategies. You can switch between them anytime.\n\n")
	rows := make([][]keyboard.InlineBtn, 0, len(r.Policy.AIs())+1)
	for _, ai := range r.Policy.AIs() {
		required := "?"
		if t, ok := r.Policy.MinimumTierFor(ai.ID); ok {
			required = t.Title
		}
		fmt.Fprintf(&b, "🔹 %s - %s (%s)\n", format.EscapeV1(ai.Label), format.EscapeV1(ai.Blurb), required)

		btn := keyboard.InlineBtn{Text: "✅ " + ai.Label, Unique: KeyUseAI, Data: ai.ID}
		if !tier.AllowsAI(ai.ID) {
			btn = keyboard.InlineBtn{Text: "🔒 " + ai.Label, Unique: KeyLockedAI, Data: ai.ID}
		}
		rows = append(rows, []keyboard.InlineBtn{btn})
	}
	b.WriteString("\n👇 Pick your AI to continue:")
	rows = append(rows, []keyboard.InlineBtn{backToMenu})

	return View{Text: b.String(), Markdown: true, Markup: keyboard.InlineButtonsRows(rows...)}
}

// AISelected is the toast after picking a model.
func (r *Renderer) AISelected(ai catalog.AI) string {
	return fmt.Sprintf("✅ %s selected!", ai.Label)
}

// AILockedAlert is the alert shown for a model above the user's tier.
func (r *Renderer) AILockedAlert(ai catalog.AI) string {
	return fmt.Sprintf("🚫 %s is not available in your current plan.", ai.Label)
}

// AILocked prompts the user to upgrade for a locked model.
func (r *Renderer) AILocked(ai catalog.AI) View {
	required := "a higher plan"
	if t, ok := r.Policy.MinimumTierFor(ai.ID); ok {
		required = t.Title
	}
	return View{
		Text:     fmt.Sprintf("💡 *%s is locked.*\nUpgrade to *%s* to unlock this AI model.", format.EscapeV1(ai.Label), required),
		Markdown: true,
		Markup: keyboard.InlineButtons([]keyboard.InlineBtn{
			{Text: "⚡ Upgrade Now", URL: r.UpgradeURL},
			{Text: "🔙 Back to AI Menu", Unique: KeyMenuAI},
		}),
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// PlanStatus shows quotas, totals and dates for the user's tier.
func (r *Renderer) PlanStatus(rec *session.Record) View {
	tier := r.Policy.Tier(rec.Tier)
	signals := tier.Limit(catalog.KindSignal)
	plans := tier.Limit(catalog.KindPlan)

	var b strings.Builder
	b.WriteString("🧾 *YOUR PLAN STATUS*\n\n")
	fmt.Fprintf(&b, "🆔 Tier: %s %s\n", tier.Icon, strings.ToUpper(tier.Name))
	fmt.Fprintf(&b, "📊 Signals today: %s\n", UsageBar(rec.SignalCount, signals.Daily))
	fmt.Fprintf(&b, "📝 Trading Plans today: %s\n", UsageBar(rec.TradingPlanCount, plans.Daily))
	fmt.Fprintf(&b, "📈 Total Signals Generated: %d\n", rec.TotalSignalCount)
	fmt.Fprintf(&b, "⏱️ Cooldown: %ds\n", int(signals.Cooldown.Seconds()))
	fmt.Fprintf(&b, "💎 Indicators available: %d\n", len(tier.Indicators))
	fmt.Fprintf(&b, "🗓️ Last Upgrade: %s\n", orNA(rec.LastUpgradeDate))
	fmt.Fprintf(&b, "⏳ Tier Expiry: %s\n\n", orNA(rec.TierExpiryDate))
	fmt.Fprintf(&b, "👤 Joined: %s", orNA(rec.JoinDate))

	return View{Text: b.String(), Markdown: true, Markup: keyboard.InlineButtons([]keyboard.InlineBtn{backToMenu})}
}

var aiIcons = []string{"🔹", "🔸", "⚡"}

// Stats shows market and model usage shares.
func (r *Renderer) Stats(rec *session.Record) View {
	markets := rec.ForexUsage + rec.CryptoUsage
	totalAI := 0
	for _, ai := range r.Policy.AIs() {
		totalAI += rec.AIUsage[ai.ID]
	}

	var b strings.Builder
	b.WriteString("📊 *YOUR USAGE STATS*\n\n")
	b.WriteString("🌐 *Market Usage:*\n")
	fmt.Fprintf(&b, "  📈 Forex: %s%%\n", percent(rec.ForexUsage, markets))
	fmt.Fprintf(&b, "  💰 Crypto: %s%%\n\n", percent(rec.CryptoUsage, markets))
	b.WriteString("🧠 *AI Model Usage:*\n")
	for i, ai := range r.Policy.AIs() {
		fmt.Fprintf(&b, "  %s %s: %s%%\n", aiIcons[i%len(aiIcons)], ai.Name, percent(rec.AIUsage[ai.ID], totalAI))
	}
	fmt.Fprintf(&b, "\nTotal Signals Generated: %d", rec.TotalSignalCount)

	return View{Text: b.String(), Markdown: true, Markup: keyboard.InlineButtons([]keyboard.InlineBtn{backToMenu})}
}

// UpgradeMenu offers the tiers other than the current one. Without
// self-upgrade the buttons link to the upgrade page.
func (r *Renderer) UpgradeMenu(rec *session.Record) View {
	current := r.Policy.Tier(rec.Tier)
	tierName := rec.Tier
	if tierName == "" {
		tierName = catalog.TierFreemium
	}

	offers := []struct {
		tier  string
		label string
	}{
		{catalog.TierPremium, "🌟 Premium (%d signals/day)"},
		{catalog.TierPro, "🚀 PRO (%d signals/day)"},
	}
	var row []keyboard.InlineBtn
	for _, o := range offers {
		if o.tier == tierName {
			continue
		}
		text := fmt.Sprintf(o.label, r.Policy.Tier(o.tier).Limit(catalog.KindSignal).Daily)
		if r.SelfUpgrade {
			row = append(row, keyboard.InlineBtn{Text: text, Unique: KeyUpgrade, Data: o.tier})
		} else {
			row = append(row, keyboard.InlineBtn{Text: text, URL: r.UpgradeURL})
		}
	}

	text := fmt.Sprintf("💎 Upgrade Options\n\nCurrent plan: %s\nToday's signal usage: %d/%d\nToday's trading plan usage: %d/%d",
		strings.ToUpper(tierName),
		rec.SignalCount, current.Limit(catalog.KindSignal).Daily,
		rec.TradingPlanCount, current.Limit(catalog.KindPlan).Daily)

	return View{
		Text:     text,
		Markdown: true,
		Markup:   keyboard.InlineButtonsRows(row, []keyboard.InlineBtn{backToMenu}),
	}
}

// Upgraded is the toast after a self-upgrade.
func (r *Renderer) Upgraded(tier string) string {
	if tier == catalog.TierPro {
		return "🚀 Upgraded to PRO!"
	}
	return fmt.Sprintf("✅ Upgraded to %s!", r.Policy.Tier(tier).Title)
}
