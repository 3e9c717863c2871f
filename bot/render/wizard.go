package render

import (
	"fmt"

	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/wizard"
	"github.com/m3rciful/signalbot/core/telegram/callbacks"
	"github.com/m3rciful/signalbot/core/telegram/keyboard"
)

var marketButtons = map[string]string{
	catalog.MarketForex:  "📈 Forex",
	catalog.MarketCrypto: "💰 Crypto",
}

// MarketPrompt opens the market step for kind.
func (r *Renderer) MarketPrompt(kind catalog.Kind) View {
	text := "🌐 *Select a market type for the signal:*"
	if kind == catalog.KindPlan {
		text = "📝 *Select a market type for your trading plan:*"
	}
	var row []keyboard.InlineBtn
	for _, m := range r.Policy.Markets() {
		row = append(row, keyboard.InlineBtn{
			Text:   marketButtons[m],
			Unique: KeyMarket,
			Data:   callbacks.JoinPayload(string(kind), m),
		})
	}
	return View{
		Text:     text,
		Markdown: true,
		Markup:   keyboard.InlineButtonsRows(row, []keyboard.InlineBtn{backToMenu}),
	}
}

// SymbolPrompt lists the symbols of market.
func (r *Renderer) SymbolPrompt(kind catalog.Kind, market string) View {
	var btns []keyboard.InlineBtn
	for _, s := range r.Policy.Symbols(market) {
		btns = append(btns, keyboard.InlineBtn{
			Text:   s,
			Unique: KeySymbol,
			Data:   callbacks.JoinPayload(string(kind), market, s),
		})
	}
	rows := keyboard.Chunk(btns, 3)
	rows = append(rows, []keyboard.InlineBtn{{Text: "🔙 Back", Unique: KeyBegin, Data: string(kind)}})
	return View{
		Text:     fmt.Sprintf("📊 *Select a symbol for %s:*", market),
		Markdown: true,
		Markup:   keyboard.InlineButtonsRows(rows...),
	}
}

// TimeframePrompt lists the timeframes for symbol.
func (r *Renderer) TimeframePrompt(kind catalog.Kind, market, symbol string) View {
	var btns []keyboard.InlineBtn
	for _, tf := range r.Policy.Timeframes() {
		btns = append(btns, keyboard.InlineBtn{
			Text:   tf,
			Unique: KeyTimeframe,
			Data:   callbacks.JoinPayload(string(kind), tf),
		})
	}
	rows := keyboard.Chunk(btns, 5)
	rows = append(rows, []keyboard.InlineBtn{{
		Text:   "🔙 Back",
		Unique: KeyMarket,
		Data:   callbacks.JoinPayload(string(kind), market),
	}})

	text := fmt.Sprintf("⏰ *Select a timeframe for %s:*", symbol)
	if kind == catalog.KindPlan {
		text = "⏰ *Select a timeframe for your trading plan:*"
	}
	return View{Text: text, Markdown: true, Markup: keyboard.InlineButtonsRows(rows...)}
}

// Rejection is the alert text for a refused wizard step.
func Rejection(rej *wizard.Rejection) string {
	plan := rej.Kind == catalog.KindPlan
	switch rej.Reason {
	case wizard.ReasonNoAI:
		return "Please choose an AI model first!"
	case wizard.ReasonCooldown:
		what := "signal"
		if plan {
			what = "trading plan"
		}
		return fmt.Sprintf("⏳ Cooldown active. Please wait %d seconds before asking for another %s.", rej.SecondsLeft(), what)
	case wizard.ReasonDailyLimit:
		if plan {
			return "🚫 Daily trading plan limit reached. Upgrade your plan!"
		}
		return "🚫 Daily signal limit reached. Upgrade your plan for more signals!"
	case wizard.ReasonInvalidChoice:
		return "❌ Invalid selection. Please start over."
	}
	return "❌ Missing selection. Please start over."
}

// RetryNotice is appended to the main menu after an aborted wizard.
const RetryNotice = "Please try again."
