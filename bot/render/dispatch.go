package render

import (
	"fmt"
	"strings"

	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/core/telegram/format"
)

// StageCount is the number of progress steps after the initial one.
const StageCount = 3

// Request describes a dispatch for display.
type Request struct {
	Kind      catalog.Kind
	AIName    string
	Market    string
	Symbol    string
	Timeframe string
}

func (q Request) plan() bool { return q.Kind == catalog.KindPlan }

func (q Request) subject() string {
	return fmt.Sprintf("for *%s* on *%s* using *%s*",
		format.EscapeV1(q.Symbol), format.EscapeV1(q.Timeframe), format.EscapeV1(q.AIName))
}

// DispatchToast answers the timeframe press.
func DispatchToast(kind catalog.Kind) string {
	if kind == catalog.KindPlan {
		return "📝 Generating trading plan, please wait..."
	}
	return "🔍 Generating signal, please wait..."
}

// DispatchIntro announces the request. Markdown.
func DispatchIntro(q Request) string {
	if q.plan() {
		return "Generating a trading plan " + q.subject() + "..."
	}
	return fmt.Sprintf("Generating a *%s* signal %s...", strings.ToUpper(q.Market), q.subject())
}

// Stage renders progress step n of StageCount. Markdown.
func Stage(q Request, n int) string {
	var head string
	switch {
	case n <= 0 && q.plan():
		head = "Generating a trading plan " + q.subject() + "..."
	case n <= 0:
		head = "Processing your request..."
	case n == 1:
		head = "Analyzing Chart Pattern and All indicator..."
	case n == 2 && q.plan():
		head = "AI Analyzing the best trading plan " + q.subject() + "..."
	case n == 2:
		head = "AI Analyzing the best trading signal..."
	case q.plan():
		head = "✅ Your trading plan has been sent! Check your chat for details."
	default:
		head = "✅ Signal generated successfully!"
	}
	return head + "\n" + StepBar(min(max(n, 0), StageCount), StageCount)
}

// DispatchFailed replaces the progress message after a failure. Plain text.
func DispatchFailed(kind catalog.Kind, err error) string {
	if kind == catalog.KindPlan {
		return "❌ Failed to generate trading plan. Please try again later.\nError: " + err.Error()
	}
	return "❌ Failed to generate signal. Error: " + err.Error()
}

// DispatchFollowUp is sent after the progress message settles, or "" for none.
func DispatchFollowUp(kind catalog.Kind, ok bool) string {
	switch {
	case kind == catalog.KindPlan:
		return ""
	case ok:
		return "Your signal has been sent to you! Check your chat for the detailed signal."
	default:
		return "Please try again later."
	}
}
