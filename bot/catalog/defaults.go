package catalog

import "time"

var (
	freemiumIndicators = []string{
		"Support & Resist", "Volume", "MACD", "Candlestick Pattern",
		"Stochastic", "Stop Level", "Relative Stock Index",
	}
	premiumIndicators = []string{
		"Support & Resist", "Volume", "MACD", "Candlestick Pattern",
		"Stochastic", "Stop Level", "Fair Value Gap", "Momentum",
		"Bollinger", "Relative Stock Index", "Order Block", "Trend",
		"System (Long/Short)", "ADX", "Parabolic SAR",
	}
	proIndicators = []string{
		"Relative Stock Index", "MACD", "Bollinger", "Volume", "Fibonacci",
		"Fair Value Gap", "Stochastic", "Candlestick Pattern", "Recent Price Action",
		"Support & Resist", "Trend", "Trend ROC", "CCI", "Momentum", "Baseline",
		"Volatility Filter", "Stop Level", "Order Block", "Liquidity Block",
		"System (Long/Short)", "Bull/Bear Cross", "ADX", "Explosion",
		"Parabolic SAR", "ATR", "Pivot Points", "Forex Swing Trader", "EMA", "SMA",
	}
)

func limits(signals, plans int, cooldown time.Duration) map[Kind]Limit {
	return map[Kind]Limit{
		KindSignal: {Daily: signals, Cooldown: cooldown},
		KindPlan:   {Daily: plans, Cooldown: cooldown},
	}
}

// Default returns the production catalogs.
func Default() *Policy {
	p := &Policy{
		tiers: map[string]Tier{
			TierFreemium: {
				Name: TierFreemium, Title: "Freemium", Icon: "🆓",
				Limits:     limits(3, 1, 300*time.Second),
				AIs:        []string{"gpt4"},
				Indicators: freemiumIndicators,
			},
			TierPremium: {
				Name: TierPremium, Title: "Premium", Icon: "⭐",
				Limits:     limits(10, 3, 60*time.Second),
				AIs:        []string{"gpt4", "gemini"},
				Indicators: premiumIndicators,
			},
			TierPro: {
				Name: TierPro, Title: "Pro", Icon: "⚡",
				Limits:     limits(30, 7, 5*time.Second),
				AIs:        []string{"gpt4", "deepseek", "gemini"},
				Indicators: proIndicators,
			},
		},
		tierOrder: []string{TierFreemium, TierPremium, TierPro},
		ais: map[string]AI{
			"gpt4":     {ID: "gpt4", Name: "GPT 4.1", Label: "GPT 4.1", Blurb: "Balanced & safe signals"},
			"gemini":   {ID: "gemini", Name: "Gemini", Label: "Gemini 2.5 Pro", Blurb: "Balanced & safe signals"},
			"deepseek": {ID: "deepseek", Name: "Deepseek", Label: "Deepseek R1-0528", Blurb: "AI with smarter entry/exit with DeepThink R1"},
		},
		aiOrder: []string{"gpt4", "gemini", "deepseek"},
		markets: map[string][]string{
			MarketForex:  {"XAU/USD", "EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD"},
			MarketCrypto: {"BTC/USD", "ETH/USD", "BNB/USD", "SOL/USD", "DOGE/USD"},
		},
		timeframes: []string{"1min", "5min", "15min", "30min", "1h", "2h", "4h", "1day", "1week", "1month"},
	}
	return p
}
