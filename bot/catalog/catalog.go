// Package catalog holds the static tier policy and the AI, market and
// timeframe catalogs. A Policy is built once and never mutated.
package catalog

import (
	"slices"
	"strings"
	"time"
)

// Kind distinguishes the two request flows. Limits are keyed by kind and
// the value doubles as the webhook's request type.
type Kind string

const (
	KindSignal Kind = "signal"
	KindPlan   Kind = "trading_plan"
)

// ParseKind accepts the wire names of the two kinds.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindSignal, KindPlan:
		return Kind(s), true
	}
	return "", false
}

// Tier names.
const (
	TierFreemium = "freemium"
	TierPremium  = "premium"
	TierPro      = "pro"
)

// Market names.
const (
	MarketForex  = "forex"
	MarketCrypto = "crypto"
)

// Limit bounds one request kind inside a tier.
type Limit struct {
	Daily    int
	Cooldown time.Duration
}

// Tier describes what a subscription level grants.
type Tier struct {
	Name       string
	Title      string
	Icon       string
	Limits     map[Kind]Limit
	AIs        []string
	Indicators []string
}

// Limit returns the limit for kind. Unknown kinds get a zero limit.
func (t Tier) Limit(kind Kind) Limit {
	return t.Limits[kind]
}

// AllowsAI reports whether the tier unlocks the AI.
func (t Tier) AllowsAI(id string) bool {
	return slices.Contains(t.AIs, id)
}

// AI is one analysis model exposed to users. All models share the
// configured webhook; the id is forwarded to it.
type AI struct {
	ID    string
	Name  string
	Label string
	Blurb string
}

// Policy is the immutable set of catalogs.
type Policy struct {
	tiers      map[string]Tier
	tierOrder  []string
	ais        map[string]AI
	aiOrder    []string
	markets    map[string][]string
	timeframes []string
}

// Tier returns the named tier. Unknown or empty names resolve to freemium.
func (p *Policy) Tier(name string) Tier {
	if t, ok := p.tiers[strings.ToLower(name)]; ok {
		return t
	}
	return p.tiers[TierFreemium]
}

// KnownTier reports whether name is one of the configured tiers.
func (p *Policy) KnownTier(name string) bool {
	_, ok := p.tiers[name]
	return ok
}

// Tiers lists tiers from lowest to highest.
func (p *Policy) Tiers() []Tier {
	out := make([]Tier, 0, len(p.tierOrder))
	for _, name := range p.tierOrder {
		out = append(out, p.tiers[name])
	}
	return out
}

// AI looks up a model by id.
func (p *Policy) AI(id string) (AI, bool) {
	ai, ok := p.ais[id]
	return ai, ok
}

// AIs lists models in menu order.
func (p *Policy) AIs() []AI {
	out := make([]AI, 0, len(p.aiOrder))
	for _, id := range p.aiOrder {
		out = append(out, p.ais[id])
	}
	return out
}

// AIIDs lists model ids in menu order.
func (p *Policy) AIIDs() []string {
	return slices.Clone(p.aiOrder)
}

// TierAllowsAI reports whether tier unlocks the AI.
func (p *Policy) TierAllowsAI(tier, ai string) bool {
	return p.Tier(tier).AllowsAI(ai)
}

// MinimumTierFor returns the lowest tier that unlocks the AI.
func (p *Policy) MinimumTierFor(ai string) (Tier, bool) {
	for _, name := range p.tierOrder {
		if t := p.tiers[name]; t.AllowsAI(ai) {
			return t, true
		}
	}
	return Tier{}, false
}

// Markets lists market names in menu order.
func (p *Policy) Markets() []string {
	return []string{MarketForex, MarketCrypto}
}

// HasMarket reports whether the market exists.
func (p *Policy) HasMarket(market string) bool {
	_, ok := p.markets[market]
	return ok
}

// Symbols returns the symbols of a market.
func (p *Policy) Symbols(market string) []string {
	return slices.Clone(p.markets[market])
}

// HasSymbol reports whether symbol belongs to market.
func (p *Policy) HasSymbol(market, symbol string) bool {
	return slices.Contains(p.markets[market], symbol)
}

// Timeframes lists the accepted timeframes.
func (p *Policy) Timeframes() []string {
	return slices.Clone(p.timeframes)
}

// HasTimeframe reports whether tf is accepted.
func (p *Policy) HasTimeframe(tf string) bool {
	return slices.Contains(p.timeframes, tf)
}
