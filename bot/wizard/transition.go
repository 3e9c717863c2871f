package wizard

import (
	"fmt"

	"github.com/m3rciful/signalbot/bot/catalog"
)

// Machine evaluates transitions against a fixed policy.
type Machine struct {
	policy *catalog.Policy
}

// New returns a machine for policy.
func New(policy *catalog.Policy) *Machine {
	return &Machine{policy: policy}
}

// Transition returns the state after e, or a *Rejection leaving s as is.
// The entry guard runs on Begin and again on every later step, so a stale
// keyboard cannot slip past a limit reached in the meantime. A step whose
// kind differs from the wizard in progress is incomplete: each kind only
// continues a selection its own Begin started.
func (m *Machine) Transition(s State, e Event, g Gate) (State, error) {
	switch ev := e.(type) {
	case Begin:
		if r := g.Check(ev.Kind); r != nil {
			return s, r
		}
		return MarketPending{Kind: ev.Kind}, nil

	case PickMarket:
		if !sameKind(s, ev.Kind) {
			return s, &Rejection{Reason: ReasonIncomplete, Kind: ev.Kind}
		}
		if !m.policy.HasMarket(ev.Market) {
			return s, &Rejection{Reason: ReasonInvalidChoice, Kind: ev.Kind}
		}
		if r := g.Check(ev.Kind); r != nil {
			return s, r
		}
		return MarketChosen{Kind: ev.Kind, Market: ev.Market}, nil

	case PickSymbol:
		if market, ok := chosenMarket(s); !ok || market != ev.Market || !sameKind(s, ev.Kind) {
			return s, &Rejection{Reason: ReasonIncomplete, Kind: ev.Kind}
		}
		if !m.policy.HasSymbol(ev.Market, ev.Symbol) {
			return s, &Rejection{Reason: ReasonInvalidChoice, Kind: ev.Kind}
		}
		if r := g.Check(ev.Kind); r != nil {
			return s, r
		}
		return SymbolChosen{Kind: ev.Kind, Market: ev.Market, Symbol: ev.Symbol}, nil

	case PickTimeframe:
		sc, ok := s.(SymbolChosen)
		if !ok || sc.Kind != ev.Kind || sc.Symbol == "" || g.AI == "" || ev.Timeframe == "" {
			return s, &Rejection{Reason: ReasonIncomplete, Kind: ev.Kind}
		}
		if !m.policy.HasTimeframe(ev.Timeframe) {
			return s, &Rejection{Reason: ReasonInvalidChoice, Kind: ev.Kind}
		}
		if r := g.Check(ev.Kind); r != nil {
			return s, r
		}
		return Ready{
			Kind:      ev.Kind,
			AI:        g.AI,
			Market:    sc.Market,
			Symbol:    sc.Symbol,
			Timeframe: ev.Timeframe,
		}, nil
	}
	return s, fmt.Errorf("wizard: unknown event %T", e)
}

func sameKind(s State, kind catalog.Kind) bool {
	k, ok := kindOf(s)
	return ok && k == kind
}

func chosenMarket(s State) (string, bool) {
	switch st := s.(type) {
	case MarketChosen:
		return st.Market, true
	case SymbolChosen:
		return st.Market, true
	case Ready:
		return st.Market, true
	}
	return "", false
}
