// Package wizard models the guided selection flow that precedes a
// dispatch: market, then symbol, then timeframe, for one request kind.
package wizard

import (
	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/session"
)

// State is one of Idle, MarketPending, MarketChosen, SymbolChosen, Ready.
type State interface{ state() }

// Idle means no selection is in progress.
type Idle struct{}

// MarketPending means the market keyboard is open.
type MarketPending struct{ Kind catalog.Kind }

type MarketChosen struct {
	Kind   catalog.Kind
	Market string
}

type SymbolChosen struct {
	Kind   catalog.Kind
	Market string
	Symbol string
}

// Ready is terminal: everything a dispatch needs is known.
type Ready struct {
	Kind      catalog.Kind
	AI        string
	Market    string
	Symbol    string
	Timeframe string
}

func (Idle) state()          {}
func (MarketPending) state() {}
func (MarketChosen) state()  {}
func (SymbolChosen) state()  {}
func (Ready) state()         {}

// Event is one button press: Begin, PickMarket, PickSymbol, PickTimeframe.
type Event interface{ event() }

type Begin struct{ Kind catalog.Kind }

type PickMarket struct {
	Kind   catalog.Kind
	Market string
}

type PickSymbol struct {
	Kind   catalog.Kind
	Market string
	Symbol string
}

type PickTimeframe struct {
	Kind      catalog.Kind
	Timeframe string
}

func (Begin) event()         {}
func (PickMarket) event()    {}
func (PickSymbol) event()    {}
func (PickTimeframe) event() {}

// FromRecord derives the state from the persisted selection. A record
// without a valid kind has no wizard in progress.
func FromRecord(rec *session.Record) State {
	kind, ok := catalog.ParseKind(string(rec.SelectedKind))
	if !ok {
		return Idle{}
	}
	switch {
	case rec.SelectedMarketType == "":
		return MarketPending{Kind: kind}
	case rec.SelectedSymbol == "":
		return MarketChosen{Kind: kind, Market: rec.SelectedMarketType}
	case rec.SelectedTimeframe == "":
		return SymbolChosen{Kind: kind, Market: rec.SelectedMarketType, Symbol: rec.SelectedSymbol}
	}
	return Ready{
		Kind:      kind,
		AI:        rec.SelectedAI,
		Market:    rec.SelectedMarketType,
		Symbol:    rec.SelectedSymbol,
		Timeframe: rec.SelectedTimeframe,
	}
}

// Apply writes the selection held by s back to the record. The selected
// AI is never touched.
func Apply(rec *session.Record, s State) {
	rec.ClearSelection()
	switch st := s.(type) {
	case MarketPending:
		rec.SelectedKind = st.Kind
	case MarketChosen:
		rec.SelectedKind = st.Kind
		rec.SelectedMarketType = st.Market
	case SymbolChosen:
		rec.SelectedKind = st.Kind
		rec.SelectedMarketType = st.Market
		rec.SelectedSymbol = st.Symbol
	case Ready:
		rec.SelectedKind = st.Kind
		rec.SelectedMarketType = st.Market
		rec.SelectedSymbol = st.Symbol
		rec.SelectedTimeframe = st.Timeframe
	}
}

// kindOf returns the request kind of a wizard in progress.
func kindOf(s State) (catalog.Kind, bool) {
	switch st := s.(type) {
	case MarketPending:
		return st.Kind, true
	case MarketChosen:
		return st.Kind, true
	case SymbolChosen:
		return st.Kind, true
	case Ready:
		return st.Kind, true
	}
	return "", false
}
