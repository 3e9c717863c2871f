// Package session persists one Record per chat user and exposes it to
// handlers through a telebot middleware.
package session

import (
	"time"

	"github.com/m3rciful/signalbot/bot/catalog"
)

// DateLayout is the calendar-day format stored in records.
const DateLayout = "2006-01-02"

// Record is the persisted per-user state. JSON names match the session
// files written by earlier versions of the bot.
type Record struct {
	Tier string `json:"tier"`

	SignalCount      int `json:"signalCount"`
	TradingPlanCount int `json:"tradingPlanCount"`
	TotalSignalCount int `json:"totalSignalCount"`

	// Unix milliseconds of the last successful request per kind.
	LastSignalTime      int64 `json:"lastSignalTime"`
	LastTradingPlanTime int64 `json:"lastTradingPlanTime"`

	LastSignalDate      string `json:"lastSignalDate"`
	LastTradingPlanDate string `json:"lastTradingPlanDate"`
	JoinDate            string `json:"joinDate"`
	LastUpgradeDate     string `json:"lastUpgradeDate"`
	TierExpiryDate      string `json:"tierExpiryDate"`

	AIUsage     map[string]int `json:"aiUsage"`
	ForexUsage  int            `json:"forexUsage"`
	CryptoUsage int            `json:"cryptoUsage"`

	SelectedAI string `json:"selectedAI"`

	// Wizard in progress; SelectedKind is empty when none is.
	SelectedKind       catalog.Kind `json:"selectedKind"`
	SelectedMarketType string       `json:"selectedMarketType"`
	SelectedSymbol     string       `json:"selectedSymbol"`
	SelectedTimeframe  string       `json:"selectedTimeframe"`

	AdminBroadcastMode bool `json:"adminBroadcastMode"`
}

// NewRecord returns the record created on a user's first interaction.
func NewRecord(today string, aiIDs []string) *Record {
	r := &Record{
		Tier:                catalog.TierFreemium,
		LastSignalDate:      today,
		LastTradingPlanDate: today,
		JoinDate:            today,
		LastUpgradeDate:     today,
		AIUsage:             make(map[string]int, len(aiIDs)),
	}
	for _, id := range aiIDs {
		r.AIUsage[id] = 0
	}
	return r
}

// Fill repairs records written by older versions: a nil usage map and
// missing AI entries.
func (r *Record) Fill(aiIDs []string) {
	if r.AIUsage == nil {
		r.AIUsage = make(map[string]int, len(aiIDs))
	}
	for _, id := range aiIDs {
		if _, ok := r.AIUsage[id]; !ok {
			r.AIUsage[id] = 0
		}
	}
}

// Usage returns the daily counter and the last success time for kind.
func (r *Record) Usage(kind catalog.Kind) (int, time.Time) {
	switch kind {
	case catalog.KindSignal:
		return r.SignalCount, fromMillis(r.LastSignalTime)
	case catalog.KindPlan:
		return r.TradingPlanCount, fromMillis(r.LastTradingPlanTime)
	}
	return 0, time.Time{}
}

// RecordSuccess applies the counter updates of one successful dispatch.
func (r *Record) RecordSuccess(kind catalog.Kind, ai, market string, now time.Time, today string) {
	if r.AIUsage == nil {
		r.AIUsage = map[string]int{}
	}
	r.AIUsage[ai]++
	switch market {
	case catalog.MarketForex:
		r.ForexUsage++
	case catalog.MarketCrypto:
		r.CryptoUsage++
	}

	switch kind {
	case catalog.KindSignal:
		r.SignalCount++
		r.TotalSignalCount++
		r.LastSignalTime = now.UnixMilli()
		r.LastSignalDate = today
	case catalog.KindPlan:
		r.TradingPlanCount++
		r.LastTradingPlanTime = now.UnixMilli()
		r.LastTradingPlanDate = today
	}
}

// ResetDaily zeroes both daily counters and stamps today on both dates.
func (r *Record) ResetDaily(today string) {
	r.SignalCount = 0
	r.TradingPlanCount = 0
	r.LastSignalDate = today
	r.LastTradingPlanDate = today
}

// ClearSelection drops the wizard's kind, market, symbol and timeframe.
// The selected AI is a preference and survives.
func (r *Record) ClearSelection() {
	r.SelectedKind = ""
	r.SelectedMarketType = ""
	r.SelectedSymbol = ""
	r.SelectedTimeframe = ""
}

// SetTier switches the tier and stamps the upgrade date.
func (r *Record) SetTier(tier, today string) {
	r.Tier = tier
	r.LastUpgradeDate = today
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
