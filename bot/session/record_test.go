package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/m3rciful/signalbot/bot/catalog"
)

var testAIs = []string{"gpt4", "gemini", "deepseek"}

func TestNewRecordDefaults(t *testing.T) {
	r := NewRecord("2025-06-01", testAIs)
	if r.Tier != catalog.TierFreemium || r.SignalCount != 0 || r.TradingPlanCount != 0 {
		t.Fatalf("unexpected defaults: %+v", r)
	}
	if r.JoinDate != "2025-06-01" || r.LastSignalDate != "2025-06-01" || r.LastUpgradeDate != "2025-06-01" {
		t.Fatalf("dates not stamped: %+v", r)
	}
	if len(r.AIUsage) != 3 || r.AIUsage["deepseek"] != 0 {
		t.Fatalf("ai usage = %v", r.AIUsage)
	}
	if r.SelectedAI != "" || r.AdminBroadcastMode {
		t.Fatal("selection must start empty")
	}
}

func TestRecordSuccessSignal(t *testing.T) {
	r := NewRecord("2025-06-01", testAIs)
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	r.RecordSuccess(catalog.KindSignal, "gpt4", catalog.MarketForex, now, "2025-06-02")

	if r.SignalCount != 1 || r.TotalSignalCount != 1 || r.TradingPlanCount != 0 {
		t.Fatalf("counters = %+v", r)
	}
	if r.LastSignalTime != now.UnixMilli() || r.LastSignalDate != "2025-06-02" {
		t.Fatalf("signal stamp = %d %s", r.LastSignalTime, r.LastSignalDate)
	}
	if r.AIUsage["gpt4"] != 1 || r.ForexUsage != 1 || r.CryptoUsage != 0 {
		t.Fatalf("usage = %v forex=%d", r.AIUsage, r.ForexUsage)
	}
	count, last := r.Usage(catalog.KindSignal)
	if count != 1 || !last.Equal(now) {
		t.Fatalf("usage = %d %v", count, last)
	}
}

func TestRecordSuccessPlan(t *testing.T) {
	r := NewRecord("2025-06-01", testAIs)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	r.RecordSuccess(catalog.KindPlan, "gemini", catalog.MarketCrypto, now, "2025-06-01")

	if r.TradingPlanCount != 1 || r.SignalCount != 0 || r.TotalSignalCount != 0 {
		t.Fatalf("counters = %+v", r)
	}
	if r.LastTradingPlanTime != now.UnixMilli() || r.LastSignalTime != 0 {
		t.Fatal("plan stamp wrong")
	}
	if r.AIUsage["gemini"] != 1 || r.CryptoUsage != 1 {
		t.Fatal("usage not counted")
	}
}

func TestResetDailyAndClearSelection(t *testing.T) {
	r := NewRecord("2025-06-01", testAIs)
	r.SignalCount, r.TradingPlanCount, r.TotalSignalCount = 3, 1, 9
	r.SelectedAI, r.SelectedMarketType, r.SelectedSymbol, r.SelectedTimeframe = "gpt4", "forex", "EUR/USD", "1h"
	r.SelectedKind = catalog.KindPlan

	r.ResetDaily("2025-06-02")
	if r.SignalCount != 0 || r.TradingPlanCount != 0 || r.TotalSignalCount != 9 {
		t.Fatalf("reset counters = %+v", r)
	}
	if r.LastSignalDate != "2025-06-02" || r.LastTradingPlanDate != "2025-06-02" {
		t.Fatal("reset must stamp both dates")
	}

	r.ClearSelection()
	if r.SelectedKind != "" || r.SelectedMarketType != "" || r.SelectedSymbol != "" || r.SelectedTimeframe != "" {
		t.Fatal("selection not cleared")
	}
	if r.SelectedAI != "gpt4" {
		t.Fatal("selected AI must survive clearing")
	}
}

func TestFillRepairsOldRecords(t *testing.T) {
	r := &Record{Tier: "premium"}
	r.Fill(testAIs)
	if len(r.AIUsage) != 3 {
		t.Fatalf("ai usage = %v", r.AIUsage)
	}
}

func TestClockToday(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 18:30 UTC is already the next day in UTC+7.
	c := FixedClock(time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC).In(jakarta))
	if got := c.Today(); got != "2025-06-02" {
		t.Fatalf("today = %s", got)
	}
}

func TestEmptyDatesAreWritten(t *testing.T) {
	data, err := json.Marshal(&Record{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"lastSignalDate", "lastTradingPlanDate", "joinDate", "lastUpgradeDate", "tierExpiryDate", "selectedKind"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("%s missing from %s", key, data)
		}
	}
}
