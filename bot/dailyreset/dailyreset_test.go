package dailyreset

import (
	"context"
	"testing"
	"time"

	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/session"
)

var aiIDs = catalog.Default().AIIDs()

func put(t *testing.T, store session.Store, id int64, day string, signals, plans int) {
	t.Helper()
	rec := session.NewRecord(day, aiIDs)
	rec.SignalCount, rec.TradingPlanCount, rec.TotalSignalCount = signals, plans, signals
	if err := store.Put(context.Background(), id, rec); err != nil {
		t.Fatalf("put: %v", err)
	}
}

func TestSweepResetsStaleRecordsOnly(t *testing.T) {
	store := session.NewMemoryStore()
	put(t, store, 1, "2025-06-01", 3, 1)
	put(t, store, 2, "2025-06-02", 2, 0)
	store.PutRaw(3, []byte("corrupt"))

	res, err := Sweep(context.Background(), store, "2025-06-02")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res != (Result{Checked: 3, Reset: 1, Skipped: 1, Failed: 1}) {
		t.Fatalf("result = %+v", res)
	}

	stale, _ := store.Get(context.Background(), 1)
	if stale.SignalCount != 0 || stale.TradingPlanCount != 0 || stale.TotalSignalCount != 3 {
		t.Fatalf("stale record = %+v", stale)
	}
	if stale.LastSignalDate != "2025-06-02" || stale.LastTradingPlanDate != "2025-06-02" {
		t.Fatal("dates not stamped")
	}
	current, _ := store.Get(context.Background(), 2)
	if current.SignalCount != 2 {
		t.Fatal("current record must be untouched")
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	store := session.NewMemoryStore()
	put(t, store, 1, "2025-06-01", 3, 1)

	first, _ := Sweep(context.Background(), store, "2025-06-02")
	second, _ := Sweep(context.Background(), store, "2025-06-02")
	if first.Reset != 1 || second.Reset != 0 || second.Skipped != 1 {
		t.Fatalf("first=%+v second=%+v", first, second)
	}
}

func TestNextRun(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Fatalf("zone: %v", err)
	}
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2025, 6, 1, 23, 59, 0, 0, jakarta), time.Date(2025, 6, 2, 0, 0, 0, 0, jakarta)},
		{time.Date(2025, 6, 2, 0, 0, 0, 0, jakarta), time.Date(2025, 6, 3, 0, 0, 0, 0, jakarta)},
		{time.Date(2025, 12, 31, 12, 0, 0, 0, jakarta), time.Date(2026, 1, 1, 0, 0, 0, 0, jakarta)},
	}
	for _, tc := range cases {
		if got := NextRun(tc.now, 0, 0); !got.Equal(tc.want) {
			t.Errorf("NextRun(%v) = %v, want %v", tc.now, got, tc.want)
		}
	}
	// 17:00 UTC is midnight in Jakarta.
	if got := NextRun(time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC).In(jakarta), 0, 0); !got.Equal(time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC)) {
		t.Errorf("utc alignment = %v", got.UTC())
	}
}

func TestSchedulerStartupSweepAndStop(t *testing.T) {
	store := session.NewMemoryStore()
	put(t, store, 1, "2025-06-01", 3, 0)
	clock := session.FixedClock(time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))

	s := NewScheduler(store, clock, 0, 0)
	s.Start()
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec, _ := store.Get(context.Background(), 1)
		if rec.SignalCount == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("startup sweep did not run")
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
}
