package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/signalbot/bot/catalog"
)

func TestAnalyzeSignalPostsPayload(t *testing.T) {
	var got Request
	var reqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("method=%s content-type=%s", r.Method, r.Header.Get("Content-Type"))
		}
		reqID = r.Header.Get("X-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte("queued"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	res, err := c.Analyze(context.Background(), Request{
		UserID: 7, MarketType: "forex", Symbol: "EUR/USD", Timeframe: "1h",
		AI: "gpt4", Type: catalog.KindSignal, Indicators: []string{"MACD"},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.UserID != 7 || got.Type != catalog.KindSignal || got.PlanDetails != "" || len(got.Indicators) != 1 {
		t.Fatalf("payload = %+v", got)
	}
	if _, err := uuid.Parse(reqID); err != nil || res.RequestID != reqID {
		t.Fatalf("request id header %q, result %q", reqID, res.RequestID)
	}
	if res.Text != "" {
		t.Fatalf("signal text = %q, want empty", res.Text)
	}
}

func TestAnalyzePlanText(t *testing.T) {
	bodies := map[string]string{
		`{"trading_plan_text":"Buy the dip","text":"ignored"}`: "Buy the dip",
		`{"text":"Fallback text"}`:                             "Fallback text",
		`{}`:                                                   "",
	}
	for body, want := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		res, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), Request{Type: catalog.KindPlan})
		srv.Close()
		if err != nil {
			t.Fatalf("%s: %v", body, err)
		}
		if res.Text != want {
			t.Errorf("%s: text = %q, want %q", body, res.Text, want)
		}
	}
}

func TestAnalyzePlanRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()
	if _, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), Request{Type: catalog.KindPlan}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAnalyzeStatusError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), Request{Type: catalog.KindSignal})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway || !strings.Contains(se.Body, "upstream down") {
		t.Fatalf("err = %v", err)
	}
	if !strings.HasPrefix(se.Error(), "Webhook API error: 502 - upstream down") {
		t.Fatalf("message = %q", se.Error())
	}
	if calls != 1 {
		t.Fatalf("calls = %d, no retry expected", calls)
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 50*time.Millisecond).Analyze(context.Background(), Request{})
	var se *StatusError
	if err == nil || errors.As(err, &se) {
		t.Fatalf("err = %v, want transport error", err)
	}
}
