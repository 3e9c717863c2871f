package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/signalbot/bot/admin"
	"github.com/m3rciful/signalbot/bot/analysis"
	"github.com/m3rciful/signalbot/bot/catalog"
	"github.com/m3rciful/signalbot/bot/render"
	"github.com/m3rciful/signalbot/bot/session"
	tg "github.com/m3rciful/signalbot/core/telegram"
	"github.com/m3rciful/signalbot/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

const adminID = 1

type apiCall struct {
	Method string
	Params map[string]any
}

// fakeAPI answers every Bot API method with a generic message.
type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&params)
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: path.Base(r.URL.Path), Params: params})
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":99,"chat":{"id":1}}}`))
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeAPI) called(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// texts returns the text of every sent or edited message, in order.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if c.Method == "sendMessage" || c.Method == "editMessageText" {
			s, _ := c.Params["text"].(string)
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeAPI) alert() (string, bool) {
	calls := f.called("answerCallbackQuery")
	if len(calls) == 0 {
		return "", false
	}
	last := calls[len(calls)-1]
	text, _ := last.Params["text"].(string)
	shown, _ := last.Params["show_alert"].(bool)
	return text, shown
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	err   error
	calls []analysis.Request
}

func (a *fakeAnalyzer) Analyze(_ context.Context, req analysis.Request) (*analysis.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, req)
	if a.err != nil {
		return nil, a.err
	}
	return &analysis.Result{RequestID: "rid-1"}, nil
}

type harness struct {
	t        *testing.T
	api      *fakeAPI
	bot      *tele.Bot
	store    *session.MemoryStore
	clock    session.Clock
	analyzer *fakeAnalyzer
	reg      *tg.Registry
	mw       tele.MiddlewareFunc
	routes   map[any]tele.HandlerFunc
}

func newHarness(t *testing.T, selfUpgrade bool) *harness {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	bot, err := tele.NewBot(tele.Settings{URL: srv.URL, Token: "test", Offline: true, Synchronous: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}

	policy := catalog.Default()
	store := session.NewMemoryStore()
	clock := session.FixedClock(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	analyzer := &fakeAnalyzer{}
	isAdmin := func(id int64) bool { return id == adminID }

	h := New(Options{
		Policy:     policy,
		Renderer:   &render.Renderer{Policy: policy, UpgradeURL: "https://example.com/upgrade", SelfUpgrade: selfUpgrade},
		Dispatcher: analysis.NewDispatcher(analyzer, bot, 0, "details"),
		Admin:      admin.New(admin.Options{Store: store, Clock: clock, IsAdmin: isAdmin, Copier: bot}),
		Clock:      clock,
	})
	reg := tg.NewRegistry()
	if err := h.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}

	routes := map[any]tele.HandlerFunc{}
	all := append([]tg.Route{router.CallbackRoute(reg)},
		router.CommandRoutes(reg, router.CommandRouteOptions{IsAdmin: isAdmin, OnAdminReject: h.DenyCommand})...)
	all = append(all, router.MessageRoutes(h, reg, router.MessageOptions{})...)
	for _, r := range all {
		routes[r.Endpoint] = r.Handler
	}

	return &harness{
		t:        t,
		api:      api,
		bot:      bot,
		store:    store,
		clock:    clock,
		analyzer: analyzer,
		reg:      reg,
		mw:       session.Middleware(session.MiddlewareOptions{Store: store, Clock: clock, AIIDs: policy.AIIDs()}),
		routes:   routes,
	}
}

func (h *harness) run(endpoint any, upd tele.Update) {
	h.t.Helper()
	handler, ok := h.routes[endpoint]
	if !ok {
		h.t.Fatalf("no route for %v", endpoint)
	}
	_ = h.mw(handler)(h.bot.NewContext(upd))
}

func (h *harness) press(userID int64, unique string, payload ...string) {
	h.t.Helper()
	data := "\f" + unique
	if len(payload) > 0 {
		data += "|" + strings.Join(payload, "|")
	}
	h.run(tele.OnCallback, tele.Update{ID: 1, Callback: &tele.Callback{
		ID:      "cb",
		Sender:  &tele.User{ID: userID},
		Message: &tele.Message{ID: 5, Chat: &tele.Chat{ID: userID}},
		Data:    data,
	}})
}

func (h *harness) text(userID int64, text string) {
	h.t.Helper()
	endpoint := any(tele.OnText)
	if strings.HasPrefix(text, "/") {
		endpoint = text
	}
	h.run(endpoint, tele.Update{ID: 2, Message: &tele.Message{
		ID:     7,
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID},
		Text:   text,
	}})
}

func (h *harness) record(userID int64) *session.Record {
	h.t.Helper()
	rec, err := h.store.Get(context.Background(), userID)
	if err != nil {
		h.t.Fatalf("get %d: %v", userID, err)
	}
	return rec
}

func (h *harness) seed(userID int64, mutate func(*session.Record)) {
	h.t.Helper()
	rec := session.NewRecord(h.clock.Today(), catalog.Default().AIIDs())
	if mutate != nil {
		mutate(rec)
	}
	if err := h.store.Put(context.Background(), userID, rec); err != nil {
		h.t.Fatalf("seed: %v", err)
	}
}

func contains(texts []string, sub string) bool {
	for _, s := range texts {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func TestSignalWizardDispatchesAndCounts(t *testing.T) {
	h := newHarness(t, false)

	h.press(7, render.KeyUseAI, "gpt4")
	h.press(7, render.KeyBegin, "signal")
	h.press(7, render.KeyMarket, "signal", "forex")
	if rec := h.record(7); rec.SelectedMarketType != "forex" {
		t.Fatalf("market not stored: %+v", rec)
	}
	h.press(7, render.KeySymbol, "signal", "forex", "XAU/USD")
	h.press(7, render.KeyTimeframe, "signal", "1h")

	if len(h.analyzer.calls) != 1 {
		t.Fatalf("analyzer calls = %d, want 1", len(h.analyzer.calls))
	}
	got := h.analyzer.calls[0]
	if got.UserID != 7 || got.AI != "gpt4" || got.Symbol != "XAU/USD" || got.Timeframe != "1h" || got.Type != catalog.KindSignal {
		t.Fatalf("request = %+v", got)
	}
	if len(got.Indicators) != 7 || got.PlanDetails != "" {
		t.Fatalf("indicators=%d plan_details=%q", len(got.Indicators), got.PlanDetails)
	}

	rec := h.record(7)
	if rec.SignalCount != 1 || rec.TotalSignalCount != 1 || rec.ForexUsage != 1 || rec.AIUsage["gpt4"] != 1 {
		t.Fatalf("counters = %+v", rec)
	}
	if rec.LastSignalTime != h.clock.Now().UnixMilli() {
		t.Fatalf("last signal time = %d", rec.LastSignalTime)
	}
	if rec.SelectedMarketType != "" || rec.SelectedSymbol != "" || rec.SelectedTimeframe != "" {
		t.Fatal("selection must be cleared after dispatch")
	}
	if rec.SelectedAI != "gpt4" {
		t.Fatal("selected AI must survive")
	}
	texts := h.api.texts()
	if !strings.HasPrefix(texts[len(texts)-1], "🧠 AI: GPT 4.1") {
		t.Fatalf("main menu not re-sent last: %q", texts[len(texts)-1])
	}
}

func TestTradingPlanCarriesPlanDetails(t *testing.T) {
	h := newHarness(t, false)
	h.seed(7, func(r *session.Record) { r.SelectedAI = "gpt4" })

	h.press(7, render.KeyBegin, "trading_plan")
	h.press(7, render.KeyMarket, "trading_plan", "crypto")
	h.press(7, render.KeySymbol, "trading_plan", "crypto", "BTC/USD")
	h.press(7, render.KeyTimeframe, "trading_plan", "4h")

	if len(h.analyzer.calls) != 1 || h.analyzer.calls[0].PlanDetails != "details" {
		t.Fatalf("calls = %+v", h.analyzer.calls)
	}
	rec := h.record(7)
	if rec.TradingPlanCount != 1 || rec.SignalCount != 0 || rec.TotalSignalCount != 0 || rec.CryptoUsage != 1 {
		t.Fatalf("counters = %+v", rec)
	}
	if rec.LastTradingPlanDate != "2025-06-02" {
		t.Fatalf("plan date = %q", rec.LastTradingPlanDate)
	}
}

func TestBeginWithoutAIShowsAlert(t *testing.T) {
	h := newHarness(t, false)
	h.press(7, render.KeyBegin, "signal")

	text, shown := h.api.alert()
	if !shown || text != "Please choose an AI model first!" {
		t.Fatalf("alert = %q shown=%v", text, shown)
	}
	if len(h.api.texts()) != 0 {
		t.Fatalf("guard failure must not send messages: %v", h.api.texts())
	}
}

func TestCooldownAlertRoundsUp(t *testing.T) {
	h := newHarness(t, false)
	h.seed(7, func(r *session.Record) {
		r.SelectedAI = "gpt4"
		r.SignalCount = 1
		r.LastSignalTime = h.clock.Now().Add(-100*time.Second - 500*time.Millisecond).UnixMilli()
	})
	h.press(7, render.KeyBegin, "signal")

	text, shown := h.api.alert()
	if !shown || !strings.Contains(text, "wait 200 seconds") {
		t.Fatalf("alert = %q shown=%v", text, shown)
	}
}

func TestStaleTimeframeKeyboardHonoursDailyLimit(t *testing.T) {
	h := newHarness(t, false)
	h.seed(7, func(r *session.Record) {
		r.SelectedAI = "gpt4"
		r.SelectedKind = catalog.KindSignal
		r.SelectedMarketType = "forex"
		r.SelectedSymbol = "EUR/USD"
		r.SignalCount = 3
	})
	h.press(7, render.KeyTimeframe, "signal", "1h")

	if len(h.analyzer.calls) != 0 {
		t.Fatal("dispatch must not run past the daily limit")
	}
	if text, _ := h.api.alert(); !strings.Contains(text, "Daily signal limit reached") {
		t.Fatalf("alert = %q", text)
	}
	if rec := h.record(7); rec.SignalCount != 3 {
		t.Fatalf("signal count = %d", rec.SignalCount)
	}
}

func TestFailedDispatchLeavesCounters(t *testing.T) {
	h := newHarness(t, false)
	h.analyzer.err = &analysis.StatusError{Code: 502, Body: "bad gateway"}
	h.seed(7, func(r *session.Record) {
		r.SelectedAI = "gpt4"
		r.SelectedKind = catalog.KindSignal
		r.SelectedMarketType = "crypto"
		r.SelectedSymbol = "ETH/USD"
	})
	h.press(7, render.KeyTimeframe, "signal", "15min")

	rec := h.record(7)
	if rec.SignalCount != 0 || rec.LastSignalTime != 0 || rec.AIUsage["gpt4"] != 0 {
		t.Fatalf("counters moved on failure: %+v", rec)
	}
	if rec.SelectedSymbol != "" {
		t.Fatal("selection must be cleared on failure")
	}
	texts := h.api.texts()
	if !contains(texts, "Webhook API error: 502") {
		t.Fatalf("error not shown: %v", texts)
	}
	if !contains(texts, "Please try again later.") {
		t.Fatalf("follow-up missing: %v", texts)
	}
}

func TestSymbolWithoutMarketIsIncomplete(t *testing.T) {
	h := newHarness(t, false)
	h.seed(7, func(r *session.Record) { r.SelectedAI = "gpt4" })
	h.press(7, render.KeySymbol, "signal", "forex", "XAU/USD")

	if text, shown := h.api.alert(); !shown || !strings.Contains(text, "Missing selection") {
		t.Fatalf("alert = %q", text)
	}
	if !contains(h.api.texts(), render.RetryNotice) {
		t.Fatalf("main menu with retry notice missing: %v", h.api.texts())
	}
	if rec := h.record(7); rec.SelectedSymbol != "" || rec.SignalCount != 0 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestUnknownSymbolIsInvalid(t *testing.T) {
	h := newHarness(t, false)
	h.seed(7, func(r *session.Record) {
		r.SelectedAI = "gpt4"
		r.SelectedKind = catalog.KindSignal
		r.SelectedMarketType = "forex"
	})
	h.press(7, render.KeySymbol, "signal", "forex", "BTC/USD")

	if text, _ := h.api.alert(); !strings.Contains(text, "Invalid selection") {
		t.Fatalf("alert = %q", text)
	}
	if rec := h.record(7); rec.SelectedMarketType != "" {
		t.Fatal("selection must be dropped")
	}
}

func TestAbandonedWizardDoesNotResume(t *testing.T) {
	h := newHarness(t, false)

	h.press(7, render.KeyUseAI, "gpt4")
	h.press(7, render.KeyBegin, "signal")
	h.press(7, render.KeyMarket, "signal", "forex")
	h.press(7, render.KeySymbol, "signal", "forex", "EUR/USD")
	if rec := h.record(7); rec.SelectedKind != catalog.KindSignal || rec.SelectedSymbol != "EUR/USD" {
		t.Fatalf("selection not stored: %+v", rec)
	}

	h.press(7, render.KeyMenu)
	rec := h.record(7)
	if rec.SelectedKind != "" || rec.SelectedMarketType != "" || rec.SelectedSymbol != "" {
		t.Fatalf("menu must drop the selection: %+v", rec)
	}
	if rec.SelectedAI != "gpt4" {
		t.Fatal("selected AI must survive")
	}

	h.api.reset()
	h.press(7, render.KeyTimeframe, "trading_plan", "1h")
	if len(h.analyzer.calls) != 0 {
		t.Fatalf("stale button dispatched: %+v", h.analyzer.calls)
	}
	if text, shown := h.api.alert(); !shown || !strings.Contains(text, "Missing selection") {
		t.Fatalf("alert = %q", text)
	}
	if rec := h.record(7); rec.TradingPlanCount != 0 || rec.SignalCount != 0 {
		t.Fatalf("counters moved: %+v", rec)
	}
}

func TestTimeframeOfOtherKindIsIncomplete(t *testing.T) {
	h := newHarness(t, false)
	h.seed(7, func(r *session.Record) {
		r.SelectedAI = "gpt4"
		r.SelectedKind = catalog.KindSignal
		r.SelectedMarketType = "forex"
		r.SelectedSymbol = "EUR/USD"
	})
	h.press(7, render.KeyTimeframe, "trading_plan", "1h")

	if len(h.analyzer.calls) != 0 {
		t.Fatal("plan must not reuse a signal selection")
	}
	if rec := h.record(7); rec.SelectedSymbol != "" || rec.SelectedKind != "" {
		t.Fatalf("selection must be dropped: %+v", rec)
	}
}

func TestLockedAIPromptsUpgrade(t *testing.T) {
	h := newHarness(t, false)
	h.press(7, render.KeyUseAI, "gemini")

	text, shown := h.api.alert()
	if !shown || !strings.Contains(text, "Gemini 2.5 Pro is not available") {
		t.Fatalf("alert = %q", text)
	}
	if !contains(h.api.texts(), "Upgrade to *Premium*") {
		t.Fatalf("upgrade prompt missing: %v", h.api.texts())
	}
	if rec := h.record(7); rec.SelectedAI != "" {
		t.Fatalf("locked AI selected: %q", rec.SelectedAI)
	}
}

func TestUpgradeRequiresSelfUpgrade(t *testing.T) {
	h := newHarness(t, false)
	h.press(7, render.KeyUpgrade, "pro")
	if rec := h.record(7); rec.Tier != catalog.TierFreemium {
		t.Fatalf("tier changed without self-upgrade: %q", rec.Tier)
	}

	h = newHarness(t, true)
	h.seed(7, func(r *session.Record) { r.LastUpgradeDate = "2025-01-01" })
	h.press(7, render.KeyUpgrade, "premium")
	rec := h.record(7)
	if rec.Tier != catalog.TierPremium || rec.LastUpgradeDate != "2025-06-02" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestAdminCallbacksRejectOthers(t *testing.T) {
	h := newHarness(t, false)
	h.seed(8, func(r *session.Record) { r.SignalCount = 2 })
	h.press(7, render.KeyAdminResetExecute)

	if text, shown := h.api.alert(); !shown || text != render.AccessDeniedAlert {
		t.Fatalf("alert = %q", text)
	}
	if rec := h.record(8); rec.SignalCount != 2 {
		t.Fatal("non-admin reset must not change records")
	}

	h.api.reset()
	h.text(7, "/admin")
	if texts := h.api.texts(); len(texts) != 1 || texts[0] != render.AccessDenied {
		t.Fatalf("texts = %v", texts)
	}
}

func TestAdminResetAll(t *testing.T) {
	h := newHarness(t, false)
	h.seed(adminID, func(r *session.Record) { r.SignalCount = 1 })
	h.seed(8, func(r *session.Record) {
		r.SignalCount = 3
		r.TradingPlanCount = 1
		r.LastSignalDate = "2025-06-01"
	})
	h.press(adminID, render.KeyAdminResetExecute)

	for _, id := range []int64{adminID, 8} {
		rec := h.record(id)
		if rec.SignalCount != 0 || rec.TradingPlanCount != 0 || rec.LastSignalDate != "2025-06-02" {
			t.Fatalf("record %d = %+v", id, rec)
		}
	}
	if !contains(h.api.texts(), "reset for 2 users. Failed for 0 users.") {
		t.Fatalf("texts = %v", h.api.texts())
	}
}

func TestBroadcastCapturesNextMessage(t *testing.T) {
	h := newHarness(t, false)
	h.seed(7, nil)
	h.seed(8, nil)
	h.store.PutRaw(9, []byte("{broken"))

	h.press(adminID, render.KeyAdminBroadcast)
	if !h.record(adminID).AdminBroadcastMode {
		t.Fatal("broadcast mode not armed")
	}

	h.api.reset()
	h.text(adminID, "Market closed tomorrow")

	copies := h.api.called("copyMessage")
	if len(copies) != 2 {
		t.Fatalf("copies = %d, want 2", len(copies))
	}
	for _, c := range copies {
		if c.Params["chat_id"] == "1" {
			t.Fatal("broadcast must skip the admin")
		}
	}
	if !contains(h.api.texts(), "Sent to 2 users. Failed for 1 users.") {
		t.Fatalf("texts = %v", h.api.texts())
	}
	if h.record(adminID).AdminBroadcastMode {
		t.Fatal("broadcast mode must be cleared")
	}

	// Non-admins are never captured.
	h.seed(7, func(r *session.Record) { r.AdminBroadcastMode = true })
	h.api.reset()
	h.text(7, "hello")
	if len(h.api.called("copyMessage")) != 0 {
		t.Fatal("non-admin message broadcast")
	}
}

func TestCommands(t *testing.T) {
	h := newHarness(t, false)
	h.text(7, "/start")
	h.text(7, "/status")
	h.text(7, "/help")

	texts := h.api.texts()
	if len(texts) != 3 {
		t.Fatalf("texts = %d", len(texts))
	}
	if !strings.HasPrefix(texts[0], "👋 Welcome") || !strings.Contains(texts[1], "YOUR PLAN STATUS") || !strings.Contains(texts[2], "Help Guide") {
		t.Fatalf("texts = %v", texts)
	}
	if _, err := h.store.Get(context.Background(), 7); errors.Is(err, session.ErrNotFound) {
		t.Fatal("first contact must create the record")
	}

	visible := h.reg.ListCommands(true)
	for _, c := range visible {
		if c.Text == "admin" {
			t.Fatal("/admin must stay hidden")
		}
	}
}
