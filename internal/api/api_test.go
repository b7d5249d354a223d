package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/MJE43/pf-casino-engine/internal/casino"
	"github.com/MJE43/pf-casino-engine/internal/engine"
	"github.com/MJE43/pf-casino-engine/internal/fair"
	"github.com/MJE43/pf-casino-engine/internal/games"
	"github.com/MJE43/pf-casino-engine/internal/logging"
	"github.com/MJE43/pf-casino-engine/internal/seeds"
	"github.com/MJE43/pf-casino-engine/internal/store"
)

const testToken = "s3cret"

type testEnv struct {
	handler http.Handler
	db      *store.SQLiteDB
	seeds   *seeds.Store
}

func newTestEnv(t *testing.T, timeouts map[games.Variant]time.Duration) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := logging.Discard()

	db, err := store.Open(ctx, ":memory:", store.WithLogger(log))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	seedStore := seeds.NewStore(db, seeds.WithLogger(log))
	if _, _, err := seedStore.Rotate(ctx); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	svc := casino.NewService(casino.Deps{
		Ledger:   db,
		Wagers:   db,
		Usage:    db,
		States:   db,
		Drawer:   fair.NewAdvancingDrawer(fair.NewGenerator(seedStore, db)),
		Timeouts: timeouts,
		Logger:   log,
	})
	t.Cleanup(svc.Close)

	srv := NewServer(Deps{Casino: svc, Seeds: seedStore, Players: db, Logger: log, APIToken: testToken})
	return &testEnv{handler: srv.Routes(), db: db, seeds: seedStore}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) fund(t *testing.T, player, amount string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/players/"+player+"/credit", map[string]string{"amount": amount}, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("credit returned %d: %s", w.Code, w.Body.String())
	}
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return v
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, errType string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d: %s", w.Code, status, w.Body.String())
	}
	if got := decodeBody[EngineError](t, w); got.Type != errType {
		t.Errorf("error type = %q, want %q (%s)", got.Type, errType, got.Message)
	}
}

// gameResponse mirrors GameResponse with the game left raw.
type gameResponse struct {
	PlayerID string          `json:"player_id"`
	Game     json.RawMessage `json:"game"`
	Balance  decimal.Decimal `json:"balance"`
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	resp := decodeBody[HealthCheckResponse](t, w)
	// Seeds may read degraded if the test straddles an epoch boundary.
	if resp.Status == HealthStatusUnhealthy || resp.Checks["database"].Status != HealthStatusHealthy {
		t.Errorf("status = %s, checks = %+v", resp.Status, resp.Checks)
	}
	if resp.EngineVersion == "" {
		t.Error("Expected engine version in response")
	}
}

func TestGamesEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/v1/games", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	resp := decodeBody[GamesResponse](t, w)
	if len(resp.Games) != len(games.Variants) {
		t.Fatalf("got %d games", len(resp.Games))
	}
	for _, g := range resp.Games {
		if g.Name == "mines" && g.Timeout != "3m0s" {
			t.Errorf("mines timeout = %s", g.Timeout)
		}
		if g.Description == "" {
			t.Errorf("%s has no description", g.Name)
		}
	}
}

func TestSeedEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	cur := env.seeds.Current()

	w := env.do(t, http.MethodGet, "/api/v1/seeds/current", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("current seed returned %d", w.Code)
	}
	resp := decodeBody[SeedResponse](t, w)
	if resp.Seed.PublicHash != cur.PublicHash || resp.Disclosure != "rotation" {
		t.Errorf("unexpected current seed %+v", resp)
	}
	if !seeds.VerifySeed(resp.Seed) {
		t.Error("served seed breaks SHA256(secret) == public")
	}

	w = env.do(t, http.MethodGet, "/api/v1/seeds/"+strconv.FormatInt(cur.Epoch, 10), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("seed by epoch returned %d", w.Code)
	}

	expectError(t, env.do(t, http.MethodGet, "/api/v1/seeds/99", nil, ""), http.StatusNotFound, ErrTypeNotFound)
	expectError(t, env.do(t, http.MethodGet, "/api/v1/seeds/abc", nil, ""), http.StatusBadRequest, ErrTypeValidation)
	expectError(t, env.do(t, http.MethodGet, "/api/v1/seeds?from=yesterday", nil, ""), http.StatusBadRequest, ErrTypeValidation)

	w = env.do(t, http.MethodGet, "/api/v1/seeds", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("seed list returned %d", w.Code)
	}
	if list := decodeBody[SeedListResponse](t, w); len(list.Seeds) != 1 || list.Seeds[0].Epoch != cur.Epoch {
		t.Errorf("unexpected seed list %+v", list.Seeds)
	}
}

func TestVerifyEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	secret, public := seeds.Derive(12345)

	w := env.do(t, http.MethodPost, "/api/v1/verify", VerifyRequest{
		SecretSeed: secret, ClientSeed: "client", Nonce: 0, Min: 0, Max: 36,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("verify returned %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody[VerifyResponse](t, w)
	if resp.Value != 17 || resp.PublicHash != public {
		t.Errorf("unexpected verification %+v", resp)
	}
	if resp.Digest != engine.Digest(secret, "client", 0) {
		t.Error("digest mismatch")
	}

	cur := env.seeds.Current()
	epoch := cur.Epoch
	w = env.do(t, http.MethodPost, "/api/v1/verify", VerifyRequest{
		Epoch: &epoch, ClientSeed: "abc", Nonce: 7, Min: 0, Max: 9999,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("verify by epoch returned %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBody[VerifyResponse](t, w); got.Value != engine.FairInt(cur.SecretSeed, "abc", 7, 0, 9999) {
		t.Errorf("verify by epoch = %d", got.Value)
	}

	expectError(t, env.do(t, http.MethodPost, "/api/v1/verify", VerifyRequest{ClientSeed: "c", Max: 1}, ""),
		http.StatusBadRequest, ErrTypeValidation)
	expectError(t, env.do(t, http.MethodPost, "/api/v1/verify", VerifyRequest{SecretSeed: "s", ClientSeed: "c", Min: 5, Max: 1}, ""),
		http.StatusBadRequest, ErrTypeValidation)
	missing := int64(1)
	expectError(t, env.do(t, http.MethodPost, "/api/v1/verify", VerifyRequest{Epoch: &missing, ClientSeed: "c", Max: 1}, ""),
		http.StatusNotFound, ErrTypeNotFound)

	w = env.do(t, http.MethodPost, "/api/v1/verify", VerifyRequest{
		SecretSeed: "s", ClientSeed: "c", Min: math.MinInt64, Max: math.MaxInt64,
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("full-range verify returned %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBody[VerifyResponse](t, w); got.Value != engine.FairInt("s", "c", 0, math.MinInt64, math.MaxInt64) {
		t.Errorf("full-range verify = %d", got.Value)
	}
}

func TestCoinflipRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fund(t, "p1", "100")

	w := env.do(t, http.MethodPost, "/api/v1/players/p1/coinflip", BetRequest{Bet: decimal.NewFromInt(10)}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("start returned %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBody[gameResponse](t, w); !got.Balance.Equal(decimal.NewFromInt(90)) {
		t.Errorf("balance after stake = %s", got.Balance)
	}

	expectError(t, env.do(t, http.MethodPost, "/api/v1/players/p1/mines", BetRequest{Bet: decimal.NewFromInt(1), Mines: 3}, ""),
		http.StatusConflict, ErrTypeSessionConflict)

	w = env.do(t, http.MethodGet, "/api/v1/players/p1/session", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("session returned %d", w.Code)
	}
	if s := decodeBody[SessionResponse](t, w); s.Session.Variant != games.VariantCoinflip {
		t.Errorf("session variant = %s", s.Session.Variant)
	}

	w = env.do(t, http.MethodPost, "/api/v1/players/p1/coinflip/flip", FlipRequest{Side: "heads"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("flip returned %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody[gameResponse](t, w)
	var out games.CoinflipOutcome
	if err := json.Unmarshal(resp.Game, &out); err != nil {
		t.Fatal(err)
	}
	want := decimal.NewFromInt(90)
	if out.Win {
		want = decimal.NewFromInt(109)
	}
	if !resp.Balance.Equal(want) {
		t.Errorf("balance = %s, want %s (win=%v)", resp.Balance, want, out.Win)
	}

	expectError(t, env.do(t, http.MethodGet, "/api/v1/players/p1/session", nil, ""), http.StatusNotFound, ErrTypeNoSession)

	w = env.do(t, http.MethodGet, "/api/v1/players/p1/wagers", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("wagers returned %d", w.Code)
	}
	wagers := decodeBody[WagersResponse](t, w)
	if len(wagers.Wagers) != 1 || wagers.Wagers[0].Variant != games.VariantCoinflip || wagers.Wagers[0].Nonce != 0 {
		t.Errorf("unexpected wagers %+v", wagers.Wagers)
	}

	w = env.do(t, http.MethodGet, "/api/v1/players/p1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("profile returned %d", w.Code)
	}
	profile := decodeBody[store.Profile](t, w)
	if profile.Stats.GamesPlayed != 1 || profile.NextNonce != 1 || !profile.Balance.Equal(want) {
		t.Errorf("unexpected profile %+v", profile)
	}
}

func TestBlackjackToCompletion(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fund(t, "p1", "50")

	w := env.do(t, http.MethodPost, "/api/v1/players/p1/blackjack", BetRequest{Bet: decimal.NewFromInt(10)}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("start returned %d: %s", w.Code, w.Body.String())
	}
	var view struct {
		State      string `json:"state"`
		HoleHidden bool   `json:"hole_hidden"`
	}
	if err := json.Unmarshal(decodeBody[gameResponse](t, w).Game, &view); err != nil {
		t.Fatal(err)
	}
	if view.State == "player_turn" {
		if !view.HoleHidden {
			t.Error("dealer hole card must be hidden during the player's turn")
		}
		w = env.do(t, http.MethodPost, "/api/v1/players/p1/blackjack/stand", nil, "")
		if w.Code != http.StatusOK {
			t.Fatalf("stand returned %d: %s", w.Code, w.Body.String())
		}
		if err := json.Unmarshal(decodeBody[gameResponse](t, w).Game, &view); err != nil {
			t.Fatal(err)
		}
	}
	if view.State != "ended" || view.HoleHidden {
		t.Errorf("hand not finished: %+v", view)
	}
	expectError(t, env.do(t, http.MethodPost, "/api/v1/players/p1/blackjack/hit", nil, ""), http.StatusNotFound, ErrTypeNoSession)
}

func TestGameValidationErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fund(t, "p1", "20")

	tests := []struct {
		name    string
		path    string
		body    any
		status  int
		errType string
	}{
		{"zero bet", "/api/v1/players/p1/coinflip", BetRequest{Bet: decimal.Zero}, http.StatusBadRequest, ErrTypeInvalidBet},
		{"too many mines", "/api/v1/players/p1/mines", BetRequest{Bet: decimal.NewFromInt(1), Mines: 25}, http.StatusBadRequest, ErrTypeInvalidParams},
		{"unknown roulette bet", "/api/v1/players/p1/roulette", BetRequest{Bet: decimal.NewFromInt(1), BetType: "purple"}, http.StatusBadRequest, ErrTypeInvalidParams},
		{"stake above balance", "/api/v1/players/p1/coinflip", BetRequest{Bet: decimal.NewFromInt(21)}, http.StatusBadRequest, ErrTypeInsufficient},
		{"reveal without session", "/api/v1/players/p1/mines/reveal", map[string]int{"cell": 3}, http.StatusNotFound, ErrTypeNoSession},
		{"reveal without cell", "/api/v1/players/p1/mines/reveal", map[string]string{}, http.StatusBadRequest, ErrTypeValidation},
		{"spin without session", "/api/v1/players/p1/roulette/spin", nil, http.StatusNotFound, ErrTypeNoSession},
		{"invalid player id", "/api/v1/players/a%20b/coinflip", BetRequest{Bet: decimal.NewFromInt(1)}, http.StatusBadRequest, ErrTypeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, env.do(t, http.MethodPost, tt.path, tt.body, ""), tt.status, tt.errType)
		})
	}

	w := env.do(t, http.MethodPost, "/api/v1/players/p1/coinflip", strings.Repeat("x", 3), "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("string body accepted with %d", w.Code)
	}
}

func TestMinesWrongActionForGame(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fund(t, "p1", "20")

	if w := env.do(t, http.MethodPost, "/api/v1/players/p1/roulette", BetRequest{Bet: decimal.NewFromInt(5), BetType: "red"}, ""); w.Code != http.StatusCreated {
		t.Fatalf("start roulette returned %d: %s", w.Code, w.Body.String())
	}
	expectError(t, env.do(t, http.MethodPost, "/api/v1/players/p1/mines/cashout", nil, ""), http.StatusConflict, ErrTypeInvalidTransition)

	w := env.do(t, http.MethodPost, "/api/v1/players/p1/roulette/spin", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("spin returned %d: %s", w.Code, w.Body.String())
	}
	var out games.RouletteOutcome
	if err := json.Unmarshal(decodeBody[gameResponse](t, w).Game, &out); err != nil {
		t.Fatal(err)
	}
	if out.Number < 0 || out.Number > 36 || out.BetType != "red" {
		t.Errorf("unexpected outcome %+v", out)
	}
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	body := map[string]string{"amount": "25"}
	expectError(t, env.do(t, http.MethodPost, "/api/v1/players/p1/credit", body, ""), http.StatusUnauthorized, ErrTypeUnauthorized)
	expectError(t, env.do(t, http.MethodPost, "/api/v1/players/p1/credit", body, "wrong"), http.StatusUnauthorized, ErrTypeUnauthorized)

	w := env.do(t, http.MethodPost, "/api/v1/players/p1/credit", body, testToken)
	if w.Code != http.StatusOK {
		t.Fatalf("credit returned %d", w.Code)
	}
	if got := decodeBody[BalanceResponse](t, w); !got.Balance.Equal(decimal.NewFromInt(25)) {
		t.Errorf("balance = %s", got.Balance)
	}

	w = env.do(t, http.MethodPost, "/api/v1/players/p1/debit", map[string]string{"amount": "5.5"}, testToken)
	if got := decodeBody[BalanceResponse](t, w); !got.Balance.Equal(decimal.RequireFromString("19.5")) {
		t.Errorf("balance after debit = %s", got.Balance)
	}
	expectError(t, env.do(t, http.MethodPost, "/api/v1/players/p1/debit", map[string]string{"amount": "100"}, testToken),
		http.StatusBadRequest, ErrTypeInsufficient)
	expectError(t, env.do(t, http.MethodPost, "/api/v1/players/p1/credit", map[string]string{"amount": "-1"}, testToken),
		http.StatusBadRequest, ErrTypeValidation)

	env.fund(t, "p2", "40")
	w = env.do(t, http.MethodGet, "/api/v1/leaderboard?limit=5", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("leaderboard returned %d", w.Code)
	}
	board := decodeBody[LeaderboardResponse](t, w)
	if len(board.Entries) != 2 || board.Entries[0].PlayerID != "p2" || board.Entries[1].Rank != 2 {
		t.Errorf("unexpected leaderboard %+v", board.Entries)
	}
}

func TestClientSeedEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fund(t, "p1", "20")

	w := env.do(t, http.MethodPut, "/api/v1/players/p1/client-seed", ClientSeedRequest{ClientSeed: "lucky"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("client seed returned %d: %s", w.Code, w.Body.String())
	}
	if st := decodeBody[fair.PlayerSeedState](t, w); st.ClientSeed != "lucky" || st.Nonce != 0 {
		t.Errorf("unexpected state %+v", st)
	}

	if w := env.do(t, http.MethodPost, "/api/v1/players/p1/coinflip", BetRequest{Bet: decimal.NewFromInt(1)}, ""); w.Code != http.StatusCreated {
		t.Fatalf("start returned %d", w.Code)
	}
	expectError(t, env.do(t, http.MethodPut, "/api/v1/players/p1/client-seed", ClientSeedRequest{ClientSeed: "other"}, ""),
		http.StatusConflict, ErrTypeSessionConflict)
}

func TestEventsStreamForfeits(t *testing.T) {
	env := newTestEnv(t, map[games.Variant]time.Duration{games.VariantCoinflip: 100 * time.Millisecond})
	env.fund(t, "p1", "20")

	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/events?player=p1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if w := env.do(t, http.MethodPost, "/api/v1/players/p1/coinflip", BetRequest{Bet: decimal.NewFromInt(4)}, ""); w.Code != http.StatusCreated {
		t.Fatalf("start returned %d", w.Code)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg struct {
		Event string `json:"event"`
		Data  struct {
			PlayerID string          `json:"player_id"`
			Variant  string          `json:"variant"`
			Bet      decimal.Decimal `json:"forfeited_bet"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if msg.Event != "forfeit" || msg.Data.PlayerID != "p1" || msg.Data.Variant != "coinflip" || !msg.Data.Bet.Equal(decimal.NewFromInt(4)) {
		t.Errorf("unexpected event %+v", msg)
	}

	w := env.do(t, http.MethodGet, "/api/v1/players/p1", nil, "")
	profile := decodeBody[store.Profile](t, w)
	if profile.Stats.Forfeits != 1 || !profile.Balance.Equal(decimal.NewFromInt(16)) {
		t.Errorf("forfeit not recorded: %+v", profile)
	}
}

func TestEventsStreamUsageWarning(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fund(t, "p1", "20")
	env.fund(t, "p2", "20")

	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/events?player=p1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// p2's warning is filtered out; p1's half-balance wager comes through.
	for _, player := range []string{"p2", "p1"} {
		if w := env.do(t, http.MethodPost, "/api/v1/players/"+player+"/coinflip", BetRequest{Bet: decimal.NewFromInt(10)}, ""); w.Code != http.StatusCreated {
			t.Fatalf("start returned %d", w.Code)
		}
		if w := env.do(t, http.MethodPost, "/api/v1/players/"+player+"/coinflip/flip", FlipRequest{Side: "heads"}, ""); w.Code != http.StatusOK {
			t.Fatalf("flip returned %d: %s", w.Code, w.Body)
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg struct {
		Channel string `json:"channel"`
		Event   string `json:"event"`
		Data    struct {
			PlayerID string          `json:"player_id"`
			Reason   string          `json:"reason"`
			Percent  int64           `json:"percent"`
			Balance  decimal.Decimal `json:"reference_balance"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if msg.Channel != "wellbeing" || msg.Event != "usage_warning" || msg.Data.PlayerID != "p1" ||
		msg.Data.Reason != "wager_half" || msg.Data.Percent != 50 || !msg.Data.Balance.Equal(decimal.NewFromInt(20)) {
		t.Errorf("unexpected event %+v", msg)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/players/alice/coinflip", nil)
	req.Header.Set("Origin", "https://example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("allow methods = %q", got)
	}

	plain := env.do(t, http.MethodGet, "/health/live", nil, "")
	if plain.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("simple requests must carry the allow-origin header")
	}
}
