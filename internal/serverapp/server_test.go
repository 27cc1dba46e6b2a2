package serverapp

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenith/internal/config"
	"zenith/internal/game"
	"zenith/internal/progression"
	"zenith/internal/telemetry"
)

type fixture struct {
	handler http.Handler
	engine  *progression.Engine
	events  *telemetry.MemoryRepository
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, st *game.GameState) fixture {
	t.Helper()
	events := telemetry.NewMemoryRepository()
	e := progression.NewEngine(progression.Options{
		Clock:     game.NewFakeClock(time.Now()),
		Rand:      game.NewSequenceRand(),
		Telemetry: events,
		State:     st,
	})
	cfg := config.Defaults()
	cfg.Server.ActionsPerSecond = 1000
	cfg.Server.ActionBurst = 1000
	var logs bytes.Buffer
	h, err := NewHandler(Options{
		Config:    cfg,
		Engine:    e,
		Telemetry: events,
		Logger:    log.New(&logs, "", 0),
	})
	require.NoError(t, err)
	return fixture{handler: h, engine: e, events: events, logs: &logs}
}

func (f fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type actionBody struct {
	Result  json.RawMessage     `json:"result"`
	Readout progression.Readout `json:"readout"`
}

func TestNewHandlerRequiresDeps(t *testing.T) {
	_, err := NewHandler(Options{})
	assert.Error(t, err)
	_, err = NewHandler(Options{Config: config.Defaults()})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "zenith", body["service"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestClickAndState(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/click", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body actionBody
	decodeBody(t, rec, &body)
	var award progression.Award
	require.NoError(t, json.Unmarshal(body.Result, &award))
	assert.Equal(t, 1.0, award.Amount)
	assert.Equal(t, 1.0, body.Readout.State.Currency)

	rec = f.do(t, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ro progression.Readout
	decodeBody(t, rec, &ro)
	assert.Equal(t, 1, ro.State.TotalClicks)
	assert.Len(t, ro.Upgrades, 10)
	assert.Len(t, ro.PrestigeUpgrades, 10)
	assert.Len(t, ro.Quests, 3)

	rec = f.do(t, http.MethodGet, "/api/click", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBuy(t *testing.T) {
	st := game.InitialState()
	st.Currency = 1000
	f := newFixture(t, &st)

	rec := f.do(t, http.MethodPost, "/api/upgrades/buy", map[string]string{"id": "click_1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body actionBody
	decodeBody(t, rec, &body)
	var p progression.Purchase
	require.NoError(t, json.Unmarshal(body.Result, &p))
	assert.Equal(t, 1, p.Levels)
	assert.Equal(t, 15.0, p.Cost)
	assert.Equal(t, 985.0, body.Readout.State.Currency)

	rec = f.do(t, http.MethodPost, "/api/upgrades/buy-max", map[string]string{"id": "click_1"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &body)
	require.NoError(t, json.Unmarshal(body.Result, &p))
	assert.Greater(t, p.Levels, 1)
	assert.Equal(t, 1+p.Levels, body.Readout.State.Upgrades["click_1"])

	rec = f.do(t, http.MethodPost, "/api/upgrades/buy", map[string]string{"id": "pres_1"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &body)
	require.NoError(t, json.Unmarshal(body.Result, &p))
	assert.Equal(t, progression.RefusedFunds, p.Refused)
}

func TestAccessLogCarriesOutcome(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/upgrades/buy", map[string]string{"id": "click_1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(f.logs.Bytes()), &line))
	assert.Equal(t, "http_request", line["msg"])
	assert.Equal(t, "click_1", line["upgrade_id"])
	assert.Equal(t, string(progression.RefusedFunds), line["refused"])
	assert.Equal(t, float64(f.engine.Version()), line["version"])
	assert.Equal(t, rec.Header().Get("X-Request-Id"), line["request_id"])
}

func TestBuyRejectsBadInput(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/upgrades/buy", map[string]string{"id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Contains(t, body["error"], "nope")

	rec = f.do(t, http.MethodPost, "/api/upgrades/buy", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/upgrades/buy-max", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAscend(t *testing.T) {
	st := game.InitialState()
	st.Currency = 2e6
	f := newFixture(t, &st)

	rec := f.do(t, http.MethodPost, "/api/ascend", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body actionBody
	decodeBody(t, rec, &body)
	var res progression.AscendResult
	require.NoError(t, json.Unmarshal(body.Result, &res))
	assert.True(t, res.Applied)
	assert.Equal(t, 2.0, res.Points)
	assert.Equal(t, 2.0, body.Readout.State.PrestigePoints)
	assert.Zero(t, body.Readout.State.Currency)
}

func TestConsole(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/console", map[string]string{"line": "-set_money 500"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body actionBody
	decodeBody(t, rec, &body)
	var res struct {
		Lines   []string `json:"lines"`
		Mutated bool     `json:"mutated"`
	}
	require.NoError(t, json.Unmarshal(body.Result, &res))
	assert.True(t, res.Mutated)
	assert.Equal(t, 500.0, body.Readout.State.Currency)

	rec = f.do(t, http.MethodPost, "/api/console", map[string]string{"line": "-set_money abc"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &body)
	require.NoError(t, json.Unmarshal(body.Result, &res))
	assert.False(t, res.Mutated)
	assert.Equal(t, 500.0, body.Readout.State.Currency)

	rec = f.do(t, http.MethodPost, "/api/console", map[string]string{"line": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggest(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/console/suggest?q=-upgrade_amount+cyb", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Suggestions []string `json:"suggestions"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, []string{`-upgrade_amount "Cybernetic Finger"`}, body.Suggestions)

	rec = f.do(t, http.MethodGet, "/api/console/suggest", nil)
	decodeBody(t, rec, &body)
	assert.Empty(t, body.Suggestions)
}

func TestQuestsAndStats(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/api/click", nil)
	f.do(t, http.MethodPost, "/api/click", nil)

	rec := f.do(t, http.MethodGet, "/api/quests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var qb struct {
		Quests []progression.QuestView `json:"quests"`
	}
	decodeBody(t, rec, &qb)
	require.Len(t, qb.Quests, 3)
	assert.Equal(t, 2.0, qb.Quests[0].Current)

	rec = f.do(t, http.MethodGet, "/api/telemetry/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats telemetry.Stats
	decodeBody(t, rec, &stats)
	assert.Equal(t, 2, stats.Clicks)
	assert.Equal(t, 1, stats.Rollovers)

	rec = f.do(t, http.MethodGet, "/api/telemetry/stats?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusPage(t *testing.T) {
	st := game.InitialState()
	st.Currency = 1234567
	f := newFixture(t, &st)

	rec := f.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, "1,234,567 credits")
	assert.Contains(t, html, "Cybernetic Finger")
	assert.Contains(t, html, `data-id="click_1"`)

	rec = f.do(t, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/static/js/zenith.js", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	e := progression.NewEngine(progression.Options{Rand: game.NewSequenceRand()})
	cfg := config.Defaults()
	cfg.Server.ActionsPerSecond = 1
	cfg.Server.ActionBurst = 1
	h, err := NewHandler(Options{Config: cfg, Engine: e, Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, err)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/click", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
