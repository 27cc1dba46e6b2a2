package serverapp

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"zenith/internal/console"
	"zenith/internal/httpmw"
	"zenith/internal/logx"
	"zenith/internal/progression"
	"zenith/internal/telemetry"
)

type handler struct {
	engine    *progression.Engine
	telemetry telemetry.Repository
	logger    *log.Logger
}

type upgradeRequest struct {
	ID string `json:"id"`
}

type consoleRequest struct {
	Line string `json:"line"`
}

// actionResponse pairs what an action did with the readout after it.
type actionResponse struct {
	Result  any                 `json:"result"`
	Readout progression.Readout `json:"readout"`
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decode reads a small JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

// respond writes the action result with a fresh readout and tags the access
// log line with the engine version it produced.
func (h *handler) respond(w http.ResponseWriter, r *http.Request, result any) {
	ro := h.engine.Readout()
	httpmw.Annotate(r.Context(), "version", ro.Version)
	writeJSON(w, http.StatusOK, actionResponse{Result: result, Readout: ro})
}

func (h *handler) State(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Readout())
}

func (h *handler) Click(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	h.respond(w, r, h.engine.Click(r.Context()))
}

func (h *handler) Buy(w http.ResponseWriter, r *http.Request) {
	h.buy(w, r, false)
}

func (h *handler) BuyMax(w http.ResponseWriter, r *http.Request) {
	h.buy(w, r, true)
}

func (h *handler) buy(w http.ResponseWriter, r *http.Request, all bool) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req upgradeRequest
	if !decode(w, r, &req) {
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	var p progression.Purchase
	if all {
		p = h.engine.PurchaseMax(r.Context(), req.ID)
	} else {
		p = h.engine.Purchase(r.Context(), req.ID)
	}
	if p.Refused == progression.RefusedUnknown {
		writeError(w, http.StatusBadRequest, "unknown upgrade: "+req.ID)
		return
	}
	httpmw.Annotate(r.Context(), "upgrade_id", req.ID)
	if !p.Applied() {
		httpmw.Annotate(r.Context(), "refused", string(p.Refused))
	}
	h.respond(w, r, p)
}

func (h *handler) Ascend(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	res := h.engine.Ascend(r.Context())
	httpmw.Annotate(r.Context(), "applied", res.Applied)
	h.respond(w, r, res)
}

func (h *handler) Console(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req consoleRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Line) == "" {
		writeError(w, http.StatusBadRequest, "line is required")
		return
	}
	res := h.engine.Exec(r.Context(), req.Line)
	if res.Mutated {
		logx.Info(h.logger, "console_command", map[string]any{"line": req.Line, "reset": res.Reset})
	}
	httpmw.Annotate(r.Context(), "mutated", res.Mutated)
	h.respond(w, r, res)
}

func (h *handler) Suggest(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	out := console.Suggest(r.URL.Query().Get("q"), h.engine.Catalog())
	if out == nil {
		out = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": out})
}

func (h *handler) Quests(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	ro := h.engine.Readout()
	writeJSON(w, http.StatusOK, map[string]any{
		"quests":   ro.Quests,
		"resetsAt": ro.QuestsResetAt,
	})
}

// Stats summarizes telemetry since the optional ?since= RFC3339 time, or
// over the last 24 hours.
func (h *handler) Stats(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if h.telemetry == nil {
		writeError(w, http.StatusServiceUnavailable, "telemetry disabled")
		return
	}
	since := time.Now().Add(-24 * time.Hour)
	if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		since = t
	}
	events, err := h.telemetry.GetEvents(since, nil)
	if err != nil {
		logx.Error(h.logger, "telemetry_read_failed", err, nil)
		writeError(w, http.StatusInternalServerError, "telemetry unavailable")
		return
	}
	stats, err := telemetry.CalculateStats(events, since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
