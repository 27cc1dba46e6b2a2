package serverapp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a-h/templ"

	"zenith/internal/config"
	"zenith/internal/httpmw"
	"zenith/internal/progression"
	"zenith/internal/telemetry"
	staticfiles "zenith/static"
	"zenith/ui/page"
)

type Options struct {
	Config        *config.Config
	Engine        *progression.Engine
	Telemetry     telemetry.Repository
	StaticDir     string
	UseDiskStatic bool
	Logger        *log.Logger
}

func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "static"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	mux := http.NewServeMux()

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if opts.UseDiskStatic {
		staticHandler = http.FileServer(http.Dir(opts.StaticDir))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", staticHandler))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "zenith",
			"version": opts.Engine.Version(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	h := &handler{engine: opts.Engine, telemetry: opts.Telemetry, logger: opts.Logger}
	mux.HandleFunc("/api/state", h.State)
	mux.HandleFunc("/api/click", h.Click)
	mux.HandleFunc("/api/upgrades/buy", h.Buy)
	mux.HandleFunc("/api/upgrades/buy-max", h.BuyMax)
	mux.HandleFunc("/api/ascend", h.Ascend)
	mux.HandleFunc("/api/console", h.Console)
	mux.HandleFunc("/api/console/suggest", h.Suggest)
	mux.HandleFunc("/api/quests", h.Quests)
	mux.HandleFunc("/api/telemetry/stats", h.Stats)

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(opts.Config); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		templ.Handler(page.StatusPage(opts.Engine.Readout())).ServeHTTP(w, r)
	})

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(opts.Logger),
		httpmw.WithRateLimit(httpmw.NewLimiter(opts.Config.Server.ActionsPerSecond, opts.Config.Server.ActionBurst)),
	), nil
}

func UseDiskStaticByEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ZENITH_DEV_STATIC"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
