package webui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"tripranker.dev/internal/appconf"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, logger *slog.Logger, title string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
	})
	if err != nil {
		logger.Error("failed to execute debug template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}

	logger := webUI.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var data any
	var title string

	switch r.URL.Query().Get("dataType") {
	case "ratelimits":
		counts := map[string]int{}
		if webUI.RateLimits != nil {
			counts = webUI.RateLimits.RateLimitCounts()
		}
		data = counts
		title = "Rate limiter - Requests per address"
	case "cache":
		data = webUI.NSClient.CacheStats()
		title = "Journey detail cache"
	case "config":
		data = redactedConfig(webUI.Config)
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: ratelimits, cache, config.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, logger, title, data)
}

func redactedConfig(cfg appconf.Config) appconf.Config {
	if cfg.UpstreamAPIKey != "" {
		cfg.UpstreamAPIKey = "[redacted]"
	}
	return cfg
}
