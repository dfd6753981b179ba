package metrics

import (
	"fmt"
	"log/slog"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler serves the metrics gathered from reg, or from the default
// registry when reg is nil. A failing collector is logged and the remaining
// metrics are still served.
func HTTPHandler(reg *prom.Registry) http.Handler {
	var gatherer prom.Gatherer = prom.DefaultGatherer
	if reg != nil {
		gatherer = reg
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog:          scrapeLogger{},
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	})
}

type scrapeLogger struct{}

func (scrapeLogger) Println(v ...any) {
	slog.Warn("Metrics scrape error", slog.String("error", fmt.Sprint(v...)))
}
