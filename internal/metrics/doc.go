// Package metrics records import metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics are
// collected only when a PrometheusRecorder is injected:
//
//	reg := prometheus.NewRegistry()
//	imp := importer.New(cfg, site).WithRecorder(metrics.NewPrometheusRecorder(reg))
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
