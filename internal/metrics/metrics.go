// Package metrics exposes attachment counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskboard"

type Collectors struct {
	Uploads     *prometheus.CounterVec
	UploadBytes prometheus.Counter
	Downloads   *prometheus.CounterVec
	Deletes     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attachment",
			Name:      "uploads_total",
			Help:      "Upload requests by result.",
		}, []string{"result"}),
		UploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attachment",
			Name:      "upload_bytes_total",
			Help:      "Bytes written to the file store by successful uploads.",
		}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attachment",
			Name:      "downloads_total",
			Help:      "Download requests by result.",
		}, []string{"result"}),
		Deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attachment",
			Name:      "deletes_total",
			Help:      "Delete requests by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(c.Uploads, c.UploadBytes, c.Downloads, c.Deletes)
	return c
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
