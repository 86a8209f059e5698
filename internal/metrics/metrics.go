package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload service metrics
var (
	// UploadsTotal counts upload attempts by outcome
	// (stored, no_file_part, no_selected_file, invalid_name, error).
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertkit_uploads_total",
			Help: "Upload attempts by outcome",
		},
		[]string{"outcome"},
	)

	// UploadBytesTotal counts bytes written to the upload directory.
	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alertkit_upload_bytes_total",
			Help: "Bytes stored by successful uploads",
		},
	)

	// FetchesTotal counts image and QR lookups by route and result (hit, miss).
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertkit_fetches_total",
			Help: "Stored file lookups by route and result",
		},
		[]string{"route", "result"},
	)

	// HTTPRequestDuration tracks request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alertkit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route", "status"},
	)
)
