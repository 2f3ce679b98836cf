package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instrumentation of the share service
type Metrics struct {
	registry *prometheus.Registry

	SharesCreated  *prometheus.CounterVec
	SharesRemoved  prometheus.Counter
	ShareViews     prometheus.Counter
	ViewsRejected  *prometheus.CounterVec
	ArchivesBuilt  prometheus.Counter
	FilesUploaded  prometheus.Counter
	BytesUploaded  prometheus.Counter
	FileDownloads  prometheus.Counter
	ExpiredCleaned prometheus.Counter
}

// New creates the metric set on a fresh registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		SharesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shareforge_shares_created_total",
			Help: "Shares created, by share type.",
		}, []string{"type"}),
		SharesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shareforge_shares_removed_total",
			Help: "Shares removed by their owner or an admin.",
		}),
		ShareViews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shareforge_share_views_total",
			Help: "Successful share access grants.",
		}),
		ViewsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shareforge_share_views_rejected_total",
			Help: "Rejected share access attempts, by reason.",
		}, []string{"reason"}),
		ArchivesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shareforge_archives_built_total",
			Help: "Zip archives packaged for completed shares.",
		}),
		FilesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shareforge_files_uploaded_total",
			Help: "Files uploaded into shares.",
		}),
		BytesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shareforge_bytes_uploaded_total",
			Help: "Bytes uploaded into shares.",
		}),
		FileDownloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shareforge_file_downloads_total",
			Help: "File and archive downloads served.",
		}),
		ExpiredCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shareforge_expired_shares_cleaned_total",
			Help: "Expired shares deleted by the cleanup worker.",
		}),
	}

	registry.MustRegister(
		m.SharesCreated,
		m.SharesRemoved,
		m.ShareViews,
		m.ViewsRejected,
		m.ArchivesBuilt,
		m.FilesUploaded,
		m.BytesUploaded,
		m.FileDownloads,
		m.ExpiredCleaned,
	)
	return m
}

// Handler returns the scrape endpoint handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
