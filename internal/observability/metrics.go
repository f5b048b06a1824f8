package observability

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "daylog"

	SinkFile    = "file"
	SinkConsole = "console"

	labelKind = "kind"
	labelSink = "sink"

	metricRecordsName       = "records_written_total"
	metricWriteErrorsName   = "write_errors_total"
	metricFilesCreatedName  = "files_created_total"
	metricInvalidationsName = "cache_invalidations_total"
	metricDeleteErrorsName  = "delete_errors_total"

	helpRecords       = "Records written, by record kind and sink"
	helpWriteErrors   = "Failed record writes, by sink"
	helpFilesCreated  = "Log files created by rotation"
	helpInvalidations = "Times the cached log file path was dropped"
	helpDeleteErrors  = "Failed log directory deletions"
)

var (
	// RecordsWritten counts successful writes per kind and sink.
	RecordsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricRecordsName,
		Help:      helpRecords,
	}, []string{labelKind, labelSink})
	// WriteErrors counts failed writes per sink.
	WriteErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricWriteErrorsName,
		Help:      helpWriteErrors,
	}, []string{labelSink})
	FilesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricFilesCreatedName,
		Help:      helpFilesCreated,
	})
	CacheInvalidations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricInvalidationsName,
		Help:      helpInvalidations,
	})
	DeleteErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricDeleteErrorsName,
		Help:      helpDeleteErrors,
	})
)

// Register registers all observability metrics.
func Register() {
	prometheus.MustRegister(RecordsWritten, WriteErrors, FilesCreated, CacheInvalidations, DeleteErrors)
}
