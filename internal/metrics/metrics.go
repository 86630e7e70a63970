package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	taskRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "farmwatch", Subsystem: "task", Name: "runs_total", Help: "Periodic task runs by outcome"},
		[]string{"task", "outcome"},
	)
	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "farmwatch", Subsystem: "task", Name: "duration_seconds", Help: "Periodic task run duration", Buckets: prometheus.DefBuckets},
		[]string{"task"},
	)
	taskLastSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "farmwatch", Subsystem: "task", Name: "last_success_timestamp_seconds", Help: "Unix time of the last successful run"},
		[]string{"task"},
	)
	samplesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "farmwatch", Subsystem: "presence", Name: "samples_recorded_total", Help: "Presence samples inserted"},
	)
	samplesPurged = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "farmwatch", Subsystem: "presence", Name: "samples_purged_total", Help: "Presence samples removed by retention"},
	)
	hoursCredited = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "farmwatch", Subsystem: "credit", Name: "hours_total", Help: "Hours newly credited to the all-time ledger"},
	)
	pushEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "farmwatch", Subsystem: "push", Name: "events_total", Help: "Chat panel push outcomes"},
		[]string{"outcome"},
	)
	pushQueueLen = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "farmwatch", Subsystem: "push", Name: "queue_len", Help: "Pending push jobs"},
	)
	fetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "farmwatch", Subsystem: "gameserver", Name: "fetch_seconds", Help: "Game server fetch latency", Buckets: prometheus.DefBuckets},
		[]string{"source", "outcome"},
	)
	cacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "farmwatch", Subsystem: "gameserver", Name: "cache_total", Help: "Savegame cache lookups"},
		[]string{"result"},
	)
)

// Push outcomes.
const (
	PushQueued       = "queued"
	PushDropped      = "dropped"
	PushRetry        = "retry"
	PushRetryDropped = "retry_dropped"
	PushSent         = "sent"
	PushFailed       = "failed"
	PushCircuitOpen  = "circuit_open"
)

func init() {
	prometheus.MustRegister(taskRuns, taskDuration, taskLastSuccess, samplesRecorded, samplesPurged,
		hoursCredited, pushEvents, pushQueueLen, fetchLatency, cacheEvents)
	for _, c := range []prometheus.Collector{collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})} {
		if err := prometheus.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

func ObserveTask(task string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else {
		taskLastSuccess.WithLabelValues(task).SetToCurrentTime()
	}
	taskRuns.WithLabelValues(task, outcome).Inc()
	taskDuration.WithLabelValues(task).Observe(d.Seconds())
}

func AddSamplesRecorded(n int64) { samplesRecorded.Add(float64(max(n, 0))) }
func AddSamplesPurged(n int64)   { samplesPurged.Add(float64(max(n, 0))) }
func AddHoursCredited(n int64)   { hoursCredited.Add(float64(max(n, 0))) }
func IncPush(outcome string)     { pushEvents.WithLabelValues(outcome).Inc() }
func SetPushQueueLen(n int)      { pushQueueLen.Set(float64(n)) }
func IncCache(result string)     { cacheEvents.WithLabelValues(result).Inc() }

func ObserveFetch(source string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	fetchLatency.WithLabelValues(source, outcome).Observe(d.Seconds())
}
