// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sebenza_http_requests_total",
		Help: "HTTP requests processed, by method, path template and status.",
	}, []string{"method", "path", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sebenza_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	entriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sebenza_ledger_entries_created_total",
		Help: "Ledger entries successfully created.",
	})

	entriesPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sebenza_ledger_entries_posted_total",
		Help: "Ledger entries posted to the permanent ledger.",
	})

	entriesReversed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sebenza_ledger_entries_reversed_total",
		Help: "Posted ledger entries reversed.",
	})

	validationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sebenza_ledger_validation_failures_total",
		Help: "Entry save attempts rejected by the double-entry validator.",
	})
)

// HTTPMiddleware records request counts and latency per route template.
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// EntryCreated increments the created-entries counter.
func EntryCreated() { entriesCreated.Inc() }

// EntryPosted increments the posted-entries counter.
func EntryPosted() { entriesPosted.Inc() }

// EntryReversed increments the reversed-entries counter.
func EntryReversed() { entriesReversed.Inc() }

// ValidationFailed increments the validation-failures counter.
func ValidationFailed() { validationFailures.Inc() }
