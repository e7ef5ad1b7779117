package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	uploadsTotal           atomic.Uint64
	extractionFailedTotal  atomic.Uint64
	scorecardsTotal        atomic.Uint64
	essaysGeneratedTotal   atomic.Uint64
	essaysFallbackTotal    atomic.Uint64
	essaysDeliveredTotal   atomic.Uint64
	providerFailuresTotals sync.Map // provider name -> *atomic.Uint64

	generationDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncUpload increments the resume upload counter.
func IncUpload() {
	uploadsTotal.Add(1)
}

// IncExtractionFailed increments the failed extraction counter.
func IncExtractionFailed() {
	extractionFailedTotal.Add(1)
}

// IncScorecard increments the scorecard counter.
func IncScorecard() {
	scorecardsTotal.Add(1)
}

// IncEssayGenerated increments the provider-backed essay counter.
func IncEssayGenerated() {
	essaysGeneratedTotal.Add(1)
}

// IncEssayFallback increments the template-fallback essay counter.
func IncEssayFallback() {
	essaysFallbackTotal.Add(1)
}

// IncEssayDelivered increments the export/email delivery counter.
func IncEssayDelivered() {
	essaysDeliveredTotal.Add(1)
}

// IncProviderFailure increments the failure counter for a named provider.
func IncProviderFailure(provider string) {
	val, _ := providerFailuresTotals.LoadOrStore(provider, &atomic.Uint64{})
	val.(*atomic.Uint64).Add(1)
}

// ObserveGenerationDurationMs records an essay generation duration in milliseconds.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_uploads_total", "Total resume uploads accepted", uploadsTotal.Load())
	writeCounter(&buf, "extraction_failed_total", "Total uploads whose text extraction failed", extractionFailedTotal.Load())
	writeCounter(&buf, "scorecards_total", "Total scorecards computed", scorecardsTotal.Load())
	writeCounter(&buf, "essays_generated_total", "Total essays generated by a provider", essaysGeneratedTotal.Load())
	writeCounter(&buf, "essays_fallback_total", "Total essays produced by the template fallback", essaysFallbackTotal.Load())
	writeCounter(&buf, "essays_delivered_total", "Total essays exported or emailed", essaysDeliveredTotal.Load())
	providerFailuresTotals.Range(func(key, val any) bool {
		name := fmt.Sprintf("provider_failures_total{provider=%q}", key)
		fmt.Fprintf(&buf, "%s %d\n", name, val.(*atomic.Uint64).Load())
		return true
	})
	writeHistogram(&buf, "essay_generation_duration_ms", "Essay generation duration in milliseconds", generationDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
