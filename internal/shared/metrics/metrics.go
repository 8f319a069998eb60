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
	analysisRunsTotal     atomic.Uint64
	chunksProcessedTotal  atomic.Uint64
	chunkFailuresTotal    atomic.Uint64
	chatMessagesTotal     atomic.Uint64
	gatewayFallbacksTotal atomic.Uint64

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncAnalysisRun increments the analysis run counter.
func IncAnalysisRun() {
	analysisRunsTotal.Add(1)
}

// IncChunkProcessed increments the processed chunk counter.
func IncChunkProcessed() {
	chunksProcessedTotal.Add(1)
}

// IncChunkFailed increments the failed chunk counter.
func IncChunkFailed() {
	chunkFailuresTotal.Add(1)
}

// IncChatMessage increments the chat message counter.
func IncChatMessage() {
	chatMessagesTotal.Add(1)
}

// IncGatewayFallback increments the text-only fallback counter.
func IncGatewayFallback() {
	gatewayFallbacksTotal.Add(1)
}

// ObserveAnalysisDurationMs records an analysis run duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
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
	writeCounter(&buf, "analysis_runs_total", "Total analysis runs started", analysisRunsTotal.Load())
	writeCounter(&buf, "analysis_chunks_total", "Total question chunks processed", chunksProcessedTotal.Load())
	writeCounter(&buf, "analysis_chunk_failures_total", "Total question chunks that failed both attempts", chunkFailuresTotal.Load())
	writeCounter(&buf, "gateway_fallbacks_total", "Total text-only fallback invocations", gatewayFallbacksTotal.Load())
	writeCounter(&buf, "chat_messages_total", "Total chat messages exchanged", chatMessagesTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis run duration in milliseconds", analysisDuration.Snapshot())
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

// NowMillis returns the current time in milliseconds.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
