package infra

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// NetworkQuality classifies the current link. It scales cache lifetimes and
// batch sizes; the exact tier boundaries matter less than being consistent.
type NetworkQuality int

const (
	QualityNone    NetworkQuality = iota // no connectivity
	QualityPoor                          // connected but barely
	QualityMetered                       // usable but worth conserving
	QualityFast                          // fast, unmetered
)

func (q NetworkQuality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityMetered:
		return "metered"
	case QualityPoor:
		return "poor"
	default:
		return "none"
	}
}

// NetworkMonitor supplies the connectivity signal consumed by the cache
// policy and the repository.
type NetworkMonitor interface {
	IsConnected() bool
	Quality() NetworkQuality
}

// StaticMonitor is a NetworkMonitor with a fixed, settable quality.
// Used by tests and by the CLI's --network override flag.
type StaticMonitor struct {
	mu      sync.RWMutex
	quality NetworkQuality
}

func NewStaticMonitor(q NetworkQuality) *StaticMonitor {
	return &StaticMonitor{quality: q}
}

func (m *StaticMonitor) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.quality != QualityNone
}

func (m *StaticMonitor) Quality() NetworkQuality {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.quality
}

func (m *StaticMonitor) SetQuality(q NetworkQuality) {
	m.mu.Lock()
	m.quality = q
	m.mu.Unlock()
}

// ProbeMonitor measures connectivity by issuing a cheap HEAD request and
// classifying the link by round-trip latency. Probe results are cached for
// a short TTL so the signal itself doesn't burn the request budget.
type ProbeMonitor struct {
	probeURL string
	client   *http.Client
	ttl      time.Duration

	mu       sync.Mutex
	lastSeen time.Time
	quality  NetworkQuality
}

const (
	probeFastLatency    = 200 * time.Millisecond
	probeMeteredLatency = 1 * time.Second
)

func NewProbeMonitor(probeURL string) *ProbeMonitor {
	return &ProbeMonitor{
		probeURL: probeURL,
		client:   &http.Client{Timeout: 5 * time.Second},
		ttl:      30 * time.Second,
		quality:  QualityNone,
	}
}

func (m *ProbeMonitor) IsConnected() bool {
	return m.Quality() != QualityNone
}

func (m *ProbeMonitor) Quality() NetworkQuality {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastSeen) < m.ttl {
		return m.quality
	}

	m.quality = m.probe()
	m.lastSeen = time.Now()
	return m.quality
}

func (m *ProbeMonitor) probe() NetworkQuality {
	ctx, cancel := context.WithTimeout(context.Background(), m.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		return QualityNone
	}

	start := time.Now()
	resp, err := m.client.Do(req)
	if err != nil {
		slog.Debug("connectivity probe failed", slog.Any("error", err))
		return QualityNone
	}
	resp.Body.Close()
	latency := time.Since(start)

	switch {
	case latency < probeFastLatency:
		return QualityFast
	case latency < probeMeteredLatency:
		return QualityMetered
	default:
		return QualityPoor
	}
}
