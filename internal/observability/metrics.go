package observability

import (
	"strconv"
	"sync"
)

// Metrics provides basic in-memory counters for client-side observability.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	refreshCount map[string]int64
	cacheCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		refreshCount: make(map[string]int64),
		cacheCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for outgoing API calls.
func (m *Metrics) RecordRequest(path, method string, status int) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordRefresh increments counters for credential refresh exchanges.
func (m *Metrics) RecordRefresh(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCount[outcome]++
}

// RecordCache increments schedule cache hit/miss counters.
func (m *Metrics) RecordCache(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheCount[outcome]++
}

// RefreshCount reports how many refresh exchanges ended with the given outcome.
func (m *Metrics) RefreshCount(outcome string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshCount[outcome]
}
