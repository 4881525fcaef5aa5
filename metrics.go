package sessiongate

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricVerifyOK counts successful token verifications.
	MetricVerifyOK MetricID = iota
	// MetricVerifyMissing counts requests with no session cookie.
	MetricVerifyMissing
	// MetricVerifyExpired counts tokens rejected for expiry.
	MetricVerifyExpired
	// MetricVerifyBadSignature counts tokens rejected for signature
	// mismatch.
	MetricVerifyBadSignature
	// MetricVerifyMalformed counts structurally invalid tokens.
	MetricVerifyMalformed
	// MetricVerifyRevoked counts tokens rejected by the denylist.
	MetricVerifyRevoked
	// MetricVerifyBackendError counts revocation lookups that failed and
	// therefore rejected the token (fail closed).
	MetricVerifyBackendError
	// MetricSessionIssued counts cookies written by IssueSession.
	MetricSessionIssued
	// MetricSessionRefreshed counts sliding re-issues via UpdateOnboarding.
	MetricSessionRefreshed
	// MetricSessionCleared counts ClearSession calls.
	MetricSessionCleared
	// MetricLoginSuccess counts successful password sign-ins.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected password sign-ins.
	MetricLoginFailure
	// MetricLoginThrottled counts sign-ins refused by the attempt budget.
	MetricLoginThrottled
	// MetricRegisterSuccess counts created accounts.
	MetricRegisterSuccess
	// MetricRegisterDuplicate counts registrations rejected for an
	// existing email.
	MetricRegisterDuplicate
	// MetricGateLocaleRedirect counts locale-prefix redirects.
	MetricGateLocaleRedirect
	// MetricGateLoginRedirect counts unauthenticated-to-login redirects.
	MetricGateLoginRedirect
	// MetricGateHomeRedirect counts authenticated-away-from-auth-routes
	// redirects.
	MetricGateHomeRedirect
	// MetricGatePass counts requests forwarded unmodified.
	MetricGatePass
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds per-engine counters. Counters are padded to avoid false
// sharing on the verify hot path.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics returns a counter set honoring cfg.Enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the identified counter. No-op when disabled.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters. Disabled metrics yield an empty map.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{Counters: map[MetricID]uint64{}}
	if m == nil || !m.enabled {
		return s
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
