package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Process-wide reconciliation counters, exposed through the operator
// metrics endpoint.
var (
	WebhookEvents     Counter
	Reconciled        Counter
	TrustViolations   Counter
	InvalidParameters Counter
	GatewayErrors     Counter
	ManualRecoveries  Counter
)

func Snapshot() map[string]uint64 {
	return map[string]uint64{
		"webhook_events":     WebhookEvents.Load(),
		"reconciled":         Reconciled.Load(),
		"trust_violations":   TrustViolations.Load(),
		"invalid_parameters": InvalidParameters.Load(),
		"gateway_errors":     GatewayErrors.Load(),
		"manual_recoveries":  ManualRecoveries.Load(),
	}
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
