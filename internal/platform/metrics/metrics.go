package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests      uint64
	errorRequests      uint64
	totalDurationMs    uint64
	leaveTransitions   uint64
	payrollDraftRuns   uint64
	settlementPreviews uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) LeaveTransition() {
	atomic.AddUint64(&c.leaveTransitions, 1)
}

func (c *Collector) PayrollDraftRun() {
	atomic.AddUint64(&c.payrollDraftRuns, 1)
}

func (c *Collector) SettlementPreview() {
	atomic.AddUint64(&c.settlementPreviews, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":      total,
		"errorsTotal":        atomic.LoadUint64(&c.errorRequests),
		"avgDurationMs":      avg,
		"leaveTransitions":   atomic.LoadUint64(&c.leaveTransitions),
		"payrollDraftRuns":   atomic.LoadUint64(&c.payrollDraftRuns),
		"settlementPreviews": atomic.LoadUint64(&c.settlementPreviews),
	}
}
