// Package health probes the dependencies the CLI talks to.
package health

import (
	"context"
	"time"

	"github.com/sandeepkv93/invotrac/internal/observability"
)

type CheckResult struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latency_ms"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
}

type Checker interface {
	Check(ctx context.Context) CheckResult
}

// Runner executes checkers one after another, each under its own timeout.
type Runner struct {
	checkers []Checker
	timeout  time.Duration
}

// NewRunner drops nil checkers so callers can pass optional dependencies
// straight from their constructors.
func NewRunner(timeout time.Duration, checkers ...Checker) *Runner {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	kept := make([]Checker, 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Runner{checkers: kept, timeout: timeout}
}

func (r *Runner) Run(ctx context.Context) (bool, []CheckResult) {
	results := make([]CheckResult, 0, len(r.checkers))
	allHealthy := true
	for _, c := range r.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
		start := time.Now()
		res := c.Check(checkCtx)
		cancel()
		res.LatencyMS = time.Since(start).Milliseconds()
		outcome := "healthy"
		if !res.Healthy {
			outcome = "unhealthy"
			allHealthy = false
		}
		observability.RecordHealthCheckResult(ctx, res.Name, outcome)
		results = append(results, res)
	}
	return allHealthy, results
}
