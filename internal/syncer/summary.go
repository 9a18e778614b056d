package syncer

import (
	"fmt"
	"strings"
	"time"
)

// EntitySummary is one entity type's outcome within a pass.
type EntitySummary struct {
	Entity          string
	Scanned         int
	Indexed         int
	Failed          int
	DegradedBatches int
	QueryError      string
}

// Summary aggregates one full pass. Failures are collected here rather than
// raised; only fatal startup classes surface as errors.
type Summary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Entities []EntitySummary
}

// Clean reports whether the pass had no failures of any class.
func (s *Summary) Clean() bool {
	for _, e := range s.Entities {
		if e.Failed > 0 || e.DegradedBatches > 0 || e.QueryError != "" {
			return false
		}
	}
	return true
}

// Totals sums counts across entity types.
func (s *Summary) Totals() (scanned, indexed, failed, degraded int) {
	for _, e := range s.Entities {
		scanned += e.Scanned
		indexed += e.Indexed
		failed += e.Failed
		degraded += e.DegradedBatches
	}
	return
}

// String renders the operator-visible pass report.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sync pass %s completed in %v\n", s.RunID, s.Duration.Round(time.Millisecond))
	for _, e := range s.Entities {
		if e.QueryError != "" {
			fmt.Fprintf(&b, "  %-10s SKIPPED: %s\n", e.Entity, e.QueryError)
			continue
		}
		fmt.Fprintf(&b, "  %-10s scanned=%d indexed=%d failed=%d degraded_batches=%d\n",
			e.Entity, e.Scanned, e.Indexed, e.Failed, e.DegradedBatches)
	}
	scanned, indexed, failed, degraded := s.Totals()
	fmt.Fprintf(&b, "  total      scanned=%d indexed=%d failed=%d degraded_batches=%d",
		scanned, indexed, failed, degraded)
	return b.String()
}
