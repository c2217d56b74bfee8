package report

import (
	"fmt"

	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
)

// Thresholds configure the pass/fail gate applied to a report.
type Thresholds struct {
	MinCoverage float64 // minimum covered ratio per dimension, 0..1
	MaxMissing  int     // maximum number of options no garment covers; negative disables
}

// DefaultThresholds returns the gate used when configuration is silent.
func DefaultThresholds() Thresholds {
	return Thresholds{MinCoverage: 0.5, MaxMissing: -1}
}

// Verdict is the outcome of gating a report.
type Verdict struct {
	Pass     bool     `json:"pass"`
	Failures []string `json:"failures"`
}

// Evaluate gates a report. Dimensions without any options are not gated.
func Evaluate(r *analysis.Report, th Thresholds) Verdict {
	v := Verdict{Pass: true, Failures: []string{}}

	for _, s := range r.Coverage.All() {
		if s.TotalOptions == 0 {
			continue
		}
		if ratio := s.CoveredRatio(); ratio < th.MinCoverage {
			v.Failures = append(v.Failures, fmt.Sprintf(
				"%s coverage %.0f%% (%d/%d options) is below the %.0f%% threshold",
				s.Area, ratio*100, s.CoveredCount, s.TotalOptions, th.MinCoverage*100))
		}
	}

	if th.MaxMissing >= 0 {
		if n := countMissing(r); n > th.MaxMissing {
			v.Failures = append(v.Failures, fmt.Sprintf(
				"%d missing options exceed the limit of %d", n, th.MaxMissing))
		}
	}

	v.Pass = len(v.Failures) == 0
	return v
}

// countMissing counts uncovered options across every dimension. Gap alerts
// are capped, so they cannot be used for this.
func countMissing(r *analysis.Report) int {
	n := 0
	for _, s := range r.Coverage.All() {
		for _, row := range s.Rows {
			if row.Count == 0 {
				n++
			}
		}
	}
	return n
}
