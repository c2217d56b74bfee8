package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
)

// Version is stamped into JSON output.
const Version = "0.1.0"

// FormatJSON produces machine-readable JSON for CI artifacts.
func FormatJSON(r *analysis.Report, verdict Verdict) string {
	out := map[string]any{
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   Version,
		"pass":      verdict.Pass,
		"failures":  verdict.Failures,
		"report":    r,
		"summary": map[string]any{
			"covered":  coveredSummary(r),
			"missing":  countMissing(r),
			"critical": r.CountSeverity(analysis.SeverityCriticalLow),
			"low":      r.CountSeverity(analysis.SeverityLow),
		},
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal report: %s"}`, err)
	}
	return string(data)
}

func coveredSummary(r *analysis.Report) map[string]float64 {
	m := make(map[string]float64, len(analysis.Dimensions))
	for _, s := range r.Coverage.All() {
		m[s.Area.String()] = round3(s.CoveredRatio())
	}
	return m
}

func round3(f float64) float64 {
	return float64(int(f*1000+0.5)) / 1000
}
