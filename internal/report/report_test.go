package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
)

func sampleReport() *analysis.Report {
	garments := []analysis.Garment{
		{ID: "1", Type: "top", Favorite: true, Weather: []string{"hot"}, Occasions: []string{"casual"},
			Places: []string{"beach"}, TimesOfDay: []string{"day"},
			Materials: []analysis.MaterialEntry{{Material: "cotton", Percentage: 100}}},
		{ID: "2", Type: "coat", Weather: []string{"cold"}, Occasions: []string{"work", "casual"},
			Places: []string{"office"}, TimesOfDay: []string{"day", "night"},
			Materials: []analysis.MaterialEntry{{Material: "wool", Percentage: 70}, {Material: "nylon", Percentage: 30}}},
	}
	return analysis.ComputeCoverageReport(garments, analysis.OptionUniverses{
		Weather: []string{"hot", "cold", "rainy", "snowy"},
	})
}

func TestEvaluate(t *testing.T) {
	r := sampleReport()

	tests := []struct {
		name     string
		th       Thresholds
		pass     bool
		failures int
	}{
		{"defaults pass at exactly half", DefaultThresholds(), true, 0},
		{"coverage threshold above ratio", Thresholds{MinCoverage: 0.75, MaxMissing: -1}, false, 1},
		{"missing limit exceeded", Thresholds{MinCoverage: 0, MaxMissing: 1}, false, 1},
		{"missing limit met", Thresholds{MinCoverage: 0, MaxMissing: 2}, true, 0},
		{"both fail", Thresholds{MinCoverage: 0.9, MaxMissing: 0}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(r, tt.th)
			if v.Pass != tt.pass {
				t.Errorf("Pass = %v, want %v (%v)", v.Pass, tt.pass, v.Failures)
			}
			if len(v.Failures) != tt.failures {
				t.Errorf("failures = %v, want %d", v.Failures, tt.failures)
			}
		})
	}
}

func TestEvaluateSkipsEmptyDimensions(t *testing.T) {
	r := analysis.ComputeCoverageReport(nil, analysis.OptionUniverses{})
	v := Evaluate(r, Thresholds{MinCoverage: 1, MaxMissing: 0})
	if !v.Pass {
		t.Errorf("empty report should pass, got %v", v.Failures)
	}
	if v.Failures == nil {
		t.Error("Failures should be an empty slice, not nil")
	}
}

func TestEvaluateCountsMissingBeyondAlertCap(t *testing.T) {
	weathers := []string{"hot"}
	for i := 1; i <= 11; i++ {
		weathers = append(weathers, fmt.Sprintf("w%02d", i))
	}
	r := analysis.ComputeCoverageReport(
		[]analysis.Garment{{ID: "1", Weather: []string{"hot"}}},
		analysis.OptionUniverses{Weather: weathers},
	)
	if len(r.GapAlerts) != analysis.MaxGapAlerts {
		t.Fatalf("expected %d capped alerts, got %d", analysis.MaxGapAlerts, len(r.GapAlerts))
	}

	tests := []struct {
		name       string
		maxMissing int
		pass       bool
	}{
		{"limit at alert cap", analysis.MaxGapAlerts, false},
		{"limit below total", 10, false},
		{"limit at total", 11, true},
		{"disabled", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(r, Thresholds{MinCoverage: 0, MaxMissing: tt.maxMissing})
			if v.Pass != tt.pass {
				t.Errorf("Pass = %v, want %v (%v)", v.Pass, tt.pass, v.Failures)
			}
			if !tt.pass && !strings.Contains(v.Failures[0], "11 missing options") {
				t.Errorf("failure = %q, want the full missing count", v.Failures[0])
			}
		})
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(FormatJSON(r, Evaluate(r, DefaultThresholds()))), &parsed); err != nil {
		t.Fatal(err)
	}
	if got := parsed["summary"].(map[string]any)["missing"]; got != float64(11) {
		t.Errorf("summary missing = %v, want 11", got)
	}
}

func TestFormatJSON(t *testing.T) {
	r := sampleReport()
	out := FormatJSON(r, Evaluate(r, DefaultThresholds()))

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	for _, key := range []string{"timestamp", "version", "pass", "failures", "report", "summary"} {
		if _, ok := parsed[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if parsed["pass"] != true {
		t.Errorf("pass = %v", parsed["pass"])
	}

	rep := parsed["report"].(map[string]any)
	if rep["totalGarments"] != float64(2) {
		t.Errorf("totalGarments = %v", rep["totalGarments"])
	}
	gaps := rep["gapAlerts"].([]any)
	first := gaps[0].(map[string]any)
	if first["area"] != "weather" || first["severity"] != "missing" {
		t.Errorf("first gap = %v", first)
	}

	summary := parsed["summary"].(map[string]any)
	if summary["missing"] != float64(2) {
		t.Errorf("summary missing = %v", summary["missing"])
	}
	covered := summary["covered"].(map[string]any)
	if covered["weather"] != 0.5 {
		t.Errorf("covered weather = %v", covered["weather"])
	}
}

func TestFormatTerminal(t *testing.T) {
	r := sampleReport()
	out := FormatTerminal(r, Evaluate(r, DefaultThresholds()))

	for _, want := range []string{
		"wardrobe-coverage report",
		"COVERAGE",
		"GAP ALERTS",
		"OCCASION × WEATHER",
		"MATERIAL EXPOSURE",
		"rainy",
		"WARN",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q", want)
		}
	}

	failing := FormatTerminal(r, Verdict{Pass: false, Failures: []string{"weather coverage too low"}})
	if !strings.Contains(failing, "FAIL") || !strings.Contains(failing, "weather coverage too low") {
		t.Error("failing verdict not rendered")
	}
}

func TestFormatTerminalEmpty(t *testing.T) {
	r := analysis.ComputeCoverageReport(nil, analysis.OptionUniverses{})
	out := FormatTerminal(r, Evaluate(r, DefaultThresholds()))
	if !strings.Contains(out, "PASS") {
		t.Error("empty report should render PASS")
	}
	if strings.Contains(out, "GAP ALERTS") || strings.Contains(out, "OCCASION") {
		t.Error("empty sections should be omitted")
	}
}

func TestFormatMarkdown(t *testing.T) {
	r := sampleReport()
	out := FormatMarkdown(r, Evaluate(r, DefaultThresholds()))

	for _, want := range []string{
		"## wardrobe-coverage: ⚠️ Warning",
		"### Coverage",
		"| weather | 2/4 (50%) | rainy (0) |",
		"### Gap Alerts",
		"🔴 **weather** rainy",
		"### Occasion × Weather",
		"### Materials",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\n%s", want, out)
		}
	}
}

func TestHeatColor(t *testing.T) {
	if heatColor(0, 5) != heat[0] {
		t.Error("empty cell should use the base shade")
	}
	if heatColor(5, 5) != heat[len(heat)-1] {
		t.Error("busiest cell should use the hottest shade")
	}
	if heatColor(3, 0) != heat[0] {
		t.Error("zero peak should not divide")
	}
}

func TestWordWrap(t *testing.T) {
	lines := wordWrap("one two three four", 10)
	if len(lines) != 2 || lines[0] != "one two" || lines[1] != "three four" {
		t.Errorf("wordWrap = %q", lines)
	}
	if got := wordWrap("", 10); len(got) != 1 || got[0] != "" {
		t.Errorf("wordWrap(empty) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("cardigan", 5); got != "card…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("tee", 5); got != "tee" {
		t.Errorf("truncate short = %q", got)
	}
}
