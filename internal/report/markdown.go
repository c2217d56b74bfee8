package report

import (
	"fmt"
	"strings"

	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
)

// FormatMarkdown produces markdown for PR comments.
func FormatMarkdown(r *analysis.Report, verdict Verdict) string {
	var b strings.Builder

	status := "✅ Pass"
	if !verdict.Pass {
		status = "❌ Fail"
	} else if len(r.GapAlerts) > 0 {
		status = "⚠️ Warning"
	}
	fmt.Fprintf(&b, "## wardrobe-coverage: %s (%d garments, %d favorites)\n\n",
		status, r.TotalGarments, r.FavoriteGarments)

	// Coverage summary table
	b.WriteString("### Coverage\n\n")
	b.WriteString("| Area | Options worn | Least worn |\n")
	b.WriteString("|------|--------------|------------|\n")
	for _, s := range r.Coverage.All() {
		least := "—"
		if len(s.Rows) > 0 {
			row := s.Rows[0]
			least = fmt.Sprintf("%s (%d)", escapeCell(row.Name), row.Count)
		}
		fmt.Fprintf(&b, "| %s | %d/%d (%.0f%%) | %s |\n",
			s.Area, s.CoveredCount, s.TotalOptions, s.CoveredRatio()*100, least)
	}
	b.WriteString("\n")

	if len(r.TypeBreakdown) > 0 {
		b.WriteString("### Types\n\n")
		b.WriteString("| Type | Count | Share |\n")
		b.WriteString("|------|-------|-------|\n")
		for _, row := range r.TypeBreakdown {
			fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", escapeCell(row.Name), row.Count, row.Percentage)
		}
		b.WriteString("\n")
	}

	if len(r.GapAlerts) > 0 {
		b.WriteString("### Gap Alerts\n\n")
		for _, g := range r.GapAlerts {
			emoji := "🟡"
			switch g.Severity {
			case analysis.SeverityMissing:
				emoji = "🔴"
			case analysis.SeverityCriticalLow:
				emoji = "🟠"
			}
			fmt.Fprintf(&b, "- %s **%s** %s: %d garments (%.1f%%, %s)\n",
				emoji, g.Area, g.Option, g.Count, g.Percentage, g.Severity)
		}
		b.WriteString("\n")
	}

	if len(r.Heatmap.Occasions) > 0 && len(r.Heatmap.Weathers) > 0 {
		b.WriteString("### Occasion × Weather\n\n")
		b.WriteString("| |")
		for _, w := range r.Heatmap.Weathers {
			fmt.Fprintf(&b, " %s |", escapeCell(w))
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---|", len(r.Heatmap.Weathers)))
		b.WriteString("\n")
		for i, o := range r.Heatmap.Occasions {
			fmt.Fprintf(&b, "| **%s** |", escapeCell(o))
			for _, n := range r.Heatmap.Cells[i] {
				fmt.Fprintf(&b, " %d |", n)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(r.SparseCombos) > 0 {
		b.WriteString("### Sparse Combinations\n\n")
		for _, c := range r.SparseCombos {
			fmt.Fprintf(&b, "- %s + %s: %d\n", c.Occasion, c.Weather, c.Count)
		}
		b.WriteString("\n")
	}

	if len(r.MaterialExposure) > 0 {
		b.WriteString("### Materials\n\n")
		b.WriteString("| Material | Share | Garments |\n")
		b.WriteString("|----------|-------|----------|\n")
		for _, m := range r.MaterialExposure {
			fmt.Fprintf(&b, "| %s | %.1f%% | %d |\n", escapeCell(m.Name), m.WeightedShare, m.GarmentCount)
		}
		b.WriteString("\n")
	}

	if len(verdict.Failures) > 0 {
		b.WriteString("### Issues\n\n")
		for _, f := range verdict.Failures {
			fmt.Fprintf(&b, "- ❌ %s\n", f)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
