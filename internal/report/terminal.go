package report

import (
	"fmt"
	"strings"

	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
)

// Muted 256-color palette
const (
	bold  = "\033[1m"
	dim   = "\033[2m"
	reset = "\033[0m"

	// Muted tones via 256-color
	rose  = "\033[38;5;174m" // soft red/pink
	amber = "\033[38;5;179m" // warm yellow
	sage  = "\033[38;5;108m" // muted green
	slate = "\033[38;5;110m" // muted blue
	lilac = "\033[38;5;139m" // soft purple
	stone = "\033[38;5;245m" // medium gray
	chalk = "\033[38;5;188m" // off-white
)

const ruler = "────────────────────────────────────────────────────────"

// heat shades a heatmap cell from empty to the busiest cell.
var heat = []string{
	"\033[38;5;238m",
	"\033[38;5;109m", // cool teal
	"\033[38;5;144m", // olive
	amber,
	"\033[38;5;173m", // warm coral
}

func sectionHeader(title string) string {
	return fmt.Sprintf("\n  %s%s%s\n  %s%s%s\n", bold+chalk, strings.ToUpper(title), reset, stone, ruler, reset)
}

// FormatTerminal produces human-readable terminal output.
func FormatTerminal(r *analysis.Report, verdict Verdict) string {
	var b strings.Builder

	// Header
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s%swardrobe-coverage report%s\n", bold, chalk, reset)
	fmt.Fprintf(&b, "  %s%s%s\n", stone, ruler, reset)
	fmt.Fprintf(&b, "  %sgarments%s  %s%d%s   %sfavorites%s  %s%d%s\n",
		stone, reset, chalk, r.TotalGarments, reset,
		stone, reset, lilac, r.FavoriteGarments, reset)

	// ── Types ───────────────────────────────────────────────
	if len(r.TypeBreakdown) > 0 {
		b.WriteString(sectionHeader(fmt.Sprintf("Types (%d)", len(r.TypeBreakdown))))
		for _, row := range r.TypeBreakdown {
			fmt.Fprintf(&b, "  %-22s %s%4d%s  %s%5.1f%%%s\n",
				truncate(row.Name, 22), chalk, row.Count, reset, stone, row.Percentage, reset)
		}
	}

	// ── Coverage ────────────────────────────────────────────
	b.WriteString(sectionHeader("Coverage"))
	for i, s := range r.Coverage.All() {
		ratio := s.CoveredRatio()
		fmt.Fprintf(&b, "  %s%-10s%s %s  %s%d/%d%s options worn\n",
			chalk, s.Area, reset, colorBar(ratio), stone, s.CoveredCount, s.TotalOptions, reset)
		if len(s.Rows) == 0 {
			fmt.Fprintf(&b, "    %s(no options)%s\n", stone, reset)
		}
		for _, row := range s.Rows {
			color := slate
			switch {
			case row.Count == 0:
				color = rose
			case row.Percentage < analysis.LowCoveragePercent:
				color = amber
			}
			fmt.Fprintf(&b, "    %s%-20s%s %4d  %s%5.1f%%%s\n",
				color, truncate(row.Name, 20), reset, row.Count, stone, row.Percentage, reset)
		}
		if i < len(analysis.Dimensions)-1 {
			b.WriteString("\n")
		}
	}

	// ── Gap Alerts ──────────────────────────────────────────
	if len(r.GapAlerts) > 0 {
		b.WriteString(sectionHeader("Gap Alerts"))
		for _, g := range r.GapAlerts {
			color := severityColor(g.Severity)
			fmt.Fprintf(&b, "  %s●%s  %s%-13s%s %-10s %-20s %s%d worn, %.1f%%%s\n",
				color, reset,
				color, g.Severity, reset,
				g.Area, truncate(g.Option, 20),
				stone, g.Count, g.Percentage, reset)
		}
	}

	// ── Heatmap ─────────────────────────────────────────────
	if len(r.Heatmap.Occasions) > 0 && len(r.Heatmap.Weathers) > 0 {
		b.WriteString(sectionHeader("Occasion × Weather"))
		writeHeatmap(&b, r.Heatmap)
	}

	// ── Sparse Combinations ─────────────────────────────────
	if len(r.SparseCombos) > 0 {
		b.WriteString(sectionHeader("Sparse Combinations"))
		for _, c := range r.SparseCombos {
			color := amber
			if c.Count == 0 {
				color = rose
			}
			fmt.Fprintf(&b, "  %s●%s  %-20s %s+%s %-16s %s%d%s\n",
				color, reset, truncate(c.Occasion, 20), stone, reset, truncate(c.Weather, 16), color, c.Count, reset)
		}
	}

	// ── Materials ───────────────────────────────────────────
	if len(r.MaterialExposure) > 0 {
		b.WriteString(sectionHeader("Material Exposure"))
		for _, m := range r.MaterialExposure {
			fmt.Fprintf(&b, "  %-20s %s  %s%5.1f%%%s  %sin %d garments%s\n",
				truncate(m.Name, 20), shareBar(m.WeightedShare), chalk, m.WeightedShare, reset,
				stone, m.GarmentCount, reset)
		}
	}

	// ── Failures ────────────────────────────────────────────
	if len(verdict.Failures) > 0 {
		b.WriteString(sectionHeader("Issues"))
		indent := strings.Repeat(" ", 7)
		for _, f := range verdict.Failures {
			for i, line := range wordWrap(f, 69) {
				if i == 0 {
					fmt.Fprintf(&b, "  %s✘%s  %s\n", rose, reset, line)
				} else {
					fmt.Fprintf(&b, "%s%s\n", indent, line)
				}
			}
		}
	}

	// ── Overall ─────────────────────────────────────────────
	statusLabel, statusColor := "PASS ✔", sage
	if !verdict.Pass {
		statusLabel, statusColor = "FAIL ✘", rose
	} else if len(r.GapAlerts) > 0 {
		statusLabel, statusColor = "WARN ⚠", amber
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s%s%s\n", stone, ruler, reset)
	fmt.Fprintf(&b, "  %s%sOverall%s   %s%d gap alerts, %d sparse combinations%s   %s%s%s\n\n",
		bold, chalk, reset,
		stone, len(r.GapAlerts), len(r.SparseCombos), reset,
		statusColor, statusLabel, reset)

	return b.String()
}

func writeHeatmap(b *strings.Builder, h analysis.Heatmap) {
	const cell = 7
	peak := h.Max()

	fmt.Fprintf(b, "  %-16s", "")
	for _, w := range h.Weathers {
		fmt.Fprintf(b, "%s%*s%s", stone, cell, truncate(w, cell-1), reset)
	}
	b.WriteString("\n")

	for i, o := range h.Occasions {
		fmt.Fprintf(b, "  %-16s", truncate(o, 16))
		for j := range h.Weathers {
			n := h.Cells[i][j]
			fmt.Fprintf(b, "%s%*d%s", heatColor(n, peak), cell, n, reset)
		}
		b.WriteString("\n")
	}
}

// heatColor picks a shade proportional to n relative to the busiest cell.
func heatColor(n, peak int) string {
	if n <= 0 || peak <= 0 {
		return heat[0]
	}
	idx := 1 + (n*(len(heat)-2))/peak
	if idx >= len(heat) {
		idx = len(heat) - 1
	}
	return heat[idx]
}

func severityColor(s analysis.Severity) string {
	switch s {
	case analysis.SeverityMissing:
		return rose
	case analysis.SeverityCriticalLow:
		return amber
	}
	return slate
}

// colorBar renders a progress bar with muted color based on the score.
func colorBar(score float64) string {
	width := 16
	filled := int(score * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var color string
	if score >= 0.7 {
		color = sage
	} else if score >= 0.5 {
		color = amber
	} else {
		color = rose
	}

	return color + strings.Repeat("█", filled) + stone + strings.Repeat("░", width-filled) + reset
}

// shareBar renders a percentage share in a neutral tone.
func shareBar(pct float64) string {
	width := 12
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return slate + strings.Repeat("█", filled) + dim + stone + strings.Repeat("░", width-filled) + reset
}

// wordWrap breaks text into lines of at most maxWidth characters,
// splitting at word boundaries.
func wordWrap(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > maxWidth {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return lines
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
