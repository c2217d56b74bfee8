package analysis

import "sort"

// Gap thresholds and list caps.
const (
	LowCoveragePercent = 15
	MaxGapAlerts       = 8
	MaxSparseCombos    = 10
)

// Severity grades an under-represented option.
type Severity string

const (
	SeverityMissing     Severity = "missing"
	SeverityCriticalLow Severity = "critical-low"
	SeverityLow         Severity = "low"
)

// GapAlert is a coverage row flagged as under-represented.
type GapAlert struct {
	Area       Dimension `json:"area"`
	Option     string    `json:"option"`
	Count      int       `json:"count"`
	Percentage float64   `json:"percentage"`
	Severity   Severity  `json:"severity"`
}

// SparseCombination is a heatmap cell worn by at most one garment.
type SparseCombination struct {
	Occasion string `json:"occasion"`
	Weather  string `json:"weather"`
	Count    int    `json:"count"`
}

func severityFor(count int) Severity {
	switch count {
	case 0:
		return SeverityMissing
	case 1:
		return SeverityCriticalLow
	}
	return SeverityLow
}

// FindGaps flags options worn by at most one garment or by less than
// LowCoveragePercent of the collection, weakest first.
func FindGaps(sections []CoverageSection) []GapAlert {
	var gaps []GapAlert
	for _, s := range sections {
		for _, row := range s.Rows {
			if row.Count > 1 && row.Percentage >= LowCoveragePercent {
				continue
			}
			gaps = append(gaps, GapAlert{
				Area:       s.Area,
				Option:     row.Name,
				Count:      row.Count,
				Percentage: row.Percentage,
				Severity:   severityFor(row.Count),
			})
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Count != gaps[j].Count {
			return gaps[i].Count < gaps[j].Count
		}
		if gaps[i].Percentage != gaps[j].Percentage {
			return gaps[i].Percentage < gaps[j].Percentage
		}
		return gaps[i].Option < gaps[j].Option
	})
	if len(gaps) > MaxGapAlerts {
		gaps = gaps[:MaxGapAlerts]
	}
	if gaps == nil {
		gaps = []GapAlert{}
	}
	return gaps
}

// FindSparseCombinations lists occasion/weather pairings worn by at most one
// garment, lowest count first.
func FindSparseCombinations(h Heatmap) []SparseCombination {
	var combos []SparseCombination
	for i, o := range h.Occasions {
		for j, w := range h.Weathers {
			if n := h.Cells[i][j]; n <= 1 {
				combos = append(combos, SparseCombination{Occasion: o, Weather: w, Count: n})
			}
		}
	}

	sort.SliceStable(combos, func(i, j int) bool {
		if combos[i].Count != combos[j].Count {
			return combos[i].Count < combos[j].Count
		}
		return combos[i].Occasion < combos[j].Occasion
	})
	if len(combos) > MaxSparseCombos {
		combos = combos[:MaxSparseCombos]
	}
	if combos == nil {
		combos = []SparseCombination{}
	}
	return combos
}
