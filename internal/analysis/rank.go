package analysis

import (
	"math"
	"sort"
)

// MaxMaterialRows caps the material exposure list.
const MaxMaterialRows = 12

// Percentage returns part as a percentage of whole, or 0 when whole is not
// positive.
func Percentage(part, whole float64) float64 {
	if whole > 0 {
		return part / whole * 100
	}
	return 0
}

// BreakdownRow is one garment type with its share of the collection.
type BreakdownRow struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CoverageRow is one option's share of the collection within a dimension.
type CoverageRow struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CoverageSection is the ranked coverage of one dimension.
type CoverageSection struct {
	Area         Dimension     `json:"area"`
	TotalOptions int           `json:"totalOptions"`
	CoveredCount int           `json:"coveredCount"`
	Rows         []CoverageRow `json:"rows"`
}

// CoveredRatio returns the fraction of options worn by at least one garment.
func (s CoverageSection) CoveredRatio() float64 {
	return Percentage(float64(s.CoveredCount), float64(s.TotalOptions)) / 100
}

// MaterialExposureRow is a material's weighted share of all listed
// percentage points in the collection.
type MaterialExposureRow struct {
	Name            string  `json:"name"`
	TotalPercentage float64 `json:"totalPercentage"`
	GarmentCount    int     `json:"garmentCount"`
	WeightedShare   float64 `json:"weightedShare"`
}

// rankTypes orders types by count descending, then name.
func rankTypes(counts map[string]int, total int) []BreakdownRow {
	rows := make([]BreakdownRow, 0, len(counts))
	for name, n := range counts {
		rows = append(rows, BreakdownRow{
			Name:       name,
			Count:      n,
			Percentage: Percentage(float64(n), float64(total)),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// rankCoverage lists every option of the dimension, weakest first.
func rankCoverage(d Dimension, t Tally, total int) CoverageSection {
	labels := t.universe.Labels()
	rows := make([]CoverageRow, 0, len(labels))
	covered := 0
	for _, l := range labels {
		n := t.Count(l)
		if n > 0 {
			covered++
		}
		rows = append(rows, CoverageRow{
			Name:       string(l),
			Count:      n,
			Percentage: Percentage(float64(n), float64(total)),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count < rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	return CoverageSection{
		Area:         d,
		TotalOptions: len(labels),
		CoveredCount: covered,
		Rows:         rows,
	}
}

// rankMaterials normalizes each material total against the grand total of
// percentage points across every material and garment.
func rankMaterials(totals map[string]float64, garments map[string]int) []MaterialExposureRow {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	// Sum in a fixed order so repeated runs agree to the last bit.
	sort.Strings(names)
	var grand, peak float64
	for _, name := range names {
		grand += totals[name]
		peak = math.Max(peak, totals[name])
	}
	// Totals near MaxFloat64 overflow the grand total; shares are then
	// taken over totals scaled down by the largest one.
	scale := 1.0
	if math.IsInf(grand, 1) {
		scale = peak
		grand = 0
		for _, name := range names {
			grand += totals[name] / scale
		}
	}
	rows := make([]MaterialExposureRow, 0, len(totals))
	for _, name := range names {
		v := totals[name]
		rows = append(rows, MaterialExposureRow{
			Name:            name,
			TotalPercentage: v,
			GarmentCount:    garments[name],
			WeightedShare:   Percentage(v/scale, grand),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].WeightedShare != rows[j].WeightedShare {
			return rows[i].WeightedShare > rows[j].WeightedShare
		}
		return rows[i].Name < rows[j].Name
	})
	if len(rows) > MaxMaterialRows {
		rows = rows[:MaxMaterialRows]
	}
	return rows
}
