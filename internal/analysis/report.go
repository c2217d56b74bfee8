package analysis

// Heatmap is the occasion x weather readiness matrix. Cells[i][j] counts the
// garments suited to Occasions[i] in Weathers[j].
type Heatmap struct {
	Occasions []string `json:"occasions"`
	Weathers  []string `json:"weathers"`
	Cells     [][]int  `json:"cells"`
}

// Max returns the largest cell value.
func (h Heatmap) Max() int {
	peak := 0
	for _, row := range h.Cells {
		for _, n := range row {
			if n > peak {
				peak = n
			}
		}
	}
	return peak
}

// CoverageSections holds the ranked coverage of every dimension.
type CoverageSections struct {
	Weather   CoverageSection `json:"weather"`
	Occasion  CoverageSection `json:"occasion"`
	Place     CoverageSection `json:"place"`
	TimeOfDay CoverageSection `json:"timeOfDay"`
}

// All returns the sections in dimension order.
func (c CoverageSections) All() []CoverageSection {
	return []CoverageSection{c.Weather, c.Occasion, c.Place, c.TimeOfDay}
}

// Report is the complete coverage and gap analysis of one collection.
type Report struct {
	TotalGarments    int                   `json:"totalGarments"`
	FavoriteGarments int                   `json:"favoriteGarments"`
	TypeBreakdown    []BreakdownRow        `json:"typeBreakdown"`
	Coverage         CoverageSections      `json:"coverage"`
	GapAlerts        []GapAlert            `json:"gapAlerts"`
	Heatmap          Heatmap               `json:"heatmap"`
	SparseCombos     []SparseCombination   `json:"sparseCombinations"`
	MaterialExposure []MaterialExposureRow `json:"materialExposure"`
}

// CountSeverity returns how many gap alerts carry the given severity.
func (r *Report) CountSeverity(s Severity) int {
	n := 0
	for _, g := range r.GapAlerts {
		if g.Severity == s {
			n++
		}
	}
	return n
}

// ComputeCoverageReport runs the full analysis over a garment collection.
// It never mutates garments and keeps no state between calls.
func ComputeCoverageReport(garments []Garment, universes OptionUniverses) *Report {
	resolved := ResolveUniverses(garments, universes)
	agg := Aggregate(garments, resolved)
	return assemble(agg)
}

// Analyze coerces a decoded collection with ParseGarments and computes its
// report. Nothing is aggregated when the input is not a list.
func Analyze(v any, universes OptionUniverses) (*Report, error) {
	garments, err := ParseGarments(v)
	if err != nil {
		return nil, err
	}
	return ComputeCoverageReport(garments, universes), nil
}

func assemble(agg Aggregates) *Report {
	var sections [len(Dimensions)]CoverageSection
	for _, d := range Dimensions {
		sections[d] = rankCoverage(d, agg.Coverage[d], agg.Total)
	}
	coverage := CoverageSections{
		Weather:   sections[Weather],
		Occasion:  sections[Occasion],
		Place:     sections[Place],
		TimeOfDay: sections[TimeOfDay],
	}
	heatmap := buildHeatmap(agg.Heatmap)

	return &Report{
		TotalGarments:    agg.Total,
		FavoriteGarments: agg.Favorites,
		TypeBreakdown:    rankTypes(agg.TypeCounts, agg.Total),
		Coverage:         coverage,
		GapAlerts:        FindGaps(coverage.All()),
		Heatmap:          heatmap,
		SparseCombos:     FindSparseCombinations(heatmap),
		MaterialExposure: rankMaterials(agg.MaterialTotals, agg.MaterialGarments),
	}
}

func buildHeatmap(m Matrix) Heatmap {
	occasions, weathers := m.occasions.Labels(), m.weathers.Labels()
	h := Heatmap{
		Occasions: labelStrings(occasions),
		Weathers:  labelStrings(weathers),
		Cells:     make([][]int, len(occasions)),
	}
	for i, o := range occasions {
		h.Cells[i] = make([]int, len(weathers))
		for j, w := range weathers {
			h.Cells[i][j] = m.Cell(o, w)
		}
	}
	return h
}

func labelStrings(labels []Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}
