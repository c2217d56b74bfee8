package analysis

import "math"

// Tally counts occurrences of the labels of one universe. Labels outside
// the universe are never given a slot.
type Tally struct {
	universe Universe
	counts   []int
}

func newTally(u Universe) Tally {
	return Tally{universe: u, counts: make([]int, u.Len())}
}

func (t Tally) add(l Label) {
	if i := t.universe.Position(l); i >= 0 {
		t.counts[i]++
	}
}

// Count returns the count for l, 0 when l is not an option.
func (t Tally) Count(l Label) int {
	if i := t.universe.Position(l); i >= 0 {
		return t.counts[i]
	}
	return 0
}

// Matrix is the occasion x weather count grid.
type Matrix struct {
	occasions Universe
	weathers  Universe
	cells     [][]int
}

func newMatrix(occasions, weathers Universe) Matrix {
	cells := make([][]int, occasions.Len())
	for i := range cells {
		cells[i] = make([]int, weathers.Len())
	}
	return Matrix{occasions: occasions, weathers: weathers, cells: cells}
}

func (m Matrix) add(occasions, weathers []Label) {
	for _, o := range occasions {
		i := m.occasions.Position(o)
		if i < 0 {
			continue
		}
		for _, w := range weathers {
			if j := m.weathers.Position(w); j >= 0 {
				m.cells[i][j]++
			}
		}
	}
}

// Aggregates holds the raw counts computed from one garment collection.
type Aggregates struct {
	Total     int
	Favorites int
	// TypeCounts is keyed by normalized, non-blank garment type.
	TypeCounts map[string]int
	Coverage   [len(Dimensions)]Tally
	Heatmap    Matrix
	// MaterialTotals sums positive percentage points per material.
	MaterialTotals map[string]float64
	// MaterialGarments counts distinct garments listing each material.
	MaterialGarments map[string]int
}

// Aggregate counts types, contextual coverage, occasion/weather pairs and
// material weight over the collection. Each garment contributes at most once
// per distinct label.
func Aggregate(garments []Garment, universes Universes) Aggregates {
	agg := Aggregates{
		Total:            len(garments),
		TypeCounts:       make(map[string]int),
		Heatmap:          newMatrix(universes[Occasion], universes[Weather]),
		MaterialTotals:   make(map[string]float64),
		MaterialGarments: make(map[string]int),
	}
	for _, d := range Dimensions {
		agg.Coverage[d] = newTally(universes[d])
	}

	for i := range garments {
		g := &garments[i]
		if g.Favorite {
			agg.Favorites++
		}
		if t := Normalize(g.Type); t != "" {
			agg.TypeCounts[t]++
		}

		var sets [len(Dimensions)][]Label
		for _, d := range Dimensions {
			sets[d] = labelSet(d.Labels(g))
			for _, l := range sets[d] {
				agg.Coverage[d].add(l)
			}
		}
		agg.Heatmap.add(sets[Occasion], sets[Weather])

		listed := make(map[string]bool)
		for _, m := range g.Materials {
			name := Normalize(m.Material)
			if name == "" || !(m.Percentage > 0) || math.IsInf(m.Percentage, 1) {
				continue
			}
			agg.MaterialTotals[name] = saturatingAdd(agg.MaterialTotals[name], m.Percentage)
			if !listed[name] {
				listed[name] = true
				agg.MaterialGarments[name]++
			}
		}
	}
	return agg
}

// saturatingAdd adds two non-negative values, holding at MaxFloat64 where
// the sum would overflow.
func saturatingAdd(a, b float64) float64 {
	if sum := a + b; !math.IsInf(sum, 1) {
		return sum
	}
	return math.MaxFloat64
}

// Cell returns the count at (occasion, weather), 0 when either is not an
// option.
func (m Matrix) Cell(occasion, weather Label) int {
	i, j := m.occasions.Position(occasion), m.weathers.Position(weather)
	if i < 0 || j < 0 {
		return 0
	}
	return m.cells[i][j]
}
