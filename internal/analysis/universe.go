package analysis

import "fmt"

// Dimension is one of the four contextual label sets carried by a garment.
type Dimension int

const (
	Weather Dimension = iota
	Occasion
	Place
	TimeOfDay
)

// Dimensions lists every contextual dimension in report order.
var Dimensions = [...]Dimension{Weather, Occasion, Place, TimeOfDay}

func (d Dimension) String() string {
	switch d {
	case Weather:
		return "weather"
	case Occasion:
		return "occasion"
	case Place:
		return "place"
	case TimeOfDay:
		return "timeOfDay"
	}
	return "unknown"
}

// MarshalText renders the dimension by name in JSON and YAML output.
func (d Dimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a dimension name as produced by MarshalText.
func (d *Dimension) UnmarshalText(text []byte) error {
	for _, candidate := range Dimensions {
		if candidate.String() == string(text) {
			*d = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown dimension %q", text)
}

// Labels returns the raw labels a garment carries for the dimension.
func (d Dimension) Labels(g *Garment) []string {
	switch d {
	case Weather:
		return g.Weather
	case Occasion:
		return g.Occasions
	case Place:
		return g.Places
	case TimeOfDay:
		return g.TimesOfDay
	}
	return nil
}

// Label is a normalized, non-blank option label.
type Label string

// OptionUniverses holds the externally enumerated options per dimension.
// A nil or blank-only list means the dimension is resolved from the
// garments themselves.
type OptionUniverses struct {
	Weather   []string `json:"weather,omitempty" yaml:"weather,omitempty"`
	Occasion  []string `json:"occasion,omitempty" yaml:"occasion,omitempty"`
	Place     []string `json:"place,omitempty" yaml:"place,omitempty"`
	TimeOfDay []string `json:"timeOfDay,omitempty" yaml:"timeOfDay,omitempty"`
}

// For returns the enumerated list for a dimension.
func (o OptionUniverses) For(d Dimension) []string {
	switch d {
	case Weather:
		return o.Weather
	case Occasion:
		return o.Occasion
	case Place:
		return o.Place
	case TimeOfDay:
		return o.TimeOfDay
	}
	return nil
}

// Merge returns o with every dimension that is empty in o taken from other.
func (o OptionUniverses) Merge(other OptionUniverses) OptionUniverses {
	pick := func(a, b []string) []string {
		if len(DedupeNonEmpty(a)) > 0 {
			return a
		}
		return b
	}
	return OptionUniverses{
		Weather:   pick(o.Weather, other.Weather),
		Occasion:  pick(o.Occasion, other.Occasion),
		Place:     pick(o.Place, other.Place),
		TimeOfDay: pick(o.TimeOfDay, other.TimeOfDay),
	}
}

// Universe is the ordered set of recognized labels for one dimension.
type Universe struct {
	labels []Label
	index  map[Label]int
	// FromSchema reports whether the labels came from an enumerated list
	// rather than from observation.
	FromSchema bool
}

func newUniverse(values []string, fromSchema bool) Universe {
	labels := labelSet(values)
	index := make(map[Label]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	return Universe{labels: labels, index: index, FromSchema: fromSchema}
}

// Len returns the number of options.
func (u Universe) Len() int { return len(u.labels) }

// Labels returns a copy of the options in resolution order.
func (u Universe) Labels() []Label {
	out := make([]Label, len(u.labels))
	copy(out, u.labels)
	return out
}

// Position returns the index of l, or -1 when l is not an option.
func (u Universe) Position(l Label) int {
	if i, ok := u.index[l]; ok {
		return i
	}
	return -1
}

// Universes holds the resolved universe of every dimension.
type Universes [len(Dimensions)]Universe

// Of returns the universe of a dimension.
func (u *Universes) Of(d Dimension) Universe { return u[d] }

// ResolveUniverses determines the recognized options of each dimension
// independently: the enumerated list when one is supplied, otherwise the
// labels observed across the whole collection.
func ResolveUniverses(garments []Garment, enums OptionUniverses) Universes {
	var out Universes
	for _, d := range Dimensions {
		if enum := enums.For(d); len(DedupeNonEmpty(enum)) > 0 {
			out[d] = newUniverse(enum, true)
			continue
		}
		var observed []string
		for i := range garments {
			observed = append(observed, d.Labels(&garments[i])...)
		}
		out[d] = newUniverse(observed, false)
	}
	return out
}
