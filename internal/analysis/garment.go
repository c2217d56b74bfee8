package analysis

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned when the garment collection is not a list.
var ErrInvalidInput = errors.New("invalid input")

// MaterialEntry is one line of a garment's material composition.
type MaterialEntry struct {
	Material   string  `json:"material" yaml:"material"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// Garment is a read-only wardrobe record as consumed by the engine.
type Garment struct {
	ID         string          `json:"id" yaml:"id"`
	Type       string          `json:"type" yaml:"type"`
	Favorite   bool            `json:"favorite" yaml:"favorite"`
	Materials  []MaterialEntry `json:"materialComposition,omitempty" yaml:"materialComposition,omitempty"`
	Colors     []string        `json:"colorPalette,omitempty" yaml:"colorPalette,omitempty"`
	Weather    []string        `json:"suitableWeather,omitempty" yaml:"suitableWeather,omitempty"`
	Occasions  []string        `json:"suitableOccasions,omitempty" yaml:"suitableOccasions,omitempty"`
	Places     []string        `json:"suitablePlaces,omitempty" yaml:"suitablePlaces,omitempty"`
	TimesOfDay []string        `json:"suitableTimeOfDay,omitempty" yaml:"suitableTimeOfDay,omitempty"`
}

// ParseGarments coerces a decoded JSON or YAML value into garment records.
// It fails with ErrInvalidInput when v is not a list; elements that are not
// objects are skipped and missing fields are left empty.
func ParseGarments(v any) ([]Garment, error) {
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case []map[string]any:
		items = make([]any, len(val))
		for i, m := range val {
			items[i] = m
		}
	case []Garment:
		out := make([]Garment, len(val))
		copy(out, val)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: garments must be a list, got %T", ErrInvalidInput, v)
	}

	garments := make([]Garment, 0, len(items))
	for _, item := range items {
		raw := asMap(item)
		if raw == nil {
			continue
		}
		garments = append(garments, garmentFromMap(raw))
	}
	return garments, nil
}

// ParseOptionUniverses coerces a decoded map of enumerated options.
func ParseOptionUniverses(v any) OptionUniverses {
	raw := asMap(v)
	if raw == nil {
		return OptionUniverses{}
	}
	return OptionUniverses{
		Weather:   stringList(raw, "weather"),
		Occasion:  stringList(raw, "occasion", "occasions"),
		Place:     stringList(raw, "place", "places"),
		TimeOfDay: stringList(raw, "timeOfDay", "time_of_day", "timesOfDay"),
	}
}

func garmentFromMap(raw map[string]any) Garment {
	return Garment{
		ID:         firstNonBlank(raw, "id", "_id"),
		Type:       firstNonBlank(raw, "type"),
		Favorite:   boolField(raw, "favorite", "isFavorite", "is_favorite"),
		Materials:  materialList(raw, "materialComposition", "material_composition", "materials"),
		Colors:     stringList(raw, "colorPalette", "color_palette", "colors"),
		Weather:    stringList(raw, "suitableWeather", "suitable_weather", "weather"),
		Occasions:  stringList(raw, "suitableOccasions", "suitable_occasions", "occasions"),
		Places:     stringList(raw, "suitablePlaces", "suitable_places", "places"),
		TimesOfDay: stringList(raw, "suitableTimeOfDay", "suitable_time_of_day", "timeOfDay", "time_of_day"),
	}
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[Normalize(k)] = val
		}
		return out
	}
	return nil
}

func firstNonBlank(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := Normalize(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func boolField(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch val := m[k].(type) {
		case bool:
			return val
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
				return b
			}
		case float64:
			return val != 0
		case int:
			return val != 0
		}
	}
	return false
}

// stringList reads the first present key as a list of raw labels. A scalar
// becomes a one-element list.
func stringList(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case []string:
			return append([]string(nil), val...)
		case []any:
			out := make([]string, 0, len(val))
			for _, item := range val {
				out = append(out, Normalize(item))
			}
			return out
		default:
			return []string{Normalize(val)}
		}
	}
	return nil
}

func materialList(m map[string]any, keys ...string) []MaterialEntry {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		items, ok := v.([]any)
		if !ok {
			continue
		}
		out := make([]MaterialEntry, 0, len(items))
		for _, item := range items {
			entry := asMap(item)
			if entry == nil {
				continue
			}
			out = append(out, MaterialEntry{
				Material:   firstNonBlank(entry, "material", "name"),
				Percentage: number(entry["percentage"]),
			})
		}
		return out
	}
	return nil
}

func number(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err == nil {
			return f
		}
	}
	return 0
}
