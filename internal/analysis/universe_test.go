package analysis

import (
	"fmt"
	"testing"
)

func TestResolveUniversesSchemaVerbatim(t *testing.T) {
	garments := []Garment{{Weather: []string{"windy"}}}
	enums := OptionUniverses{Weather: []string{"cold", " cold", "", "hot"}}

	u := ResolveUniverses(garments, enums)

	got := u.Of(Weather).Labels()
	if fmt.Sprint(got) != "[cold hot]" {
		t.Errorf("weather universe = %v, want [cold hot]", got)
	}
	if !u.Of(Weather).FromSchema {
		t.Error("expected weather universe to be schema-supplied")
	}
	if u.Of(Weather).Position("windy") != -1 {
		t.Error("observed label must not be added to a schema universe")
	}
}

func TestResolveUniversesObservedFallback(t *testing.T) {
	garments := []Garment{
		{Occasions: []string{"work", " ", "party"}},
		{Occasions: []string{"party", "gym"}},
	}

	u := ResolveUniverses(garments, OptionUniverses{Weather: []string{"cold"}})

	got := u.Of(Occasion).Labels()
	if fmt.Sprint(got) != "[work party gym]" {
		t.Errorf("occasion universe = %v, want [work party gym]", got)
	}
	if u.Of(Occasion).FromSchema {
		t.Error("expected occasion universe to be observed")
	}
	if u.Of(Place).Len() != 0 {
		t.Errorf("expected empty place universe, got %v", u.Of(Place).Labels())
	}
}

func TestResolveUniversesBlankEnumFallsBack(t *testing.T) {
	garments := []Garment{{Places: []string{"home"}}}

	u := ResolveUniverses(garments, OptionUniverses{Place: []string{"", "  "}})

	if fmt.Sprint(u.Of(Place).Labels()) != "[home]" {
		t.Errorf("expected observed fallback, got %v", u.Of(Place).Labels())
	}
}

func TestOptionUniversesMerge(t *testing.T) {
	primary := OptionUniverses{Weather: []string{"cold"}, Place: []string{""}}
	fallback := OptionUniverses{Weather: []string{"hot"}, Place: []string{"home"}, Occasion: []string{"work"}}

	got := primary.Merge(fallback)

	if fmt.Sprint(got.Weather) != "[cold]" {
		t.Errorf("weather = %v, want [cold]", got.Weather)
	}
	if fmt.Sprint(got.Place) != "[home]" {
		t.Errorf("place = %v, want [home]", got.Place)
	}
	if fmt.Sprint(got.Occasion) != "[work]" {
		t.Errorf("occasion = %v, want [work]", got.Occasion)
	}
}

func TestDimensionString(t *testing.T) {
	want := []string{"weather", "occasion", "place", "timeOfDay"}
	for i, d := range Dimensions {
		if d.String() != want[i] {
			t.Errorf("Dimensions[%d] = %q, want %q", i, d.String(), want[i])
		}
	}
}

func TestDimensionTextRoundTrip(t *testing.T) {
	for _, d := range Dimensions {
		text, err := d.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Dimension
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != d {
			t.Errorf("round trip of %v gave %v", d, got)
		}
	}

	var d Dimension
	if err := d.UnmarshalText([]byte("season")); err == nil {
		t.Error("expected error for unknown dimension")
	}
}
