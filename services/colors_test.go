package services

import (
	"testing"
)

func TestAssignUniqueColorIsDeterministic(t *testing.T) {
	tests := []struct {
		id   int64
		want string
	}{
		{1, "teal"},
		{2, "cyan"},
		{10, "purple"},
	}
	for _, tt := range tests {
		for i := 0; i < 3; i++ {
			if got := AssignUniqueColor(tt.id, nil); got != tt.want {
				t.Fatalf("AssignUniqueColor(%d) = %q, want %q", tt.id, got, tt.want)
			}
		}
	}
}

func TestAssignUniqueColorSkipsPastUsed(t *testing.T) {
	got := AssignUniqueColor(1, []string{"teal", "cyan"})
	if got != "sky" {
		t.Fatalf("expected next free color sky, got %q", got)
	}

	// wraps around the end of the palette
	used := Palette[:len(Palette)-1]
	if got := AssignUniqueColor(1, used); got != "stone" {
		t.Fatalf("expected the only free color stone, got %q", got)
	}
}

func TestAssignUniqueColorAvoidsUsedWhilePossible(t *testing.T) {
	var used []string
	for id := int64(1); id <= int64(len(Palette)); id++ {
		c := AssignUniqueColor(id, used)
		for _, u := range used {
			if u == c {
				t.Fatalf("id %d got already used color %q", id, c)
			}
		}
		used = append(used, c)
	}
}

func TestAssignUniqueColorExhaustedStaysInPalette(t *testing.T) {
	for i := 0; i < 50; i++ {
		c := AssignUniqueColor(int64(i+1), Palette)
		if !IsPaletteColor(c) {
			t.Fatalf("fallback color %q is not in the palette", c)
		}
	}
}

func TestExpandPalette(t *testing.T) {
	if got := ExpandPalette("blue"); got.Indicator != "#3B82F6" {
		t.Errorf("blue indicator = %q", got.Indicator)
	}
	yellow := ExpandPalette(DefaultColor)
	for _, name := range []string{"", "ultraviolet", "BLUE"} {
		if got := ExpandPalette(name); got != yellow {
			t.Errorf("ExpandPalette(%q) = %+v, want yellow %+v", name, got, yellow)
		}
	}
	for _, name := range Palette {
		s := ExpandPalette(name)
		if s.Background == "" || s.Indicator == "" || s.Border == "" {
			t.Errorf("palette color %q has incomplete shades %+v", name, s)
		}
	}
}

func TestStringHashWraps(t *testing.T) {
	// large ids overflow int32 and must still map into the palette
	idx := paletteIndex(9223372036854775807)
	if idx < 0 || idx >= len(Palette) {
		t.Fatalf("index %d out of range", idx)
	}
	if stringHash("1") != 49 {
		t.Fatalf("stringHash(\"1\") = %d", stringHash("1"))
	}
}
