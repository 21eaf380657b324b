package services

import (
	"math/rand/v2"
	"strconv"
	"unicode/utf16"
)

const DefaultColor = "yellow"

// Palette is the fixed, ordered list of master colors. Order matters: the
// hash of a master id picks the starting slot.
var Palette = []string{
	"red", "orange", "amber", "yellow", "lime", "green", "emerald",
	"teal", "cyan", "sky", "blue", "indigo", "violet", "purple",
	"fuchsia", "pink", "rose", "slate", "gray", "zinc", "stone",
}

// Shades is how a client renders one palette color.
type Shades struct {
	Background string `json:"background"`
	Indicator  string `json:"indicator"`
	Border     string `json:"border"`
}

var paletteShades = map[string]Shades{
	"red":     {Background: "#FEE2E2", Indicator: "#EF4444", Border: "#B91C1C"},
	"orange":  {Background: "#FFEDD5", Indicator: "#F97316", Border: "#C2410C"},
	"amber":   {Background: "#FEF3C7", Indicator: "#F59E0B", Border: "#B45309"},
	"yellow":  {Background: "#FEF9C3", Indicator: "#EAB308", Border: "#A16207"},
	"lime":    {Background: "#ECFCCB", Indicator: "#84CC16", Border: "#4D7C0F"},
	"green":   {Background: "#DCFCE7", Indicator: "#22C55E", Border: "#15803D"},
	"emerald": {Background: "#D1FAE5", Indicator: "#10B981", Border: "#047857"},
	"teal":    {Background: "#CCFBF1", Indicator: "#14B8A6", Border: "#0F766E"},
	"cyan":    {Background: "#CFFAFE", Indicator: "#06B6D4", Border: "#0E7490"},
	"sky":     {Background: "#E0F2FE", Indicator: "#0EA5E9", Border: "#0369A1"},
	"blue":    {Background: "#DBEAFE", Indicator: "#3B82F6", Border: "#1D4ED8"},
	"indigo":  {Background: "#E0E7FF", Indicator: "#6366F1", Border: "#4338CA"},
	"violet":  {Background: "#EDE9FE", Indicator: "#8B5CF6", Border: "#6D28D9"},
	"purple":  {Background: "#F3E8FF", Indicator: "#A855F7", Border: "#7E22CE"},
	"fuchsia": {Background: "#FAE8FF", Indicator: "#D946EF", Border: "#A21CAF"},
	"pink":    {Background: "#FCE7F3", Indicator: "#EC4899", Border: "#BE185D"},
	"rose":    {Background: "#FFE4E6", Indicator: "#F43F5E", Border: "#BE123C"},
	"slate":   {Background: "#F1F5F9", Indicator: "#64748B", Border: "#334155"},
	"gray":    {Background: "#F3F4F6", Indicator: "#6B7280", Border: "#374151"},
	"zinc":    {Background: "#F4F4F5", Indicator: "#71717A", Border: "#3F3F46"},
	"stone":   {Background: "#F5F5F4", Indicator: "#78716C", Border: "#44403C"},
}

// ExpandPalette returns the shades for name, or the yellow shades when the
// name is not in the palette.
func ExpandPalette(name string) Shades {
	if s, ok := paletteShades[name]; ok {
		return s
	}
	return paletteShades[DefaultColor]
}

func IsPaletteColor(name string) bool {
	_, ok := paletteShades[name]
	return ok
}

// stringHash is the classic 31-multiplier string hash over UTF-16 code units,
// wrapping at 32 bits.
func stringHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	return h
}

func paletteIndex(masterID int64) int {
	h := int64(stringHash(strconv.FormatInt(masterID, 10)))
	if h < 0 {
		h = -h
	}
	return int(h % int64(len(Palette)))
}

// AssignUniqueColor picks the first palette color not in used, probing from
// the slot derived from masterID. With every color taken it falls back to a
// random one, so collisions are possible past len(Palette) masters.
func AssignUniqueColor(masterID int64, used []string) string {
	taken := make(map[string]bool, len(used))
	for _, c := range used {
		taken[c] = true
	}

	start := paletteIndex(masterID)
	for i := range Palette {
		c := Palette[(start+i)%len(Palette)]
		if !taken[c] {
			return c
		}
	}
	return Palette[rand.IntN(len(Palette))]
}
