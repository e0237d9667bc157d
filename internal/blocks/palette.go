package blocks

import "sort"

// DefaultSchemes maps scheme names to three-color palettes. The selection
// leans toward screen-printing: monochromes, muted earth tones, simplified
// tetradic sets, and single-color gradients.
var DefaultSchemes = map[string][]string{
	// Monochrome
	"black":    {"#1A1A1A", "#333333", "#4D4D4D"},
	"charcoal": {"#2C2C2C", "#404040", "#545454"},
	"white":    {"#F5F5F5", "#E8E8E8", "#DBDBDB"},
	"navy":     {"#1B2951", "#2C3E50", "#34495E"},

	// Muted earth tones
	"desert": {"#8B7355", "#A0926B", "#B5A482"},
	"clay":   {"#B85450", "#C67368", "#D49280"},
	"sage":   {"#87A96B", "#9BB284", "#AFBC9C"},
	"stone":  {"#7A7A7A", "#8C8C8C", "#9E9E9E"},

	// Tetradic complementary, reduced to three colors
	"autumn":   {"#D2691E", "#8B4513", "#A0522D"},
	"forest":   {"#228B22", "#2F4F2F", "#556B2F"},
	"ocean":    {"#4682B4", "#5F9EA0", "#708090"},
	"burgundy": {"#800020", "#9B2335", "#B6364A"},

	// Single-color gradients
	"indigo": {"#2E3192", "#4B5F9B", "#688DA4"},
	"rust":   {"#B7410E", "#C95A2A", "#DB7346"},
	"pine":   {"#01796F", "#2D8B83", "#599D97"},
	"plum":   {"#5D4037", "#6D4C41", "#795548"},
}

// SchemeNames returns the scheme names in sorted order so batch output is
// deterministic.
func SchemeNames(schemes map[string][]string) []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
