package noise

import "testing"

var keywords = []string{"live", "remaster", "demo", "commentary", "instrumental", "karaoke"}

func TestIsNoise(t *testing.T) {
	filter := NewFilter(keywords)

	cases := []struct {
		title string
		want  bool
	}{
		{"Song Title - Live", true},
		{"Song Title", false},
		{"SONG TITLE (LIVE AT WEMBLEY)", true},
		{"Anthem (2024 Remaster)", true},
		{"Quiet Storm (Instrumental)", true},
		{"Karaoke Night", true},
		{"Delivery", true}, // substring match, matches the source behavior
		{"", false},
	}
	for _, tc := range cases {
		if got := filter.IsNoise(tc.title); got != tc.want {
			t.Errorf("IsNoise(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
}

func TestNilAndEmptyFilterMatchNothing(t *testing.T) {
	var nilFilter *Filter
	if nilFilter.IsNoise("Song Title - Live") {
		t.Error("nil filter should match nothing")
	}
	if NewFilter(nil).IsNoise("Song Title - Live") {
		t.Error("empty filter should match nothing")
	}
}

func TestNewFilterNormalizesKeywords(t *testing.T) {
	filter := NewFilter([]string{"  LIVE  ", "", "Demo"})
	if !filter.IsNoise("song (live)") {
		t.Error("expected trimmed lowercase keyword to match")
	}
	if !filter.IsNoise("demo tape") {
		t.Error("expected mixed-case keyword to match")
	}
}
