package music

import (
	"testing"
	"time"
)

func TestParseReleaseDatePartialForms(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
	}{
		{"2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-05", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-05-17", time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseReleaseDate(tc.input)
		if err != nil {
			t.Errorf("ParseReleaseDate(%q) failed: %v", tc.input, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseReleaseDate(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseReleaseDateRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "24", "2024-5", "2024/05/17", "not-a-date1"} {
		if _, err := ParseReleaseDate(input); err == nil {
			t.Errorf("ParseReleaseDate(%q) should fail", input)
		}
	}
}

func TestFormatReleaseDate(t *testing.T) {
	date := time.Date(2024, 5, 17, 13, 45, 0, 0, time.FixedZone("x", 3600))
	if got := FormatReleaseDate(date); got != "2024-05-17" {
		t.Errorf("FormatReleaseDate = %q, want 2024-05-17", got)
	}
}

func TestValidID(t *testing.T) {
	if !ValidID("4Z8W4fKeB5YxbusRsiQu0a") {
		t.Error("expected 22-char base62 id to validate")
	}
	for _, id := range []string{"", "short", "4Z8W4fKeB5YxbusRsiQu0a!", "spotify:artist:4Z8W4fKeB5YxbusRsiQu0a"} {
		if ValidID(id) {
			t.Errorf("ValidID(%q) should be false", id)
		}
	}
}
