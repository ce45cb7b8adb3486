package tracker

import (
	"sort"

	"trackfeed/internal/music"
)

// Cap orders an artist's releases by popularity and truncates to the top
// maxPerArtist. Ties break by release date descending, then track id, so the
// output is stable across runs. A non-positive cap returns the input
// unchanged.
func Cap(releases []music.Release, maxPerArtist int) []music.Release {
	if maxPerArtist <= 0 {
		return releases
	}
	ranked := make([]music.Release, len(releases))
	copy(ranked, releases)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Popularity != ranked[j].Popularity {
			return ranked[i].Popularity > ranked[j].Popularity
		}
		if !ranked[i].ReleaseDate.Equal(ranked[j].ReleaseDate) {
			return ranked[i].ReleaseDate.After(ranked[j].ReleaseDate)
		}
		return ranked[i].TrackID < ranked[j].TrackID
	})
	if len(ranked) > maxPerArtist {
		ranked = ranked[:maxPerArtist]
	}
	return ranked
}
