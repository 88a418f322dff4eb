package version

import (
	"sort"

	"github.com/gogetdata/ggd-docs/internal/models"
)

// SortEntries sorts channel entries ascending by version, then build number.
// Identical (version, build number) pairs compare by build string so the
// order is total.
func SortEntries(entries []models.ChannelVersionEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return LessEntry(entries[i], entries[j])
	})
}

// LessEntry is the (version, build number) ordering used for channel entries
func LessEntry(a, b models.ChannelVersionEntry) bool {
	if c := Compare(a.Version, b.Version); c != 0 {
		return c < 0
	}
	if a.BuildNumber != b.BuildNumber {
		return a.BuildNumber < b.BuildNumber
	}
	return a.Build < b.Build
}
