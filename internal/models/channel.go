package models

import (
	"fmt"
	"sort"
)

// Platform tags reported by the channel index
const (
	PlatformLinux  = "linux"
	PlatformOSX    = "osx"
	PlatformNoarch = "noarch"
)

// ChannelVersionEntry is one published (version, build number) of a package
// together with every platform it is available for.
type ChannelVersionEntry struct {
	Name        string
	Version     string
	BuildNumber int
	Build       string   // build string of the first file seen for this pair
	Platforms   []string // sorted, unique
	Subdirs     []string // sorted, unique
	Depends     []string
}

// HasPlatform reports whether the entry is available for the given tag
func (e ChannelVersionEntry) HasPlatform(tag string) bool {
	i := sort.SearchStrings(e.Platforms, tag)
	return i < len(e.Platforms) && e.Platforms[i] == tag
}

// IsNoarch reports whether the entry is tagged platform independent
func (e ChannelVersionEntry) IsNoarch() bool {
	return e.HasPlatform(PlatformNoarch)
}

// Label formats the entry as "<version>-<build number>"
func (e ChannelVersionEntry) Label() string {
	return fmt.Sprintf("%s-%d", e.Version, e.BuildNumber)
}
