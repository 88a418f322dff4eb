package channel

import (
	"github.com/gogetdata/ggd-docs/internal/models"
)

// Field names accepted by Index.PackageData
const (
	FieldVersion     = "version"
	FieldBuildNumber = "build_number"
	FieldBuild       = "build"
	FieldDepends     = "depends"
	FieldSubdir      = "subdir"
	FieldPlatform    = "platform"
)

// Index is a read-only snapshot of one or more published channels
type Index interface {
	// PackageData returns one tuple of the requested fields per published
	// file of name in channel, in load order
	PackageData(fields []string, channel, name string, filters ...Filter) ([][]any, error)
	// Entries returns the (version, build number) pairs of name in channel,
	// merged across subdirs and sorted ascending
	Entries(channel, name string) []models.ChannelVersionEntry
	// Versions maps every version of name to its sorted platform tags
	Versions(name string) map[string][]string
}

// Record is a single package file listed in a repodata.json
type Record struct {
	Channel     string
	Subdir      string
	Filename    string
	Name        string
	Version     string
	Build       string
	BuildNumber int
	Depends     []string
	Platforms   []string
}

// Filter restricts the records returned by PackageData
type Filter func(Record) bool

// WithVersion keeps records of the given version
func WithVersion(v string) Filter {
	return func(r Record) bool { return r.Version == v }
}

// WithBuildNumber keeps records of the given build number
func WithBuildNumber(n int) Filter {
	return func(r Record) bool { return r.BuildNumber == n }
}

func (r Record) field(name string) (any, bool) {
	switch name {
	case FieldVersion:
		return r.Version, true
	case FieldBuildNumber:
		return r.BuildNumber, true
	case FieldBuild:
		return r.Build, true
	case FieldDepends:
		return append([]string(nil), r.Depends...), true
	case FieldSubdir:
		return r.Subdir, true
	case FieldPlatform:
		return append([]string(nil), r.Platforms...), true
	default:
		return nil, false
	}
}

func (r Record) matches(filters []Filter) bool {
	for _, f := range filters {
		if !f(r) {
			return false
		}
	}
	return true
}
