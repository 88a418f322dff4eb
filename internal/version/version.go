// Package version parses and orders recipe version strings.
//
// Parsing is deliberately strict so that folder names such as "GRCh37" or
// "Homo_sapiens" are never mistaken for versions. Ordering compares the
// optional "N!" epoch, then the release segments with rpmvercmp from
// go-rpmutils, then a trailing release tag: dev < a < b < rc < final < post.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	rpmutils "github.com/sassoftware/go-rpmutils"
)

var (
	versionRe = regexp.MustCompile(`^(?:(\d+)!)?(\d[0-9A-Za-z]*(?:[._+][0-9A-Za-z]+)*)$`)
	tagRe     = regexp.MustCompile(`^(.*?\d)[._]?(dev|alpha|beta|post|pre|rc|a|b|c)(\d*)$`)
)

// release tag ranks relative to a final release
var tagRank = map[string]int{
	"dev":   -4,
	"alpha": -3,
	"a":     -3,
	"beta":  -2,
	"b":     -2,
	"rc":    -1,
	"c":     -1,
	"pre":   -1,
	"post":  1,
}

// Version is a validated version string
type Version struct {
	raw     string
	epoch   int
	release string
	tag     int // rank of the trailing release tag, 0 for a final release
	tagNum  int
}

// String returns the version as it was written
func (v Version) String() string {
	return v.raw
}

// Compare returns -1, 0 or 1 when v sorts before, equal to or after other
func (v Version) Compare(other Version) int {
	if v.epoch != other.epoch {
		if v.epoch < other.epoch {
			return -1
		}
		return 1
	}
	if c := rpmutils.Vercmp(v.release, other.release); c != 0 {
		return c
	}
	if c := cmpInt(v.tag, other.tag); c != 0 {
		return c
	}
	return cmpInt(v.tagNum, other.tagNum)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// splitTag separates a trailing release tag such as "rc1" or ".dev2" from
// the release segments
func splitTag(body string) (release string, rank, num int) {
	m := tagRe.FindStringSubmatch(body)
	if m == nil {
		return body, 0, 0
	}
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return body, 0, 0
		}
		num = n
	}
	return m[1], tagRank[m[2]], num
}

// Outcome tells whether a candidate parsed as a version
type Outcome int

const (
	Parsed Outcome = iota
	Skip
)

// Result is the outcome of parsing one version candidate
type Result struct {
	Outcome Outcome
	Version Version
	Reason  string // set when Outcome is Skip
}

// OK reports whether the candidate parsed
func (r Result) OK() bool {
	return r.Outcome == Parsed
}

// Parse validates a version candidate
func Parse(s string) Result {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Result{Outcome: Skip, Reason: fmt.Sprintf("'%s' does not look like a proper version", s)}
	}
	epoch := 0
	if m[1] != "" {
		e, err := strconv.Atoi(m[1])
		if err != nil {
			return Result{Outcome: Skip, Reason: fmt.Sprintf("'%s' has an invalid epoch: %v", s, err)}
		}
		epoch = e
	}
	release, tag, tagNum := splitTag(strings.ToLower(m[2]))
	return Result{Outcome: Parsed, Version: Version{raw: s, epoch: epoch, release: release, tag: tag, tagNum: tagNum}}
}

// Compare orders two raw version strings. Strings that do not parse sort
// before every valid version and among themselves lexically.
func Compare(a, b string) int {
	ra, rb := Parse(a), Parse(b)
	switch {
	case ra.OK() && rb.OK():
		return ra.Version.Compare(rb.Version)
	case ra.OK():
		return 1
	case rb.OK():
		return -1
	default:
		return strings.Compare(a, b)
	}
}
