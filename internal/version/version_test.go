package version

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	valid := []string{"1", "1.0", "1.0.0", "2019.01", "1.2.3a", "3.0_beta1", "1!2.0", "20180101", "1.0+local"}
	for _, s := range valid {
		r := Parse(s)
		assert.True(t, r.OK(), "expected %q to parse", s)
		assert.Equal(t, s, r.Version.String())
	}

	invalid := []string{"", "GRCh37", "Homo_sapiens", "v1.0", "1..0", "1.0.", ".1", "1.0-2", "latest", "1 0", "hg19"}
	for _, s := range invalid {
		r := Parse(s)
		assert.Equal(t, Skip, r.Outcome, "expected %q to be skipped", s)
		assert.NotEmpty(t, r.Reason)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"1.10", "1.9", 1},
		{"1.0", "1.0.1", -1},
		{"2!1.0", "3.0", 1},
		{"1.0", "not-a-version", 1},
		{"1.0rc1", "1.0", -1},
		{"1.0.dev1", "1.0rc1", -1},
		{"1.0", "1.0.post1", -1},
		{"1.0a1", "1.0b1", -1},
		{"3.0_beta1", "3.0_beta2", -1},
		{"1.0rc2", "1.0.1", -1},
		{"1.0.post1", "1.0.1", -1},
		{"1.2.3a", "1.2.3", -1},
		{"2!1.0rc1", "1!2.0", 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_vs_%s", tt.a, tt.b), func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}
}

func TestSortEntries(t *testing.T) {
	entries := []models.ChannelVersionEntry{
		{Version: "1.10", BuildNumber: 0},
		{Version: "1.2", BuildNumber: 1},
		{Version: "1.2", BuildNumber: 0},
		{Version: "1.9", BuildNumber: 3},
	}
	SortEntries(entries)

	var labels []string
	for _, e := range entries {
		labels = append(labels, e.Label())
	}
	require.Equal(t, []string{"1.2-0", "1.2-1", "1.9-3", "1.10-0"}, labels)
}

func TestParseProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("dotted numeric versions always parse", prop.ForAll(
		func(parts []uint16) bool {
			if len(parts) == 0 {
				return true
			}
			segs := make([]string, len(parts))
			for i, p := range parts {
				segs[i] = fmt.Sprint(p)
			}
			return Parse(strings.Join(segs, ".")).OK()
		},
		gen.SliceOf(gen.UInt16()),
	))

	properties.Property("names starting with a letter never parse", prop.ForAll(
		func(name string) bool {
			return !Parse(name).OK()
		},
		gen.Identifier(),
	))

	properties.Property("comparison is antisymmetric", prop.ForAll(
		func(a, b uint16, c, d uint8) bool {
			va := fmt.Sprintf("%d.%d", a, c)
			vb := fmt.Sprintf("%d.%d", b, d)
			return Compare(va, vb) == -Compare(vb, va)
		},
		gen.UInt16(), gen.UInt16(), gen.UInt8(), gen.UInt8(),
	))

	properties.Property("pre-releases sort before the release", prop.ForAll(
		func(a, b uint16, tag string, n uint8) bool {
			release := fmt.Sprintf("%d.%d", a, b)
			pre := fmt.Sprintf("%s%s%d", release, tag, n)
			return Compare(pre, release) == -1 && Compare(release+".post"+fmt.Sprint(n), release) == 1
		},
		gen.UInt16(), gen.UInt16(), gen.OneConstOf("a", "b", "rc", ".dev", "_beta"), gen.UInt8(),
	))

	properties.TestingRun(t)
}
