package models

import "strings"

// DefaultChannelTag is used when a recipe has no about.tags.ggd-channel
const DefaultChannelTag = "genomics"

// RecipeFolder identifies one package's subtree in the recipe repository
type RecipeFolder struct {
	Name    string // folder base name
	Path    string // absolute or root-joined path
	RelPath string // path relative to the recipe root
}

// RecipeMetadata is the parsed content of a recipe description file
type RecipeMetadata struct {
	Name    string   // package.name
	Names   []string // package.name plus outputs[].name, unique and sorted
	Version string   // package.version, may be empty
	About   map[string]any
	Extra   map[string]any
	Path    string // resolved description file path
}

// Identifiers returns about.identifiers or nil
func (m *RecipeMetadata) Identifiers() map[string]any {
	return subMap(m.About, "identifiers")
}

// Species returns about.identifiers.species, or an empty mapping when absent
func (m *RecipeMetadata) Species() any {
	if v, ok := m.Identifiers()["species"]; ok && v != nil {
		return v
	}
	return map[string]any{}
}

// GenomeBuild returns about.identifiers.genome-build, or an empty mapping when absent
func (m *RecipeMetadata) GenomeBuild() any {
	if v, ok := m.Identifiers()["genome-build"]; ok && v != nil {
		return v
	}
	return map[string]any{}
}

// ChannelTag returns about.tags.ggd-channel, defaulting to DefaultChannelTag
func (m *RecipeMetadata) ChannelTag() string {
	if v, ok := subMap(m.About, "tags")["ggd-channel"].(string); ok && v != "" {
		return v
	}
	return DefaultChannelTag
}

func subMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

// Dependency is one entry of a package's run requirements
type Dependency struct {
	Name       string
	Constraint string
}

// ParseDependency splits a depends string on its first whitespace.
// "samtools >=1.9" yields ("samtools", ">=1.9"), "samtools" yields ("samtools", "").
func ParseDependency(s string) Dependency {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return Dependency{Name: s[:i], Constraint: strings.TrimSpace(s[i+1:])}
	}
	return Dependency{Name: s}
}

// ParseDependencies applies ParseDependency to every entry
func ParseDependencies(depends []string) []Dependency {
	deps := make([]Dependency, 0, len(depends))
	for _, d := range depends {
		deps = append(deps, ParseDependency(d))
	}
	return deps
}
