package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/gogetdata/ggd-docs/internal/metrics"
	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/gogetdata/ggd-docs/internal/scanner"
	"github.com/gogetdata/ggd-docs/internal/version"
)

// ReadmeTemplate renders the detail page of one package
const ReadmeTemplate = "readme.rst_t"

// GenerateReadme aggregates one recipe folder: it writes the package's
// README page and returns one record per published (version, build) of the
// package. A folder without usable metadata yields no records and no error;
// only render or write failures are returned.
func (g *Generator) GenerateReadme(folder models.RecipeFolder) ([]models.TemplateContext, error) {
	log := g.log.WithFields(logrus.Fields{
		"package": folder.Name,
		"path":    folder.Path,
	})
	g.metrics.IncFolder()

	versions, err := scanner.DiscoverVersions(folder.Path, log)
	if err != nil {
		log.WithError(err).Error("Failed to list recipe folder")
		g.metrics.IncSkipped(metrics.SkipNoMetadata)
		return nil, nil
	}

	metaPath, own := g.selectMetadata(folder.Path, versions)
	if metaPath == "" {
		log.Debug("No description file, not a recipe")
		g.metrics.IncSkipped(metrics.SkipNoMetadata)
		return nil, nil
	}

	meta, err := g.parser.Parse(metaPath)
	if err != nil {
		log.WithField("file", metaPath).WithError(err).Errorf("Failed to parse recipe %s, skipping", folder.Name)
		g.metrics.IncSkipped(metrics.SkipParseError)
		return nil, nil
	}
	if own && meta.Version != "" && !slices.Contains(versions, meta.Version) {
		versions = append([]string{meta.Version}, versions...)
	}

	published, entries := g.channelEntries(meta)
	if len(entries) == 0 {
		log.Warnf("No builds of %s found in channel %s", meta.Name, g.cfg.Channel)
	}

	base := g.baseContext(meta, metaPath, versions, entries)
	base["version_platforms"] = g.versionPlatforms(published)

	page := filepath.Join(g.cfg.OutputDir, meta.Name, "README."+g.cfg.PageExt)
	written, err := g.renderer.RenderToFile(page, ReadmeTemplate, base)
	if err != nil {
		return nil, err
	}
	g.metrics.IncPage("readme", written)
	if written {
		log.Debugf("Wrote %s", page)
	}

	if len(entries) == 0 {
		g.metrics.IncSkipped(metrics.SkipNoEntries)
		return nil, nil
	}

	latest := entries[len(entries)-1].Label()
	records := make([]models.TemplateContext, 0, len(entries))
	for _, e := range entries {
		rec := base.Clone()
		m := PlatformMarkers(e)
		rec["Linux"] = m.Linux
		rec["OSX"] = m.OSX
		rec["NOARCH"] = m.Noarch
		rec["Version"] = latest
		rec["ChannelVersion"] = e.Label()
		rec["platforms"] = e.Platforms
		records = append(records, rec)
	}
	return records, nil
}

// selectMetadata prefers the folder's own description file and falls back
// to the first version folder. The second result reports whether the
// folder's own file was chosen.
func (g *Generator) selectMetadata(folder string, versions []string) (string, bool) {
	own := filepath.Join(folder, g.cfg.DescriptionFile)
	if fileExists(own) {
		return own, true
	}
	if len(versions) > 0 {
		first := filepath.Join(folder, versions[0], g.cfg.DescriptionFile)
		if fileExists(first) {
			return first, false
		}
	}
	return "", false
}

// channelEntries returns the sorted channel entries of the primary package
// name, or of the first shard that has any, along with the name they were
// published under
func (g *Generator) channelEntries(meta *models.RecipeMetadata) (string, []models.ChannelVersionEntry) {
	if entries := g.index.Entries(g.cfg.Channel, meta.Name); len(entries) > 0 {
		return meta.Name, entries
	}
	for _, name := range meta.Names {
		if name == meta.Name {
			continue
		}
		if entries := g.index.Entries(g.cfg.Channel, name); len(entries) > 0 {
			return name, entries
		}
	}
	return "", nil
}

// versionPlatforms lists every published version of name with the union of
// its platforms, in version order
func (g *Generator) versionPlatforms(name string) []models.VersionPlatforms {
	if name == "" {
		return nil
	}
	byVersion := g.index.Versions(name)
	out := make([]models.VersionPlatforms, 0, len(byVersion))
	for v, platforms := range byVersion {
		out = append(out, models.VersionPlatforms{Version: v, Platforms: platforms})
	}
	slices.SortFunc(out, func(a, b models.VersionPlatforms) int {
		return version.Compare(a.Version, b.Version)
	})
	return out
}

func (g *Generator) baseContext(meta *models.RecipeMetadata, metaPath string, versions []string, entries []models.ChannelVersionEntry) models.TemplateContext {
	about := meta.About
	if about == nil {
		about = map[string]any{}
	}
	extra := meta.Extra
	if extra == nil {
		extra = map[string]any{}
	}

	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.Label())
	}

	var depends []models.Dependency
	if len(entries) > 0 {
		depends = models.ParseDependencies(entries[0].Depends)
	}

	recipePath := filepath.Dir(metaPath)
	if rel, err := filepath.Rel(g.cfg.RecipeDir, recipePath); err == nil {
		recipePath = rel
	}

	return models.TemplateContext{
		"name":            meta.Name,
		"about":           about,
		"extra":           extra,
		"species":         meta.Species(),
		"genome_build":    meta.GenomeBuild(),
		"ggd_channel":     meta.ChannelTag(),
		"versions":        labels,
		"recipe_versions": versions,
		"depends":         depends,
		"gh_recipes":      g.cfg.GHRecipes,
		"recipe_path":     filepath.ToSlash(recipePath),
		"Package":         fmt.Sprintf(`<a href="%s/%s/README.html">%s</a>`, g.linkPrefix, meta.Name, meta.Name),
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
