package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/gogetdata/ggd-docs/internal/signer"
	"github.com/gogetdata/ggd-docs/internal/utils"
	"github.com/gogetdata/ggd-docs/internal/version"
)

// DefaultSubdirs are the platform directories loaded when none are configured
var DefaultSubdirs = []string{"noarch", "linux-64", "osx-64"}

const repodataFile = "repodata.json"

var errNotFound = errors.New("not found")

// Source describes where one channel's repodata lives
type Source struct {
	Channel  string
	Location string // http(s) URL or local directory
	Subdirs  []string
}

// Loader fetches repodata for one or more channels
type Loader struct {
	Client   *http.Client
	Verifier signer.Verifier // nil disables signature checks
	Log      logrus.FieldLogger
}

// RepoData is an in-memory Index built from repodata.json files
type RepoData struct {
	records map[string][]Record // channel/name -> records in load order
	names   map[string][]string // name -> channel/name keys
}

// NewRepoData creates an empty index
func NewRepoData() *RepoData {
	return &RepoData{
		records: make(map[string][]Record),
		names:   make(map[string][]string),
	}
}

type repodataDoc struct {
	Info struct {
		Subdir string `json:"subdir"`
	} `json:"info"`
	Packages      map[string]packageRecord `json:"packages"`
	PackagesConda map[string]packageRecord `json:"packages.conda"`
}

type packageRecord struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Build       string          `json:"build"`
	BuildNumber int             `json:"build_number"`
	Depends     []string        `json:"depends"`
	Subdir      string          `json:"subdir"`
	Noarch      json.RawMessage `json:"noarch"`
}

func (p packageRecord) isNoarch() bool {
	s := strings.TrimSpace(string(p.Noarch))
	return s != "" && s != "null" && s != "false" && s != `""`
}

// Load fetches every configured subdir of every source into one snapshot
func (l *Loader) Load(ctx context.Context, sources ...Source) (*RepoData, error) {
	rd := NewRepoData()
	for _, src := range sources {
		if err := l.loadChannel(ctx, rd, src); err != nil {
			return nil, err
		}
	}
	return rd, nil
}

func (l *Loader) logger() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}

func (l *Loader) loadChannel(ctx context.Context, rd *RepoData, src Source) error {
	subdirs := src.Subdirs
	if len(subdirs) == 0 {
		subdirs = DefaultSubdirs
	}

	loaded := 0
	for _, subdir := range subdirs {
		name, raw, err := l.fetchRepodata(ctx, src.Location, subdir)
		if errors.Is(err, errNotFound) {
			l.logger().WithFields(logrus.Fields{
				"channel": src.Channel,
				"subdir":  subdir,
			}).Warn("No repodata found, skipping subdir")
			continue
		}
		if err != nil {
			return models.NewError(models.ErrChannelIndex, src.Channel, err)
		}

		if l.Verifier != nil {
			if err := l.verify(ctx, src.Location, subdir, name, raw); err != nil {
				return models.NewError(models.ErrSignature, src.Channel, err)
			}
		}

		data, err := utils.Decompress(name, raw)
		if err != nil {
			return models.NewError(models.ErrChannelIndex, src.Channel, err)
		}

		var doc repodataDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return models.NewError(models.ErrChannelIndex, src.Channel,
				fmt.Errorf("failed to parse %s/%s: %w", subdir, name, err))
		}

		n := rd.add(src.Channel, subdir, &doc)
		l.logger().Debugf("Loaded %d records from %s/%s", n, subdir, name)
		loaded++
	}

	if loaded == 0 {
		return models.NewError(models.ErrChannelIndex, src.Channel,
			fmt.Errorf("no repodata found at %s", src.Location))
	}
	return nil
}

func (l *Loader) verify(ctx context.Context, location, subdir, name string, raw []byte) error {
	sig, err := l.fetch(ctx, location, subdir, name+".asc")
	if err != nil {
		return fmt.Errorf("failed to fetch signature for %s/%s: %w", subdir, name, err)
	}
	if err := l.Verifier.Verify(raw, sig); err != nil {
		return fmt.Errorf("%s/%s: %w", subdir, name, err)
	}
	return nil
}

// fetchRepodata returns the first available encoding of repodata.json
func (l *Loader) fetchRepodata(ctx context.Context, location, subdir string) (string, []byte, error) {
	candidates := make([]string, 0, len(utils.CompressedSuffixes)+1)
	for _, suffix := range utils.CompressedSuffixes {
		candidates = append(candidates, repodataFile+suffix)
	}
	candidates = append(candidates, repodataFile)

	for _, name := range candidates {
		data, err := l.fetch(ctx, location, subdir, name)
		if errors.Is(err, errNotFound) {
			continue
		}
		if err != nil {
			return "", nil, err
		}
		return name, data, nil
	}
	return "", nil, errNotFound
}

func (l *Loader) fetch(ctx context.Context, location, subdir, name string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return l.fetchHTTP(ctx, strings.TrimRight(location, "/")+"/"+subdir+"/"+name)
	}

	data, err := os.ReadFile(filepath.Join(location, subdir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("failed to fetch %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return data, nil
}

// platformTag maps linux-64 to linux, osx-arm64 to osx and noarch to noarch
func platformTag(subdir string) string {
	tag, _, _ := strings.Cut(subdir, "-")
	return tag
}

func key(channel, name string) string {
	return channel + "/" + name
}

// add merges a decoded repodata document and returns the number of records
func (rd *RepoData) add(channel, subdir string, doc *repodataDoc) int {
	if doc.Info.Subdir != "" {
		subdir = doc.Info.Subdir
	}

	files := make(map[string]packageRecord, len(doc.Packages)+len(doc.PackagesConda))
	for fn, p := range doc.Packages {
		files[fn] = p
	}
	for fn, p := range doc.PackagesConda {
		files[fn] = p
	}
	filenames := make([]string, 0, len(files))
	for fn := range files {
		filenames = append(filenames, fn)
	}
	sort.Strings(filenames)

	for _, fn := range filenames {
		p := files[fn]
		recSubdir := subdir
		if p.Subdir != "" {
			recSubdir = p.Subdir
		}

		platforms := []string{platformTag(recSubdir)}
		if p.isNoarch() && platforms[0] != models.PlatformNoarch {
			platforms = append(platforms, models.PlatformNoarch)
		}
		sort.Strings(platforms)

		rec := Record{
			Channel:     channel,
			Subdir:      recSubdir,
			Filename:    fn,
			Name:        p.Name,
			Version:     p.Version,
			Build:       p.Build,
			BuildNumber: p.BuildNumber,
			Depends:     p.Depends,
			Platforms:   platforms,
		}

		k := key(channel, p.Name)
		if _, ok := rd.records[k]; !ok {
			rd.names[p.Name] = append(rd.names[p.Name], k)
		}
		rd.records[k] = append(rd.records[k], rec)
	}
	return len(filenames)
}

// PackageData implements Index
func (rd *RepoData) PackageData(fields []string, channel, name string, filters ...Filter) ([][]any, error) {
	var out [][]any
	for _, rec := range rd.records[key(channel, name)] {
		if !rec.matches(filters) {
			continue
		}
		row := make([]any, 0, len(fields))
		for _, f := range fields {
			v, ok := rec.field(f)
			if !ok {
				return nil, models.NewError(models.ErrChannelIndex, name,
					fmt.Errorf("unknown field %q", f))
			}
			row = append(row, v)
		}
		out = append(out, row)
	}
	return out, nil
}

// Entries implements Index
func (rd *RepoData) Entries(channel, name string) []models.ChannelVersionEntry {
	type pair struct {
		version string
		build   int
	}

	var entries []models.ChannelVersionEntry
	pos := make(map[pair]int)
	for _, rec := range rd.records[key(channel, name)] {
		p := pair{rec.Version, rec.BuildNumber}
		i, ok := pos[p]
		if !ok {
			pos[p] = len(entries)
			entries = append(entries, models.ChannelVersionEntry{
				Name:        name,
				Version:     rec.Version,
				BuildNumber: rec.BuildNumber,
				Build:       rec.Build,
				Depends:     append([]string(nil), rec.Depends...),
			})
			i = len(entries) - 1
		}
		e := &entries[i]
		e.Platforms = mergeSorted(e.Platforms, rec.Platforms...)
		e.Subdirs = mergeSorted(e.Subdirs, rec.Subdir)
	}

	version.SortEntries(entries)
	return entries
}

// Versions implements Index
func (rd *RepoData) Versions(name string) map[string][]string {
	out := make(map[string][]string)
	for _, k := range rd.names[name] {
		for _, rec := range rd.records[k] {
			out[rec.Version] = mergeSorted(out[rec.Version], rec.Platforms...)
		}
	}
	return out
}

func mergeSorted(set []string, values ...string) []string {
	for _, v := range values {
		i := sort.SearchStrings(set, v)
		if i < len(set) && set[i] == v {
			continue
		}
		set = append(set, "")
		copy(set[i+1:], set[i:])
		set[i] = v
	}
	return set
}
