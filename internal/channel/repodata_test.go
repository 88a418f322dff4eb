package channel

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/gogetdata/ggd-docs/internal/models"
	"github.com/gogetdata/ggd-docs/internal/signer"
)

const linuxRepodata = `{
  "info": {"subdir": "linux-64"},
  "packages": {
    "hg19-gaps-1-1.tar.bz2": {"name": "hg19-gaps", "version": "1", "build": "1", "build_number": 1, "depends": ["htslib", "gsort"]},
    "hg19-gaps-1-0.tar.bz2": {"name": "hg19-gaps", "version": "1", "build": "0", "build_number": 0, "depends": ["gsort", "htslib >=1.9"]},
    "grch37-ref-10-0.tar.bz2": {"name": "grch37-ref", "version": "10", "build": "0", "build_number": 0, "depends": []}
  },
  "packages.conda": {
    "grch37-ref-2-0.conda": {"name": "grch37-ref", "version": "2", "build": "0", "build_number": 0, "depends": []}
  }
}`

const osxRepodata = `{
  "info": {"subdir": "osx-64"},
  "packages": {
    "hg19-gaps-1-1.tar.bz2": {"name": "hg19-gaps", "version": "1", "build": "1", "build_number": 1, "depends": ["htslib", "gsort"]}
  }
}`

const noarchRepodata = `{
  "info": {"subdir": "noarch"},
  "packages": {
    "hg38-cpg-1-0.tar.bz2": {"name": "hg38-cpg", "version": "1", "build": "0", "build_number": 0, "depends": [], "noarch": "generic"}
  }
}`

func writeChannel(t *testing.T, encode func(t *testing.T, data []byte) (string, []byte)) string {
	t.Helper()
	dir := t.TempDir()
	for subdir, doc := range map[string]string{
		"linux-64": linuxRepodata,
		"osx-64":   osxRepodata,
		"noarch":   noarchRepodata,
	} {
		name, data := encode(t, []byte(doc))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, subdir), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, subdir, name), data, 0644))
	}
	return dir
}

func plainEncoding(t *testing.T, data []byte) (string, []byte) {
	return "repodata.json", data
}

func gzipEncoding(t *testing.T, data []byte) (string, []byte) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return "repodata.json.gz", buf.Bytes()
}

func zstdEncoding(t *testing.T, data []byte) (string, []byte) {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return "repodata.json.zst", buf.Bytes()
}

func xzEncoding(t *testing.T, data []byte) (string, []byte) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return "repodata.json.xz", buf.Bytes()
}

func quietLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	return log, hook
}

func load(t *testing.T, dir string) *RepoData {
	t.Helper()
	log, _ := quietLogger()
	l := &Loader{Log: log}
	rd, err := l.Load(context.Background(), Source{Channel: "ggd-genomics", Location: dir})
	require.NoError(t, err)
	return rd
}

func TestLoadEncodings(t *testing.T) {
	encodings := map[string]func(t *testing.T, data []byte) (string, []byte){
		"plain": plainEncoding,
		"gzip":  gzipEncoding,
		"zstd":  zstdEncoding,
		"xz":    xzEncoding,
	}

	want := load(t, writeChannel(t, plainEncoding)).Entries("ggd-genomics", "hg19-gaps")
	require.Len(t, want, 2)

	for name, enc := range encodings {
		t.Run(name, func(t *testing.T) {
			rd := load(t, writeChannel(t, enc))
			assert.Equal(t, want, rd.Entries("ggd-genomics", "hg19-gaps"))
		})
	}
}

func TestEntries(t *testing.T) {
	rd := load(t, writeChannel(t, plainEncoding))

	entries := rd.Entries("ggd-genomics", "hg19-gaps")
	require.Len(t, entries, 2)
	assert.Equal(t, "1-0", entries[0].Label())
	assert.Equal(t, []string{"linux"}, entries[0].Platforms)
	assert.Equal(t, []string{"gsort", "htslib >=1.9"}, entries[0].Depends)
	assert.Equal(t, "1-1", entries[1].Label())
	assert.Equal(t, []string{"linux", "osx"}, entries[1].Platforms)
	assert.Equal(t, []string{"linux-64", "osx-64"}, entries[1].Subdirs)

	// numeric ordering, and packages.conda records are included
	ref := rd.Entries("ggd-genomics", "grch37-ref")
	require.Len(t, ref, 2)
	assert.Equal(t, "2", ref[0].Version)
	assert.Equal(t, "10", ref[1].Version)

	noarch := rd.Entries("ggd-genomics", "hg38-cpg")
	require.Len(t, noarch, 1)
	assert.True(t, noarch[0].IsNoarch())

	assert.Empty(t, rd.Entries("ggd-genomics", "missing"))
	assert.Empty(t, rd.Entries("other-channel", "hg19-gaps"))
}

func TestPackageData(t *testing.T) {
	rd := load(t, writeChannel(t, plainEncoding))

	rows, err := rd.PackageData([]string{FieldVersion, FieldBuildNumber}, "ggd-genomics", "hg19-gaps")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = rd.PackageData([]string{FieldSubdir, FieldDepends}, "ggd-genomics", "hg19-gaps",
		WithVersion("1"), WithBuildNumber(1))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "linux-64", rows[0][0])
	assert.Equal(t, "osx-64", rows[1][0])
	assert.Equal(t, []string{"htslib", "gsort"}, rows[0][1])

	_, err = rd.PackageData([]string{"sha256"}, "ggd-genomics", "hg19-gaps")
	assert.True(t, models.IsType(err, models.ErrChannelIndex))
}

func TestVersions(t *testing.T) {
	rd := load(t, writeChannel(t, plainEncoding))

	assert.Equal(t, map[string][]string{"1": {"linux", "osx"}}, rd.Versions("hg19-gaps"))
	assert.Equal(t, map[string][]string{"1": {"noarch"}}, rd.Versions("hg38-cpg"))
	assert.Empty(t, rd.Versions("missing"))
}

func TestLoadMissingSubdirs(t *testing.T) {
	dir := writeChannel(t, plainEncoding)
	log, hook := quietLogger()
	l := &Loader{Log: log}

	rd, err := l.Load(context.Background(), Source{
		Channel:  "ggd-genomics",
		Location: dir,
		Subdirs:  []string{"linux-64", "win-64"},
	})
	require.NoError(t, err)
	assert.Len(t, rd.Entries("ggd-genomics", "hg19-gaps"), 2)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "win-64", hook.LastEntry().Data["subdir"])

	_, err = l.Load(context.Background(), Source{Channel: "ggd-genomics", Location: t.TempDir()})
	assert.True(t, models.IsType(err, models.ErrChannelIndex))
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "noarch"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "noarch", "repodata.json"), []byte("{"), 0644))

	log, _ := quietLogger()
	_, err := (&Loader{Log: log}).Load(context.Background(), Source{Channel: "c", Location: dir})
	assert.True(t, models.IsType(err, models.ErrChannelIndex))
}

func TestLoadHTTP(t *testing.T) {
	dir := writeChannel(t, zstdEncoding)
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	log, _ := quietLogger()
	l := &Loader{Client: srv.Client(), Log: log}
	rd, err := l.Load(context.Background(), Source{Channel: "ggd-genomics", Location: srv.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, load(t, dir).Entries("ggd-genomics", "hg19-gaps"), rd.Entries("ggd-genomics", "hg19-gaps"))
}

func TestLoadHTTPServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	log, _ := quietLogger()
	_, err := (&Loader{Client: srv.Client(), Log: log}).Load(context.Background(),
		Source{Channel: "ggd-genomics", Location: srv.URL})
	assert.True(t, models.IsType(err, models.ErrChannelIndex))
}

func TestLoadSigned(t *testing.T) {
	entity, err := openpgp.NewEntity("channel", "", "channel@example.com", nil)
	require.NoError(t, err)
	verifier := signer.NewGPGVerifierFromKeyring(openpgp.EntityList{entity})

	dir := writeChannel(t, plainEncoding)
	for _, subdir := range []string{"linux-64", "osx-64", "noarch"} {
		path := filepath.Join(dir, subdir, "repodata.json")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var sig bytes.Buffer
		require.NoError(t, openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader(data), nil))
		require.NoError(t, os.WriteFile(path+".asc", sig.Bytes(), 0644))
	}

	log, _ := quietLogger()
	l := &Loader{Verifier: verifier, Log: log}
	_, err = l.Load(context.Background(), Source{Channel: "ggd-genomics", Location: dir})
	require.NoError(t, err)

	// tamper with one subdir after signing
	path := filepath.Join(dir, "osx-64", "repodata.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"packages": {}}`), 0644))
	_, err = l.Load(context.Background(), Source{Channel: "ggd-genomics", Location: dir})
	assert.True(t, models.IsType(err, models.ErrSignature))

	// missing signature
	require.NoError(t, os.Remove(path+".asc"))
	_, err = l.Load(context.Background(), Source{Channel: "ggd-genomics", Location: dir})
	assert.True(t, models.IsType(err, models.ErrSignature))
}

func TestPlatformTag(t *testing.T) {
	assert.Equal(t, "linux", platformTag("linux-64"))
	assert.Equal(t, "osx", platformTag("osx-arm64"))
	assert.Equal(t, "noarch", platformTag("noarch"))
}
