package scanner

import (
	"os"
	"path/filepath"

	"github.com/gogetdata/ggd-docs/internal/version"
	"github.com/sirupsen/logrus"
)

// DiscoverVersions lists the immediate subdirectories of folder whose names
// parse as versions, in directory order. Subdirectories that do not parse are
// logged and skipped.
func DiscoverVersions(folder string, log logrus.FieldLogger) ([]string, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		res := version.Parse(entry.Name())
		switch res.Outcome {
		case version.Parsed:
			versions = append(versions, res.Version.String())
		case version.Skip:
			log.WithField("path", filepath.Join(folder, entry.Name())).Error(res.Reason)
		}
	}
	return versions, nil
}
