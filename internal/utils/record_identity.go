package utils

import (
	"fmt"

	"github.com/gogetdata/ggd-docs/internal/models"
)

// RecordIdentity returns a unique identifier for a rendered record: the
// package name and the channel version it was built from
func RecordIdentity(rec models.TemplateContext) string {
	return fmt.Sprintf("%s:%s", rec.String("name"), rec.String("ChannelVersion"))
}

// DedupRecords drops records whose identity was already seen, keeping the
// first occurrence and the original order
func DedupRecords(records []models.TemplateContext) []models.TemplateContext {
	seen := make(map[string]bool, len(records))
	out := make([]models.TemplateContext, 0, len(records))
	for _, rec := range records {
		id := RecordIdentity(rec)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, rec)
	}
	return out
}
