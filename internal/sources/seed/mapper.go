package seed

import (
	"fmt"
	"strings"

	"github.com/linkdeck/linkdeck/internal/domain"
)

// Mapper converts seed file entries to catalog link definitions.
type Mapper struct{}

// NewMapper creates a seed mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapEntries converts a seed file to link definitions, preserving order.
// Entries without a name or url are skipped; an empty result is an error
// because publishing an empty catalog would retire nothing and help nobody.
func (m *Mapper) MapEntries(file *File) ([]domain.LinkDefinition, error) {
	defs := make([]domain.LinkDefinition, 0, len(file.Links))

	for _, entry := range file.Links {
		name := strings.TrimSpace(entry.Name)
		url := strings.TrimSpace(entry.URL)
		if name == "" || url == "" {
			continue
		}

		group := strings.TrimSpace(entry.Group)
		if group == "" {
			group = "General"
		}

		defs = append(defs, domain.LinkDefinition{
			Name:        name,
			URL:         url,
			Description: strings.TrimSpace(entry.Description),
			GroupName:   group,
			SortOrder:   entry.SortOrder,
		})
	}

	if len(defs) == 0 {
		return nil, fmt.Errorf("no valid link definitions found in seed file")
	}

	return defs, nil
}
