// Package export writes the shared profile to a YAML file.
package export

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/glowprofile/internal/answer"
	"github.com/roach88/glowprofile/internal/completion"
	"github.com/roach88/glowprofile/internal/profile"
	"github.com/roach88/glowprofile/internal/schema"
)

// Document is the exported profile.
type Document struct {
	Completion completion.Stat `yaml:"completion"`
	Sections   []Section       `yaml:"sections"`
}

// Section is one exported profile section. Field values are strings or
// string lists.
type Section struct {
	ID     schema.SectionID `yaml:"id"`
	Fields map[string]any   `yaml:"fields"`
}

// Build collects the profile's non-empty sections in schema order.
func Build(p profile.Reader, s *schema.Schema) Document {
	doc := Document{Completion: completion.Compute(p, s)}
	for _, id := range s.SectionIDs() {
		fields := make(map[string]any)
		for name, v := range p.GetSection(id) {
			if v == nil {
				continue
			}
			fields[name] = answer.ToAny(v)
		}
		if len(fields) == 0 {
			continue
		}
		doc.Sections = append(doc.Sections, Section{ID: id, Fields: fields})
	}
	return doc
}

// Marshal encodes doc as YAML. Map keys are sorted, so equal profiles
// produce identical files.
func Marshal(doc Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// WriteFile builds the export document and writes it to path under an
// exclusive file lock.
func WriteFile(ctx context.Context, path string, p profile.Reader, s *schema.Schema) (Document, error) {
	doc := Build(p, s)
	data, err := Marshal(doc)
	if err != nil {
		return Document{}, err
	}
	if err := writeLocked(ctx, path, data); err != nil {
		return Document{}, fmt.Errorf("export %s: %w", path, err)
	}
	return doc, nil
}
