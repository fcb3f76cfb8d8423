package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

type fileCatalog struct {
	Machines []domain.Machine `yaml:"machines"`
}

// File reads a YAML document with a top-level machines list.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return "file" }

func (f *File) Load(context.Context) ([]domain.Machine, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc fileCatalog
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", f.path, err)
	}
	machines, err := normalize(doc.Machines)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", f.path, err)
	}
	return machines, nil
}

var _ ports.CatalogSource = (*File)(nil)
