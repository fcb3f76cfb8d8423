package catalog

import (
	"context"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// Static serves a catalog that is already in memory, typically the inline
// machines list of the config file.
type Static struct {
	machines []domain.Machine
}

func NewStatic(machines []domain.Machine) *Static {
	return &Static{machines: machines}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Load(context.Context) ([]domain.Machine, error) {
	out := make([]domain.Machine, len(s.machines))
	for i, m := range s.machines {
		out[i] = m.Clone()
	}
	return normalize(out)
}

var _ ports.CatalogSource = (*Static)(nil)
