package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// Config selects where the machine catalog comes from. Exactly one of
// ConnString, Path or Machines is used, in that order of precedence.
type Config struct {
	ConnString string           `yaml:"conn_string"`
	Table      string           `yaml:"table"`
	Path       string           `yaml:"path"`
	Machines   []domain.Machine `yaml:"machines"`
}

func (c *Config) ApplyDefaults() {
	if c.Table == "" {
		c.Table = "machines"
	}
}

func (c *Config) Validate() error {
	if c.ConnString == "" && c.Path == "" && len(c.Machines) == 0 {
		return errors.New("one of conn_string, path or machines is required")
	}
	return nil
}

// normalize fills the operational state for entries that omit it and
// canonicalizes the rest. An unparseable state fails the whole catalog.
func normalize(machines []domain.Machine) ([]domain.Machine, error) {
	for i := range machines {
		if machines[i].State == "" {
			machines[i].State = domain.StateRunning
		} else {
			st, err := domain.ParseOperationalState(string(machines[i].State))
			if err != nil {
				return nil, fmt.Errorf("machine %s: %w", machines[i].ID, err)
			}
			machines[i].State = st
		}
		if machines[i].Name == "" {
			machines[i].Name = machines[i].ID
		}
	}
	return machines, nil
}

// Open resolves the configured source. The returned db is non-nil only for
// the Postgres source and must be closed by the caller.
func Open(cfg Config) (ports.CatalogSource, *sql.DB, error) {
	cfg.ApplyDefaults()
	switch {
	case cfg.ConnString != "":
		db, err := sql.Open("postgres", cfg.ConnString)
		if err != nil {
			return nil, nil, fmt.Errorf("open catalog database: %w", err)
		}
		return NewPostgres(db, cfg.Table), db, nil
	case cfg.Path != "":
		return NewFile(cfg.Path), nil, nil
	case len(cfg.Machines) > 0:
		return NewStatic(cfg.Machines), nil, nil
	default:
		return nil, nil, errors.New("catalog: no source configured")
	}
}
