package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// Postgres reads machine definitions owned by the surrounding application.
// The envelope column holds a JSON object keyed by parameter name.
type Postgres struct {
	db        *sql.DB
	tableName string
}

func NewPostgres(db *sql.DB, table string) *Postgres {
	return &Postgres{db: db, tableName: table}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Load(ctx context.Context) ([]domain.Machine, error) {
	query := "SELECT id, name, type, location, state, envelope FROM " + p.tableName + " ORDER BY id"
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var out []domain.Machine
	for rows.Next() {
		var (
			m        domain.Machine
			state    sql.NullString
			envelope []byte
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.Location, &state, &envelope); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		if state.Valid && state.String != "" {
			st, err := domain.ParseOperationalState(state.String)
			if err != nil {
				return nil, fmt.Errorf("machine %s: %w", m.ID, err)
			}
			m.State = st
		}
		if len(envelope) > 0 {
			if err := json.Unmarshal(envelope, &m.Envelope); err != nil {
				return nil, fmt.Errorf("machine %s envelope: %w", m.ID, err)
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return normalize(out)
}

var _ ports.CatalogSource = (*Postgres)(nil)
