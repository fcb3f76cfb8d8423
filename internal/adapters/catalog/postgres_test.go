package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
)

const catalogQuery = "SELECT id, name, type, location, state, envelope FROM machines ORDER BY id"

func TestPostgresLoad(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	envelope := `{"moulding_pressure":{"min":80,"ideal":100,"max":120,"critical_max":130},
		"sand_temperature":{"min":20,"ideal":35,"max":50,"critical_max":60},
		"cycle_time_variance":{"min":0,"ideal":0,"max":10,"critical_max":15}}`

	rows := sqlmock.NewRows([]string{"id", "name", "type", "location", "state", "envelope"}).
		AddRow("M1", "Moulding Line 1", "moulding", "Bay A", "running", []byte(envelope)).
		AddRow("AUX-1", "", "extractor", "Bay C", nil, []byte(`{}`))
	mock.ExpectQuery(regexp.QuoteMeta(catalogQuery)).WillReturnRows(rows)

	machines, err := NewPostgres(db, "machines").Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(machines) != 2 {
		t.Fatalf("expected 2 machines, got %d", len(machines))
	}

	m1 := machines[0]
	if m1.State != domain.StateRunning {
		t.Fatalf("expected Running, got %s", m1.State)
	}
	if got := m1.Envelope[domain.MouldingPressure].CriticalMax; got != 130 {
		t.Fatalf("expected critical max 130, got %v", got)
	}

	aux := machines[1]
	if aux.Name != "AUX-1" || aux.State != domain.StateRunning {
		t.Fatalf("expected normalized defaults, got %+v", aux)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresLoadRejectsUnknownState(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "type", "location", "state", "envelope"}).
		AddRow("M1", "Line", "moulding", "Bay A", "exploded", []byte(`{}`))
	mock.ExpectQuery(regexp.QuoteMeta(catalogQuery)).WillReturnRows(rows)

	_, err = NewPostgres(db, "machines").Load(context.Background())
	if !errors.Is(err, domain.ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}

func TestPostgresLoadQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(catalogQuery)).WillReturnError(errors.New("connection refused"))

	if _, err := NewPostgres(db, "machines").Load(context.Background()); err == nil {
		t.Fatalf("expected query error")
	}
}

func TestPostgresName(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	if got := NewPostgres(db, "machines").Name(); got != "postgres" {
		t.Fatalf("expected source name postgres, got %s", got)
	}
}
