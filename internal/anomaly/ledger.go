package anomaly

import (
	"sync"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
)

// DefaultCap is the number of records dashboards expect to receive.
const DefaultCap = 50

// Ledger is a bounded, newest-first stream of anomaly records. It is a
// rolling feed, not an audit log: records beyond the cap are discarded and
// repeated breaches are never deduplicated.
type Ledger struct {
	mu      sync.RWMutex
	records []domain.AnomalyRecord
	cap     int
}

func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Ledger{
		records: make([]domain.AnomalyRecord, 0, capacity),
		cap:     capacity,
	}
}

// Merge prepends batch, keeping its order, and trims the oldest entries.
func (l *Ledger) Merge(batch []domain.AnomalyRecord) {
	if len(batch) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(batch) >= l.cap {
		l.records = append(l.records[:0], batch[:l.cap]...)
		return
	}

	keep := len(l.records)
	if keep > l.cap-len(batch) {
		keep = l.cap - len(batch)
	}
	merged := make([]domain.AnomalyRecord, 0, l.cap)
	merged = append(merged, batch...)
	merged = append(merged, l.records[:keep]...)
	l.records = merged
}

// Snapshot returns a copy of the ledger, newest first.
func (l *Ledger) Snapshot() []domain.AnomalyRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.AnomalyRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Ledger) Cap() int {
	return l.cap
}
