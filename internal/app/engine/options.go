package engine

import (
	"time"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/anomaly"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// DefaultInterval is the scheduler period.
const DefaultInterval = 3 * time.Second

// Publisher receives every committed frame.
type Publisher interface {
	Publish(f *domain.Frame)
}

type Option func(*settings)

type settings struct {
	interval   time.Duration
	workers    int
	ledgerCap  int
	noise      ports.NoiseSource
	obs        ports.Observability
	publisher  Publisher
	classifier *anomaly.Classifier
	now        func() time.Time
}

func WithInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithWorkers spreads per-machine mutation and classification over n
// goroutines. Results are joined before the single ledger commit.
func WithWorkers(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithLedgerCap(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.ledgerCap = n
		}
	}
}

func WithNoiseSource(src ports.NoiseSource) Option {
	return func(s *settings) { s.noise = src }
}

func WithObservability(obs ports.Observability) Option {
	return func(s *settings) { s.obs = obs }
}

func WithPublisher(p Publisher) Option {
	return func(s *settings) { s.publisher = p }
}

func WithClassifier(c *anomaly.Classifier) Option {
	return func(s *settings) { s.classifier = c }
}

// WithClock overrides the tick timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}
