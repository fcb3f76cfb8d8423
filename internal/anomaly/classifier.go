package anomaly

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
)

// Classifier turns a live sample into anomaly records. It holds no state
// besides the id generator, so it is safe for concurrent use.
type Classifier struct {
	newID func() string
}

type ClassifierOption func(*Classifier)

// WithIDGenerator overrides the UUID generator.
func WithIDGenerator(fn func() string) ClassifierOption {
	return func(c *Classifier) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{newID: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Classify evaluates pressure, temperature and variance in that order and
// returns at most one record per parameter. Parameters with an all-zero
// envelope are skipped; a monitored parameter without a reading is an error.
func (c *Classifier) Classify(m domain.Machine, sample domain.LiveSample, at time.Time) ([]domain.AnomalyRecord, error) {
	var out []domain.AnomalyRecord
	for _, p := range domain.Parameters {
		r, err := m.Envelope.Range(p)
		if err != nil {
			return nil, err
		}
		if r.IsZero() {
			continue
		}
		v, ok := sample[p]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingReading, p)
		}

		sev, expected, breached := evaluate(p, r, v)
		if !breached {
			continue
		}
		out = append(out, domain.AnomalyRecord{
			ID:          c.newID(),
			MachineID:   m.ID,
			MachineName: m.Name,
			Parameter:   p.Label(),
			Value:       v,
			Expected:    expected,
			Severity:    sev,
			Timestamp:   at,
		})
	}
	return out, nil
}

func evaluate(p domain.Parameter, r domain.Range, v float64) (domain.Severity, string, bool) {
	if p == domain.CycleTimeVariance {
		switch {
		case v > r.CriticalMax:
			return domain.SeverityCritical, "< " + num(r.CriticalMax) + "%", true
		case v > r.Max:
			return domain.SeverityWarning, "< " + num(r.Max) + "%", true
		}
		return "", "", false
	}

	switch {
	case v > r.CriticalMax:
		return domain.SeverityCritical, "< " + num(r.CriticalMax), true
	case v > r.Max || v < r.Min:
		return domain.SeverityWarning, num(r.Min) + "-" + num(r.Max), true
	}
	return "", "", false
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
