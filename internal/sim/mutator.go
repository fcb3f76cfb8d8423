package sim

import (
	"fmt"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

const (
	fuzzFraction = 0.1
	varianceSpan = 0.8

	pressureSpikeProb    = 0.02
	pressureSpikeMax     = 0.4
	temperatureSpikeProb = 0.02
	temperatureSpikeMax  = 0.3
	varianceBreachProb   = 0.05
	varianceBreachMax    = 5.0
)

type spike struct {
	prob float64
	max  float64
}

var absoluteSpikes = map[domain.Parameter]spike{
	domain.MouldingPressure: {prob: pressureSpikeProb, max: pressureSpikeMax},
	domain.SandTemperature:  {prob: temperatureSpikeProb, max: temperatureSpikeMax},
}

// Mutator produces the next live sample of a running machine.
type Mutator struct {
	src ports.NoiseSource
	obs ports.Observability
}

func NewMutator(src ports.NoiseSource, obs ports.Observability) *Mutator {
	return &Mutator{src: src, obs: obs}
}

// Mutate returns a fresh sample derived from env. prev is only consulted when
// the noise source fails, in which case the parameter holds its last reading.
func (m *Mutator) Mutate(env domain.Envelope, prev domain.LiveSample) (domain.LiveSample, error) {
	ranges := make(map[domain.Parameter]domain.Range, len(domain.Parameters))
	for _, p := range domain.Parameters {
		r, err := env.Range(p)
		if err != nil {
			return nil, err
		}
		ranges[p] = r
	}

	out := make(domain.LiveSample, len(domain.Parameters))
	for _, p := range domain.Parameters {
		var (
			v   float64
			err error
		)
		if p == domain.CycleTimeVariance {
			v, err = m.deviation(ranges[p])
		} else {
			v, err = m.absolute(ranges[p], absoluteSpikes[p])
		}
		if err != nil {
			v = fallback(p, ranges[p], prev)
			if m.obs != nil {
				m.obs.IncCounter("smartforge_noise_fallback_total", 1)
				m.obs.LogWarn("noise_source_fallback",
					ports.Field{Key: "parameter", Value: string(p)},
					ports.Field{Key: "error", Value: err.Error()})
			}
		}
		out[p] = v
	}
	return out, nil
}

func (m *Mutator) absolute(r domain.Range, sp spike) (float64, error) {
	band := fuzzFraction * (r.Max - r.Min)
	u, err := m.uniform(-band, band)
	if err != nil {
		return 0, err
	}
	v := r.Ideal + u

	hit, err := m.chance(sp.prob)
	if err != nil {
		return 0, err
	}
	if hit {
		f, err := m.uniform(0, sp.max)
		if err != nil {
			return 0, err
		}
		v *= 1 + f
	}
	return v, nil
}

func (m *Mutator) deviation(r domain.Range) (float64, error) {
	v, err := m.uniform(0, varianceSpan*r.Max)
	if err != nil {
		return 0, err
	}
	hit, err := m.chance(varianceBreachProb)
	if err != nil {
		return 0, err
	}
	if hit {
		over, err := m.uniform(0, varianceBreachMax)
		if err != nil {
			return 0, err
		}
		v = r.Max + over
	}
	return v, nil
}

func (m *Mutator) uniform(lo, hi float64) (float64, error) {
	if m.src == nil {
		return 0, fmt.Errorf("noise source is nil")
	}
	u, err := m.src.Float64()
	if err != nil {
		return 0, err
	}
	return lo + u*(hi-lo), nil
}

func (m *Mutator) chance(p float64) (bool, error) {
	u, err := m.uniform(0, 1)
	if err != nil {
		return false, err
	}
	return u < p, nil
}

func fallback(p domain.Parameter, r domain.Range, prev domain.LiveSample) float64 {
	if v, ok := prev[p]; ok {
		return v
	}
	if p == domain.CycleTimeVariance {
		return 0
	}
	return r.Ideal
}
