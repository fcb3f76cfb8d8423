package sim

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// SeededSource is a deterministic PCG-backed source. It is safe for
// concurrent use; draws are only reproducible when a single goroutine
// consumes them.
type SeededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededSource) Float64() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64(), nil
}

// CryptoSource draws from the operating system entropy pool.
type CryptoSource struct{}

func (CryptoSource) Float64() (float64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("crypto source: %w", err)
	}
	// 53 random bits scaled into [0, 1)
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53), nil
}

var (
	_ ports.NoiseSource = (*SeededSource)(nil)
	_ ports.NoiseSource = CryptoSource{}
)
