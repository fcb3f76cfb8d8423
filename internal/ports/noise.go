package ports

// NoiseSource yields uniform draws in [0, 1). Implementations backed by an
// external entropy source may fail.
type NoiseSource interface {
	Float64() (float64, error)
}
