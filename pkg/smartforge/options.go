package smartforge

import "go.uber.org/zap"

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	catalog       CatalogSource
	noise         NoiseSource
	stateSources  []StateSource
	subscribers   []Subscriber
	observability Observability
	logger        *zap.Logger
}

// WithCatalog replaces the configured catalog source.
func WithCatalog(src CatalogSource) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.catalog = src
	}
}

// WithNoiseSource injects the randomness used by the mutator, typically a
// seeded source for reproducible runs.
func WithNoiseSource(src NoiseSource) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.noise = src
	}
}

// WithStateSource adds an operator state feed next to the configured ones.
func WithStateSource(src StateSource) RuntimeOption {
	return func(o *runtimeOverrides) {
		if src != nil {
			o.stateSources = append(o.stateSources, src)
		}
	}
}

// WithSubscriber attaches sub when the runtime starts.
func WithSubscriber(sub Subscriber) RuntimeOption {
	return func(o *runtimeOverrides) {
		if sub != nil {
			o.subscribers = append(o.subscribers, sub)
		}
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithLogger reuses an existing zap logger instead of building one from
// the log section of the config.
func WithLogger(l *zap.Logger) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.logger = l
	}
}
