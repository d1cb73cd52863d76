// Package mobxprom exports what a reactive system does as Prometheus
// metrics, fed by its spy events.
package mobxprom

import (
	"fmt"

	"github.com/delaneyj/mobx-go/mobx"
	"github.com/prometheus/client_golang/prometheus"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "mobx").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are added to every metric, e.g. to tell systems apart.
	ConstLabels prometheus.Labels

	// Registry is where the collectors are registered.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "mobx",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors of one instrumented system.
type Metrics struct {
	Updates      *prometheus.CounterVec
	Computations *prometheus.CounterVec
	Reactions    *prometheus.CounterVec
	Errors       *prometheus.CounterVec
	Actions      prometheus.Counter
}

func newMetrics(cfg Config) *Metrics {
	return &Metrics{
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "updates_total",
			Help:        "Writes that changed an observable or atom",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind"}),

		Computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "computations_total",
			Help:        "Recomputations of computed values",
			ConstLabels: cfg.ConstLabels,
		}, []string{"name"}),

		Reactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "reactions_total",
			Help:        "Reaction runs by kind (Autorun, Reaction, When)",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind"}),

		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "reaction_errors_total",
			Help:        "Errors returned by reactions re-run after a write",
			ConstLabels: cfg.ConstLabels,
		}, []string{"reaction"}),

		Actions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "actions_total",
			Help:        "Actions run through RunInAction or Do",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Updates, m.Computations, m.Reactions, m.Errors, m.Actions}
}

func (m *Metrics) observe(ev mobx.SpyEvent) {
	switch ev.Type {
	case mobx.SpyUpdate:
		m.Updates.WithLabelValues(string(ev.Kind)).Inc()
	case mobx.SpyCompute:
		m.Computations.WithLabelValues(ev.Name).Inc()
	case mobx.SpyReaction:
		m.Reactions.WithLabelValues(string(ev.Kind)).Inc()
	case mobx.SpyError:
		m.Errors.WithLabelValues(ev.Name).Inc()
	case mobx.SpyAction:
		m.Actions.Inc()
	}
}

// Instrument registers the collectors and starts counting the events of rs.
// stop detaches from rs and unregisters the collectors. Like every other
// call into rs, Instrument must run on the goroutine driving it or inside Do.
//
// Computations are labelled by computed name, so name computeds (with
// mobx.Named) when instrumenting a system that creates them dynamically.
func Instrument(rs *mobx.ReactiveSystem, opts ...Option) (m *Metrics, stop func(), err error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m = newMetrics(cfg)
	var registered []prometheus.Collector
	for _, c := range m.collectors() {
		if err := cfg.Registry.Register(c); err != nil {
			for _, r := range registered {
				cfg.Registry.Unregister(r)
			}
			return nil, nil, fmt.Errorf("registering mobx metrics: %w", err)
		}
		registered = append(registered, c)
	}

	stopSpy := rs.Spy(m.observe)
	return m, func() {
		stopSpy()
		for _, c := range registered {
			cfg.Registry.Unregister(c)
		}
	}, nil
}
