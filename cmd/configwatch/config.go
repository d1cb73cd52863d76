package main

import (
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/mobx-go/mobx"
	"github.com/delaneyj/mobx-go/pkg/resource"
)

// Config is the watched application config.
type Config struct {
	Service     string   `yaml:"service"`
	Replicas    int      `yaml:"replicas"`
	MaxReplicas int      `yaml:"max_replicas"`
	Features    []string `yaml:"features"`
	Maintenance bool     `yaml:"maintenance"`
}

type logFunc func(format string, args ...any)

// watchConfig derives views of the config and logs whenever they change. It
// must run inside rs.Do since the config is reloaded through it.
func watchConfig(rs *mobx.ReactiveSystem, cfg *resource.Resource[Config], logf logFunc) (stop func(), err error) {
	var disposers []mobx.Disposer
	stop = func() {
		for _, d := range disposers {
			d()
		}
	}
	defer func() {
		if err != nil {
			stop()
		}
	}()

	summary := mobx.Computed(rs, func(string) string {
		c := cfg.Current()
		return fmt.Sprintf("%s: %d/%d replicas", c.Service, c.Replicas, c.MaxReplicas)
	}, mobx.Named("summary"))

	overCapacity := mobx.Computed(rs, func(bool) bool {
		c := cfg.Current()
		return c.MaxReplicas > 0 && c.Replicas > c.MaxReplicas
	}, mobx.Named("overCapacity"))

	features := mobx.Computed(rs, func([]string) []string {
		fs := slices.Clone(cfg.Current().Features)
		slices.Sort(fs)
		return slices.Compact(fs)
	}, mobx.Named("features"), mobx.WithComparer(mobx.StructuralComparer))

	d, err := mobx.Autorun(rs, func() error {
		logf("config %s", summary.Value())
		return nil
	}, mobx.Named("logSummary"))
	if err != nil {
		return nil, err
	}
	disposers = append(disposers, d)

	d, err = mobx.Reaction(rs, overCapacity.Value, func(over, _ bool) error {
		if over {
			logf("WARNING replicas above max_replicas")
		} else {
			logf("replicas back within max_replicas")
		}
		return nil
	}, mobx.Named("capacityAlert"))
	if err != nil {
		return nil, err
	}
	disposers = append(disposers, d)

	d, err = mobx.Reaction(rs, features.Value, func(next, prev []string) error {
		added, removed := diffFeatures(prev, next)
		logf("features changed, added [%s] removed [%s]", strings.Join(added, " "), strings.Join(removed, " "))
		return nil
	}, mobx.Named("featureDiff"))
	if err != nil {
		return nil, err
	}
	disposers = append(disposers, d)

	d, err = mobx.When(rs, func() bool {
		return cfg.Current().Maintenance
	}, func() error {
		logf("maintenance mode entered, no further maintenance notices")
		return nil
	}, mobx.Named("maintenance"))
	if err != nil {
		return nil, err
	}
	disposers = append(disposers, d)

	return stop, nil
}

func diffFeatures(prev, next []string) (added, removed []string) {
	p, n := mapset.NewThreadUnsafeSet(prev...), mapset.NewThreadUnsafeSet(next...)
	added, removed = n.Difference(p).ToSlice(), p.Difference(n).ToSlice()
	slices.Sort(added)
	slices.Sort(removed)
	return added, removed
}
