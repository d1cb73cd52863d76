package mobxprom

import (
	"errors"
	"testing"

	"github.com/delaneyj/mobx-go/mobx"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	require.NotNil(t, m.Counter, "expected counter metric")
	return m.GetCounter().GetValue()
}

func TestInstrumentCountsEvents(t *testing.T) {
	rs := mobx.CreateReactiveSystem(func(string, error) {})
	reg := prometheus.NewRegistry()

	m, stop, err := Instrument(rs, WithRegistry(reg), WithNamespace("test"))
	require.NoError(t, err)
	defer stop()

	price := mobx.Observable(rs, 10)
	qty := mobx.Observable(rs, 1)
	total := mobx.Computed(rs, func(oldValue int) int {
		return price.Value() * qty.Value()
	}, mobx.Named("total"))

	dispose, err := mobx.Autorun(rs, func() error {
		if total.Value() > 100 {
			return errors.New("over budget")
		}
		return nil
	}, mobx.Named("budget"))
	require.NoError(t, err)
	defer dispose()

	require.NoError(t, rs.RunInAction(func() error {
		price.SetValue(20)
		qty.SetValue(2)
		return nil
	}))
	qty.SetValue(10)

	assert.Equal(t, 3.0, counterValue(t, m.Updates.WithLabelValues("Observable")))
	assert.Equal(t, 3.0, counterValue(t, m.Computations.WithLabelValues("total")))
	assert.Equal(t, 3.0, counterValue(t, m.Reactions.WithLabelValues("Autorun")))
	assert.Equal(t, 1.0, counterValue(t, m.Errors.WithLabelValues("budget")))
	assert.Equal(t, 1.0, counterValue(t, m.Actions))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_updates_total")
	assert.Contains(t, names, "test_reaction_errors_total")
}

func TestInstrumentStop(t *testing.T) {
	rs := mobx.CreateReactiveSystem(nil)
	reg := prometheus.NewRegistry()

	m, stop, err := Instrument(rs, WithRegistry(reg))
	require.NoError(t, err)

	_, _, err = Instrument(rs, WithRegistry(reg))
	require.Error(t, err)

	a := mobx.Observable(rs, 0)
	a.SetValue(1)
	stop()
	a.SetValue(2)
	assert.Equal(t, 1.0, counterValue(t, m.Updates.WithLabelValues("Observable")))

	// unregistered, so a second system can take its place
	_, stop2, err := Instrument(rs, WithRegistry(reg))
	require.NoError(t, err)
	stop2()
}
