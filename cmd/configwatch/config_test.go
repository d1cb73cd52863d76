package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/delaneyj/mobx-go/mobx"
	"github.com/delaneyj/mobx-go/pkg/mobxprom"
	"github.com/delaneyj/mobx-go/pkg/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffFeatures(t *testing.T) {
	added, removed := diffFeatures([]string{"a", "b", "c"}, []string{"c", "d", "a"})
	assert.Equal(t, []string{"d"}, added)
	assert.Equal(t, []string{"b"}, removed)
}

func TestWatchConfigLogsChanges(t *testing.T) {
	rs := mobx.CreateReactiveSystem(func(reaction string, err error) {
		t.Errorf("%s: %v", reaction, err)
	})

	var push func(Config)
	cfg := resource.FromResource(rs,
		func(sink func(Config)) { push = sink },
		func() { push = nil },
		Config{Service: "api", Replicas: 1, MaxReplicas: 3, Features: []string{"b", "a"}},
	)

	var lines []string
	logf := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	stop, err := watchConfig(rs, cfg, logf)
	require.NoError(t, err)
	require.NotNil(t, push)
	assert.Equal(t, []string{"config api: 1/3 replicas"}, lines)

	lines = nil
	push(Config{Service: "api", Replicas: 5, MaxReplicas: 3, Features: []string{"a", "b", "a"}})
	assert.Equal(t, []string{
		"config api: 5/3 replicas",
		"WARNING replicas above max_replicas",
	}, lines)

	lines = nil
	push(Config{Service: "api", Replicas: 2, MaxReplicas: 3, Features: []string{"c", "a"}, Maintenance: true})
	assert.Equal(t, []string{
		"config api: 2/3 replicas",
		"replicas back within max_replicas",
		"features changed, added [c] removed [b]",
		"maintenance mode entered, no further maintenance notices",
	}, lines)

	lines = nil
	push(Config{Service: "api", Replicas: 2, MaxReplicas: 3, Features: []string{"c", "a"}})
	push(Config{Service: "api", Replicas: 2, MaxReplicas: 3, Features: []string{"c", "a"}, Maintenance: true})
	assert.Empty(t, lines)

	stop()
	assert.Nil(t, push)
	assert.False(t, cfg.IsAlive())
}

func TestMetricsHandler(t *testing.T) {
	rs := mobx.CreateReactiveSystem(nil)
	reg := prometheus.NewRegistry()
	_, stop, err := mobxprom.Instrument(rs, mobxprom.WithRegistry(reg))
	require.NoError(t, err)
	defer stop()

	mobx.Observable(rs, 1).SetValue(2)

	rec := httptest.NewRecorder()
	metricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `mobx_updates_total{kind="Observable"} 1`))
}
