package resource_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/delaneyj/mobx-go/mobx"
	"github.com/delaneyj/mobx-go/pkg/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticker struct {
	sink         func(int)
	subscribed   int
	unsubscribed int
}

func (tk *ticker) subscribe(sink func(int)) {
	tk.subscribed++
	tk.sink = sink
	sink(100)
}

func (tk *ticker) unsubscribe() {
	tk.unsubscribed++
}

func TestFromResourceFollowsObservation(t *testing.T) {
	rs := mobx.CreateReactiveSystem(nil)
	tk := &ticker{}
	r := resource.FromResource(rs, tk.subscribe, tk.unsubscribe, 0)

	// reading outside a derivation does not subscribe
	assert.Equal(t, 0, r.Current())
	assert.False(t, r.IsAlive())

	var seen []int
	stop, err := mobx.Autorun(rs, func() error {
		seen = append(seen, r.Current())
		return nil
	})
	require.NoError(t, err)
	assert.True(t, r.IsAlive())
	assert.Equal(t, 1, tk.subscribed)

	tk.sink(101)
	tk.sink(101)
	assert.Equal(t, []int{0, 100, 101}, seen)

	stop()
	assert.False(t, r.IsAlive())
	assert.Equal(t, 1, tk.unsubscribed)

	// a sink from a closed subscription is ignored
	old := tk.sink
	old(5)
	assert.Equal(t, 101, r.Current())

	stop, err = mobx.Autorun(rs, func() error {
		r.Current()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tk.subscribed)

	r.Dispose()
	assert.Equal(t, 2, tk.unsubscribed)
	stop()
	assert.Equal(t, 2, tk.unsubscribed)
}

type appConfig struct {
	Name     string   `yaml:"name"`
	Replicas int      `yaml:"replicas"`
	Tags     []string `yaml:"tags"`
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")

	writeConfig(t, path, "name: api\nreplicas: 2\ntags: [a, b]\n")
	cfg, err := resource.LoadYAML[appConfig](path)
	require.NoError(t, err)
	assert.Equal(t, appConfig{Name: "api", Replicas: 2, Tags: []string{"a", "b"}}, cfg)

	writeConfig(t, path, "name: api\nreplicaz: 2\n")
	_, err = resource.LoadYAML[appConfig](path)
	assert.Error(t, err)

	writeConfig(t, path, "  \n")
	_, err = resource.LoadYAML[appConfig](path)
	assert.ErrorIs(t, err, resource.ErrEmptyFile)

	_, err = resource.LoadYAML[appConfig](filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatchYAMLReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	writeConfig(t, path, "name: api\nreplicas: 1\n")

	var (
		mu     sync.Mutex
		errs   []error
		report = func(err error) {
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err)
		}
	)

	rs := mobx.CreateReactiveSystem(nil)
	cfg, err := resource.WatchYAML[appConfig](rs, path, report)
	require.NoError(t, err)

	var (
		replicas int
		stop     mobx.Disposer
	)
	require.NoError(t, rs.Do(func() error {
		var err error
		stop, err = mobx.Autorun(rs, func() error {
			replicas = cfg.Current().Replicas
			return nil
		})
		return err
	}))
	current := func() (n int) {
		rs.Do(func() error {
			n = replicas
			return nil
		})
		return n
	}
	assert.Equal(t, 1, current())

	writeConfig(t, path, "name: api\nreplicas: 3\n")
	require.Eventually(t, func() bool { return current() == 3 }, 5*time.Second, 10*time.Millisecond)

	// a broken file keeps the last good value
	writeConfig(t, path, "name: [api\n")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(errs) > 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, current())

	rs.Do(func() error {
		stop()
		assert.False(t, cfg.IsAlive())
		return nil
	})

	writeConfig(t, path, "name: api\nreplicas: 5\n")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, current())
}
