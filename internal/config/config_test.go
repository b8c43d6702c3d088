package config

import (
	"itinerary-route-service/internal/adapters/routing"
	"itinerary-route-service/internal/services"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_PORT", " 9090 ")
	t.Setenv("TEST_RATE", "2.5")
	t.Setenv("TEST_FLAG", "true")
	t.Setenv("TEST_TIMEOUT", "750ms")
	t.Setenv("TEST_BAD_INT", "eight")
	t.Setenv("TEST_ORIGINS", "http://a.test, ,http://b.test")

	assert.Equal(t, "9090", Get("TEST_PORT", "8080"))
	assert.Equal(t, "fallback", Get("TEST_UNSET", "fallback"))
	assert.Equal(t, 9090, GetInt("TEST_PORT", 8080))
	assert.Equal(t, 8, GetInt("TEST_BAD_INT", 8))
	assert.Equal(t, 2.5, GetFloat("TEST_RATE", 5))
	assert.True(t, GetBool("TEST_FLAG", false))
	assert.Equal(t, 750*time.Millisecond, GetDuration("TEST_TIMEOUT", time.Second))
	assert.Equal(t, time.Second, GetDuration("TEST_BAD_INT", time.Second))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, GetList("TEST_ORIGINS"))
	assert.Nil(t, GetList("TEST_UNSET"))
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOptimizerOptionsOverlaysDefaults(t *testing.T) {
	path := writeYAML(t, `
start_time_hour: 8
start_time_minute: 30
return_to_start: false
max_iterations: 2000
after_closing_penalty: 8000
seed: 17
speed_tiers:
  - max_distance_meters: 2000
    speed_kph: 20
  - speed_kph: 60
`)

	opts, tiers, err := LoadOptimizerOptions(path, services.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 8, opts.StartTimeHour)
	assert.Equal(t, 30, opts.StartTimeMinute)
	assert.False(t, opts.ReturnToStart)
	assert.Equal(t, 2000, opts.MaxIterations)
	assert.Equal(t, 8000.0, opts.AfterClosingPenalty)
	assert.Equal(t, int64(17), opts.Seed)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.995, opts.CoolingRate)
	assert.Equal(t, 1000.0, opts.PriorityWeight)

	assert.Equal(t, []routing.SpeedTier{
		{MaxDistanceMeters: 2000, SpeedKph: 20},
		{SpeedKph: 60},
	}, tiers)
}

func TestLoadOptimizerOptionsErrors(t *testing.T) {
	base := services.DefaultOptions()

	cases := map[string]string{
		"unknown key":   "cooling_rte: 0.9\n",
		"invalid value": "cooling_rate: 1.5\n",
		"bad yaml":      "start_time_hour: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := LoadOptimizerOptions(writeYAML(t, body), base)
			assert.Error(t, err)
		})
	}

	_, _, err := LoadOptimizerOptions(filepath.Join(t.TempDir(), "missing.yaml"), base)
	assert.Error(t, err)
}

func TestLoadOptimizerOptionsEmpty(t *testing.T) {
	base := services.DefaultOptions()

	opts, tiers, err := LoadOptimizerOptions("", base)
	require.NoError(t, err)
	assert.Nil(t, tiers)
	assert.Equal(t, base.MaxIterations, opts.MaxIterations)

	opts, _, err = LoadOptimizerOptions(writeYAML(t, ""), base)
	require.NoError(t, err)
	assert.Equal(t, base.CoolingRate, opts.CoolingRate)
}
