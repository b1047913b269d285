package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/battdiag/internal/config"
	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/tempdist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "battdiag.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api_url = "http://localhost:9000/api"
devices = ["111", "222"]
device = "222"
limit = 50
resolution = "10deg"
cycle = 7
mode = "watch"
interval = "5s"
log_level = "debug"
timeout = "3s"
metrics = true
`)
	t.Setenv("BATTDIAG_CONFIG", path)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/api", cfg.APIURL)
	assert.Equal(t, []string{"111", "222"}, cfg.Devices)
	assert.Equal(t, "222", cfg.Device)
	assert.Equal(t, 50, cfg.Limit)
	assert.Equal(t, tempdist.Res10, cfg.TempResolution)
	assert.Equal(t, 7, cfg.Cycle)
	assert.Equal(t, config.ModeWatch, cfg.Mode)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.Equal(t, config.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.True(t, cfg.Metrics)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BATTDIAG_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, config.DefaultDevices, cfg.Devices)
	assert.Equal(t, config.DefaultDevices[0], cfg.Device, "first allowed device is the default")
	assert.Equal(t, config.DefaultLimit, cfg.Limit)
	assert.Equal(t, tempdist.DefaultResolution, cfg.TempResolution)
	assert.Equal(t, config.NoCycle, cfg.Cycle)
	assert.Equal(t, config.DefaultSource, cfg.Source)
	assert.Equal(t, config.DefaultMode, cfg.Mode)
	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Zero(t, cfg.Timeout)
	assert.False(t, cfg.Metrics)
}

func TestFlagsOverrideFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
log_level = "error"
resolution = "20"
`)
	t.Setenv("BATTDIAG_LIMIT", "25")

	cfg, err := config.Load([]string{
		"--config", path,
		"--log-level", "debug",
		"-r", "15",
		"--devices", "aaa,bbb",
		"-d", "bbb",
	})
	require.NoError(t, err)

	assert.Equal(t, config.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, tempdist.Res15, cfg.TempResolution)
	assert.Equal(t, 25, cfg.Limit)
	assert.Equal(t, []string{"aaa", "bbb"}, cfg.Devices)
	assert.Equal(t, "bbb", cfg.Device)
}

func TestEnvDevicesList(t *testing.T) {
	t.Setenv("BATTDIAG_CONFIG", "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BATTDIAG_DEVICES", "x1, x2")

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "x2"}, cfg.Devices)
	assert.Equal(t, "x1", cfg.Device)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	t.Setenv("BATTDIAG_CONFIG", writeConfig(t, `
This is not a valid TOML file
`))

	_, err := config.Load(nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, config.ErrReadConfig))
	assert.Contains(t, err.Error(), "Failed to read configuration")
}

func TestMissingExplicitConfigFile(t *testing.T) {
	_, err := config.Load([]string{"--config", filepath.Join(t.TempDir(), "nope.toml")})
	assert.True(t, errors.HasCode(err, config.ErrReadConfig))
}

func TestUnknownFlag(t *testing.T) {
	_, err := config.Load([]string{"--fanspeed", "80"})
	assert.True(t, errors.HasCode(err, config.ErrBindFlags))
}

func TestValidation(t *testing.T) {
	t.Setenv("BATTDIAG_CONFIG", "")
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"log level", []string{"--log-level", "invalid"}, config.ErrInvalidLogLevel},
		{"device outside allow-list", []string{"--device", "999"}, config.ErrUnknownDevice},
		{"resolution", []string{"--resolution", "7"}, config.ErrInvalidResolution},
		{"limit", []string{"--limit", "0"}, config.ErrInvalidConfig},
		{"source", []string{"--source", "ftp"}, config.ErrInvalidConfig},
		{"sqlite without db", []string{"--source", "sqlite"}, config.ErrInvalidConfig},
		{"mode", []string{"--mode", "daemon"}, config.ErrInvalidConfig},
		{"watch interval", []string{"--mode", "watch", "--interval", "0s"}, config.ErrInvalidInterval},
		{"timeout", []string{"--timeout", "-1s"}, config.ErrInvalidConfig},
		{"cycle", []string{"--cycle", "-5"}, config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.args)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}
