package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"codeberg.org/mutker/battdiag/internal/errors"
	"codeberg.org/mutker/battdiag/internal/tempdist"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "BATTDIAG"
	configName = "battdiag"

	DefaultAPIURL   = "https://zenfinity-intern-api-104290304048.europe-west1.run.app/api"
	DefaultLimit    = 100
	DefaultSource   = "api"
	DefaultMode     = ModeReport
	DefaultInterval = 30 * time.Second
	DefaultListen   = "127.0.0.1:8080"
	DefaultLogLevel = LogLevelInfo
	DefaultPIDFile  = "battdiag.pid"
	// NoCycle leaves the cursor on the latest cycle
	NoCycle = -1
)

// DefaultDevices is the allow-list used when none is configured
var DefaultDevices = []string{"865044073967657", "865044073949366"}

type Config struct {
	APIURL     string        `mapstructure:"api_url"`
	Devices    []string      `mapstructure:"devices"`
	Device     string        `mapstructure:"device"`
	Limit      int           `mapstructure:"limit"`
	Resolution string        `mapstructure:"resolution"`
	Cycle      int           `mapstructure:"cycle"`
	Source     string        `mapstructure:"source"`
	SnapshotDB string        `mapstructure:"snapshot_db"`
	Mode       Mode          `mapstructure:"mode"`
	Interval   time.Duration `mapstructure:"interval"`
	Listen     string        `mapstructure:"listen"`
	LogLevel   LogLevel      `mapstructure:"log_level"`
	Timeout    time.Duration `mapstructure:"timeout"`
	PIDFile    string        `mapstructure:"pid_file"`
	Metrics    bool          `mapstructure:"metrics"`

	// TempResolution is Resolution parsed by Validate
	TempResolution tempdist.Resolution `mapstructure:"-"`
}

// Load reads the configuration from, in rising precedence: defaults, the
// TOML config file, BATTDIAG_* environment variables and command line flags.
func Load(args []string) (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(ErrBindFlags, err)
	}

	// flag names use dashes, keys use underscores
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	if bindErr != nil {
		return nil, errFactory.Wrap(ErrBindFlags, bindErr)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, fs); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(ErrReadConfig, err)
	}
	cfg.Devices = splitList(cfg.Devices)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("devices", DefaultDevices)
	v.SetDefault("device", "")
	v.SetDefault("limit", DefaultLimit)
	v.SetDefault("resolution", tempdist.DefaultResolution.String())
	v.SetDefault("cycle", NoCycle)
	v.SetDefault("source", DefaultSource)
	v.SetDefault("snapshot_db", "")
	v.SetDefault("mode", string(DefaultMode))
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("log_level", string(DefaultLogLevel))
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("pid_file", filepath.Join(os.TempDir(), DefaultPIDFile))
	v.SetDefault("metrics", false)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)

	fs.String("config", "", "Path to a TOML config file")
	fs.String("api-url", DefaultAPIURL, "Base URL of the snapshot API")
	fs.StringSlice("devices", DefaultDevices, "Allow-list of device IMEIs")
	fs.StringP("device", "d", "", "Device IMEI to show (default: first allowed device)")
	fs.Int("limit", DefaultLimit, "Maximum number of cycles to fetch")
	fs.StringP("resolution", "r", tempdist.DefaultResolution.String(), "Temperature bucket width: 5, 10, 15 or 20")
	fs.IntP("cycle", "c", NoCycle, "Cycle number to show (default: latest)")
	fs.String("source", DefaultSource, "Data source: api or sqlite")
	fs.String("snapshot-db", "", "Path to a SQLite snapshot export")
	fs.StringP("mode", "m", string(DefaultMode), "Mode: report, watch or serve")
	fs.DurationP("interval", "i", DefaultInterval, "Refresh interval in watch mode")
	fs.String("listen", DefaultListen, "Listen address in serve mode")
	fs.StringP("log-level", "l", string(DefaultLogLevel), "Log level: debug, info, warning or error")
	fs.Duration("timeout", 0, "Timeout per data source request, 0 for none")
	fs.String("pid-file", filepath.Join(os.TempDir(), DefaultPIDFile), "PID file used in watch and serve modes")
	fs.Bool("metrics", false, "Expose Prometheus metrics on /metrics")

	return fs
}

// readConfigFile loads an explicit file from --config or BATTDIAG_CONFIG, or
// searches the default locations. Only an explicit file must exist.
func readConfigFile(v *viper.Viper, fs *pflag.FlagSet) error {
	errFactory := errors.New()

	path, _ := fs.GetString("config")
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return errFactory.Wrap(ErrReadConfig, err)
	}

	return nil
}

// Validate checks the configuration and fills in derived values
func (c *Config) Validate() error {
	errFactory := errors.New()
	invalid := func(code errors.ErrorCode, field string, value any, reason string) error {
		return errFactory.WithData(code, ValidationError{Field: field, Value: value, Reason: reason})
	}

	if !c.LogLevel.IsValid() {
		return invalid(ErrInvalidLogLevel, "log_level", c.LogLevel, "must be debug, info, warning or error")
	}

	if len(c.Devices) == 0 {
		return invalid(ErrInvalidConfig, "devices", c.Devices, "allow-list is empty")
	}
	if c.Device == "" {
		c.Device = c.Devices[0]
	}
	if !slices.Contains(c.Devices, c.Device) {
		return invalid(ErrUnknownDevice, "device", c.Device, "not in the allow-list")
	}

	if c.Limit <= 0 {
		return invalid(ErrInvalidConfig, "limit", c.Limit, "must be positive")
	}
	if c.Cycle < NoCycle {
		return invalid(ErrInvalidConfig, "cycle", c.Cycle, "must not be negative")
	}

	res, err := tempdist.ParseResolution(c.Resolution)
	if err != nil {
		return invalid(ErrInvalidResolution, "resolution", c.Resolution, "must be 5, 10, 15 or 20")
	}
	c.TempResolution = res

	switch c.Source {
	case "api":
		if c.APIURL == "" {
			return invalid(ErrInvalidConfig, "api_url", c.APIURL, "required for the api source")
		}
	case "sqlite":
		if c.SnapshotDB == "" {
			return invalid(ErrInvalidConfig, "snapshot_db", c.SnapshotDB, "required for the sqlite source")
		}
	default:
		return invalid(ErrInvalidConfig, "source", c.Source, "must be api or sqlite")
	}

	if !c.Mode.IsValid() {
		return invalid(ErrInvalidConfig, "mode", c.Mode, "must be report, watch or serve")
	}
	if c.Mode == ModeWatch && c.Interval <= 0 {
		return invalid(ErrInvalidInterval, "interval", c.Interval, "must be positive")
	}
	if c.Mode == ModeServe && c.Listen == "" {
		return invalid(ErrInvalidConfig, "listen", c.Listen, "required in serve mode")
	}
	if c.Timeout < 0 {
		return invalid(ErrInvalidConfig, "timeout", c.Timeout, "must not be negative")
	}

	return nil
}

// splitList flattens comma separated entries and drops blanks
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
