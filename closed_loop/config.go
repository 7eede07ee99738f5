package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gm-carstate/utils"
)

const (
	ModeReplay   = "replay"
	ModeListen   = "listen"
	ModeSimulate = "simulate"
)

type VehicleConfig struct {
	// Fingerprint is the car name. In replay it may come from the scenario.
	Fingerprint string `mapstructure:"fingerprint"`
	// FingerprintWindow is how long listen mode collects frame IDs before
	// resolving parameters; zero skips collection.
	FingerprintWindow time.Duration `mapstructure:"fingerprintWindow"`
}

type CANConfig struct {
	Iface string `mapstructure:"iface"`
	Map   string `mapstructure:"map"`
}

type CycleConfig struct {
	PeriodMS int `mapstructure:"periodMs"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type RecorderConfig struct {
	Path string `mapstructure:"path"`
}

type Config struct {
	Mode     string         `mapstructure:"mode"`
	Scenario string         `mapstructure:"scenario"`
	Vehicle  VehicleConfig  `mapstructure:"vehicle"`
	CAN      CANConfig      `mapstructure:"can"`
	Cycle    CycleConfig    `mapstructure:"cycle"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Recorder RecorderConfig `mapstructure:"recorder"`
}

func (c Config) Period() time.Duration {
	return time.Duration(c.Cycle.PeriodMS) * time.Millisecond
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", ModeReplay)
	v.SetDefault("scenario", "closed_loop/scenarios/stop_and_go.json")

	v.SetDefault("vehicle.fingerprint", "")
	v.SetDefault("vehicle.fingerprintWindow", "2s")

	v.SetDefault("can.iface", "vcan0")
	v.SetDefault("can.map", "config/can/gm_carstate.csv")

	v.SetDefault("cycle.periodMs", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "closed_loop.log")

	v.SetDefault("metrics.addr", "")
	v.SetDefault("recorder.path", "")
}

// flag name -> config key
var flagKeys = map[string]string{
	"mode":               "mode",
	"scenario":           "scenario",
	"car":                "vehicle.fingerprint",
	"fingerprint-window": "vehicle.fingerprintWindow",
	"iface":              "can.iface",
	"map":                "can.map",
	"period-ms":          "cycle.periodMs",
	"log":                "log.level",
	"log-file":           "log.file",
	"metrics-addr":       "metrics.addr",
	"record":             "recorder.path",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("closed_loop", pflag.ContinueOnError)
	fs.String("config", "", "Optional config file (json, yaml or toml)")
	fs.String("mode", ModeReplay, "replay|listen|simulate")
	fs.String("scenario", "", "Scenario JSON file (replay, simulate)")
	fs.String("car", "", "Car fingerprint name, e.g. \"CHEVROLET VOLT PREMIER 2017\"")
	fs.Duration("fingerprint-window", 2*time.Second, "How long to collect frame IDs before resolving the car")
	fs.String("iface", "vcan0", "SocketCAN interface name")
	fs.String("map", "", "Path to the CAN signal map CSV")
	fs.Int("period-ms", 10, "Cycle period in milliseconds")
	fs.String("log", "info", "trace|debug|info|warn|error|critical")
	fs.String("log-file", "", "Log file path")
	fs.String("metrics-addr", "", "Serve /metrics on this address, e.g. :9102")
	fs.String("record", "", "SQLite file to record events into")
	return fs
}

// LoadConfig resolves defaults, then the optional config file, then flags
// given on the command line.
func LoadConfig(args []string) (Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("CARSTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var ErrInvalidConfig = errors.New("invalid config")

func (c Config) Validate() error {
	switch c.Mode {
	case ModeReplay, ModeSimulate:
		if c.Scenario == "" {
			return fmt.Errorf("%w: mode %s needs a scenario", ErrInvalidConfig, c.Mode)
		}
	case ModeListen:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.Cycle.PeriodMS <= 0 {
		return fmt.Errorf("%w: cycle.periodMs must be > 0, got %d", ErrInvalidConfig, c.Cycle.PeriodMS)
	}
	if c.Mode != ModeReplay && c.CAN.Iface == "" {
		return fmt.Errorf("%w: mode %s needs can.iface", ErrInvalidConfig, c.Mode)
	}
	if c.Mode != ModeReplay && c.CAN.Map == "" {
		return fmt.Errorf("%w: mode %s needs can.map", ErrInvalidConfig, c.Mode)
	}
	if c.Mode == ModeListen && c.Vehicle.Fingerprint == "" {
		return fmt.Errorf("%w: mode listen needs vehicle.fingerprint", ErrInvalidConfig)
	}
	if c.Vehicle.FingerprintWindow < 0 {
		return fmt.Errorf("%w: vehicle.fingerprintWindow must be >= 0", ErrInvalidConfig)
	}
	if _, err := utils.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
