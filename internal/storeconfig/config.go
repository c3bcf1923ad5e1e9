// Package storeconfig loads the storage engine's configuration (data
// directory, compaction threshold, sum width, logging and metrics
// settings) the way the reference stack's pkg/config does: environment
// variables take precedence over a config file, which takes precedence
// over defaults.
package storeconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full set of process-level settings for the pmmrstore
// engine and its CLI.
type Config struct {
	// DataDir is the directory holding pmmr_dat.bin, pmmr_rm_log.bin and
	// pmmr_pruned.bin.
	DataDir string `mapstructure:"data_dir"`

	// SumWidth is the byte width of the numeric sum carried by every node
	// record (record_len = 32 + SumWidth).
	SumWidth int `mapstructure:"sum_width"`

	// RemoveLogMaxNodes overrides RM_LOG_MAX_NODES; 0 means "use the
	// package default", mirroring check_compact's max_len parameter.
	RemoveLogMaxNodes int `mapstructure:"remove_log_max_nodes"`

	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig selects level/format for the package-level logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds the Prometheus exporter settings. They are loaded
// with the rest of the configuration; the CLI does not start a metrics
// listener from them.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// envPrefix is the prefix environment-variable overrides use, e.g.
// PMMRSTORE_DATA_DIR.
const envPrefix = "PMMRSTORE"

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		DataDir:           "./pmmrdata",
		SumWidth:          8,
		RemoveLogMaxNodes: 0,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
		},
	}
}

// Load reads configuration from configPath (if non-empty and present),
// then environment variables prefixed PMMRSTORE_, overlaid onto the
// defaults. A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	setDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				if !os.IsNotExist(err) {
					return nil, fmt.Errorf("storeconfig: read %s: %w", configPath, err)
				}
			}
		}
	}

	var out Config
	if err := v.Unmarshal(&out); err != nil {
		return nil, fmt.Errorf("storeconfig: unmarshal: %w", err)
	}
	return &out, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("sum_width", cfg.SumWidth)
	v.SetDefault("remove_log_max_nodes", cfg.RemoveLogMaxNodes)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.listen", cfg.Metrics.Listen)
}
