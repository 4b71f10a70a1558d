package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/viper"

	"github.com/mvp-joe/codeindex/internal/collect"
)

// Load reads root's `.codex/config.yml`, falling back to defaults when it
// does not exist, with CODEX_* environment variables taking priority over
// the file.
func Load(root string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Root(root))

	v.SetEnvPrefix("CODEX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.BindEnv("index.pagerank_iterations")
	v.BindEnv("index.pagerank_damping")
	v.BindEnv("daemon.debounce_millis")

	defaults := Default()
	v.SetDefault("ignore.extra_globs", defaults.Ignore.ExtraGlobs)
	v.SetDefault("index.pagerank_iterations", defaults.Index.PageRankIterations)
	v.SetDefault("index.pagerank_damping", defaults.Index.PageRankDamping)
	v.SetDefault("daemon.debounce_millis", defaults.Daemon.DebounceMillis)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// CollectOptions compiles the config's extra ignore globs into
// collect.Options, skipping patterns that fail to parse rather than
// failing the whole load.
func (c *Config) CollectOptions() collect.Options {
	opts := collect.Options{}
	for _, pattern := range c.Ignore.ExtraGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue
		}
		opts.ExtraGlobs = append(opts.ExtraGlobs, g)
	}
	return opts
}
