package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/naka-gawa/evolution-metrics/internal/domain"
	"github.com/naka-gawa/evolution-metrics/internal/metric"
	"github.com/naka-gawa/evolution-metrics/internal/report"
)

// configName is the config file name without extension.
const configName = ".evolution-metrics"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "EVOLUTION_METRICS"

// DefaultCacheTTL is how long cached records stay fresh.
const DefaultCacheTTL = 24 * time.Hour

// Load reads the configuration from flags, environment variables, the config
// file and defaults, in that order of precedence. A .env file in the working
// directory is loaded into the environment first.
// If configPath is empty, the config file is searched in CWD and $HOME;
// a missing config file is not an error.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github-token", envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	categories := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		categories[i] = string(c)
	}
	v.SetDefault("categories", categories)
	v.SetDefault("line-mode", string(metric.LinesNet))
	v.SetDefault("duration-aggregation", string(metric.AggregationMean))
	v.SetDefault("format", string(report.FormatTable))
	v.SetDefault("cache-path", defaultCachePath())
	v.SetDefault("cache-ttl", DefaultCacheTTL)
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "evolution-metrics", "cache.db")
}
