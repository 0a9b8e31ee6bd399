package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/soa"
)

// EnvPrefix prefixes environment variables read by soactl.
const EnvPrefix = "SOACTL"

// Config holds the build settings shared by all commands.
type Config struct {
	Alignment   int    `mapstructure:"alignment"`
	Policy      string `mapstructure:"policy"`
	Backend     string `mapstructure:"backend"`
	Parallelism int    `mapstructure:"parallelism"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// bindFlags registers the persistent flags and binds them to v.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String("config", "", "config file (default: soactl.yaml in the working directory, if present)")
	fs.Int("alignment", 0, "byte alignment of every field array (0: CPU default)")
	fs.String("policy", "compact", "vector footprint policy: compact or per-record")
	fs.String("backend", "heap", "storage backend: heap or mmap")
	fs.Int("parallelism", 1, "number of fields populated concurrently")
	fs.String("log-level", "warn", "log level: debug, info, warn or error")
	fs.String("log-format", "text", "log format: text or json")

	for key, flag := range map[string]string{
		"alignment":   "alignment",
		"policy":      "policy",
		"backend":     "backend",
		"parallelism": "parallelism",
		"log_level":   "log-level",
		"log_format":  "log-format",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return nil
}

// loadConfig reads the optional config file and returns the merged settings.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("soactl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Options converts the configuration into build options.
func (c *Config) Options() ([]soa.Option, error) {
	policy, ok := soa.ParsePolicy(c.Policy)
	if !ok {
		return nil, fmt.Errorf("unknown policy %q", c.Policy)
	}
	backend, ok := soa.ParseBackend(c.Backend)
	if !ok {
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	opts := []soa.Option{
		soa.WithFootprintPolicy(policy),
		soa.WithBackend(backend),
		soa.WithParallelism(c.Parallelism),
		soa.WithLogger(logger),
	}
	if c.Alignment != 0 {
		opts = append(opts, soa.WithAlignment(c.Alignment))
	}
	return opts, nil
}

// Logger builds the logger selected by LogLevel and LogFormat.
func (c *Config) Logger() (*soa.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	hopts := &slog.HandlerOptions{Level: level}

	switch c.LogFormat {
	case "", "text":
		return soa.NewLogger(slog.NewTextHandler(os.Stderr, hopts)), nil
	case "json":
		return soa.NewLogger(slog.NewJSONHandler(os.Stderr, hopts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
}
