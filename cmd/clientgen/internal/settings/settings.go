// Package settings assembles a clientgen.Config from a config file and
// command-line overrides.
package settings

import (
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/schema"
	"github.com/spf13/viper"

	"github.com/broady/clientgen"
)

// DefaultConfigName is looked up in the working directory when no config
// file is given.
const DefaultConfigName = "clientgen"

// LevelTrace is below debug and enables the most verbose logs.
const LevelTrace = slog.Level(-8)

var overrideDecoder = schema.NewDecoder()

// Load reads path (or ./clientgen.yaml when path is empty and the file
// exists) and applies overrides of the form key=value. Keys are the ones
// used in the config file.
func Load(path string, overrides []string) (*clientgen.Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	var cfg clientgen.Config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	} else if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "decode config %s", v.ConfigFileUsed()),
			"valid keys: language, out_dir, indent_size, continue_on_error, parallelism, base_url, single_file, log_level")
	}

	if err := Override(&cfg, overrides); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Override applies key=value pairs to cfg.
func Override(cfg *clientgen.Config, overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}
	values := url.Values{}
	for _, o := range overrides {
		key, value, ok := strings.Cut(o, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return errors.WithHint(errors.Newf("invalid override %q", o), "use --set key=value")
		}
		values.Set(key, strings.TrimSpace(value))
	}
	if err := overrideDecoder.Decode(cfg, values); err != nil {
		return errors.Wrap(err, "apply overrides")
	}
	return nil
}

// ParseLevel accepts slog level names plus "trace".
func ParseLevel(s string) (slog.Level, error) {
	if strings.EqualFold(s, "trace") {
		return LevelTrace, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.WithHint(errors.Wrapf(err, "invalid log level %q", s),
			"use trace, debug, info, warn or error")
	}
	return level, nil
}

// NewLogger returns a text logger writing to w at level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	if level == "" {
		level = "info"
	}
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
