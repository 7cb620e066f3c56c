package gen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/broady/clientgen"
	"github.com/broady/clientgen/cmd/clientgen/internal/settings"
	"github.com/broady/clientgen/provider"
)

type Cmd struct {
	Tree            string   `arg:"" help:"Tree document (.json, .yaml or .yml)." type:"existingfile"`
	Out             string   `help:"Output directory for generated files." short:"o"`
	Language        string   `help:"Target language (typescript, ts, go)." short:"l"`
	Config          string   `help:"Config file (default: ./clientgen.yaml if present)." short:"c" type:"path"`
	Set             []string `help:"Override a config key (key=value)." short:"s"`
	ContinueOnError bool     `help:"Keep generating after an element fails."`
	Watch           bool     `help:"Watch the tree document and regenerate." short:"w"`
	LogLevel        string   `help:"Log level (trace, debug, info, warn, error)." name:"log-level"`

	stdout io.Writer
	stderr io.Writer
}

func (c *Cmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return c.run(ctx)
}

func (c *Cmd) run(ctx context.Context) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if !c.Watch {
		return c.generate(ctx, cfg)
	}

	if err := c.generate(ctx, cfg); err != nil {
		cfg.Logger.ErrorContext(ctx, "generation failed", slog.Any("error", err))
	}
	return watch(ctx, c.Tree, cfg.Logger, func() error {
		return c.generate(ctx, cfg)
	})
}

// config merges the config file, --set overrides and explicit flags, in
// increasing priority.
func (c *Cmd) config() (*clientgen.Config, error) {
	cfg, err := settings.Load(c.Config, c.Set)
	if err != nil {
		return nil, err
	}
	if c.Out != "" {
		cfg.OutDir = c.Out
	}
	if c.Language != "" {
		cfg.Language = c.Language
	}
	if c.ContinueOnError {
		cfg.ContinueOnError = true
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if cfg.OutDir == "" {
		return nil, errors.WithHint(errors.New("no output directory"),
			"pass --out or set out_dir in the config file")
	}
	cfg.Logger, err = settings.NewLogger(c.errOut(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Cmd) generate(ctx context.Context, cfg *clientgen.Config) error {
	tree, err := provider.LoadFile(c.Tree)
	if err != nil {
		return err
	}
	run := *cfg
	res, err := clientgen.Generate(ctx, tree, &run)
	if err != nil {
		return err
	}

	out := c.out()
	dir, err := filepath.Abs(cfg.OutDir)
	if err != nil {
		dir = cfg.OutDir
	}
	fmt.Fprintf(out, "✓ Wrote %d files (%d elements) to %s\n", len(res.Files), res.ElementsEmitted, dir)
	if len(res.Failures) == 0 {
		return nil
	}
	for _, f := range res.Failures {
		fmt.Fprintf(c.errOut(), "✗ %s: %v\n", f.Path, f.Err)
	}
	return errors.Newf("%d elements could not be emitted", len(res.Failures))
}

func (c *Cmd) out() io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return os.Stdout
}

func (c *Cmd) errOut() io.Writer {
	if c.stderr != nil {
		return c.stderr
	}
	return os.Stderr
}
