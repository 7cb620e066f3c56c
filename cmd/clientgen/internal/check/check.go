package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/broady/clientgen"
	"github.com/broady/clientgen/cmd/clientgen/internal/settings"
	"github.com/broady/clientgen/provider"
	"github.com/broady/clientgen/sink"
)

type Cmd struct {
	Tree     string   `arg:"" help:"Tree document (.json, .yaml or .yml)." type:"existingfile"`
	Language string   `help:"Target language (typescript, ts, go)." short:"l"`
	Config   string   `help:"Config file (default: ./clientgen.yaml if present)." short:"c" type:"path"`
	Set      []string `help:"Override a config key (key=value)." short:"s"`

	stdout io.Writer
}

func (c *Cmd) Run() error {
	return c.run(context.Background())
}

func (c *Cmd) run(ctx context.Context) error {
	out := c.stdout
	if out == nil {
		out = os.Stdout
	}

	cfg, err := settings.Load(c.Config, c.Set)
	if err != nil {
		return err
	}
	if c.Language != "" {
		cfg.Language = c.Language
	}

	tree, err := provider.LoadFile(c.Tree)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Loaded %s: %d elements\n", c.Tree, tree.Len())

	// Dry run: everything is emitted into memory and every failure is kept.
	mem := sink.NewMemorySink()
	cfg.Sink = mem
	cfg.ContinueOnError = true
	cfg.Logger = slog.New(slog.DiscardHandler)
	res, err := clientgen.Generate(ctx, tree, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ %d files, %d elements emitted\n", len(res.Files), res.ElementsEmitted)
	for _, f := range res.Files {
		fmt.Fprintf(out, "  %s (%d elements, %d bytes)\n", f.Path, f.Elements, f.Size)
	}
	if len(res.Failures) == 0 {
		fmt.Fprintln(out, "✓ All elements emittable")
		return nil
	}
	for _, f := range res.Failures {
		fmt.Fprintf(out, "✗ %s: %v\n", f.Path, f.Err)
		if hint := errors.FlattenHints(f.Err); hint != "" {
			fmt.Fprintf(out, "  hint: %s\n", hint)
		}
	}
	return errors.Newf("%d elements cannot be emitted", len(res.Failures))
}
