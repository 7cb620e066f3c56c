// Package clientgen drives code generation: it partitions an element tree
// into output files, renders them with a language target and writes them
// to a sink.
//
//	res, err := clientgen.FromTree(tree).
//	    Language("typescript").
//	    ContinueOnError().
//	    ToDir("./client/src/api")
package clientgen

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/codewriter"
)

// OutputFile describes one written file.
type OutputFile struct {
	Path     string
	Elements int
	Size     int
}

// ElementFailure records an element that could not be emitted.
type ElementFailure struct {
	Element codedom.ID
	Path    string
	File    string
	Err     error
}

func (f ElementFailure) Error() string {
	return f.File + ": " + f.Err.Error()
}

// Result summarizes a generation run.
type Result struct {
	Files           []OutputFile
	ElementsEmitted int
	Failures        []ElementFailure
}

// Generate emits tree with the target selected by cfg. Files are emitted
// concurrently. When cfg.ContinueOnError is false the first element
// failure aborts the run and is returned; otherwise failures are listed in
// the Result.
func Generate(ctx context.Context, tree *codedom.Tree, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg, err := applyConfigDefaults(cfg)
	if err != nil {
		return nil, err
	}
	target, err := newTarget(tree, cfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	start := time.Now()
	units := Units(tree, target.FileExtension())
	logger.InfoContext(ctx, "generation started",
		slog.String("language", target.Name()),
		slog.Int("units", len(units)))

	run := &run{
		target: target,
		tree:   tree,
		cfg:    cfg,
		indent: targets[cfg.Language].indent(cfg.IndentSize),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)
	for _, u := range units {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return run.emit(gctx, u) })
	}
	err = g.Wait()
	if err == nil {
		// Cancellation may have stopped scheduling without failing a unit.
		err = ctx.Err()
	}
	res := run.result()
	if err != nil {
		logger.ErrorContext(ctx, "generation failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return res, err
	}

	logger.InfoContext(ctx, "generation finished",
		slog.String("language", target.Name()),
		slog.Int("files", len(res.Files)),
		slog.Int("elements", res.ElementsEmitted),
		slog.Int("failures", len(res.Failures)),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

// run holds the state shared by the unit goroutines of one Generate call.
type run struct {
	target Target
	tree   *codedom.Tree
	cfg    *Config
	indent string

	mu       sync.Mutex
	files    []OutputFile
	emitted  int
	failures []ElementFailure
}

func (r *run) emit(ctx context.Context, u Unit) error {
	w := codewriter.New(r.indent)
	if err := r.target.EmitHeader(w, u.Scope, u.Elements); err != nil {
		if ferr := r.fail(ctx, u, u.Scope, err); ferr != nil {
			return ferr
		}
		return nil
	}

	body := w.Scratch()
	emitted := 0
	for _, id := range u.Elements {
		if err := ctx.Err(); err != nil {
			return err
		}
		el := body.Scratch()
		if err := r.target.EmitElement(el, id); err != nil {
			if ferr := r.fail(ctx, u, id, err); ferr != nil {
				return ferr
			}
			continue
		}
		if el.Len() == 0 {
			continue
		}
		if emitted > 0 {
			body.WriteLine("")
		}
		body.Append(el)
		emitted++
	}
	if emitted == 0 {
		r.cfg.Logger.DebugContext(ctx, "skipping empty file", slog.String("file", u.Path))
		return nil
	}
	w.Append(body)

	if err := r.cfg.Sink.WriteFile(ctx, u.Path, w.Bytes()); err != nil {
		return errors.Wrapf(err, "write %s", u.Path)
	}
	r.cfg.Logger.DebugContext(ctx, "file emitted",
		slog.String("file", u.Path),
		slog.Int("elements", emitted),
		slog.Int("bytes", w.Len()))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, OutputFile{Path: u.Path, Elements: emitted, Size: w.Len()})
	r.emitted += emitted
	return nil
}

// fail records a failure. It returns a non-nil error when the run must stop.
func (r *run) fail(ctx context.Context, u Unit, id codedom.ID, err error) error {
	f := ElementFailure{Element: id, Path: r.tree.Path(id), File: u.Path, Err: err}
	attrs := []any{
		slog.String("element", f.Path),
		slog.String("file", u.Path),
		slog.Any("error", err),
	}
	if code := codedom.ErrorCode(err); code != "" {
		attrs = append(attrs, slog.String("code", string(code)))
	}
	if hint := errors.FlattenHints(err); hint != "" {
		attrs = append(attrs, slog.String("hint", hint))
	}
	r.cfg.Logger.ErrorContext(ctx, "element failed", attrs...)

	r.mu.Lock()
	r.failures = append(r.failures, f)
	r.mu.Unlock()
	if r.cfg.ContinueOnError {
		return nil
	}
	return errors.Wrapf(err, "emit %s", u.Path)
}

func (r *run) result() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := &Result{
		Files:           slices.Clone(r.files),
		ElementsEmitted: r.emitted,
		Failures:        slices.Clone(r.failures),
	}
	slices.SortFunc(res.Files, func(a, b OutputFile) int { return cmp.Compare(a.Path, b.Path) })
	slices.SortFunc(res.Failures, func(a, b ElementFailure) int {
		return cmp.Or(cmp.Compare(a.File, b.File), cmp.Compare(a.Element, b.Element))
	})
	return res
}
