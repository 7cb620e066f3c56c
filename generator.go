package clientgen

import (
	"context"
	"log/slog"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/sink"
)

// Generator provides a fluent API for code generation.
// Create with FromTree and configure with method chaining.
//
// Example:
//
//	clientgen.FromTree(tree).
//	    Language("go").
//	    BaseURL("https://api.example.com").
//	    ToDir("./client")
type Generator struct {
	tree *codedom.Tree
	cfg  Config
	ctx  context.Context
}

// FromTree creates a Generator for tree.
func FromTree(tree *codedom.Tree) *Generator {
	return &Generator{tree: tree}
}

// Context sets the context of the run. Default: context.Background().
func (g *Generator) Context(ctx context.Context) *Generator {
	g.ctx = ctx
	return g
}

// Language selects the target. Valid values: "typescript" (default), "ts",
// "go", "golang".
func (g *Generator) Language(lang string) *Generator {
	g.cfg.Language = lang
	return g
}

// IndentSize sets the spaces per indentation level.
func (g *Generator) IndentSize(n int) *Generator {
	g.cfg.IndentSize = n
	return g
}

// ContinueOnError keeps generating after an element fails.
func (g *Generator) ContinueOnError() *Generator {
	g.cfg.ContinueOnError = true
	return g
}

// Parallelism bounds the number of files emitted at once.
func (g *Generator) Parallelism(n int) *Generator {
	g.cfg.Parallelism = n
	return g
}

// BaseURL sets the default base URL of client constructors.
func (g *Generator) BaseURL(url string) *Generator {
	g.cfg.BaseURL = url
	return g
}

// Logger sets the logger of the run.
func (g *Generator) Logger(l *slog.Logger) *Generator {
	g.cfg.Logger = l
	return g
}

// ToDir writes the generated files below dir.
func (g *Generator) ToDir(dir string) (*Result, error) {
	g.cfg.OutDir = dir
	g.cfg.Sink = nil
	return g.generate()
}

// ToSink writes the generated files to s.
func (g *Generator) ToSink(s sink.OutputSink) (*Result, error) {
	g.cfg.Sink = s
	return g.generate()
}

func (g *Generator) generate() (*Result, error) {
	ctx := g.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := g.cfg
	return Generate(ctx, g.tree, &cfg)
}
