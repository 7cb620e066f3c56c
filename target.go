package clientgen

import (
	"maps"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/codewriter"
	"github.com/broady/clientgen/golang"
	"github.com/broady/clientgen/typescript"
)

// Target renders elements of a tree in one language. Implementations only
// read the tree and may be called from several goroutines.
type Target interface {
	Name() string
	FileExtension() string

	// EmitHeader writes what precedes the elements of a unit, such as a
	// package clause or import declarations.
	EmitHeader(w *codewriter.Writer, scope codedom.ID, elements []codedom.ID) error

	// EmitElement writes one element. On error nothing is written.
	EmitElement(w *codewriter.Writer, id codedom.ID) error
}

type targetEntry struct {
	new func(tree *codedom.Tree, cfg *Config) Target

	// indent returns the indentation unit for an indent size.
	indent func(size int) string

	// defaultIndent is used when the configuration leaves the size unset.
	defaultIndent int
}

var targets = map[string]targetEntry{
	"typescript": {
		new: func(tree *codedom.Tree, cfg *Config) Target {
			return typescript.New(tree, typescript.WithBaseURL(cfg.BaseURL))
		},
		indent:        func(size int) string { return strings.Repeat(" ", size) },
		defaultIndent: 4,
	},
	"go": {
		new:           func(tree *codedom.Tree, _ *Config) Target { return golang.New(tree) },
		indent:        func(int) string { return "\t" },
		defaultIndent: 1,
	},
}

var languageAliases = map[string]string{
	"ts":     "typescript",
	"golang": "go",
}

// Languages returns the names of the registered targets.
func Languages() []string {
	return slices.Sorted(maps.Keys(targets))
}

// canonicalLanguage resolves aliases such as "ts".
func canonicalLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if canonical, ok := languageAliases[lang]; ok {
		return canonical
	}
	return lang
}

// NewTarget returns the target registered for lang over tree.
func NewTarget(lang string, tree *codedom.Tree) (Target, error) {
	return newTarget(tree, &Config{Language: lang})
}

// newTarget applies the run options of cfg to the target. The tree itself
// is never changed.
func newTarget(tree *codedom.Tree, cfg *Config) (Target, error) {
	entry, ok := targets[canonicalLanguage(cfg.Language)]
	if !ok {
		return nil, errors.WithHintf(errors.Newf("no target for language %q", cfg.Language),
			"supported languages: %s", strings.Join(Languages(), ", "))
	}
	return entry.new(tree, cfg), nil
}
