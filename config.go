package clientgen

import (
	"log/slog"
	"runtime"

	"github.com/cockroachdb/errors"

	"github.com/broady/clientgen/internal/validation"
	"github.com/broady/clientgen/sink"
)

// Config holds the configuration for code generation.
type Config struct {
	// Language selects the target: "typescript" (alias "ts") or "go"
	// (alias "golang"). Default: "typescript".
	Language string `mapstructure:"language" schema:"language" validate:"required,oneof=typescript go"`

	// OutDir is the directory generated files are written to. Required
	// unless Sink is set.
	OutDir string `mapstructure:"out_dir" schema:"out_dir"`

	// IndentSize is the number of spaces per indentation level. Targets
	// that indent with tabs ignore it. Default: 4.
	IndentSize int `mapstructure:"indent_size" schema:"indent_size" validate:"min=1,max=8"`

	// ContinueOnError records element failures in the Result and keeps
	// going. When false the first failure aborts the run.
	ContinueOnError bool `mapstructure:"continue_on_error" schema:"continue_on_error"`

	// Parallelism bounds the number of files emitted at once.
	// Default: GOMAXPROCS.
	Parallelism int `mapstructure:"parallelism" schema:"parallelism" validate:"min=1"`

	// BaseURL replaces the default base URL of every client constructor.
	BaseURL string `mapstructure:"base_url" schema:"base_url" validate:"omitempty,url"`

	// SingleFile is not supported; output always follows the file
	// elements of the tree.
	SingleFile bool `mapstructure:"single_file" schema:"single_file"`

	// LogLevel is informational for callers that build Logger from it.
	LogLevel string `mapstructure:"log_level" schema:"log_level" validate:"omitempty,oneof=trace debug info warn error"`

	// Logger receives run and failure logs. Default: slog.Default().
	Logger *slog.Logger `mapstructure:"-" schema:"-" validate:"-"`

	// Sink receives generated files. Default: a FilesystemSink at OutDir.
	Sink sink.OutputSink `mapstructure:"-" schema:"-" validate:"-"`
}

// applyConfigDefaults returns a copy of cfg with defaults filled in.
func applyConfigDefaults(cfg *Config) (*Config, error) {
	result := *cfg

	result.Language = canonicalLanguage(result.Language)
	if result.Language == "" {
		result.Language = "typescript"
	}
	if result.IndentSize == 0 {
		result.IndentSize = 4
		if entry, ok := targets[result.Language]; ok {
			result.IndentSize = entry.defaultIndent
		}
	}
	if result.Parallelism == 0 {
		result.Parallelism = runtime.GOMAXPROCS(0)
	}
	if result.Logger == nil {
		result.Logger = slog.Default()
	}

	if err := validation.Struct(&result); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if result.SingleFile {
		return nil, errors.WithHint(errors.New("single-file output is not supported"),
			"output files follow the file elements of the tree; remove single_file")
	}

	if result.Sink == nil {
		if result.OutDir == "" {
			return nil, errors.WithHint(errors.New("no output destination"),
				"set OutDir or provide a Sink")
		}
		result.Sink = sink.NewFilesystemSink(result.OutDir)
	}
	return &result, nil
}
