package clientgen_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/clientgen"
	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/sink"
	"github.com/broady/clientgen/testutil"
)

func TestLanguages(t *testing.T) {
	assert.Equal(t, []string{"go", "typescript"}, clientgen.Languages())
}

func TestNewTarget(t *testing.T) {
	tree := codedom.NewTree("api")
	for lang, want := range map[string]string{
		"typescript": "typescript",
		"ts":         "typescript",
		"TS":         "typescript",
		"go":         "go",
		"golang":     "go",
	} {
		target, err := clientgen.NewTarget(lang, tree)
		require.NoError(t, err, lang)
		assert.Equal(t, want, target.Name(), lang)
	}

	_, err := clientgen.NewTarget("cobol", tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no target for language "cobol"`)
	assert.Contains(t, errors.FlattenHints(err), "go, typescript")
}

func TestUnits_Sample(t *testing.T) {
	s := testutil.NewSample()
	units := clientgen.Units(s.Tree, ".ts")

	paths := make([]string, len(units))
	for i, u := range units {
		paths[i] = u.Path
	}
	assert.Equal(t, []string{"apiClient.ts", "models/index.ts", "users/index.ts"}, paths)

	models := units[1]
	assert.Equal(t, s.ModelsFile, models.Scope)
	// The loose error class joins the namespace's index file.
	assert.Equal(t, s.ErrorClass, models.Elements[len(models.Elements)-1])
	assert.Equal(t, s.Color, models.Elements[0])
}

func TestUnits_LooseElements(t *testing.T) {
	b := testutil.NewBuilder("api")
	things := b.Namespace(b.Root(), "things")
	widgets := b.File(things, "widgets")
	gadget := b.Interface(widgets, "Gadget")
	thing := b.Interface(things, "Thing")
	deep := b.Namespace(things, "deep")
	inner := b.Interface(deep, "Inner")
	top := b.Interface(b.Root(), "Top")

	want := []clientgen.Unit{
		{Path: "index.go", Scope: b.Root(), Elements: []codedom.ID{top}},
		{Path: "things/widgets.go", Scope: widgets, Elements: []codedom.ID{gadget}},
		{Path: "things/index.go", Scope: things, Elements: []codedom.ID{thing}},
		{Path: "things/deep/index.go", Scope: deep, Elements: []codedom.ID{inner}},
	}
	if diff := cmp.Diff(want, clientgen.Units(b.Tree, ".go")); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_TypeScript(t *testing.T) {
	s := testutil.NewSample()
	mem := sink.NewMemorySink()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res, err := clientgen.FromTree(s.Tree).
		Language("ts").
		ContinueOnError().
		Logger(logger).
		ToSink(mem)
	require.NoError(t, err)

	assert.Equal(t, []string{"apiClient.ts", "models/index.ts", "users/index.ts"}, mem.Paths())
	require.Len(t, res.Files, 3)
	total := 0
	for _, f := range res.Files {
		total += f.Elements
		assert.Equal(t, len(mem.Get(f.Path)), f.Size, f.Path)
	}
	assert.Equal(t, res.ElementsEmitted, total)

	// Navigation metadata has no emission rule; the rest of its file is kept.
	require.Len(t, res.Failures, 1)
	failure := res.Failures[0]
	assert.Equal(t, s.ClientNavigation, failure.Element)
	assert.Equal(t, "/api/apiClient/ApiClientNavigationMetadata", failure.Path)
	assert.Equal(t, "apiClient.ts", failure.File)
	assert.True(t, codedom.IsUnsupported(failure.Err))

	client := string(mem.Get("apiClient.ts"))
	assert.True(t, strings.HasPrefix(client, "/* tslint:disable */\n"))
	testutil.AssertContainsInOrder(t, client,
		"ApiClientUriTemplate",
		"export function createApiClient(",
		`"https://api.example.com/v1"`,
	)

	models := string(mem.Get("models/index.ts"))
	testutil.AssertContainsInOrder(t, models,
		"export const ColorObject",
		"export interface Animal",
		"export function serializeAnimal(",
		"export function createAnimalFromDiscriminatorValue(",
	)
	assert.Contains(t, models, "}\n\nexport")

	assert.Contains(t, logs.String(), "element failed")
	assert.Contains(t, logs.String(), "element=/api/apiClient/ApiClientNavigationMetadata")
	assert.Contains(t, logs.String(), "code=unsupported_construct")
	assert.Contains(t, logs.String(), "generation finished")
}

func TestGenerate_StopsAtFirstFailure(t *testing.T) {
	s := testutil.NewSample()
	mem := sink.NewMemorySink()

	res, err := clientgen.Generate(context.Background(), s.Tree, &clientgen.Config{
		Language:    "typescript",
		Parallelism: 1,
		Sink:        mem,
		Logger:      slog.New(slog.DiscardHandler),
	})
	require.Error(t, err)
	assert.True(t, codedom.IsUnsupported(err))
	assert.Contains(t, err.Error(), "emit apiClient.ts")
	require.NotNil(t, res)
	require.Len(t, res.Failures, 1)
	assert.Nil(t, mem.Get("apiClient.ts"))
}

func TestGenerate_BaseURL(t *testing.T) {
	s := testutil.NewSample()
	mem := sink.NewMemorySink()
	_, err := clientgen.FromTree(s.Tree).
		ContinueOnError().
		BaseURL("https://override.example.com").
		Logger(slog.New(slog.DiscardHandler)).
		ToSink(mem)
	require.NoError(t, err)

	client := string(mem.Get("apiClient.ts"))
	assert.Contains(t, client, `"https://override.example.com"`)
	assert.NotContains(t, client, "https://api.example.com/v1")
}

func TestGenerate_BaseURLLeavesTreeUnchanged(t *testing.T) {
	s := testutil.NewSample()
	before, err := s.Tree.MarshalJSON()
	require.NoError(t, err)

	runs := []struct {
		baseURL string
		want    string
	}{
		{baseURL: "https://override.example.com", want: `"https://override.example.com"`},
		{baseURL: "", want: `"https://api.example.com/v1"`},
	}
	for _, r := range runs {
		mem := sink.NewMemorySink()
		_, err := clientgen.Generate(context.Background(), s.Tree, &clientgen.Config{
			ContinueOnError: true,
			BaseURL:         r.baseURL,
			Logger:          slog.New(slog.DiscardHandler),
			Sink:            mem,
		})
		require.NoError(t, err)
		assert.Contains(t, string(mem.Get("apiClient.ts")), r.want, "base url %q", r.baseURL)
	}

	after, err := s.Tree.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	fn, ok := codedom.Get[*codedom.Function](s.Tree, s.ClientConstructor)
	require.True(t, ok)
	body, ok := fn.Body.(*codedom.ClientConstructorBody)
	require.True(t, ok)
	assert.Equal(t, "https://api.example.com/v1", body.BaseURL)
}

func TestGenerate_IndentSize(t *testing.T) {
	s := testutil.NewSample()
	mem := sink.NewMemorySink()
	_, err := clientgen.FromTree(s.Tree).
		ContinueOnError().
		IndentSize(2).
		Logger(slog.New(slog.DiscardHandler)).
		ToSink(mem)
	require.NoError(t, err)

	models := string(mem.Get("models/index.ts"))
	assert.Contains(t, models, "\n  writer.writeStringValue(\"species\", animal.species);\n")
	assert.NotContains(t, models, "\n    writer.writeStringValue(")
}

func goTree() *codedom.Tree {
	b := testutil.NewBuilder("api")
	models := b.Namespace(b.Root(), "models")
	f := b.File(models, "index")
	color := b.Enum(f, "Color", false, "Red", "Green")
	b.EnumObject(f, color)
	pet := b.Interface(f, "Pet")
	b.Property(pet, "name", codedom.Primitive("string"), testutil.Wire("name"))
	b.Property(pet, "color", b.Tree.Ref(color), testutil.Wire("color"))
	b.Index()
	return b.Tree
}

func TestGenerate_Go(t *testing.T) {
	tree := goTree()
	mem := sink.NewMemorySink()
	res, err := clientgen.FromTree(tree).
		Language("golang").
		Logger(slog.New(slog.DiscardHandler)).
		ToSink(mem)
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Equal(t, []string{"models/index.go"}, mem.Paths())

	out := string(mem.Get("models/index.go"))
	assert.True(t, strings.HasPrefix(out, "// Code generated by clientgen. DO NOT EDIT.\n\npackage models\n"))
	testutil.AssertContainsInOrder(t, out,
		"type Color string",
		"type Pet struct {",
		`json:"name,omitempty"`,
	)
	// Go indents with tabs regardless of the indent size.
	assert.NotContains(t, out, "\n    ")
}

func TestGenerate_Deterministic(t *testing.T) {
	render := func(parallelism int) map[string][]byte {
		s := testutil.NewSample()
		mem := sink.NewMemorySink()
		_, err := clientgen.FromTree(s.Tree).
			ContinueOnError().
			Parallelism(parallelism).
			Logger(slog.New(slog.DiscardHandler)).
			ToSink(mem)
		require.NoError(t, err)
		return mem.Files()
	}
	if diff := cmp.Diff(render(1), render(8)); diff != "" {
		t.Errorf("output depends on parallelism (-1 +8):\n%s", diff)
	}
}

func TestGenerate_ToDir(t *testing.T) {
	dir := t.TempDir()
	_, err := clientgen.FromTree(goTree()).
		Language("go").
		Logger(slog.New(slog.DiscardHandler)).
		ToDir(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "models", "index.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package models")
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mem := sink.NewMemorySink()
	_, err := clientgen.FromTree(goTree()).
		Context(ctx).
		Language("go").
		Logger(slog.New(slog.DiscardHandler)).
		ToSink(mem)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mem.Paths())
}

func TestGenerate_ConfigErrors(t *testing.T) {
	mem := sink.NewMemorySink()
	tests := []struct {
		name    string
		cfg     clientgen.Config
		wantErr string
	}{
		{name: "unknown language", cfg: clientgen.Config{Language: "cobol", Sink: mem}, wantErr: "language: must be one of: typescript go"},
		{name: "indent too large", cfg: clientgen.Config{IndentSize: 9, Sink: mem}, wantErr: "indent_size: must be at most 8"},
		{name: "negative parallelism", cfg: clientgen.Config{Parallelism: -1, Sink: mem}, wantErr: "parallelism: must be at least 1"},
		{name: "bad base url", cfg: clientgen.Config{BaseURL: "not a url", Sink: mem}, wantErr: "base_url: must be a valid URL"},
		{name: "bad log level", cfg: clientgen.Config{LogLevel: "loud", Sink: mem}, wantErr: "log_level: must be one of"},
		{name: "single file", cfg: clientgen.Config{SingleFile: true, Sink: mem}, wantErr: "single-file output is not supported"},
		{name: "no destination", cfg: clientgen.Config{}, wantErr: "no output destination"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := clientgen.Generate(context.Background(), goTree(), &tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Empty(t, mem.Paths())
}
