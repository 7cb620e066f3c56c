package golang_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/codewriter"
	"github.com/broady/clientgen/golang"
	"github.com/broady/clientgen/testutil"
)

func emit(t *testing.T, tree *codedom.Tree, id codedom.ID) string {
	t.Helper()
	w := codewriter.New("\t")
	require.NoError(t, golang.New(tree).EmitElement(w, id))
	return w.String()
}

// squash collapses runs of blanks so assertions do not depend on gofmt
// column alignment.
func squash(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Join(lines, "\n")
}

func TestEmitter_EnumObject(t *testing.T) {
	s := testutil.NewSample()
	out := squash(emit(t, s.Tree, s.ColorObject))
	testutil.AssertContainsInOrder(t, out,
		"type Color string",
		"const (",
		`ColorRed Color = "red"`,
		`ColorGreen Color = "green"`,
		`ColorDarkBlue Color = "dark-blue"`,
		")",
	)

	assert.Empty(t, emit(t, s.Tree, s.MoodObject))
	assert.Empty(t, emit(t, s.Tree, s.Color))
}

func TestEmitter_QueryParametersMapper(t *testing.T) {
	s := testutil.NewSample()
	out := squash(emit(t, s.Tree, s.QueryMapper))
	testutil.AssertContainsInOrder(t, out,
		"var usersRequestBuilderGetQueryParametersMapper = map[string]string{",
		`"filter": "$filter",`,
		`"select": "$select",`,
		"}",
	)
	assert.NotContains(t, out, "search")
}

func TestEmitter_URITemplate(t *testing.T) {
	s := testutil.NewSample()
	assert.Equal(t, "const ApiClientUriTemplate = \"{+baseurl}\"\n", emit(t, s.Tree, s.ClientUriTemplate))
}

func TestEmitter_Models(t *testing.T) {
	s := testutil.NewSample()

	animal := squash(emit(t, s.Tree, s.Animal))
	testutil.AssertContainsInOrder(t, animal,
		"type Animal struct {",
		"AdditionalData map[string]any `json:\"-\"`",
		"Species *string `json:\"species,omitempty\"`",
		"Birthday *string `json:\"birthday,omitempty\"`",
		"CreatedAt *time.Time `json:\"createdAt,omitempty\"`",
		"Color *Color `json:\"color,omitempty\"`",
		"Permissions []Permissions `json:\"permissions,omitempty\"`",
		"Moods []string `json:\"moods,omitempty\"`",
		"Tags []string `json:\"tags,omitempty\"`",
		"Photo []byte `json:\"photo,omitempty\"`",
		"FavoriteToy *Widget `json:\"favoriteToy,omitempty\"`",
		"Toys []Widget `json:\"toys,omitempty\"`",
		"}",
	)
	assert.NotContains(t, animal, "BackingStoreEnabled")

	dog := squash(emit(t, s.Tree, s.Dog))
	testutil.AssertContainsInOrder(t, dog,
		"type Dog struct {",
		"Animal",
		"GoodBoy *bool `json:\"good_boy,omitempty\"`",
		"Palette []Color `json:\"palette,omitempty\"`",
	)
	assert.NotContains(t, dog, "Species")

	cat := squash(emit(t, s.Tree, s.Cat))
	assert.Contains(t, cat, "Lives *int32 `json:\"lives,omitempty\"`")
	assert.Contains(t, cat, "NapTime *time.Duration `json:\"napTime,omitempty\"`")

	widget := squash(emit(t, s.Tree, s.Widget))
	assert.Contains(t, widget, "Id *uuid.UUID `json:\"id,omitempty\"`")
}

func TestEmitter_Header(t *testing.T) {
	s := testutil.NewSample()
	e := golang.New(s.Tree)

	w := codewriter.New("\t")
	require.NoError(t, e.EmitHeader(w, s.ModelsFile, nil))
	assert.Equal(t, "// Code generated by clientgen. DO NOT EDIT.\n"+
		"\n"+
		"package models\n"+
		"\n"+
		"import (\n"+
		"\t\"time\"\n"+
		"\n"+
		"\t\"github.com/google/uuid\"\n"+
		")\n"+
		"\n", w.String())

	w = codewriter.New("\t")
	require.NoError(t, e.EmitHeader(w, s.UsersFile, nil))
	assert.Equal(t, "// Code generated by clientgen. DO NOT EDIT.\n\npackage users\n\n", w.String())

	w = codewriter.New("\t")
	require.NoError(t, e.EmitHeader(w, s.ClientFile, nil))
	assert.Contains(t, w.String(), "package api\n")
}

func TestEmitter_Errors(t *testing.T) {
	s := testutil.NewSample()
	tests := []struct {
		name string
		id   codedom.ID
		code codedom.Code
	}{
		{"serializer function", s.Fns[s.Animal].Serializer, codedom.CodeUnsupported},
		{"client constructor", s.ClientConstructor, codedom.CodeUnsupported},
		{"request builder", s.Client, codedom.CodeUnsupported},
		{"navigation metadata", s.ClientNavigation, codedom.CodeUnsupported},
		{"file", s.ModelsFile, codedom.CodeUnsupported},
		{"unknown element", codedom.ID(9999), codedom.CodeStructural},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := codewriter.New("\t")
			w.WriteLine("// existing")
			err := golang.New(s.Tree).EmitElement(w, tt.id)
			require.Error(t, err)
			assert.Equal(t, tt.code, codedom.ErrorCode(err))
			assert.Equal(t, tt.id, codedom.ErrorElement(err))
			assert.Equal(t, "// existing\n", w.String())
		})
	}
}

func TestEmitter_Identity(t *testing.T) {
	e := golang.New(codedom.NewTree("api"))
	assert.Equal(t, "go", e.Name())
	assert.Equal(t, ".go", e.FileExtension())
}
