package provider_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/codewriter"
	"github.com/broady/clientgen/provider"
	"github.com/broady/clientgen/testutil"
	"github.com/broady/clientgen/typescript"
)

func TestLoadFile(t *testing.T) {
	tree, err := provider.LoadFile("testdata/pets.yaml")
	require.NoError(t, err)
	assert.Empty(t, tree.Validate())

	pet, ok := tree.Lookup("/petstore/models/index/Pet")
	require.True(t, ok)
	cat, ok := tree.Lookup("/petstore/models/index/Cat")
	require.True(t, ok)
	size, ok := tree.Lookup("/petstore/models/index/Size")
	require.True(t, ok)

	petIface, _ := codedom.Get[*codedom.Interface](tree, pet)
	assert.Equal(t, "A pet in the store.", petIface.Doc().Summary)
	require.Len(t, petIface.Discriminator.Mappings, 1)
	assert.Equal(t, cat, petIface.Discriminator.Mappings[0].Type.Definition)

	catIface, _ := codedom.Get[*codedom.Interface](tree, cat)
	require.Len(t, catIface.Implements, 1)
	assert.Equal(t, pet, catIface.Implements[0].Definition)

	// The enum references its lookup object declared after it.
	obj, ok := tree.EnumLookup(size)
	require.True(t, ok)
	assert.Equal(t, "SizeObject", obj.Name())

	for _, model := range []codedom.ID{pet, cat} {
		for _, role := range []codedom.Role{codedom.RoleSerializer, codedom.RoleDeserializer, codedom.RoleFactory} {
			_, ok := tree.IndexedFunction(role, model)
			assert.True(t, ok, "%s of %s", role, tree.Path(model))
		}
	}

	file, _ := tree.Lookup("/petstore/models/index")
	require.Len(t, tree.Usings(file), 1)
	assert.True(t, tree.Usings(file)[0].IsExternal)
}

func TestLoadFile_Emits(t *testing.T) {
	tree, err := provider.LoadFile("testdata/pets.yaml")
	require.NoError(t, err)

	factory, ok := tree.Lookup("/petstore/models/index/createPetFromDiscriminatorValue")
	require.True(t, ok)
	w := codewriter.Spaces(4)
	require.NoError(t, typescript.New(tree).EmitElement(w, factory))
	testutil.AssertContainsInOrder(t, w.String(),
		`getChildNode("kind")`,
		`case "cat":`,
		"return deserializeIntoCat;",
		"return deserializeIntoPet;",
	)
}

func TestExport_RoundTrip(t *testing.T) {
	for _, format := range []provider.Format{provider.FormatJSON, provider.FormatYAML} {
		t.Run(format.String(), func(t *testing.T) {
			s := testutil.NewSample()
			want := provider.Export(s.Tree)

			var buf bytes.Buffer
			require.NoError(t, provider.Encode(&buf, want, format))
			tree, err := provider.Load(&buf, format)
			require.NoError(t, err)

			if diff := cmp.Diff(want, provider.Export(tree)); diff != "" {
				t.Errorf("document mismatch (-want +got):\n%s", diff)
			}

			before, err := s.Tree.MarshalJSON()
			require.NoError(t, err)
			after, err := tree.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, string(before), string(after))
		})
	}
}

func TestLoad_KindQualifiedReference(t *testing.T) {
	const doc = `{"version":"1.0.0","root":"api","elements":[
		{"kind":"class","name":"Pet"},
		{"kind":"interface","name":"Pet"},
		{"kind":"interface","name":"Cat","implements":[{"name":"Pet","ref":"interface:/api/Pet"}]}]}`

	tree, err := provider.Load(strings.NewReader(doc), provider.FormatJSON)
	require.NoError(t, err)

	pet, err := tree.Resolve("interface:/api/Pet")
	require.NoError(t, err)
	cat, err := tree.Resolve("/api/Cat")
	require.NoError(t, err)

	catIface, ok := codedom.Get[*codedom.Interface](tree, cat)
	require.True(t, ok)
	require.Len(t, catIface.Implements, 1)
	assert.Equal(t, pet, catIface.Implements[0].Definition)
	base, ok := tree.BaseInterface(cat)
	require.True(t, ok)
	assert.Equal(t, pet, base.ID())

	exported := provider.Export(tree)
	require.Len(t, exported.Elements, 3)
	assert.Equal(t, "interface:/api/Pet", exported.Elements[2].Implements[0].Ref)

	var buf bytes.Buffer
	require.NoError(t, provider.Encode(&buf, exported, provider.FormatYAML))
	again, err := provider.Load(&buf, provider.FormatYAML)
	require.NoError(t, err)
	if diff := cmp.Diff(exported, provider.Export(again)); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "unsupported version",
			doc:     `{"version":"2.0.0","root":"api","elements":[]}`,
			wantErr: "unsupported tree document version 2.0.0",
		},
		{
			name:    "malformed version",
			doc:     `{"version":"one","root":"api","elements":[]}`,
			wantErr: `invalid tree document version "one"`,
		},
		{
			name:    "missing root",
			doc:     `{"version":"1.0.0","elements":[]}`,
			wantErr: "root: required",
		},
		{
			name:    "unknown kind",
			doc:     `{"version":"1.0.0","root":"api","elements":[{"kind":"module","name":"x"}]}`,
			wantErr: "elements[0].kind: must be one of",
		},
		{
			name:    "unknown field",
			doc:     `{"version":"1.0.0","root":"api","bogus":1}`,
			wantErr: "bogus",
		},
		{
			name: "unresolved reference",
			doc: `{"version":"1.0.0","root":"api","elements":[
				{"kind":"interface","name":"A","implements":[{"name":"B","ref":"/api/B"}]}]}`,
			wantErr: `unresolved reference "/api/B"`,
		},
		{
			name: "ambiguous reference",
			doc: `{"version":"1.0.0","root":"api","elements":[
				{"kind":"class","name":"Pet"},
				{"kind":"interface","name":"Pet"},
				{"kind":"interface","name":"Cat","implements":[{"name":"Pet","ref":"/api/Pet"}]}]}`,
			wantErr: `ambiguous reference "/api/Pet"`,
		},
		{
			name: "property without type",
			doc: `{"version":"1.0.0","root":"api","elements":[
				{"kind":"interface","name":"A","children":[{"kind":"property","name":"p"}]}]}`,
			wantErr: `property "p" has no type`,
		},
		{
			name: "invalid placement",
			doc: `{"version":"1.0.0","root":"api","elements":[
				{"kind":"property","name":"p","type":{"name":"string"}}]}`,
			wantErr: "cannot contain",
		},
		{
			name: "inconsistent tree",
			doc: `{"version":"1.0.0","root":"api","elements":[
				{"kind":"interface","name":"A","discriminator":{"property":"k","mappings":[
					{"value":"x","type":{"name":"Nope","ref":"/api/F"}}]}},
				{"kind":"function","name":"F","method":"custom"}]}`,
			wantErr: "not an interface or class",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Load(strings.NewReader(tt.doc), provider.FormatJSON)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    provider.Format
		wantErr bool
	}{
		{"tree.json", provider.FormatJSON, false},
		{"tree.yaml", provider.FormatYAML, false},
		{"TREE.YML", provider.FormatYAML, false},
		{"tree.toml", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := provider.FormatOf(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
