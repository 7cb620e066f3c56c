package wire_test

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/internal/wire"
	"github.com/broady/clientgen/testutil"
)

func TestCodec_RoundTripThroughBaseFactory(t *testing.T) {
	s := testutil.NewSample()
	c := wire.NewCodec(s.Tree)

	toy := uuid.MustParse("4f0c4b5e-8d7a-4a43-9f21-0b7f1c6b2a10")
	dog := &wire.Object{
		Model: s.Dog,
		Fields: map[string]any{
			"species":     "dog",
			"name":        "Rex",
			"birthday":    "2020-01-02",
			"color":       "dark-blue",
			"permissions": []string{"read", "write"},
			"moods":       []any{"sleepy"},
			"tags":        []any{"good", "loud"},
			"photo":       []byte{0xde, 0xad, 0xbe, 0xef},
			"favoriteToy": &wire.Object{Model: s.Widget, Fields: map[string]any{"id": toy, "label": "ball"}},
			"toys": []*wire.Object{
				{Model: s.Widget, Fields: map[string]any{"label": "rope"}},
			},
			"goodBoy": true,
			"palette": []string{"red", "green"},
		},
		AdditionalData: map[string]any{"collar": "red"},
	}

	data, err := c.Marshal(dog)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, true, raw["good_boy"])
	assert.Equal(t, "read, write", raw["permissions"])
	assert.Equal(t, "3q2+7w==", raw["photo"])
	assert.NotContains(t, raw, "goodBoy")

	got, err := c.Unmarshal(s.Fns[s.Animal].Factory, data)
	require.NoError(t, err)
	if diff := cmp.Diff(dog, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCodec_DiscriminatorSelection(t *testing.T) {
	s := testutil.NewSample()
	c := wire.NewCodec(s.Tree)
	factory := s.Fns[s.Animal].Factory

	tests := []struct {
		name    string
		payload string
		want    codedom.ID
	}{
		{"mapped dog", `{"species":"dog"}`, s.Dog},
		{"mapped cat", `{"species":"cat","lives":9}`, s.Cat},
		{"unmapped value", `{"species":"fish"}`, s.Animal},
		{"case sensitive", `{"species":"Dog"}`, s.Animal},
		{"missing value", `{"name":"Rex"}`, s.Animal},
		{"empty value", `{"species":""}`, s.Animal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := c.Unmarshal(factory, []byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, obj.Model)
		})
	}
}

func TestCodec_ReadsPrimitives(t *testing.T) {
	s := testutil.NewSample()
	c := wire.NewCodec(s.Tree)

	obj, err := c.Unmarshal(s.Fns[s.Animal].Factory, []byte(`{
		"species": "cat",
		"lives": 9,
		"napTime": "1h30m0s",
		"createdAt": "2024-05-06T07:08:09Z",
		"extra": "kept"
	}`))
	require.NoError(t, err)
	assert.Equal(t, s.Cat, obj.Model)
	assert.Equal(t, int64(9), obj.Fields["lives"])
	assert.Equal(t, 90*time.Minute, obj.Fields["napTime"])
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), obj.Fields["createdAt"])
	assert.Equal(t, map[string]any{"extra": "kept"}, obj.AdditionalData)
}

func TestCodec_NumbersKeepPrecision(t *testing.T) {
	s := testutil.NewSample()
	c := wire.NewCodec(s.Tree)
	factory := s.Fns[s.Animal].Factory

	tests := []struct {
		name  string
		lives any
		wire  string
		want  any
	}{
		{"int", 9, `9`, int64(9)},
		{"int64 past float precision", int64(9007199254740993), `9007199254740993`, int64(9007199254740993)},
		{"uint64 past int64", uint64(18446744073709551615), `18446744073709551615`, uint64(18446744073709551615)},
		{"float", 2.5, `2.5`, 2.5},
		{"decoded number", json.Number("42"), `42`, int64(42)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &wire.Object{
				Model:  s.Cat,
				Fields: map[string]any{"species": "cat", "lives": tt.lives},
			}
			data, err := c.Marshal(cat)
			require.NoError(t, err)
			assert.Contains(t, string(data), `"lives":`+tt.wire)

			got, err := c.Unmarshal(factory, data)
			require.NoError(t, err)
			assert.Equal(t, s.Cat, got.Model)
			if diff := cmp.Diff(tt.want, got.Fields["lives"]); diff != "" {
				t.Errorf("lives mismatch (-want +got):\n%s", diff)
			}
		})
	}

	obj, err := c.Unmarshal(factory, []byte(`{"species":"cat","lives":1e3}`))
	require.NoError(t, err)
	assert.Equal(t, float64(1000), obj.Fields["lives"])
}

func TestCodec_ReadOnlyIsNotWritten(t *testing.T) {
	s := testutil.NewSample()
	c := wire.NewCodec(s.Tree)

	data, err := c.Marshal(&wire.Object{
		Model:  s.Animal,
		Fields: map[string]any{"name": "Rex", "createdAt": time.Now()},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Rex"}`, string(data))
}

func TestCodec_Errors(t *testing.T) {
	s := testutil.NewSample()
	c := wire.NewCodec(s.Tree)

	_, err := c.Marshal(&wire.Object{Model: s.Animal, Fields: map[string]any{"color": "purple"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"purple" is not a value of /api/models/index/Color`)

	_, err = c.Marshal(&wire.Object{Model: s.Animal, Fields: map[string]any{"name": 42}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want string, got int")

	_, err = c.Marshal(&wire.Object{Model: s.Color})
	require.Error(t, err)
	assert.True(t, codedom.IsStructural(err))

	_, err = c.Unmarshal(s.Fns[s.Animal].Serializer, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, codedom.IsUnsupported(err))

	_, err = c.Unmarshal(s.Fns[s.Animal].Factory, []byte(`{`))
	require.Error(t, err)

	_, err = c.Unmarshal(s.Fns[s.Animal].Factory, []byte(`{"permissions":"read, fly"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"fly"`)
}
