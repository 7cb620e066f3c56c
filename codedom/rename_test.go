package codedom_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/testutil"
)

// snapshot renders every element with its references so that two states of
// a tree can be diffed.
func snapshot(tree *codedom.Tree) string {
	var sb strings.Builder
	for el := range tree.All() {
		fmt.Fprintf(&sb, "%s %s parent=%d\n", el.ElementKind(), tree.Path(el.ID()), el.Parent())
		switch e := el.(type) {
		case *codedom.Interface:
			fmt.Fprintf(&sb, "  implements=%v discriminator=%+v\n", e.Implements, e.Discriminator)
		case *codedom.Property:
			fmt.Fprintf(&sb, "  type=%+v wire=%q\n", e.Type, e.WireName)
		case *codedom.Parameter:
			fmt.Fprintf(&sb, "  type=%+v\n", e.Type)
		case *codedom.Function:
			fmt.Fprintf(&sb, "  returns=%+v\n", e.ReturnType)
		}
		for _, u := range tree.Usings(el.ID()) {
			fmt.Fprintf(&sb, "  using=%+v\n", u)
		}
	}
	return sb.String()
}

func TestRenameChild_UpdatesReferences(t *testing.T) {
	s := testutil.NewSample()
	require.NoError(t, s.Tree.AddUsing(s.Models, codedom.Using{Name: "Dog", Declaration: s.Tree.Ref(s.Dog)}))

	ok, err := s.Tree.RenameChild(s.Tree.Root(), "Dog", "Hound")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "Hound", s.Tree.Element(s.Dog).Name())

	// The name cache of the parent follows the rename.
	got, found := codedom.FindChild[*codedom.Interface](s.Tree, s.ModelsFile, "Hound", codedom.Direct())
	require.True(t, found)
	assert.Equal(t, s.Dog, got.ID())
	_, found = codedom.FindChild[*codedom.Interface](s.Tree, s.ModelsFile, "Dog", codedom.Direct())
	assert.False(t, found)

	animal, _ := codedom.Get[*codedom.Interface](s.Tree, s.Animal)
	assert.Equal(t, "Hound", animal.Discriminator.Mappings[0].Type.Name)
	assert.Equal(t, "dog", animal.Discriminator.Mappings[0].Value)

	param, err := s.Tree.ModelParameter(s.Fns[s.Dog].Deserializer)
	require.NoError(t, err)
	assert.Equal(t, "Hound", param.Type.Name)

	factory, _ := codedom.Get[*codedom.Function](s.Tree, s.Fns[s.Dog].Factory)
	assert.Equal(t, "Hound", factory.ReturnType.Name)

	usings := s.Tree.Usings(s.Models)
	require.Len(t, usings, 1)
	assert.Equal(t, "Hound", usings[0].Name)
	assert.Equal(t, "Hound", usings[0].Declaration.Name)

	// References to other elements are untouched.
	assert.Equal(t, "Cat", animal.Discriminator.Mappings[1].Type.Name)
}

func TestRenameChild_SameNameIsNoOp(t *testing.T) {
	s := testutil.NewSample()
	before := snapshot(s.Tree)

	ok, err := s.Tree.RenameChild(s.Tree.Root(), "Animal", "Animal")
	require.NoError(t, err)
	assert.True(t, ok)

	if diff := cmp.Diff(before, snapshot(s.Tree)); diff != "" {
		t.Errorf("tree changed (-before +after):\n%s", diff)
	}
}

func TestRenameChild_MissingLeavesTreeUnchanged(t *testing.T) {
	s := testutil.NewSample()
	before := snapshot(s.Tree)

	ok, err := s.Tree.RenameChild(s.Tree.Root(), "Giraffe", "Okapi")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, cmp.Diff(before, snapshot(s.Tree)))
}

func TestRenameChild_ConflictIsTransactional(t *testing.T) {
	s := testutil.NewSample()
	before := snapshot(s.Tree)

	ok, err := s.Tree.RenameChild(s.Tree.Root(), "Dog", "Cat")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, codedom.CodeDuplicateName, codedom.ErrorCode(err))
	assert.Empty(t, cmp.Diff(before, snapshot(s.Tree)))

	_, err = s.Tree.RenameChild(s.Tree.Root(), "Dog", "")
	assert.Equal(t, codedom.CodeInvalidPlacement, codedom.ErrorCode(err))
	assert.Empty(t, cmp.Diff(before, snapshot(s.Tree)))
}

func TestRenameChild_NearestMatch(t *testing.T) {
	b := testutil.NewBuilder("api")
	outer := b.Namespace(b.Root(), "outer")
	inner := b.Namespace(outer, "inner")
	near := b.Interface(outer, "Thing")
	far := b.Interface(inner, "Thing")

	ok, err := b.Tree.RenameChild(b.Root(), "Thing", "Other")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Other", b.Tree.Element(near).Name())
	assert.Equal(t, "Thing", b.Tree.Element(far).Name())
}

func TestRenameChild_UnknownScope(t *testing.T) {
	tree := codedom.NewTree("api")
	_, err := tree.RenameChild(codedom.ID(77), "a", "b")
	assert.Equal(t, codedom.CodeUnknownElement, codedom.ErrorCode(err))
}
