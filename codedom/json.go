package codedom

import (
	"github.com/goccy/go-json"
)

// jsonNode is the dump shape of one element.
type jsonNode struct {
	Kind     string      `json:"kind"`
	Name     string      `json:"name"`
	Type     *TypeRef    `json:"type,omitempty"`
	Detail   any         `json:"detail,omitempty"`
	Usings   []Using     `json:"usings,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

// MarshalJSON dumps the tree as nested elements tagged with their kind.
// The dump is for inspection and is not read back.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.dump(t.Root()))
}

func (t *Tree) dump(id ID) *jsonNode {
	el := t.Element(id)
	n := &jsonNode{Kind: el.ElementKind().String(), Name: el.Name(), Usings: el.base().usings}
	switch e := el.(type) {
	case *Property:
		n.Type = &e.Type
	case *Parameter:
		n.Type = &e.Type
	case *Function:
		n.Type = &e.ReturnType
		n.Detail = e.Method().String()
	case *Constant:
		n.Detail = e.Kind.String()
	case *Interface:
		if len(e.Implements) > 0 {
			n.Detail = e.Implements
		}
	}
	for _, c := range el.base().children {
		n.Children = append(n.Children, t.dump(c))
	}
	return n
}
