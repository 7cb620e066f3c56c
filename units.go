package clientgen

import (
	"path"

	"github.com/broady/clientgen/codedom"
)

// Unit is one output file.
type Unit struct {
	// Path is slash separated and relative to the output root. Directories
	// follow the namespaces below the root namespace.
	Path string

	// Scope is the file, or the namespace for loose elements.
	Scope codedom.ID

	// Elements are emitted in order.
	Elements []codedom.ID
}

// indexName is the file that collects loose elements of a namespace.
const indexName = "index"

// Units partitions a tree into output files: one per File element. The
// loose elements of a namespace join its "index" file, or form one when
// the namespace has none.
func Units(tree *codedom.Tree, ext string) []Unit {
	var units []Unit
	var visit func(ns codedom.ID, dir string)
	visit = func(ns codedom.ID, dir string) {
		index := -1
		var loose []codedom.ID
		var nested []codedom.ID
		for c := range tree.Children(ns) {
			switch el := c.(type) {
			case *codedom.File:
				if el.Name() == indexName {
					index = len(units)
				}
				units = append(units, Unit{
					Path:     path.Join(dir, el.Name()+ext),
					Scope:    el.ID(),
					Elements: childIDs(tree, el.ID()),
				})
			case *codedom.Namespace:
				nested = append(nested, el.ID())
			default:
				loose = append(loose, c.ID())
			}
		}
		switch {
		case len(loose) == 0:
		case index >= 0:
			units[index].Elements = append(units[index].Elements, loose...)
		default:
			units = append(units, Unit{
				Path:     path.Join(dir, indexName+ext),
				Scope:    ns,
				Elements: loose,
			})
		}
		for _, id := range nested {
			visit(id, path.Join(dir, tree.Element(id).Name()))
		}
	}
	visit(tree.Root(), "")
	return units
}

func childIDs(tree *codedom.Tree, id codedom.ID) []codedom.ID {
	var ids []codedom.ID
	for c := range tree.Children(id) {
		ids = append(ids, c.ID())
	}
	return ids
}
