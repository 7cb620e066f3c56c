package typescript

import (
	"strings"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/codewriter"
)

func (e *Emitter) emitInterface(w *codewriter.Writer, iface *codedom.Interface) error {
	var extends []string
	switch iface.Kind {
	case codedom.InterfaceModel:
		for _, ref := range iface.Implements {
			if !e.isModel(ref.Definition) {
				return e.tree.Structuralf(iface.ID(), "%q implements %q which is not a model", iface.Name(), ref.Name)
			}
			extends = append(extends, e.conv.TypeString(ref, iface.ID()))
		}
		if e.hasProperty(iface, codedom.PropertyAdditionalData) {
			extends = append(extends, "AdditionalDataHolder")
		}
		if e.hasProperty(iface, codedom.PropertyBackingStore) {
			extends = append(extends, "BackedModel")
		}
		extends = append(extends, "Parsable")
	case codedom.InterfaceRequestBuilder:
		extends = append(extends, "BaseRequestBuilder<"+iface.Name()+">")
	}

	emitJSDoc(w, iface.Doc())
	decl := "export interface " + sanitizeIdentifier(iface.Name())
	if len(extends) > 0 {
		decl += " extends " + strings.Join(extends, ", ")
	}
	w.StartBlock(decl + " {")
	for p := range codedom.ChildrenOf[*codedom.Property](e.tree, iface.ID()) {
		if p.ExistsInBaseType {
			continue
		}
		if p.Type.Definition.Valid() && e.tree.Element(p.Type.Definition) == nil {
			return e.tree.Structuralf(p.ID(), "type %q references unknown element %d", p.Type.Name, p.Type.Definition)
		}
		emitJSDoc(w, p.Doc())
		typ := e.conv.typeExpr(p.Type, iface.ID())
		if iface.Kind == codedom.InterfaceModel && p.Kind != codedom.PropertyAdditionalData {
			typ += " | null"
		}
		w.Linef("%s?: %s;", propertyKey(lowerFirst(p.Name())), typ)
	}
	w.CloseBlock("}")
	return nil
}

func (e *Emitter) hasProperty(iface *codedom.Interface, kind codedom.PropertyKind) bool {
	for p := range codedom.ChildrenOf[*codedom.Property](e.tree, iface.ID()) {
		if p.Kind == kind {
			return true
		}
	}
	return false
}
