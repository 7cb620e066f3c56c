package typescript

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/codewriter"
)

func (e *Emitter) emitConstant(w *codewriter.Writer, c *codedom.Constant) error {
	switch c.Kind {
	case codedom.ConstantQueryParametersMapper:
		return e.writeQueryParametersMapper(w, c)
	case codedom.ConstantEnumObject:
		return e.writeEnumObject(w, c)
	case codedom.ConstantURITemplate:
		w.Linef("export const %s = %s;", upperFirst(c.Name()), strconv.Quote(c.Value))
		return nil
	default:
		return e.tree.Unsupportedf(c.ID(), "no emission rule for %s constant %q", c.Kind, c.Name())
	}
}

// writeQueryParametersMapper maps query parameter names to their wire
// names. Entries are ordered by wire name, ignoring case; parameters
// without a wire name are left out.
func (e *Emitter) writeQueryParametersMapper(w *codewriter.Writer, c *codedom.Constant) error {
	iface, ok := codedom.Get[*codedom.Interface](e.tree, c.Origin)
	if !ok {
		return e.tree.Structuralf(c.ID(), "query parameters mapper %q is not derived from an interface", c.Name())
	}
	var params []*codedom.Property
	for p := range codedom.ChildrenOf[*codedom.Property](e.tree, iface.ID()) {
		if p.Kind == codedom.PropertyQueryParameter && p.WireName != "" {
			params = append(params, p)
		}
	}
	slices.SortStableFunc(params, func(a, b *codedom.Property) int {
		return cmp.Compare(strings.ToLower(a.WireName), strings.ToLower(b.WireName))
	})

	w.StartBlock("const " + lowerFirst(c.Name()) + ": Record<string, string> = {")
	for _, p := range params {
		w.Linef("%s: %s,", strconv.Quote(lowerFirst(p.Name())), strconv.Quote(p.WireName))
	}
	w.CloseBlock("};")
	return nil
}

// writeEnumObject writes the lookup object of an enum followed by the
// union type of its values. Enums without options produce nothing.
func (e *Emitter) writeEnumObject(w *codewriter.Writer, c *codedom.Constant) error {
	enum, ok := codedom.Get[*codedom.Enum](e.tree, c.Origin)
	if !ok {
		return e.tree.Structuralf(c.ID(), "enum object %q is not derived from an enum", c.Name())
	}
	if _, ok := e.tree.EnumLookup(enum.ID()); !ok {
		return nil
	}
	object := upperFirst(c.Name())
	emitJSDoc(w, enum.Doc())
	w.StartBlock("export const " + object + " = {")
	for opt := range codedom.ChildrenOf[*codedom.EnumOption](e.tree, enum.ID()) {
		if doc := opt.Doc(); doc.Summary != "" {
			w.Linef("/** %s */", doc.Summary)
		}
		w.Linef("%s: %s,", sanitizeIdentifier(upperFirst(opt.Name())), strconv.Quote(opt.SerializationName()))
	}
	w.CloseBlock("} as const;")
	w.Linef("export type %s = (typeof %s)[keyof typeof %s];", upperFirst(enum.Name()), object, object)
	return nil
}
