package provider

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/broady/clientgen/codedom"
)

// Export converts a tree into a document that Build turns back into an
// equivalent tree.
func Export(tree *codedom.Tree) *Document {
	root := tree.Element(tree.Root())
	doc := &Document{
		Version: FormatVersion,
		Root:    root.Name(),
		Usings:  exportUsings(tree, tree.Root()),
	}
	for c := range tree.Children(tree.Root()) {
		doc.Elements = append(doc.Elements, exportNode(tree, c))
	}
	return doc
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(doc), "encode json tree document")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, "encode yaml tree document")
		}
		return errors.Wrap(enc.Close(), "encode yaml tree document")
	default:
		return errors.Newf("unsupported format %d", format)
	}
}

func exportNode(tree *codedom.Tree, el codedom.Element) *Node {
	n := &Node{
		Kind:   el.ElementKind().String(),
		Name:   el.Name(),
		Doc:    exportDoc(el.Doc()),
		Usings: exportUsings(tree, el.ID()),
	}
	path := func(id codedom.ID) string {
		if !id.Valid() {
			return ""
		}
		return tree.Locator(id)
	}

	switch e := el.(type) {
	case *codedom.Interface:
		n.InterfaceKind = nameOf(interfaceKinds, e.Kind)
		for _, ref := range e.Implements {
			n.Implements = append(n.Implements, exportType(tree, ref))
		}
		n.Discriminator = exportDiscriminator(tree, e.Discriminator)
	case *codedom.Class:
		n.ErrorDefinition = e.IsErrorDefinition
		n.AssociatedInterface = path(e.AssociatedInterface)
		n.Discriminator = exportDiscriminator(tree, e.Discriminator)
	case *codedom.Function:
		n.Method = nameOf(methodKinds, e.Method())
		n.OriginalParent = path(e.OriginalParent)
		if e.ReturnType != (codedom.TypeRef{}) {
			n.Returns = exportType(tree, e.ReturnType)
		}
		switch body := e.Body.(type) {
		case *codedom.FactoryBody:
			n.Model = path(body.Model)
		case *codedom.ClientConstructorBody:
			n.SerializerModules = body.SerializerModules
			n.DeserializerModules = body.DeserializerModules
			n.BaseURL = body.BaseURL
		}
	case *codedom.Property:
		n.Type = exportType(tree, e.Type)
		if e.Kind != codedom.PropertyCustom {
			n.PropertyKind = nameOf(propertyKinds, e.Kind)
		}
		n.WireName = e.WireName
		n.InBase = e.ExistsInBaseType
		n.ReadOnly = e.ReadOnly
		n.PrimaryErrorMessage = e.PrimaryErrorMessage
	case *codedom.Parameter:
		n.Type = exportType(tree, e.Type)
		if e.Kind != codedom.ParameterCustom {
			n.ParameterKind = nameOf(parameterKinds, e.Kind)
		}
		n.Optional = e.Optional
		n.DefaultValue = e.DefaultValue
	case *codedom.Enum:
		n.Flags = e.Flags
		n.Object = path(e.Object)
	case *codedom.EnumOption:
		n.WireName = e.WireName
	case *codedom.Constant:
		n.ConstantKind = nameOf(constantKinds, e.Kind)
		n.Origin = path(e.Origin)
		n.Value = e.Value
	}

	for c := range tree.Children(el.ID()) {
		n.Children = append(n.Children, exportNode(tree, c))
	}
	return n
}

func exportType(tree *codedom.Tree, ref codedom.TypeRef) *TypeDoc {
	d := &TypeDoc{
		Name:       ref.Name,
		Collection: nameOf(collectionKinds, ref.Collection),
		Nullable:   ref.Nullable,
	}
	if ref.Definition.Valid() {
		d.Ref = tree.Locator(ref.Definition)
	}
	return d
}

func exportDiscriminator(tree *codedom.Tree, info codedom.DiscriminatorInformation) *DiscriminatorDoc {
	if info.PropertyName == "" && len(info.Mappings) == 0 {
		return nil
	}
	d := &DiscriminatorDoc{Property: info.PropertyName}
	for _, m := range info.Mappings {
		d.Mappings = append(d.Mappings, &MappingDoc{Value: m.Value, Type: exportType(tree, m.Type)})
	}
	return d
}

func exportDoc(d codedom.Documentation) *DocDoc {
	if d.IsZero() {
		return nil
	}
	return &DocDoc{Summary: d.Summary, Body: d.Body, Deprecated: d.Deprecated}
}

func exportUsings(tree *codedom.Tree, id codedom.ID) []*UsingDoc {
	var out []*UsingDoc
	for _, u := range tree.Usings(id) {
		d := &UsingDoc{
			Name:     u.Name,
			From:     u.From,
			Alias:    u.Alias,
			External: u.IsExternal,
			TypeOnly: u.IsTypeOnly,
		}
		if u.Declaration != (codedom.TypeRef{}) {
			d.Declaration = exportType(tree, u.Declaration)
		}
		out = append(out, d)
	}
	return out
}
