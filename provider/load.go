package provider

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/internal/validation"
)

// Format is the encoding of a tree document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, errors.WithHint(errors.Newf("unknown tree document extension %q", filepath.Ext(path)),
			"use .json, .yaml or .yml")
	}
}

// Decode reads a document without building a tree.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode json tree document")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode yaml tree document")
		}
	default:
		return nil, errors.Newf("unsupported format %d", format)
	}
	return &doc, nil
}

// Load decodes a document and builds its tree.
func Load(r io.Reader, format Format) (*codedom.Tree, error) {
	doc, err := Decode(r, format)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// LoadFile loads the document at path. The format follows the extension.
func LoadFile(path string) (*codedom.Tree, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read tree document")
	}
	tree, err := Load(bytes.NewReader(data), format)
	return tree, errors.Wrapf(err, "%s", path)
}

// Build validates doc and turns it into an indexed tree. Declarations are
// created first and references resolved afterwards, so a document may
// reference elements declared later in it.
func Build(doc *Document) (*codedom.Tree, error) {
	if err := validation.Struct(doc); err != nil {
		return nil, errors.Wrap(err, "invalid tree document")
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	b := &builder{tree: codedom.NewTree(doc.Root)}
	b.usings(b.tree.Root(), doc.Usings)
	for _, n := range doc.Elements {
		if err := b.add(b.tree.Root(), n); err != nil {
			return nil, err
		}
	}
	for _, resolve := range b.pending {
		if err := resolve(); err != nil {
			return nil, err
		}
	}

	if err := codedom.IndexModelFunctions(b.tree); err != nil {
		return nil, errors.Wrap(err, "index model functions")
	}
	if errs := b.tree.Validate(); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "invalid tree")
	}
	return b.tree, nil
}

func checkVersion(v string) error {
	version, err := semver.NewVersion(v)
	if err != nil {
		return errors.Wrapf(err, "invalid tree document version %q", v)
	}
	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return errors.Wrap(err, "version constraint")
	}
	if !constraint.Check(version) {
		return errors.WithHintf(errors.Newf("unsupported tree document version %s", v),
			"this build reads documents matching %s", supportedVersions)
	}
	return nil
}

type builder struct {
	tree    *codedom.Tree
	pending []func() error
}

func (b *builder) later(fn func() error) {
	b.pending = append(b.pending, fn)
}

// ref resolves an element locator.
func (b *builder) ref(at codedom.ID, locator string) (codedom.ID, error) {
	if locator == "" {
		return codedom.NoID, nil
	}
	id, err := b.tree.Resolve(locator)
	if codedom.ErrorCode(err) == codedom.CodeUnknownElement {
		return codedom.NoID, b.tree.Structuralf(at, "unresolved reference %q", locator)
	}
	if err != nil {
		return codedom.NoID, errors.Wrapf(err, "reference from %s", b.tree.Path(at))
	}
	return id, nil
}

func (b *builder) typeRef(at codedom.ID, d *TypeDoc) (codedom.TypeRef, error) {
	if d == nil {
		return codedom.TypeRef{}, nil
	}
	def, err := b.ref(at, d.Ref)
	if err != nil {
		return codedom.TypeRef{}, err
	}
	return codedom.TypeRef{
		Name:       d.Name,
		Definition: def,
		Collection: collectionKinds[d.Collection],
		Nullable:   d.Nullable,
	}, nil
}

func (b *builder) discriminator(at codedom.ID, d *DiscriminatorDoc) (codedom.DiscriminatorInformation, error) {
	if d == nil {
		return codedom.DiscriminatorInformation{}, nil
	}
	info := codedom.DiscriminatorInformation{PropertyName: d.Property}
	for _, m := range d.Mappings {
		ref, err := b.typeRef(at, m.Type)
		if err != nil {
			return info, err
		}
		info.Mappings = append(info.Mappings, codedom.DiscriminatorMapping{Value: m.Value, Type: ref})
	}
	return info, nil
}

func (b *builder) usings(id codedom.ID, docs []*UsingDoc) {
	if len(docs) == 0 {
		return
	}
	b.later(func() error {
		usings := make([]codedom.Using, 0, len(docs))
		for _, u := range docs {
			decl, err := b.typeRef(id, u.Declaration)
			if err != nil {
				return err
			}
			usings = append(usings, codedom.Using{
				Name:        u.Name,
				From:        u.From,
				Declaration: decl,
				Alias:       u.Alias,
				IsExternal:  u.External,
				IsTypeOnly:  u.TypeOnly,
			})
		}
		return b.tree.AddUsing(id, usings...)
	})
}

func documentation(d *DocDoc) codedom.Documentation {
	if d == nil {
		return codedom.Documentation{}
	}
	return codedom.Documentation{Summary: d.Summary, Body: d.Body, Deprecated: d.Deprecated}
}

func (b *builder) add(parent codedom.ID, n *Node) error {
	base := codedom.Base{Documentation: documentation(n.Doc)}
	var (
		el      codedom.Element
		resolve func(id codedom.ID) error
	)
	switch n.Kind {
	case "namespace":
		el = &codedom.Namespace{Base: base}
	case "file":
		el = &codedom.File{Base: base}
	case "interface":
		iface := &codedom.Interface{Base: base, Kind: interfaceKinds[n.InterfaceKind]}
		el = iface
		resolve = func(id codedom.ID) (err error) {
			for _, d := range n.Implements {
				ref, err := b.typeRef(id, d)
				if err != nil {
					return err
				}
				iface.Implements = append(iface.Implements, ref)
			}
			iface.Discriminator, err = b.discriminator(id, n.Discriminator)
			return err
		}
	case "class":
		class := &codedom.Class{Base: base, IsErrorDefinition: n.ErrorDefinition}
		el = class
		resolve = func(id codedom.ID) (err error) {
			if class.AssociatedInterface, err = b.ref(id, n.AssociatedInterface); err != nil {
				return err
			}
			class.Discriminator, err = b.discriminator(id, n.Discriminator)
			return err
		}
	case "function":
		fn := &codedom.Function{Base: base}
		factory := &codedom.FactoryBody{}
		switch method := methodKinds[n.Method]; method {
		case codedom.MethodSerializer:
			fn.Body = &codedom.SerializerBody{}
		case codedom.MethodDeserializer:
			fn.Body = &codedom.DeserializerBody{}
		case codedom.MethodFactory:
			fn.Body = factory
		case codedom.MethodClientConstructor:
			fn.Body = &codedom.ClientConstructorBody{
				SerializerModules:   n.SerializerModules,
				DeserializerModules: n.DeserializerModules,
				BaseURL:             n.BaseURL,
			}
		default:
			fn.Body = &codedom.OtherBody{Kind: method}
		}
		el = fn
		resolve = func(id codedom.ID) (err error) {
			if fn.ReturnType, err = b.typeRef(id, n.Returns); err != nil {
				return err
			}
			if fn.OriginalParent, err = b.ref(id, n.OriginalParent); err != nil {
				return err
			}
			factory.Model, err = b.ref(id, n.Model)
			return err
		}
	case "property":
		if n.Type == nil {
			return errors.Newf("property %q has no type", n.Name)
		}
		prop := &codedom.Property{
			Base:                base,
			Kind:                propertyKinds[n.PropertyKind],
			WireName:            n.WireName,
			ExistsInBaseType:    n.InBase,
			ReadOnly:            n.ReadOnly,
			PrimaryErrorMessage: n.PrimaryErrorMessage,
		}
		el = prop
		resolve = func(id codedom.ID) (err error) {
			prop.Type, err = b.typeRef(id, n.Type)
			return err
		}
	case "parameter":
		if n.Type == nil {
			return errors.Newf("parameter %q has no type", n.Name)
		}
		param := &codedom.Parameter{
			Base:         base,
			Kind:         parameterKinds[n.ParameterKind],
			Optional:     n.Optional,
			DefaultValue: n.DefaultValue,
		}
		el = param
		resolve = func(id codedom.ID) (err error) {
			param.Type, err = b.typeRef(id, n.Type)
			return err
		}
	case "enum":
		enum := &codedom.Enum{Base: base, Flags: n.Flags}
		el = enum
		resolve = func(id codedom.ID) (err error) {
			enum.Object, err = b.ref(id, n.Object)
			return err
		}
	case "option":
		el = &codedom.EnumOption{Base: base, WireName: n.WireName}
	case "constant":
		c := &codedom.Constant{Base: base, Kind: constantKinds[n.ConstantKind], Value: n.Value}
		el = c
		resolve = func(id codedom.ID) (err error) {
			c.Origin, err = b.ref(id, n.Origin)
			return err
		}
	default:
		return errors.Newf("unknown element kind %q", n.Kind)
	}

	id, err := b.tree.Add(parent, n.Name, el)
	if err != nil {
		return err
	}
	if resolve != nil {
		b.later(func() error { return resolve(id) })
	}
	b.usings(id, n.Usings)
	for _, c := range n.Children {
		if err := b.add(id, c); err != nil {
			return err
		}
	}
	return nil
}
