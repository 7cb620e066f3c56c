// Package codedom is the language-neutral code model consumed by the emitters.
//
// A Tree is an arena of elements addressed by ID. Each element keeps the IDs
// of its children (ownership) and the ID of its parent (a non-owning back
// reference). Lookups, renames and the function index all operate over the
// arena; elements never point at each other directly.
package codedom

// ID addresses an element inside a Tree. The zero value is NoID.
type ID int32

// NoID means "no element".
const NoID ID = 0

// Valid reports whether id may address an element.
func (id ID) Valid() bool { return id > NoID }

// Kind identifies the category of an element.
type Kind int

const (
	KindAny Kind = iota // Matches every kind in lookups
	KindNamespace
	KindFile
	KindInterface
	KindClass
	KindFunction
	KindProperty
	KindParameter
	KindEnum
	KindEnumOption
	KindConstant
)

// String returns the string representation of the element kind.
func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindNamespace:
		return "namespace"
	case KindFile:
		return "file"
	case KindInterface:
		return "interface"
	case KindClass:
		return "class"
	case KindFunction:
		return "function"
	case KindProperty:
		return "property"
	case KindParameter:
		return "parameter"
	case KindEnum:
		return "enum"
	case KindEnumOption:
		return "option"
	case KindConstant:
		return "constant"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String for concrete kinds.
func ParseKind(s string) (Kind, bool) {
	for k := KindNamespace; k <= KindConstant; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return KindAny, false
}

// Documentation holds the description attached to an element.
type Documentation struct {
	Summary    string
	Body       string
	Deprecated *string // nil when not deprecated
}

// IsZero reports whether d has no content.
func (d Documentation) IsZero() bool {
	return d.Summary == "" && d.Body == "" && d.Deprecated == nil
}

// Element is implemented by every node of the tree.
type Element interface {
	// ID returns the handle assigned when the element was added to a tree.
	ID() ID

	// Name returns the element name, unique among same-kind siblings.
	Name() string

	// Parent returns the handle of the owning element, or NoID for the root.
	Parent() ID

	// ElementKind returns the kind for type switching.
	ElementKind() Kind

	// Doc returns associated documentation.
	Doc() Documentation

	base() *Base
}

type childKey struct {
	kind Kind
	name string
}

// Base carries the state shared by all elements. It is embedded by every
// concrete element type and can only be populated by Tree.
type Base struct {
	Documentation Documentation

	id       ID
	name     string
	parent   ID
	children []ID
	byName   map[childKey]ID
	usings   []Using
}

func (b *Base) ID() ID             { return b.id }
func (b *Base) Name() string       { return b.name }
func (b *Base) Parent() ID         { return b.parent }
func (b *Base) Doc() Documentation { return b.Documentation }
func (b *Base) base() *Base        { return b }

// Namespace groups files and declarations.
type Namespace struct {
	Base
}

// File is a generated source file inside a namespace.
type File struct {
	Base
}

// InterfaceKind classifies what an interface describes.
type InterfaceKind int

const (
	InterfaceModel InterfaceKind = iota
	InterfaceRequestBuilder
	InterfaceQueryParameters
	InterfaceRequestConfiguration
)

// Interface is the public shape of a model or request builder.
type Interface struct {
	Base
	Kind          InterfaceKind
	Implements    []TypeRef
	Discriminator DiscriminatorInformation
}

// Class parallels an interface for targets that generate classes.
type Class struct {
	Base
	IsErrorDefinition   bool
	AssociatedInterface ID
	Discriminator       DiscriminatorInformation
}

// PropertyKind classifies a property. Kinds are mutually exclusive.
type PropertyKind int

const (
	PropertyCustom PropertyKind = iota
	PropertyAdditionalData
	PropertyBackingStore
	PropertyQueryParameter
	PropertyPathParameter
	PropertyURLTemplate
)

// Property is a typed member of an interface or class.
type Property struct {
	Base
	Type             TypeRef
	Kind             PropertyKind
	WireName         string
	ExistsInBaseType bool
	ReadOnly         bool

	// PrimaryErrorMessage marks the property holding the human readable
	// message of an error payload.
	PrimaryErrorMessage bool
}

// SerializationName returns the wire name, falling back to the element name.
func (p *Property) SerializationName() string {
	if p.WireName != "" {
		return p.WireName
	}
	return p.name
}

// ParameterKind classifies a function parameter.
type ParameterKind int

const (
	ParameterCustom ParameterKind = iota
	ParameterRequestAdapter
	ParameterPathParameters
	ParameterRequestBody
	ParameterRequestConfiguration
	ParameterParseNode
	ParameterSerializationWriter
	ParameterBackingStore
)

// Parameter is a function parameter. Parameters keep declaration order.
type Parameter struct {
	Base
	Type         TypeRef
	Kind         ParameterKind
	Optional     bool
	DefaultValue string
}

// Function is a free operation. Its Body selects the emission rule.
type Function struct {
	Base
	Body       Body
	ReturnType TypeRef

	// OriginalParent optionally links the class the function was
	// generated for.
	OriginalParent ID
}

// Method returns the semantic kind of the function.
func (f *Function) Method() MethodKind {
	if f.Body == nil {
		return MethodCustom
	}
	return f.Body.Method()
}

// Enum is an ordered set of options.
type Enum struct {
	Base
	Flags bool

	// Object links the EnumObject constant used for value lookups.
	Object ID
}

// EnumOption is a member of an enum.
type EnumOption struct {
	Base
	WireName string
}

// SerializationName returns the wire value, falling back to the element name.
func (o *EnumOption) SerializationName() string {
	if o.WireName != "" {
		return o.WireName
	}
	return o.name
}

// ConstantKind classifies a generated constant.
type ConstantKind int

const (
	ConstantQueryParametersMapper ConstantKind = iota
	ConstantEnumObject
	ConstantURITemplate
	ConstantNavigationMetadata
	ConstantRequestsMetadata
)

// String returns the string representation of the constant kind.
func (k ConstantKind) String() string {
	switch k {
	case ConstantQueryParametersMapper:
		return "QueryParametersMapper"
	case ConstantEnumObject:
		return "EnumObject"
	case ConstantURITemplate:
		return "UriTemplate"
	case ConstantNavigationMetadata:
		return "NavigationMetadata"
	case ConstantRequestsMetadata:
		return "RequestsMetadata"
	default:
		return "Unknown"
	}
}

// Constant is a generated literal artifact derived from exactly one element.
type Constant struct {
	Base
	Kind   ConstantKind
	Origin ID
	Value  string
}

func (*Namespace) ElementKind() Kind  { return KindNamespace }
func (*File) ElementKind() Kind       { return KindFile }
func (*Interface) ElementKind() Kind  { return KindInterface }
func (*Class) ElementKind() Kind      { return KindClass }
func (*Function) ElementKind() Kind   { return KindFunction }
func (*Property) ElementKind() Kind   { return KindProperty }
func (*Parameter) ElementKind() Kind  { return KindParameter }
func (*Enum) ElementKind() Kind       { return KindEnum }
func (*EnumOption) ElementKind() Kind { return KindEnumOption }
func (*Constant) ElementKind() Kind   { return KindConstant }

// allowedChildren lists which kinds each container kind may own.
var allowedChildren = map[Kind][]Kind{
	KindNamespace: {KindNamespace, KindFile, KindInterface, KindClass, KindFunction, KindEnum, KindConstant},
	KindFile:      {KindInterface, KindClass, KindFunction, KindEnum, KindConstant},
	KindInterface: {KindProperty},
	KindClass:     {KindProperty},
	KindFunction:  {KindParameter},
	KindEnum:      {KindEnumOption},
}

func canContain(parent, child Kind) bool {
	for _, k := range allowedChildren[parent] {
		if k == child {
			return true
		}
	}
	return false
}
