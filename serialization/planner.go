// Package serialization decides which runtime read and write operation
// applies to a property and which generated functions those operations
// need.
package serialization

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/broady/clientgen/codedom"
)

// Convention spells types in the target language. It is supplied by the
// target and consulted, never owned, by the planner.
type Convention interface {
	// TypeString returns the spelling of ref as seen from context, using
	// import aliases where the context file declares them. Collection
	// information is not included.
	TypeString(ref codedom.TypeRef, context codedom.ID) string

	// TranslateType maps a type to its canonical target spelling.
	TranslateType(ref codedom.TypeRef) string

	// StreamTypeName returns the translated name of the byte stream type.
	StreamTypeName() string
}

// Operation is a family of runtime read/write calls.
type Operation int

const (
	OpEnum Operation = iota + 1
	OpCollectionOfEnum
	OpByteArray
	OpCollectionOfPrimitive
	OpCollectionOfObject
	OpPrimitive
	OpObject
	OpAdditionalData
)

// String returns the string representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpEnum:
		return "Enum"
	case OpCollectionOfEnum:
		return "CollectionOfEnum"
	case OpByteArray:
		return "ByteArray"
	case OpCollectionOfPrimitive:
		return "CollectionOfPrimitive"
	case OpCollectionOfObject:
		return "CollectionOfObject"
	case OpPrimitive:
		return "Primitive"
	case OpObject:
		return "Object"
	case OpAdditionalData:
		return "AdditionalData"
	default:
		return "Unknown"
	}
}

type operationSpec struct {
	write string
	read  string

	// needsFactory means the read call takes the element's factory.
	needsFactory bool

	// needsSerializer means the write call takes the element's serializer.
	needsSerializer bool
}

// operations is the policy table. Primitive names are templates filled
// with the capitalized primitive.
var operations = map[Operation]operationSpec{
	OpEnum:                  {write: "writeEnumValue", read: "getEnumValue"},
	OpCollectionOfEnum:      {write: "writeEnumValue", read: "getCollectionOfEnumValues"},
	OpByteArray:             {write: "writeByteArrayValue", read: "getByteArrayValue"},
	OpCollectionOfPrimitive: {write: "writeCollectionOfPrimitiveValues", read: "getCollectionOfPrimitiveValues"},
	OpCollectionOfObject:    {write: "writeCollectionOfObjectValues", read: "getCollectionOfObjectValues", needsFactory: true, needsSerializer: true},
	OpPrimitive:             {write: "write%sValue", read: "get%sValue"},
	OpObject:                {write: "writeObjectValue", read: "getObjectValue", needsFactory: true, needsSerializer: true},
	OpAdditionalData:        {write: "writeAdditionalData"},
}

// NeedsFactory reports whether reading with op requires a factory.
func (op Operation) NeedsFactory() bool { return operations[op].needsFactory }

// NeedsSerializer reports whether writing with op requires a serializer.
func (op Operation) NeedsSerializer() bool { return operations[op].needsSerializer }

// primitives are the translated names with dedicated read/write calls.
var primitives = []string{"string", "boolean", "number", "Guid", "Date", "DateOnly", "TimeOnly", "Duration"}

// IsPrimitive reports whether a translated type name has dedicated
// read/write calls.
func IsPrimitive(translated string) bool {
	return slices.Contains(primitives, translated)
}

// Plan is the decision for one property or type.
type Plan struct {
	Operation Operation

	// Method is the runtime call, for example writeStringValue.
	Method string

	// TypeArgument is the generic argument of the call, if any.
	TypeArgument string

	// Primitive is the translated primitive of OpPrimitive and
	// OpCollectionOfPrimitive plans.
	Primitive string

	// Definition is the enum or model the plan works on.
	Definition codedom.ID

	// Bitset is set for writes of a single flags enum value.
	Bitset bool

	// Spread is set for writes of a collection of enum values.
	Spread bool

	EnumObject     codedom.ID
	EnumObjectName string

	Factory     codedom.ID
	FactoryName string

	Serializer     codedom.ID
	SerializerName string
}

// Planner chooses plans. It only reads the tree and keeps no state across
// calls.
type Planner struct {
	tree *codedom.Tree
	conv Convention
}

// NewPlanner returns a planner over tree using conv to spell types.
func NewPlanner(tree *codedom.Tree, conv Convention) *Planner {
	return &Planner{tree: tree, conv: conv}
}

// Serialization returns the write plan of prop as seen from context, the
// function being emitted.
func (p *Planner) Serialization(prop *codedom.Property, context codedom.ID) (Plan, error) {
	if prop.Kind == codedom.PropertyAdditionalData {
		return Plan{Operation: OpAdditionalData, Method: operations[OpAdditionalData].write}, nil
	}
	return p.plan(prop.Type, context, prop.ID(), true)
}

// Deserialization returns the read plan of prop as seen from context.
func (p *Planner) Deserialization(prop *codedom.Property, context codedom.ID) (Plan, error) {
	if prop.Kind == codedom.PropertyAdditionalData {
		return Plan{}, p.tree.Unsupportedf(prop.ID(), "additional data is not read through a field entry")
	}
	return p.plan(prop.Type, context, prop.ID(), false)
}

// DeserializationOf returns the read plan of a type reference.
func (p *Planner) DeserializationOf(ref codedom.TypeRef, context codedom.ID) (Plan, error) {
	return p.plan(ref, context, context, false)
}

// Classify evaluates the decision table for ref. The first matching row
// wins: enum, byte stream, collection, primitive, object.
func (p *Planner) Classify(ref codedom.TypeRef, at codedom.ID) (Operation, error) {
	if ref.Definition.Valid() && p.tree.Element(ref.Definition) == nil {
		return 0, p.tree.Structuralf(at, "type %q references unknown element %d", ref.Name, ref.Definition)
	}
	if _, ok := codedom.Get[*codedom.Enum](p.tree, ref.Definition); ok {
		if _, ok := p.tree.EnumLookup(ref.Definition); !ok {
			// Without a lookup object the values travel as plain strings.
			if ref.IsCollection() {
				return OpCollectionOfPrimitive, nil
			}
			return OpPrimitive, nil
		}
		e, _ := codedom.Get[*codedom.Enum](p.tree, ref.Definition)
		if e.Flags || ref.IsCollection() {
			return OpCollectionOfEnum, nil
		}
		return OpEnum, nil
	}

	translated := p.conv.TranslateType(ref.Elem())
	if strings.EqualFold(translated, p.conv.StreamTypeName()) {
		return OpByteArray, nil
	}
	if ref.IsCollection() {
		if ref.IsPrimitive() {
			return OpCollectionOfPrimitive, nil
		}
		return OpCollectionOfObject, nil
	}
	if IsPrimitive(translated) {
		return OpPrimitive, nil
	}
	return OpObject, nil
}

func (p *Planner) plan(ref codedom.TypeRef, context, at codedom.ID, write bool) (Plan, error) {
	op, err := p.Classify(ref, at)
	if err != nil {
		return Plan{}, err
	}
	policy := operations[op]
	plan := Plan{Operation: op, Definition: ref.Definition, Method: policy.read}
	if write {
		plan.Method = policy.write
	}

	switch op {
	case OpEnum, OpCollectionOfEnum:
		e, _ := codedom.Get[*codedom.Enum](p.tree, ref.Definition)
		obj, _ := p.tree.EnumLookup(ref.Definition)
		plan.TypeArgument = p.conv.TypeString(ref.Elem(), context)
		plan.EnumObject = obj.ID()
		plan.EnumObjectName = p.conv.TypeString(p.tree.Ref(obj.ID()), context)
		if write {
			plan.Bitset = e.Flags && !ref.IsCollection()
			plan.Spread = ref.IsCollection()
		}
	case OpCollectionOfPrimitive:
		plan.Primitive = p.primitive(ref)
		plan.TypeArgument = plan.Primitive
	case OpPrimitive:
		plan.Primitive = p.primitive(ref)
		plan.Method = fmt.Sprintf(plan.Method, upperFirst(plan.Primitive))
	case OpCollectionOfObject, OpObject:
		if !p.isModel(ref.Definition) {
			return Plan{}, p.tree.Structuralf(at, "type %q is neither a primitive nor a model", ref.Name)
		}
		plan.TypeArgument = upperFirst(p.conv.TypeString(ref.Elem(), context))
		if !write && policy.needsFactory {
			plan.Factory, plan.FactoryName, err = p.function(codedom.RoleFactory, ref, context, at)
		}
		if write && policy.needsSerializer {
			plan.Serializer, plan.SerializerName, err = p.function(codedom.RoleSerializer, ref, context, at)
		}
		if err != nil {
			return Plan{}, err
		}
	}
	return plan, nil
}

func (p *Planner) primitive(ref codedom.TypeRef) string {
	if _, ok := codedom.Get[*codedom.Enum](p.tree, ref.Definition); ok {
		return "string"
	}
	return p.conv.TranslateType(ref.Elem())
}

func (p *Planner) isModel(id codedom.ID) bool {
	switch p.tree.Element(id).(type) {
	case *codedom.Interface, *codedom.Class:
		return true
	}
	return false
}

// function resolves the indexed function playing role for the element
// type of ref and spells its name from context.
func (p *Planner) function(role codedom.Role, ref codedom.TypeRef, context, at codedom.ID) (codedom.ID, string, error) {
	fn, ok := p.tree.IndexedFunction(role, ref.Definition)
	if !ok {
		return codedom.NoID, "", p.tree.Structuralf(at, "no %s reachable for %q", role, p.tree.Path(ref.Definition))
	}
	return fn, p.conv.TypeString(p.tree.Ref(fn), context), nil
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
