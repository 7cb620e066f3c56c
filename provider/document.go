// Package provider reads and writes tree documents: the serialized element
// tree handed over by the refinement stage. Documents are JSON or YAML and
// reference declarations by element path, for example
// "/api/models/index/Animal".
package provider

import "github.com/broady/clientgen/codedom"

// FormatVersion is the document format version written by Export.
const FormatVersion = "1.0.0"

// supportedVersions is the range of document versions Load accepts.
const supportedVersions = "^1.0"

// Document is the root of a tree document.
type Document struct {
	Version  string      `json:"version" yaml:"version" validate:"required"`
	Root     string      `json:"root" yaml:"root" validate:"required"`
	Usings   []*UsingDoc `json:"usings,omitempty" yaml:"usings,omitempty" validate:"dive"`
	Elements []*Node     `json:"elements" yaml:"elements" validate:"dive"`
}

// Node is one element. Kind selects which of the optional fields apply.
type Node struct {
	Kind     string      `json:"kind" yaml:"kind" validate:"required,oneof=namespace file interface class function property parameter enum option constant"`
	Name     string      `json:"name" yaml:"name" validate:"required"`
	Doc      *DocDoc     `json:"doc,omitempty" yaml:"doc,omitempty"`
	Usings   []*UsingDoc `json:"usings,omitempty" yaml:"usings,omitempty" validate:"dive"`
	Children []*Node     `json:"children,omitempty" yaml:"children,omitempty" validate:"dive"`

	// Interfaces.
	InterfaceKind string            `json:"interfaceKind,omitempty" yaml:"interfaceKind,omitempty" validate:"omitempty,oneof=model requestBuilder queryParameters requestConfiguration"`
	Implements    []*TypeDoc        `json:"implements,omitempty" yaml:"implements,omitempty" validate:"dive"`
	Discriminator *DiscriminatorDoc `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`

	// Classes.
	ErrorDefinition     bool   `json:"errorDefinition,omitempty" yaml:"errorDefinition,omitempty"`
	AssociatedInterface string `json:"associatedInterface,omitempty" yaml:"associatedInterface,omitempty"`

	// Properties and parameters.
	Type                *TypeDoc `json:"type,omitempty" yaml:"type,omitempty"`
	PropertyKind        string   `json:"propertyKind,omitempty" yaml:"propertyKind,omitempty" validate:"omitempty,oneof=custom additionalData backingStore queryParameter pathParameter urlTemplate"`
	ParameterKind       string   `json:"parameterKind,omitempty" yaml:"parameterKind,omitempty" validate:"omitempty,oneof=custom requestAdapter pathParameters requestBody requestConfiguration parseNode serializationWriter backingStore"`
	WireName            string   `json:"wireName,omitempty" yaml:"wireName,omitempty"`
	InBase              bool     `json:"inBase,omitempty" yaml:"inBase,omitempty"`
	ReadOnly            bool     `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	PrimaryErrorMessage bool     `json:"primaryErrorMessage,omitempty" yaml:"primaryErrorMessage,omitempty"`
	Optional            bool     `json:"optional,omitempty" yaml:"optional,omitempty"`
	DefaultValue        string   `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`

	// Functions.
	Method              string   `json:"method,omitempty" yaml:"method,omitempty" validate:"omitempty,oneof=custom serializer deserializer factory clientConstructor setter getter requestExecutor"`
	Returns             *TypeDoc `json:"returns,omitempty" yaml:"returns,omitempty"`
	Model               string   `json:"model,omitempty" yaml:"model,omitempty"`
	OriginalParent      string   `json:"originalParent,omitempty" yaml:"originalParent,omitempty"`
	SerializerModules   []string `json:"serializerModules,omitempty" yaml:"serializerModules,omitempty"`
	DeserializerModules []string `json:"deserializerModules,omitempty" yaml:"deserializerModules,omitempty"`
	BaseURL             string   `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty" validate:"omitempty,url"`

	// Enums.
	Flags  bool   `json:"flags,omitempty" yaml:"flags,omitempty"`
	Object string `json:"object,omitempty" yaml:"object,omitempty"`

	// Constants.
	ConstantKind string `json:"constantKind,omitempty" yaml:"constantKind,omitempty" validate:"omitempty,oneof=queryParametersMapper enumObject uriTemplate navigationMetadata requestsMetadata"`
	Origin       string `json:"origin,omitempty" yaml:"origin,omitempty"`
	Value        string `json:"value,omitempty" yaml:"value,omitempty"`
}

// TypeDoc is a type reference. Ref locates the declaring element, either by
// path or as kind:path when siblings of different kinds share its name;
// primitives have none.
type TypeDoc struct {
	Name       string `json:"name" yaml:"name" validate:"required"`
	Ref        string `json:"ref,omitempty" yaml:"ref,omitempty" validate:"omitempty,contains=/"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty" validate:"omitempty,oneof=array complex"`
	Nullable   bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
}

// DocDoc is element documentation.
type DocDoc struct {
	Summary    string  `json:"summary,omitempty" yaml:"summary,omitempty"`
	Body       string  `json:"body,omitempty" yaml:"body,omitempty"`
	Deprecated *string `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// DiscriminatorDoc describes a polymorphic payload.
type DiscriminatorDoc struct {
	Property string        `json:"property" yaml:"property" validate:"required"`
	Mappings []*MappingDoc `json:"mappings" yaml:"mappings" validate:"dive"`
}

// MappingDoc maps one wire value to a type.
type MappingDoc struct {
	Value string   `json:"value" yaml:"value" validate:"required"`
	Type  *TypeDoc `json:"type" yaml:"type" validate:"required"`
}

// UsingDoc is an import declaration.
type UsingDoc struct {
	Name        string   `json:"name" yaml:"name" validate:"required"`
	From        string   `json:"from,omitempty" yaml:"from,omitempty"`
	Declaration *TypeDoc `json:"declaration,omitempty" yaml:"declaration,omitempty"`
	Alias       string   `json:"alias,omitempty" yaml:"alias,omitempty"`
	External    bool     `json:"external,omitempty" yaml:"external,omitempty"`
	TypeOnly    bool     `json:"typeOnly,omitempty" yaml:"typeOnly,omitempty"`
}

var interfaceKinds = map[string]codedom.InterfaceKind{
	"model":                codedom.InterfaceModel,
	"requestBuilder":       codedom.InterfaceRequestBuilder,
	"queryParameters":      codedom.InterfaceQueryParameters,
	"requestConfiguration": codedom.InterfaceRequestConfiguration,
}

var propertyKinds = map[string]codedom.PropertyKind{
	"custom":         codedom.PropertyCustom,
	"additionalData": codedom.PropertyAdditionalData,
	"backingStore":   codedom.PropertyBackingStore,
	"queryParameter": codedom.PropertyQueryParameter,
	"pathParameter":  codedom.PropertyPathParameter,
	"urlTemplate":    codedom.PropertyURLTemplate,
}

var parameterKinds = map[string]codedom.ParameterKind{
	"custom":               codedom.ParameterCustom,
	"requestAdapter":       codedom.ParameterRequestAdapter,
	"pathParameters":       codedom.ParameterPathParameters,
	"requestBody":          codedom.ParameterRequestBody,
	"requestConfiguration": codedom.ParameterRequestConfiguration,
	"parseNode":            codedom.ParameterParseNode,
	"serializationWriter":  codedom.ParameterSerializationWriter,
	"backingStore":         codedom.ParameterBackingStore,
}

var methodKinds = map[string]codedom.MethodKind{
	"custom":            codedom.MethodCustom,
	"serializer":        codedom.MethodSerializer,
	"deserializer":      codedom.MethodDeserializer,
	"factory":           codedom.MethodFactory,
	"clientConstructor": codedom.MethodClientConstructor,
	"setter":            codedom.MethodSetter,
	"getter":            codedom.MethodGetter,
	"requestExecutor":   codedom.MethodRequestExecutor,
}

var constantKinds = map[string]codedom.ConstantKind{
	"queryParametersMapper": codedom.ConstantQueryParametersMapper,
	"enumObject":            codedom.ConstantEnumObject,
	"uriTemplate":           codedom.ConstantURITemplate,
	"navigationMetadata":    codedom.ConstantNavigationMetadata,
	"requestsMetadata":      codedom.ConstantRequestsMetadata,
}

var collectionKinds = map[string]codedom.CollectionKind{
	"":        codedom.CollectionNone,
	"array":   codedom.CollectionArray,
	"complex": codedom.CollectionComplex,
}

// nameOf returns the document spelling of v in m.
func nameOf[K comparable](m map[string]K, v K) string {
	for name, k := range m {
		if k == v {
			return name
		}
	}
	return ""
}
