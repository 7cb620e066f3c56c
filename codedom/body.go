package codedom

// MethodKind is the semantic kind of a function.
type MethodKind int

const (
	MethodCustom MethodKind = iota
	MethodSerializer
	MethodDeserializer
	MethodFactory
	MethodClientConstructor
	MethodSetter
	MethodGetter
	MethodRequestExecutor
)

// String returns the string representation of the method kind.
func (k MethodKind) String() string {
	switch k {
	case MethodCustom:
		return "Custom"
	case MethodSerializer:
		return "Serializer"
	case MethodDeserializer:
		return "Deserializer"
	case MethodFactory:
		return "Factory"
	case MethodClientConstructor:
		return "ClientConstructor"
	case MethodSetter:
		return "Setter"
	case MethodGetter:
		return "Getter"
	case MethodRequestExecutor:
		return "RequestExecutor"
	default:
		return "Unknown"
	}
}

// Body is the closed set of function payloads. Emitters switch over the
// concrete types; a payload without an emission rule is reported as an
// unsupported construct.
type Body interface {
	Method() MethodKind
	sealedBody()
}

// SerializerBody writes a model. The model is the first parameter typed
// as an interface or class.
type SerializerBody struct{}

// DeserializerBody builds the field table of a model. The model is the
// first parameter.
type DeserializerBody struct{}

// FactoryBody selects the deserializer for a payload.
type FactoryBody struct {
	// Model is the interface or class whose instances the factory builds.
	Model ID
}

// ClientConstructorBody creates the root request builder of an API client.
type ClientConstructorBody struct {
	SerializerModules   []string
	DeserializerModules []string

	// BaseURL is applied when the adapter has none configured. Empty
	// disables the defaulting.
	BaseURL string
}

// OtherBody carries methods that have no free-function emission rule
// (setters, request executors and the like).
type OtherBody struct {
	Kind MethodKind
}

func (*SerializerBody) Method() MethodKind        { return MethodSerializer }
func (*DeserializerBody) Method() MethodKind      { return MethodDeserializer }
func (*FactoryBody) Method() MethodKind           { return MethodFactory }
func (*ClientConstructorBody) Method() MethodKind { return MethodClientConstructor }
func (b *OtherBody) Method() MethodKind           { return b.Kind }

func (*SerializerBody) sealedBody()        {}
func (*DeserializerBody) sealedBody()      {}
func (*FactoryBody) sealedBody()           {}
func (*ClientConstructorBody) sealedBody() {}
func (*OtherBody) sealedBody()             {}
