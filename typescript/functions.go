package typescript

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/codewriter"
	"github.com/broady/clientgen/discriminator"
	"github.com/broady/clientgen/serialization"
)

// backingStoreEnabledKey is the deserializer entry that is always set to
// true instead of being read from the payload.
const backingStoreEnabledKey = "backingStoreEnabled"

// factoryReturnType is the return type of every factory function.
const factoryReturnType = "((instance?: Parsable) => Record<string, (node: ParseNode) => void>)"

func (e *Emitter) emitFunction(w *codewriter.Writer, f *codedom.Function) error {
	returnType := factoryReturnType
	if f.Method() != codedom.MethodFactory {
		returnType = e.conv.typeExpr(f.ReturnType, f.ID())
	}

	switch f.Body.(type) {
	case *codedom.SerializerBody, *codedom.DeserializerBody, *codedom.FactoryBody, *codedom.ClientConstructorBody:
	default:
		return e.tree.Unsupportedf(f.ID(), "no emission rule for %s function %q", f.Method(), f.Name())
	}

	body := w.Scratch()
	body.IncreaseIndent()
	var err error
	switch b := f.Body.(type) {
	case *codedom.SerializerBody:
		err = e.writeSerializer(body, f)
	case *codedom.DeserializerBody:
		err = e.writeDeserializer(body, f)
	case *codedom.FactoryBody:
		err = e.writeFactory(body, f)
	case *codedom.ClientConstructorBody:
		err = e.writeClientConstructor(body, f, b)
	}
	if err != nil {
		return err
	}

	e.writeFunctionDoc(w, f, returnType)
	w.Linef("export function %s(%s) : %s {", f.Name(), e.parameters(f), returnType)
	w.Append(body)
	w.WriteLine("}")
	return nil
}

func (e *Emitter) writeFunctionDoc(w *codewriter.Writer, f *codedom.Function, returnType string) {
	var tags []string
	for p := range codedom.ChildrenOf[*codedom.Parameter](e.tree, f.ID()) {
		if d := p.Doc(); d.Summary != "" {
			tags = append(tags, fmt.Sprintf("@param %s %s", lowerFirst(p.Name()), d.Summary))
		}
	}
	doc := f.Doc()
	if doc.IsZero() && len(tags) == 0 {
		return
	}
	if returnType != "void" {
		tags = append(tags, fmt.Sprintf("@returns {%s}", returnType))
	}
	emitJSDoc(w, doc, tags...)
}

// parameters renders the parameter list. Parameters with a default value
// accept a partial model or undefined.
func (e *Emitter) parameters(f *codedom.Function) string {
	var parts []string
	for p := range codedom.ChildrenOf[*codedom.Parameter](e.tree, f.ID()) {
		name := lowerFirst(p.Name())
		typ := e.conv.typeExpr(p.Type, f.ID())
		switch {
		case p.DefaultValue != "":
			if e.isModel(p.Type.Definition) && !p.Type.IsCollection() {
				typ = "Partial<" + typ + ">"
			}
			parts = append(parts, fmt.Sprintf("%s: %s | undefined = %s", name, typ, p.DefaultValue))
		case p.Kind == codedom.ParameterParseNode:
			parts = append(parts, fmt.Sprintf("%s: %s | undefined", name, typ))
		case p.Optional:
			parts = append(parts, fmt.Sprintf("%s?: %s", name, typ))
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", name, typ))
		}
	}
	return strings.Join(parts, ", ")
}

func (e *Emitter) isModel(id codedom.ID) bool {
	switch e.tree.Element(id).(type) {
	case *codedom.Interface, *codedom.Class:
		return true
	}
	return false
}

// modelInterface returns the interface a serializer or deserializer works
// on together with the name of the parameter that carries it.
func (e *Emitter) modelInterface(f *codedom.Function) (*codedom.Interface, string, error) {
	param, err := e.tree.ModelParameter(f.ID())
	if err != nil {
		return nil, "", err
	}
	iface, ok := codedom.Get[*codedom.Interface](e.tree, param.Type.Definition)
	if !ok {
		return nil, "", e.tree.Structuralf(f.ID(), "model parameter %q of %q is not an interface", param.Name(), f.Name())
	}
	return iface, lowerFirst(param.Name()), nil
}

// functionName spells a function declared in the tree as seen from f.
func (e *Emitter) functionName(fn codedom.ID, f *codedom.Function) string {
	return e.conv.TypeString(e.tree.Ref(fn), f.ID())
}

func (e *Emitter) baseFunction(role codedom.Role, iface *codedom.Interface, f *codedom.Function) (string, bool, error) {
	base, ok := e.tree.BaseInterface(iface.ID())
	if !ok {
		return "", false, nil
	}
	fn, ok := e.tree.IndexedFunction(role, base.ID())
	if !ok {
		return "", false, e.tree.Structuralf(f.ID(), "no %s reachable for base %q", role, e.tree.Path(base.ID()))
	}
	return e.functionName(fn, f), true, nil
}

func (e *Emitter) writeDeserializer(w *codewriter.Writer, f *codedom.Function) error {
	iface, model, err := e.modelInterface(f)
	if err != nil {
		return err
	}
	w.StartBlock("return {")
	base, ok, err := e.baseFunction(codedom.RoleDeserializer, iface, f)
	if err != nil {
		return err
	}
	if ok {
		w.Linef("...%s(%s),", base, model)
	}

	messageKey, messageSuffix := e.primaryErrorMapping(f, model)
	for p := range codedom.ChildrenOf[*codedom.Property](e.tree, iface.ID()) {
		if p.ExistsInBaseType || (p.Kind != codedom.PropertyCustom && p.Kind != codedom.PropertyBackingStore) {
			continue
		}
		key := p.SerializationName()
		field := lowerFirst(p.Name())
		suffix := ""
		if messageKey != "" && field == messageKey {
			suffix = messageSuffix
		}
		if key == backingStoreEnabledKey {
			w.Linef("%q: n => { %s.%s = true;%s },", key, model, field, suffix)
			continue
		}
		plan, err := e.planner.Deserialization(p, f.ID())
		if err != nil {
			return err
		}
		w.Linef("%q: n => { %s.%s = n.%s;%s },", key, model, field, readExpression(plan), suffix)
	}
	w.CloseBlock("}")
	return nil
}

// readExpression renders the runtime call of a read plan.
func readExpression(plan serialization.Plan) string {
	switch plan.Operation {
	case serialization.OpEnum, serialization.OpCollectionOfEnum:
		return fmt.Sprintf("%s<%s>(%s)", plan.Method, plan.TypeArgument, plan.EnumObjectName)
	case serialization.OpCollectionOfPrimitive:
		return fmt.Sprintf("%s<%s>()", plan.Method, plan.TypeArgument)
	case serialization.OpCollectionOfObject, serialization.OpObject:
		return fmt.Sprintf("%s<%s>(%s)", plan.Method, plan.TypeArgument, plan.FactoryName)
	default:
		return plan.Method + "()"
	}
}

// primaryErrorMapping returns the field that leads to the primary error
// message of an error definition and the statement appended to its entry.
func (e *Emitter) primaryErrorMapping(f *codedom.Function, model string) (key, suffix string) {
	class, ok := codedom.Get[*codedom.Class](e.tree, f.OriginalParent)
	if !ok || !class.IsErrorDefinition || !class.AssociatedInterface.Valid() {
		return "", ""
	}
	path := e.primaryMessagePath(class.AssociatedInterface, nil)
	if len(path) == 0 {
		return "", ""
	}
	return path[0], fmt.Sprintf(" %s.message = %s.%s ?? \"\";", model, model, strings.Join(path, "?."))
}

// primaryMessagePath finds the property marked as primary error message,
// following object properties depth first.
func (e *Emitter) primaryMessagePath(model codedom.ID, seen []codedom.ID) []string {
	if slices.Contains(seen, model) {
		return nil
	}
	seen = append(seen, model)
	for p := range codedom.ChildrenOf[*codedom.Property](e.tree, model) {
		if p.PrimaryErrorMessage {
			return []string{lowerFirst(p.Name())}
		}
	}
	for p := range codedom.ChildrenOf[*codedom.Property](e.tree, model) {
		if p.Type.IsCollection() || !e.isModel(p.Type.Definition) {
			continue
		}
		if rest := e.primaryMessagePath(p.Type.Definition, seen); rest != nil {
			return append([]string{lowerFirst(p.Name())}, rest...)
		}
	}
	return nil
}

func (e *Emitter) writeSerializer(w *codewriter.Writer, f *codedom.Function) error {
	iface, model, err := e.modelInterface(f)
	if err != nil {
		return err
	}
	writer := ""
	for p := range codedom.ChildrenOf[*codedom.Parameter](e.tree, f.ID()) {
		if p.Kind == codedom.ParameterSerializationWriter {
			writer = lowerFirst(p.Name())
			break
		}
	}
	if writer == "" {
		return e.tree.Structuralf(f.ID(), "serializer %q has no serialization writer parameter", f.Name())
	}

	base, ok, err := e.baseFunction(codedom.RoleSerializer, iface, f)
	if err != nil {
		return err
	}
	if ok {
		w.Linef("%s(%s, %s);", base, writer, model)
	}

	var additionalData *codedom.Property
	for p := range codedom.ChildrenOf[*codedom.Property](e.tree, iface.ID()) {
		if p.Kind == codedom.PropertyAdditionalData && additionalData == nil {
			additionalData = p
		}
		if p.Kind != codedom.PropertyCustom || p.ExistsInBaseType || p.ReadOnly {
			continue
		}
		plan, err := e.planner.Serialization(p, f.ID())
		if err != nil {
			return err
		}
		writeProperty(w, writer, model+"."+lowerFirst(p.Name()), p.SerializationName(), plan)
	}
	if additionalData != nil {
		w.Linef("%s.writeAdditionalData(%s.%s);", writer, model, lowerFirst(additionalData.Name()))
	}
	return nil
}

func writeProperty(w *codewriter.Writer, writer, access, wire string, plan serialization.Plan) {
	switch plan.Operation {
	case serialization.OpObject, serialization.OpCollectionOfObject:
		w.Linef("%s.%s<%s>(%q, %s, %s);", writer, plan.Method, plan.TypeArgument, wire, access, plan.SerializerName)
	case serialization.OpEnum, serialization.OpCollectionOfEnum:
		typeArg := plan.TypeArgument
		if plan.Bitset {
			typeArg += "[]"
		}
		if plan.Spread {
			w.Linef("if(%s)", access)
			w.IncreaseIndent()
			w.Linef("%s.%s<%s>(%q, ...%s);", writer, plan.Method, typeArg, wire, access)
			w.DecreaseIndent()
			return
		}
		w.Linef("%s.%s<%s>(%q, %s);", writer, plan.Method, typeArg, wire, access)
	case serialization.OpCollectionOfPrimitive:
		w.Linef("%s.%s<%s>(%q, %s);", writer, plan.Method, plan.TypeArgument, wire, access)
	default:
		w.Linef("%s.%s(%q, %s);", writer, plan.Method, wire, access)
	}
}

func (e *Emitter) writeFactory(w *codewriter.Writer, f *codedom.Function) error {
	res, err := e.resolver.Resolve(f.ID())
	if err != nil {
		return err
	}
	if e.tree.Discriminator(res.Model, f.OriginalParent).ShouldWriteDiscriminatorForInheritedType() {
		e.writeDefensiveStatements(w, f)
	}
	if res.State == discriminator.StateResolve {
		w.WriteLines(
			fmt.Sprintf("const mappingValueNode = %s.getChildNode(%q);", lowerFirst(res.ParseNode.Name()), res.PropertyName),
			"if (mappingValueNode) {",
		)
		w.IncreaseIndent()
		w.WriteLines("const mappingValue = mappingValueNode.getStringValue();", "if (mappingValue) {")
		w.IncreaseIndent()
		w.StartBlock("switch (mappingValue) {")
		for _, c := range res.Cases {
			w.StartBlock(fmt.Sprintf("case %q:", c.Value))
			w.Linef("return %s;", e.functionName(c.Deserializer, f))
			w.DecreaseIndent()
		}
		w.CloseBlock("}")
		w.CloseBlock("}")
		w.CloseBlock("}")
	}
	w.Linef("return %s;", lowerFirst(e.functionName(res.Default, f)))
	return nil
}

// writeDefensiveStatements guards required parameters against undefined.
// Request adapters and path parameters are always excluded, request bodies
// only for request executors. Setters get no guards.
func (e *Emitter) writeDefensiveStatements(w *codewriter.Writer, f *codedom.Function) {
	if f.Method() == codedom.MethodSetter {
		return
	}
	executor := f.Method() == codedom.MethodRequestExecutor
	var names []string
	for p := range codedom.ChildrenOf[*codedom.Parameter](e.tree, f.ID()) {
		switch {
		case p.Optional,
			p.Kind == codedom.ParameterRequestAdapter,
			p.Kind == codedom.ParameterPathParameters,
			executor && p.Kind == codedom.ParameterRequestBody:
			continue
		}
		names = append(names, lowerFirst(p.Name()))
	}
	slices.SortStableFunc(names, func(a, b string) int {
		return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	for _, n := range names {
		w.Linef("if(!%s) throw new Error(\"%s cannot be undefined\");", n, n)
	}
}

func (e *Emitter) writeClientConstructor(w *codewriter.Writer, f *codedom.Function, b *codedom.ClientConstructorBody) error {
	var adapter, backingStore string
	for p := range codedom.ChildrenOf[*codedom.Parameter](e.tree, f.ID()) {
		switch p.Kind {
		case codedom.ParameterRequestAdapter:
			if adapter == "" {
				adapter = lowerFirst(p.Name())
			}
		case codedom.ParameterBackingStore:
			if backingStore == "" {
				backingStore = lowerFirst(p.Name())
			}
		}
	}
	if adapter == "" {
		return e.tree.Structuralf(f.ID(), "client constructor %q has no request adapter parameter", f.Name())
	}
	builder, uriTemplate, err := e.rootRequestBuilder(f)
	if err != nil {
		return err
	}

	e.writeDefensiveStatements(w, f)
	for _, m := range b.SerializerModules {
		w.Linef("registerDefaultSerializer(%s);", m)
	}
	for _, m := range b.DeserializerModules {
		w.Linef("registerDefaultDeserializer(%s);", m)
	}
	baseURL := b.BaseURL
	if e.baseURL != "" {
		baseURL = e.baseURL
	}
	if baseURL != "" {
		w.StartBlock(fmt.Sprintf("if (%s.baseUrl === undefined || %s.baseUrl === \"\") {", adapter, adapter))
		w.Linef("%s.baseUrl = %q;", adapter, baseURL)
		w.CloseBlock("}")
	}
	w.StartBlock("const pathParameters: Record<string, unknown> = {")
	w.Linef("\"baseurl\": %s.baseUrl,", adapter)
	w.CloseBlock("};")
	if backingStore != "" {
		w.Linef("%s.enableBackingStore(%s);", adapter, backingStore)
	}
	navigation := e.metadataConstant(builder, codedom.ConstantNavigationMetadata, f)
	requests := e.metadataConstant(builder, codedom.ConstantRequestsMetadata, f)
	name := e.conv.TypeString(e.tree.Ref(builder.ID()), f.ID())
	w.Linef("return apiClientProxifier<%s>(%s, pathParameters, %s, %s, %s);",
		upperFirst(name), adapter, e.conv.TypeString(e.tree.Ref(uriTemplate), f.ID()), navigation, requests)
	return nil
}

// rootRequestBuilder finds the request builder interface declared next to
// a client constructor and its URI template constant.
func (e *Emitter) rootRequestBuilder(f *codedom.Function) (*codedom.Interface, codedom.ID, error) {
	var builder *codedom.Interface
	for iface := range codedom.ChildrenOf[*codedom.Interface](e.tree, f.Parent()) {
		if iface.Kind == codedom.InterfaceRequestBuilder {
			builder = iface
			break
		}
	}
	if builder == nil {
		return nil, codedom.NoID, e.tree.Structuralf(f.ID(), "no request builder interface declared next to client constructor %q", f.Name())
	}
	tmpl, ok := e.constantFor(builder.ID(), codedom.ConstantURITemplate, f.Parent())
	if !ok {
		return nil, codedom.NoID, e.tree.Structuralf(f.ID(), "request builder %q has no URI template constant", builder.Name())
	}
	return builder, tmpl, nil
}

// metadataConstant returns the name of a metadata constant of builder, or
// undefined when the tree has none.
func (e *Emitter) metadataConstant(builder *codedom.Interface, kind codedom.ConstantKind, f *codedom.Function) string {
	c, ok := e.constantFor(builder.ID(), kind, f.Parent())
	if !ok {
		return "undefined"
	}
	return upperFirst(e.conv.TypeString(e.tree.Ref(c), f.ID()))
}

func (e *Emitter) constantFor(origin codedom.ID, kind codedom.ConstantKind, scope codedom.ID) (codedom.ID, bool) {
	for c := range codedom.ChildrenOf[*codedom.Constant](e.tree, scope) {
		if c.Kind == kind && c.Origin == origin {
			return c.ID(), true
		}
	}
	return codedom.NoID, false
}
