// Package wire is a reference runtime for generated serializers. It walks
// the same plans and discriminator resolutions the emitters render, but
// executes them against JSON payloads, so a tree can be checked for
// round-trip fidelity without running generated code.
package wire

import (
	"bytes"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/broady/clientgen/codedom"
	"github.com/broady/clientgen/discriminator"
	"github.com/broady/clientgen/serialization"
	"github.com/broady/clientgen/typescript"
)

// Object is a model value. Fields are keyed by property name, not by wire
// name. Nested models are *Object and collections are slices.
type Object struct {
	Model          codedom.ID
	Fields         map[string]any
	AdditionalData map[string]any
}

// Codec marshals Objects following the planner and the discriminator
// resolver.
type Codec struct {
	tree     *codedom.Tree
	planner  *serialization.Planner
	resolver *discriminator.Resolver
}

// NewCodec returns a codec over an indexed tree.
func NewCodec(tree *codedom.Tree) *Codec {
	return &Codec{
		tree:     tree,
		planner:  serialization.NewPlanner(tree, typescript.NewConvention(tree)),
		resolver: discriminator.NewResolver(tree),
	}
}

// Marshal encodes obj with the serializer indexed for its model.
func (c *Codec) Marshal(obj *Object) ([]byte, error) {
	m, err := c.encode(obj)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// Unmarshal decodes data with a factory: the factory's resolution picks
// the concrete model, whose fields are then read.
func (c *Codec) Unmarshal(factory codedom.ID, data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	return c.decode(factory, raw)
}

func (c *Codec) encode(obj *Object) (map[string]any, error) {
	fn, ok := c.tree.IndexedFunction(codedom.RoleSerializer, obj.Model)
	if !ok {
		return nil, c.tree.Structuralf(obj.Model, "no serializer reachable for %q", c.tree.Path(obj.Model))
	}
	out := make(map[string]any)
	for _, p := range c.properties(obj.Model) {
		if p.Kind != codedom.PropertyCustom || p.ReadOnly {
			continue
		}
		v, ok := obj.Fields[p.Name()]
		if !ok || v == nil {
			continue
		}
		plan, err := c.planner.Serialization(p, fn)
		if err != nil {
			return nil, err
		}
		enc, err := c.write(plan, v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", c.tree.Path(p.ID()))
		}
		out[p.SerializationName()] = enc
	}
	for k, v := range obj.AdditionalData {
		if _, taken := out[k]; !taken {
			out[k] = v
		}
	}
	return out, nil
}

func (c *Codec) decode(factory codedom.ID, raw map[string]any) (*Object, error) {
	res, err := c.resolver.Resolve(factory)
	if err != nil {
		return nil, err
	}
	value, _ := raw[res.PropertyName].(string)
	fn := res.Select(value)
	model, err := c.tree.FunctionModel(fn)
	if err != nil {
		return nil, err
	}

	obj := &Object{Model: model, Fields: make(map[string]any)}
	known := make(map[string]bool)
	holder := false
	for _, p := range c.properties(model) {
		switch p.Kind {
		case codedom.PropertyAdditionalData:
			holder = true
			continue
		case codedom.PropertyCustom:
		default:
			continue
		}
		key := p.SerializationName()
		known[key] = true
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		plan, err := c.planner.Deserialization(p, fn)
		if err != nil {
			return nil, err
		}
		val, err := c.read(plan, v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", c.tree.Path(p.ID()))
		}
		obj.Fields[p.Name()] = val
	}
	if holder {
		for k, v := range raw {
			if known[k] {
				continue
			}
			if obj.AdditionalData == nil {
				obj.AdditionalData = make(map[string]any)
			}
			obj.AdditionalData[k] = v
		}
	}
	return obj, nil
}

// properties lists the properties of model and of its base chain, base
// first. Redeclared properties appear once.
func (c *Codec) properties(model codedom.ID) []*codedom.Property {
	var props []*codedom.Property
	if base, ok := c.tree.BaseInterface(model); ok {
		props = c.properties(base.ID())
	}
	for p := range codedom.ChildrenOf[*codedom.Property](c.tree, model) {
		if !p.ExistsInBaseType {
			props = append(props, p)
		}
	}
	return props
}

func (c *Codec) write(plan serialization.Plan, v any) (any, error) {
	switch plan.Operation {
	case serialization.OpPrimitive:
		return writePrimitive(plan.Primitive, v)
	case serialization.OpByteArray:
		b, ok := v.([]byte)
		if !ok {
			return nil, errors.Newf("want []byte, got %T", v)
		}
		return base64.StdEncoding.EncodeToString(b), nil
	case serialization.OpEnum:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Newf("want enum value string, got %T", v)
		}
		return s, c.checkOption(plan.Definition, s)
	case serialization.OpCollectionOfEnum:
		values, ok := v.([]string)
		if !ok {
			return nil, errors.Newf("want []string of enum values, got %T", v)
		}
		for _, s := range values {
			if err := c.checkOption(plan.Definition, s); err != nil {
				return nil, err
			}
		}
		// Multiple enum values travel as one comma separated string.
		return strings.Join(values, ", "), nil
	case serialization.OpCollectionOfPrimitive:
		values, ok := v.([]any)
		if !ok {
			return nil, errors.Newf("want []any, got %T", v)
		}
		out := make([]any, len(values))
		for i, e := range values {
			enc, err := writePrimitive(plan.Primitive, e)
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out[i] = enc
		}
		return out, nil
	case serialization.OpObject:
		obj, ok := v.(*Object)
		if !ok {
			return nil, errors.Newf("want *Object, got %T", v)
		}
		return c.encode(c.withModel(obj, plan.Definition))
	case serialization.OpCollectionOfObject:
		objs, ok := v.([]*Object)
		if !ok {
			return nil, errors.Newf("want []*Object, got %T", v)
		}
		out := make([]any, len(objs))
		for i, obj := range objs {
			enc, err := c.encode(c.withModel(obj, plan.Definition))
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out[i] = enc
		}
		return out, nil
	default:
		return nil, errors.Newf("no write rule for %s", plan.Operation)
	}
}

func (c *Codec) withModel(obj *Object, model codedom.ID) *Object {
	if obj.Model.Valid() {
		return obj
	}
	cp := *obj
	cp.Model = model
	return &cp
}

func (c *Codec) read(plan serialization.Plan, v any) (any, error) {
	switch plan.Operation {
	case serialization.OpPrimitive:
		return readPrimitive(plan.Primitive, v)
	case serialization.OpByteArray:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Newf("want base64 string, got %T", v)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		return b, errors.Wrap(err, "decode base64")
	case serialization.OpEnum:
		s, ok := v.(string)
		if !ok {
			return nil, errors.Newf("want enum value string, got %T", v)
		}
		return s, c.checkOption(plan.Definition, s)
	case serialization.OpCollectionOfEnum:
		var values []string
		switch raw := v.(type) {
		case string:
			for s := range strings.SplitSeq(raw, ",") {
				if s = strings.TrimSpace(s); s != "" {
					values = append(values, s)
				}
			}
		case []any:
			for _, e := range raw {
				s, ok := e.(string)
				if !ok {
					return nil, errors.Newf("want enum value string, got %T", e)
				}
				values = append(values, s)
			}
		default:
			return nil, errors.Newf("want enum values, got %T", v)
		}
		for _, s := range values {
			if err := c.checkOption(plan.Definition, s); err != nil {
				return nil, err
			}
		}
		return values, nil
	case serialization.OpCollectionOfPrimitive:
		values, ok := v.([]any)
		if !ok {
			return nil, errors.Newf("want array, got %T", v)
		}
		out := make([]any, len(values))
		for i, e := range values {
			dec, err := readPrimitive(plan.Primitive, e)
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out[i] = dec
		}
		return out, nil
	case serialization.OpObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.Newf("want object, got %T", v)
		}
		return c.decode(plan.Factory, m)
	case serialization.OpCollectionOfObject:
		values, ok := v.([]any)
		if !ok {
			return nil, errors.Newf("want array, got %T", v)
		}
		out := make([]*Object, len(values))
		for i, e := range values {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, errors.Newf("index %d: want object, got %T", i, e)
			}
			obj, err := c.decode(plan.Factory, m)
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			out[i] = obj
		}
		return out, nil
	default:
		return nil, errors.Newf("no read rule for %s", plan.Operation)
	}
}

// checkOption rejects values that are not the wire value of an option.
func (c *Codec) checkOption(enum codedom.ID, value string) error {
	for opt := range codedom.ChildrenOf[*codedom.EnumOption](c.tree, enum) {
		if opt.SerializationName() == value {
			return nil
		}
	}
	return errors.WithHintf(errors.Newf("%q is not a value of %s", value, c.tree.Path(enum)),
		"enum values are matched against option wire names exactly")
}

// writeNumber normalizes Go numbers to int64, uint64 or float64 so that
// integers are encoded exactly.
func writeNumber(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		return n, true
	}
	return nil, false
}

// readNumber decodes integer literals as int64, or uint64 past the int64
// range, and everything else as float64.
func readNumber(n json.Number) (any, error) {
	lit := n.String()
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return i, nil
		}
		if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
			return u, nil
		}
	}
	f, err := n.Float64()
	return f, errors.Wrapf(err, "parse number %s", lit)
}

func writePrimitive(primitive string, v any) (any, error) {
	switch primitive {
	case "string", "DateOnly", "TimeOnly":
		if s, ok := v.(string); ok {
			return s, nil
		}
	case "boolean":
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case "number":
		if n, ok := writeNumber(v); ok {
			return n, nil
		}
	case "Guid":
		switch id := v.(type) {
		case uuid.UUID:
			return id.String(), nil
		case string:
			parsed, err := uuid.Parse(id)
			if err != nil {
				return nil, errors.Wrap(err, "parse guid")
			}
			return parsed.String(), nil
		}
	case "Date":
		if t, ok := v.(time.Time); ok {
			return t.Format(time.RFC3339Nano), nil
		}
	case "Duration":
		if d, ok := v.(time.Duration); ok {
			return d.String(), nil
		}
	default:
		return v, nil
	}
	return nil, errors.Newf("want %s, got %T", primitive, v)
}

func readPrimitive(primitive string, v any) (any, error) {
	switch primitive {
	case "string", "DateOnly", "TimeOnly":
		if s, ok := v.(string); ok {
			return s, nil
		}
	case "boolean":
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case "number":
		switch n := v.(type) {
		case json.Number:
			return readNumber(n)
		case float64:
			return n, nil
		}
	case "Guid":
		if s, ok := v.(string); ok {
			id, err := uuid.Parse(s)
			return id, errors.Wrap(err, "parse guid")
		}
	case "Date":
		if s, ok := v.(string); ok {
			t, err := time.Parse(time.RFC3339Nano, s)
			return t, errors.Wrap(err, "parse date")
		}
	case "Duration":
		if s, ok := v.(string); ok {
			d, err := time.ParseDuration(s)
			return d, errors.Wrap(err, "parse duration")
		}
	default:
		return v, nil
	}
	return nil, errors.Newf("want %s, got %T", primitive, v)
}
