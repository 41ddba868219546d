// Package oasimport builds annotated schema graphs from OpenAPI documents.
// Annotations are read from x-<namespace> extensions on component schemas
// and their properties.
package oasimport

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/speakeasy-api/openapi/jsonschema/oas3"
	"github.com/speakeasy-api/openapi/openapi"
	"gopkg.in/yaml.v3"

	schema "github.com/speakeasy-api/schemaannotate"
)

const componentRefPrefix = "#/components/schemas/"

// Config controls how a document is converted.
type Config struct {
	// Namespaces lists the annotation namespaces to lift from extensions.
	// Namespace "validate" is read from "x-validate".
	Namespaces []string
	// NamePrefix is prepended to component names to form full names.
	NamePrefix string
}

func (c Config) extensionKey(ns string) string {
	return "x-" + ns
}

// Graph is the converted form of a document's component schemas.
type Graph struct {
	names      []string
	components map[string]schema.Schema
	// Warnings lists constructs that were approximated during conversion.
	Warnings []string
}

// Names returns the component names in document order.
func (g *Graph) Names() []string {
	return append([]string(nil), g.names...)
}

// Component returns the converted component schema.
func (g *Graph) Component(name string) (schema.Schema, bool) {
	s, ok := g.components[name]
	return s, ok
}

// Load parses an OpenAPI document. Documents with validation errors are
// rejected.
func Load(ctx context.Context, r io.Reader) (*openapi.OpenAPI, error) {
	doc, validationErrs, err := openapi.Unmarshal(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	if len(validationErrs) > 0 {
		return nil, fmt.Errorf("OpenAPI validation failed: %v", validationErrs[0])
	}
	return doc, nil
}

// Import converts every component schema of doc.
func Import(doc *openapi.OpenAPI, cfg Config) (*Graph, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}
	c := newConverter(cfg)
	if doc.Components == nil || doc.Components.Schemas == nil {
		return c.graph, nil
	}

	for name, js := range doc.Components.Schemas.All() {
		c.sources[name] = js
		c.graph.names = append(c.graph.names, name)
	}
	for _, name := range c.graph.names {
		s, err := c.component(name)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
		c.graph.components[name] = s
	}
	return c.graph, nil
}

// converter holds the state of one Import call.
type converter struct {
	cfg     Config
	graph   *Graph
	sources map[string]*oas3.JSONSchema[oas3.Referenceable]
	// named holds finished or in-progress component nodes so references
	// and recursion resolve to the same node.
	named map[string]schema.Schema
}

func newConverter(cfg Config) *converter {
	return &converter{
		cfg: cfg,
		graph: &Graph{
			components: make(map[string]schema.Schema),
		},
		sources: make(map[string]*oas3.JSONSchema[oas3.Referenceable]),
		named:   make(map[string]schema.Schema),
	}
}

func (c *converter) fullName(name string) string {
	return c.cfg.NamePrefix + name
}

func (c *converter) component(name string) (schema.Schema, error) {
	if s, ok := c.named[name]; ok {
		return s, nil
	}
	js, ok := c.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown component %q", name)
	}
	s := js.GetLeft()
	if s == nil {
		return nil, fmt.Errorf("component %q is not a schema object", name)
	}
	full := c.fullName(name)

	if target, ok := refName(s); ok {
		t := schema.NewTyperef(full, nil)
		c.named[name] = t
		c.annotateNode(t, s)
		ref, err := c.component(target)
		if err != nil {
			return nil, err
		}
		t.Ref = ref
		return t, nil
	}

	switch {
	case isObject(s):
		r := schema.NewRecord(full)
		c.named[name] = r
		c.annotateNode(r, s)
		if err := c.fillRecord(r, s, full); err != nil {
			return nil, err
		}
		return r, nil
	case isStringEnum(s):
		e := enumOf(full, s)
		c.named[name] = e
		c.annotateNode(e, s)
		return e, nil
	default:
		// Arrays, maps, unions and primitives get a name through a typeref.
		t := schema.NewTyperef(full, nil)
		c.named[name] = t
		c.annotateNode(t, s)
		ref, err := c.inline(s, full)
		if err != nil {
			return nil, err
		}
		t.Ref = ref
		return t, nil
	}
}

// fillRecord adds the fields of s to r. allOf members that reference
// other object components become includes.
func (c *converter) fillRecord(r *schema.Record, s *oas3.Schema, scope string) error {
	for _, member := range s.AllOf {
		ms := member.GetLeft()
		if ms == nil {
			continue
		}
		if target, ok := refName(ms); ok {
			inc, err := c.component(target)
			if err != nil {
				return err
			}
			base, ok := schema.Dereference(inc).(*schema.Record)
			if !ok {
				c.warnf("%s: allOf member %s is not an object and was skipped", scope, target)
				continue
			}
			r.Include(base)
			continue
		}
		if err := c.addProperties(r, ms, scope); err != nil {
			return err
		}
	}
	return c.addProperties(r, s, scope)
}

func (c *converter) addProperties(r *schema.Record, s *oas3.Schema, scope string) error {
	if s.Properties == nil || s.Properties.Len() == 0 {
		return nil
	}
	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}
	for name, prop := range s.Properties.All() {
		ps := prop.GetLeft()
		if ps == nil {
			c.warnf("%s.%s: boolean schemas are not supported", scope, name)
			continue
		}
		typ, err := c.convert(ps, scope+"."+exportName(name))
		if err != nil {
			return fmt.Errorf("property %s: %w", name, err)
		}
		f := schema.NewField(name, typ)
		f.Optional = !required[name]
		for ns, v := range c.annotations(ps) {
			f.WithProperty(ns, v)
		}
		r.AddFields(f)
	}
	return nil
}

// convert returns the node for a schema used in place: references resolve
// to their component, anything else is converted inline.
func (c *converter) convert(s *oas3.Schema, scope string) (schema.Schema, error) {
	if target, ok := refName(s); ok {
		return c.component(target)
	}
	return c.inline(s, scope)
}

func (c *converter) inline(s *oas3.Schema, scope string) (schema.Schema, error) {
	switch {
	case len(s.AnyOf) > 0 || len(s.OneOf) > 0:
		return c.union(s, scope)
	case isObject(s):
		r := schema.NewRecord(scope)
		if err := c.fillRecord(r, s, scope); err != nil {
			return nil, err
		}
		return r, nil
	case isMap(s):
		values, err := c.convert(s.AdditionalProperties.GetLeft(), scope+"Value")
		if err != nil {
			return nil, err
		}
		return schema.MapOf(values), nil
	case hasType(s, oas3.SchemaTypeArray):
		if s.Items == nil || s.Items.GetLeft() == nil {
			c.warnf("%s: array without items treated as array of strings", scope)
			return schema.ArrayOf(schema.StringType()), nil
		}
		items, err := c.convert(s.Items.GetLeft(), scope+"Item")
		if err != nil {
			return nil, err
		}
		return schema.ArrayOf(items), nil
	case isStringEnum(s):
		return enumOf(scope, s), nil
	default:
		return c.primitive(s, scope), nil
	}
}

func (c *converter) union(s *oas3.Schema, scope string) (schema.Schema, error) {
	branches := s.OneOf
	if len(branches) == 0 {
		branches = s.AnyOf
	}
	u := schema.UnionOf()
	used := make(map[string]int, len(branches))
	for i, b := range branches {
		bs := b.GetLeft()
		if bs == nil {
			continue
		}
		typ, err := c.convert(bs, fmt.Sprintf("%sOption%d", scope, i))
		if err != nil {
			return nil, err
		}
		m := schema.NewMember(typ)
		if n := used[m.Key()]; n > 0 {
			m.WithAlias(fmt.Sprintf("%s%d", m.Key(), n))
		}
		used[m.Key()]++
		for ns, v := range c.annotations(bs) {
			m.WithProperty(ns, v)
		}
		u.Members = append(u.Members, m)
	}
	return u, nil
}

func (c *converter) primitive(s *oas3.Schema, scope string) schema.Schema {
	format := ""
	if s.Format != nil {
		format = *s.Format
	}
	types := s.GetType()
	if len(types) == 0 {
		c.warnf("%s: untyped schema treated as string", scope)
		return schema.StringType()
	}
	if len(types) > 1 {
		c.warnf("%s: multiple types %v, using %s", scope, types, types[0])
	}
	switch types[0] {
	case oas3.SchemaTypeString:
		if format == "byte" || format == "binary" {
			return schema.BytesType()
		}
		return schema.StringType()
	case oas3.SchemaTypeInteger:
		if format == "int64" {
			return schema.LongType()
		}
		return schema.IntType()
	case oas3.SchemaTypeNumber:
		if format == "float" {
			return schema.FloatType()
		}
		return schema.DoubleType()
	case oas3.SchemaTypeBoolean:
		return schema.BooleanType()
	case oas3.SchemaTypeNull:
		return schema.NullType()
	default:
		c.warnf("%s: unsupported type %s treated as string", scope, types[0])
		return schema.StringType()
	}
}

// annotateNode copies the configured extensions of s onto n.
func (c *converter) annotateNode(n schema.Schema, s *oas3.Schema) {
	for ns, v := range c.annotations(s) {
		n.SetProperty(ns, v)
	}
}

// annotations decodes the configured x-<namespace> extensions of s.
func (c *converter) annotations(s *oas3.Schema) schema.Properties {
	if s.Extensions == nil {
		return nil
	}
	var out schema.Properties
	for _, ns := range c.cfg.Namespaces {
		node, ok := s.Extensions.Get(c.cfg.extensionKey(ns))
		if !ok || node == nil {
			continue
		}
		v, err := decodeExtension(node)
		if err != nil {
			c.warnf("x-%s: %v", ns, err)
			continue
		}
		if out == nil {
			out = schema.Properties{}
		}
		out[ns] = v
	}
	return out
}

func (c *converter) warnf(format string, args ...any) {
	c.graph.Warnings = append(c.graph.Warnings, fmt.Sprintf(format, args...))
}

// decodeExtension turns an extension node into plain Go values. Mapping
// nodes decode to map[string]any.
func decodeExtension(node *yaml.Node) (any, error) {
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode extension: %w", err)
	}
	return v, nil
}

func refName(s *oas3.Schema) (string, bool) {
	if s == nil {
		return "", false
	}
	ref := string(s.GetRef())
	if !strings.HasPrefix(ref, componentRefPrefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, componentRefPrefix), true
}

func hasType(s *oas3.Schema, t oas3.SchemaType) bool {
	for _, st := range s.GetType() {
		if st == t {
			return true
		}
	}
	return false
}

// isObject reports whether s describes a record: an object with declared
// properties or allOf members.
func isObject(s *oas3.Schema) bool {
	if s.Properties != nil && s.Properties.Len() > 0 {
		return true
	}
	if len(s.AllOf) > 0 {
		return true
	}
	return hasType(s, oas3.SchemaTypeObject) && !isMap(s)
}

func isMap(s *oas3.Schema) bool {
	if s.AdditionalProperties == nil || s.AdditionalProperties.GetLeft() == nil {
		return false
	}
	return s.Properties == nil || s.Properties.Len() == 0
}

func isStringEnum(s *oas3.Schema) bool {
	if len(s.Enum) == 0 || !hasType(s, oas3.SchemaTypeString) {
		return false
	}
	for _, n := range s.Enum {
		if n == nil || n.Kind != yaml.ScalarNode {
			return false
		}
	}
	return true
}

func enumOf(fullName string, s *oas3.Schema) *schema.Enum {
	symbols := make([]string, 0, len(s.Enum))
	for _, n := range s.Enum {
		symbols = append(symbols, n.Value)
	}
	return schema.NewEnum(fullName, symbols...)
}

// exportName upper-cases the first letter of a property name for use in
// generated full names.
func exportName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
