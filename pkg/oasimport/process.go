package oasimport

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/speakeasy-api/openapi/extensions"
	"github.com/speakeasy-api/openapi/jsonschema/oas3"
	"github.com/speakeasy-api/openapi/openapi"
	"gopkg.in/yaml.v3"

	schema "github.com/speakeasy-api/schemaannotate"
	"github.com/speakeasy-api/schemaannotate/annotation"
)

// ComponentResult is the outcome of processing one component schema.
type ComponentResult struct {
	Name   string
	Result *annotation.Result
	// Resolved maps leaf PathSpecs to their resolved properties. It is
	// empty when resolution failed.
	Resolved map[string]schema.Properties
}

// Report collects the results of ProcessDocument.
type Report struct {
	Components []ComponentResult
	Warnings   []string
}

// HasError reports whether any component failed resolution or validation.
func (r *Report) HasError() bool {
	for _, c := range r.Components {
		if c.Result.HasError() {
			return true
		}
	}
	return false
}

// ProcessDocument converts the components of doc and resolves the
// annotations of every component with handlers. The namespaces read from
// the document are the handlers' namespaces.
func ProcessDocument(ctx context.Context, doc *openapi.OpenAPI, handlers []annotation.Handler, cfg Config, opts ...annotation.Options) (*Report, error) {
	if len(cfg.Namespaces) == 0 {
		for _, h := range handlers {
			cfg.Namespaces = append(cfg.Namespaces, h.Namespace())
		}
	}
	g, err := Import(doc, cfg)
	if err != nil {
		return nil, err
	}

	report := &Report{Warnings: g.Warnings}
	for _, name := range g.Names() {
		root, _ := g.Component(name)
		res, err := annotation.Process(ctx, handlers, root, opts...)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
		cr := ComponentResult{Name: name, Result: res, Resolved: map[string]schema.Properties{}}
		if res.ResolutionSuccess {
			cr.Resolved, err = annotation.CollectResolvedProperties(ctx, res.Schema)
			if err != nil {
				return nil, fmt.Errorf("component %s: %w", name, err)
			}
		}
		report.Components = append(report.Components, cr)
	}
	return report, nil
}

// ResolvedExtensionKey is the extension under which WriteResolved stores
// the resolved value of a namespace.
func ResolvedExtensionKey(ns string) string {
	return "x-" + ns + "-resolved"
}

// ApplyResolved writes the resolved properties in report back into doc as
// x-<namespace>-resolved extensions on the schema declaring each leaf.
// Leaves that cannot be addressed in the document (map keys, union
// members) are returned as warnings. Leaves inside referenced components
// are written on the component itself, so the last component processed
// wins.
func ApplyResolved(doc *openapi.OpenAPI, report *Report) ([]string, error) {
	if doc == nil || doc.Components == nil || doc.Components.Schemas == nil {
		return nil, nil
	}
	comps := make(map[string]*oas3.Schema)
	for name, js := range doc.Components.Schemas.All() {
		if s := js.GetLeft(); s != nil {
			comps[name] = s
		}
	}

	var warnings []string
	for _, cr := range report.Components {
		paths := make([]string, 0, len(cr.Resolved))
		for p := range cr.Resolved {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		for _, p := range paths {
			props := cr.Resolved[p]
			if len(props) == 0 {
				continue
			}
			target, ok := locate(comps, comps[cr.Name], schema.SplitPathSpec(p))
			if !ok {
				warnings = append(warnings, fmt.Sprintf("%s%s: location not addressable in the document", cr.Name, p))
				continue
			}
			if err := setResolved(target, props); err != nil {
				return warnings, fmt.Errorf("%s%s: %w", cr.Name, p, err)
			}
		}
	}
	return warnings, nil
}

// WriteResolved applies the report to doc and marshals the document to w.
func WriteResolved(ctx context.Context, doc *openapi.OpenAPI, report *Report, w io.Writer) ([]string, error) {
	warnings, err := ApplyResolved(doc, report)
	if err != nil {
		return warnings, err
	}
	if err := openapi.Marshal(ctx, doc, w); err != nil {
		return warnings, fmt.Errorf("failed to marshal annotated document: %w", err)
	}
	return warnings, nil
}

// locate follows segs from s. References are followed between steps; the
// schema returned is the one written at the final location.
func locate(comps map[string]*oas3.Schema, s *oas3.Schema, segs []string) (*oas3.Schema, bool) {
	cur := s
	for _, seg := range segs {
		cur = deref(comps, cur)
		if cur == nil {
			return nil, false
		}
		next := stepSchema(comps, cur, seg)
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

func deref(comps map[string]*oas3.Schema, s *oas3.Schema) *oas3.Schema {
	seen := map[*oas3.Schema]bool{}
	for s != nil && !seen[s] {
		seen[s] = true
		name, ok := refName(s)
		if !ok {
			return s
		}
		s = comps[name]
	}
	return s
}

func stepSchema(comps map[string]*oas3.Schema, s *oas3.Schema, seg string) *oas3.Schema {
	switch seg {
	case schema.MapKey:
		return nil
	case schema.Wildcard:
		if s.Items != nil {
			return s.Items.GetLeft()
		}
		if s.AdditionalProperties != nil {
			return s.AdditionalProperties.GetLeft()
		}
		return nil
	}
	if s.Properties != nil {
		for name, prop := range s.Properties.All() {
			if name == seg {
				return prop.GetLeft()
			}
		}
	}
	for _, member := range s.AllOf {
		ms := deref(comps, member.GetLeft())
		if ms == nil || ms == s {
			continue
		}
		if next := stepSchema(comps, ms, seg); next != nil {
			return next
		}
	}
	return nil
}

func setResolved(s *oas3.Schema, props schema.Properties) error {
	if s.Extensions == nil {
		s.Extensions = extensions.New()
	}
	for _, ns := range props.Keys() {
		var node yaml.Node
		if err := node.Encode(props[ns]); err != nil {
			return fmt.Errorf("failed to encode resolved %s: %w", ns, err)
		}
		s.Extensions.Set(ResolvedExtensionKey(ns), &node)
	}
	return nil
}
