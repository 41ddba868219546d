package annotation

import (
	"context"
	"fmt"

	schema "github.com/speakeasy-api/schemaannotate"
)

// Process resolves the annotations of every handler's namespace over s and
// then validates the resolved graph with each handler.
//
// Handlers run in order; each resolution pass works on the graph produced
// by the previous one, so later handlers see earlier results. s itself is
// never modified.
//
// Problems in the schema or reported by handlers are returned in the
// Result. The error is non-nil only for invalid arguments or a violated
// engine contract.
//
// Example:
//
//	res, err := annotation.Process(ctx, []annotation.Handler{annotation.NewFirstWinsHandler("validate")}, root)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if res.HasError() {
//	    fmt.Print(res.ErrorText)
//	}
func Process(ctx context.Context, handlers []Handler, s schema.Schema, opts ...Options) (*Result, error) {
	opt := DefaultOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	if err := validateInput(handlers, s); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	return newSession(ctx, handlers, opt).run(s)
}

// GetResolvedPropertiesByPath returns the resolved properties of the node
// addressed by path in a processed graph. Typerefs along the way are
// followed transparently.
func GetResolvedPropertiesByPath(path string, s schema.Schema) (schema.Properties, error) {
	if s == nil {
		return nil, ErrNilSchema
	}
	if !schema.ValidatePathSpec(path) || path == schema.Separator {
		return nil, fmt.Errorf("%w: Invalid PathSpec %s", ErrInvalidPath, path)
	}

	cur := s
	for _, seg := range schema.SplitPathSpec(path) {
		next := step(schema.Dereference(cur), seg)
		if next == nil {
			return nil, fmt.Errorf("%w: Could not find path segment {%s} in PathSpec {%s}", ErrPathNotFound, seg, path)
		}
		cur = next
	}

	props := schema.Dereference(cur).ResolvedProperties()
	if props == nil {
		return schema.Properties{}, nil
	}
	return props.Clone(), nil
}

// CollectResolvedProperties walks a processed graph and returns the
// resolved properties of every reachable leaf keyed by its PathSpec.
// Leaves without resolved properties map to an empty Properties.
func CollectResolvedProperties(ctx context.Context, s schema.Schema) (map[string]schema.Properties, error) {
	c := &resolvedCollector{out: make(map[string]schema.Properties, 32)}
	if err := NewTraverser(c).Traverse(ctx, s); err != nil {
		return nil, err
	}
	return c.out, nil
}

// step moves from n to the child named by seg, or returns nil.
func step(n schema.Schema, seg string) schema.Schema {
	switch v := n.(type) {
	case *schema.Record:
		if f := v.Field(seg); f != nil {
			return f.Type
		}
	case *schema.Union:
		if m := v.Member(seg); m != nil {
			return m.Type
		}
	case *schema.Map:
		switch seg {
		case schema.Wildcard:
			return v.Values
		case schema.MapKey:
			return v.Key
		}
	case *schema.Array:
		if seg == schema.Wildcard {
			return v.Items
		}
	}
	return nil
}

// validateInput performs basic validation on the arguments of Process.
func validateInput(handlers []Handler, s schema.Schema) error {
	if s == nil {
		return ErrNilSchema
	}
	seen := make(map[string]struct{}, len(handlers))
	for i, h := range handlers {
		if h == nil {
			return fmt.Errorf("%w: handler %d is nil", ErrInvalidArgument, i)
		}
		ns := h.Namespace()
		if ns == "" {
			return fmt.Errorf("%w: handler %d has an empty namespace", ErrInvalidArgument, i)
		}
		if _, dup := seen[ns]; dup {
			return fmt.Errorf("%w: duplicate handler for namespace %q", ErrInvalidArgument, ns)
		}
		seen[ns] = struct{}{}
	}
	return nil
}
