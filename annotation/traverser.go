package annotation

import (
	"context"

	schema "github.com/speakeasy-api/schemaannotate"
)

// Order tells a visitor which side of a node's children it is called on.
type Order int

const (
	PreOrder Order = iota
	PostOrder
)

// EntryMode records how the traverser reached the current node.
type EntryMode int

const (
	EntryRoot EntryMode = iota
	EntryField
	EntryMapKey
	EntryMapValue
	EntryArrayItem
	EntryUnionMember
	EntryTyperefRef
)

func (m EntryMode) String() string {
	switch m {
	case EntryRoot:
		return "root"
	case EntryField:
		return "field"
	case EntryMapKey:
		return "map-key"
	case EntryMapValue:
		return "map-value"
	case EntryArrayItem:
		return "array-item"
	case EntryUnionMember:
		return "union-member"
	case EntryTyperefRef:
		return "typeref-ref"
	default:
		panic(m)
	}
}

// Continuation is a visitor's decision on descending into the current
// node's children.
type Continuation int

const (
	// ContinueDefault descends unless the node is already open on the
	// current path.
	ContinueDefault Continuation = iota
	// ContinueDescend always descends.
	ContinueDescend
	// ContinueStop never descends.
	ContinueStop
)

// TraverserContext is the per-node state handed to a Visitor.
type TraverserContext struct {
	Current         schema.Schema
	Parent          schema.Schema
	EnclosingField  *schema.Field
	EnclosingMember *schema.Member
	EntryMode       EntryMode
	// TraversePath has a component for every hop, typeref hops included,
	// ending with the current node's member key.
	TraversePath []string
	// PathSpec is the field-level path with typeref hops left out.
	PathSpec []string
	// VisitorContext is opaque visitor state inherited by children. A
	// visitor may replace it during PreOrder.
	VisitorContext any
	Continuation   Continuation
}

// Visitor receives traversal callbacks. Returning an error aborts the
// traversal.
type Visitor interface {
	InitialContext() any
	Visit(c *TraverserContext, order Order) error
}

// Traverser walks a schema graph depth-first, calling a Visitor before and
// after each node's children.
type Traverser struct {
	visitor Visitor
	// open holds the nodes on the current path.
	open map[schema.Schema]struct{}
}

// NewTraverser creates a traverser for v.
func NewTraverser(v Visitor) *Traverser {
	return &Traverser{visitor: v}
}

// Traverse walks root. It can be called again for another graph.
func (t *Traverser) Traverse(ctx context.Context, root schema.Schema) error {
	if root == nil {
		return ErrNilSchema
	}
	t.open = make(map[schema.Schema]struct{}, 64)
	return t.recurse(ctx, &TraverserContext{
		Current:        root,
		EntryMode:      EntryRoot,
		TraversePath:   make([]string, 0, 16),
		PathSpec:       make([]string, 0, 16),
		VisitorContext: t.visitor.InitialContext(),
	})
}

func (t *Traverser) recurse(ctx context.Context, c *TraverserContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	node := c.Current
	c.TraversePath = append(c.TraversePath, node.MemberKey())

	if err := t.visitor.Visit(c, PreOrder); err != nil {
		return err
	}

	_, isOpen := t.open[node]
	if c.Continuation == ContinueDescend || (c.Continuation == ContinueDefault && !isOpen) {
		t.open[node] = struct{}{}
		err := t.children(ctx, c)
		// A node forced open twice stays open until its outermost visit ends.
		if !isOpen {
			delete(t.open, node)
		}
		if err != nil {
			return err
		}
	}

	return t.visitor.Visit(c, PostOrder)
}

func (t *Traverser) children(ctx context.Context, c *TraverserContext) error {
	child := func(next schema.Schema, mode EntryMode, hop string, inPathSpec bool) *TraverserContext {
		spec := forkPath(c.PathSpec)
		if inPathSpec {
			spec = append(spec, hop)
		}
		return &TraverserContext{
			Current:        next,
			Parent:         c.Current,
			EntryMode:      mode,
			TraversePath:   forkPath(c.TraversePath, hop),
			PathSpec:       spec,
			VisitorContext: c.VisitorContext,
		}
	}

	switch s := c.Current.(type) {
	case *schema.Typeref:
		if s.Ref != nil {
			return t.recurse(ctx, child(s.Ref, EntryTyperefRef, schema.RefSegment, false))
		}
	case *schema.Map:
		if s.Key != nil {
			if err := t.recurse(ctx, child(s.Key, EntryMapKey, schema.MapKey, true)); err != nil {
				return err
			}
		}
		if s.Values != nil {
			return t.recurse(ctx, child(s.Values, EntryMapValue, schema.Wildcard, true))
		}
	case *schema.Array:
		if s.Items != nil {
			return t.recurse(ctx, child(s.Items, EntryArrayItem, schema.Wildcard, true))
		}
	case *schema.Record:
		for _, f := range s.Fields {
			if f.Type == nil {
				continue
			}
			next := child(f.Type, EntryField, f.Name, true)
			next.EnclosingField = f
			if err := t.recurse(ctx, next); err != nil {
				return err
			}
		}
	case *schema.Union:
		for _, m := range s.Members {
			if m.Type == nil {
				continue
			}
			next := child(m.Type, EntryUnionMember, m.Key(), true)
			next.EnclosingMember = m
			if err := t.recurse(ctx, next); err != nil {
				return err
			}
		}
	case *schema.Primitive, *schema.Enum, *schema.Fixed:
	default:
		return contractViolation("unknown schema node %T", c.Current)
	}
	return nil
}
