package annotation

import (
	schema "github.com/speakeasy-api/schemaannotate"
)

// validationVisitor hands every node of a resolved graph to one handler's
// Validate.
type validationVisitor struct {
	handler  Handler
	messages *messageList
}

func newValidationVisitor(h Handler) *validationVisitor {
	return &validationVisitor{
		handler:  h,
		messages: newMessageList(h.Namespace()),
	}
}

func (v *validationVisitor) InitialContext() any { return nil }

func (v *validationVisitor) Visit(c *TraverserContext, order Order) error {
	if order != PreOrder {
		return nil
	}
	node := c.Current
	res := v.handler.Validate(clonePath(c.PathSpec), node.ResolvedProperties(), node, ValidationMeta{
		IsLeaf: schema.IsLeaf(node),
	})
	if !res.Valid {
		for _, m := range res.Messages {
			v.messages.add(c.PathSpec, CategoryValidateFailed, "%s", m)
		}
		if len(res.Messages) == 0 {
			v.messages.add(c.PathSpec, CategoryValidateFailed, "validation failed")
		}
	}
	return nil
}

// resolvedCollector records the resolved properties of every leaf reached.
type resolvedCollector struct {
	out map[string]schema.Properties
}

func (r *resolvedCollector) InitialContext() any { return nil }

func (r *resolvedCollector) Visit(c *TraverserContext, order Order) error {
	if order != PreOrder || !schema.IsLeaf(c.Current) {
		return nil
	}
	props := c.Current.ResolvedProperties().Clone()
	if props == nil {
		props = schema.Properties{}
	}
	r.out[schema.JoinPathSpec(c.PathSpec)] = props
	return nil
}
