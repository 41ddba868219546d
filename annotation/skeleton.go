package annotation

import (
	schema "github.com/speakeasy-api/schemaannotate"
)

// buildSkeleton copies s without its children: records lose their fields,
// unions their members, maps and arrays their element types and typerefs
// their target. Leaves are copied whole, resolved properties included, so
// that a later handler builds on an earlier handler's results.
func buildSkeleton(s schema.Schema) schema.Schema {
	switch v := s.(type) {
	case *schema.Primitive:
		out := &schema.Primitive{Type: v.Type}
		copyNodeProperties(out, v)
		return out
	case *schema.Enum:
		out := &schema.Enum{
			FullName: v.FullName,
			Doc:      v.Doc,
			Symbols:  append([]string(nil), v.Symbols...),
		}
		copyNodeProperties(out, v)
		return out
	case *schema.Fixed:
		out := &schema.Fixed{FullName: v.FullName, Doc: v.Doc, Size: v.Size}
		copyNodeProperties(out, v)
		return out
	case *schema.Record:
		out := &schema.Record{
			FullName: v.FullName,
			Doc:      v.Doc,
			Aliases:  append([]string(nil), v.Aliases...),
			Includes: append([]*schema.Record(nil), v.Includes...),
		}
		out.SetProperties(v.Properties().Clone())
		return out
	case *schema.Union:
		out := &schema.Union{}
		out.SetProperties(v.Properties().Clone())
		return out
	case *schema.Map:
		out := &schema.Map{}
		out.SetProperties(v.Properties().Clone())
		return out
	case *schema.Array:
		out := &schema.Array{}
		out.SetProperties(v.Properties().Clone())
		return out
	case *schema.Typeref:
		out := &schema.Typeref{
			FullName: v.FullName,
			Doc:      v.Doc,
			Aliases:  append([]string(nil), v.Aliases...),
		}
		out.SetProperties(v.Properties().Clone())
		return out
	case nil:
		return nil
	default:
		panic(s.Kind())
	}
}

type leafNode interface {
	schema.Schema
	SetProperties(schema.Properties)
}

func copyNodeProperties(dst leafNode, src schema.Schema) {
	dst.SetProperties(src.Properties().Clone())
	if resolved := src.ResolvedProperties(); len(resolved) > 0 {
		dst.SetResolvedProperties(resolved.Clone())
	}
}

// copyField copies f with a new type and owner.
func copyField(f *schema.Field, typ schema.Schema, owner *schema.Record) *schema.Field {
	return &schema.Field{
		Name:       f.Name,
		Type:       typ,
		Optional:   f.Optional,
		Default:    f.Default,
		Doc:        f.Doc,
		Aliases:    append([]string(nil), f.Aliases...),
		Properties: f.Properties.Clone(),
		Record:     owner,
	}
}

// copyMember copies m with a new type.
func copyMember(m *schema.Member, typ schema.Schema) *schema.Member {
	return &schema.Member{
		Alias:      m.Alias,
		Type:       typ,
		Doc:        m.Doc,
		Properties: m.Properties.Clone(),
	}
}
