// Package report renders annotation processing results for people.
package report

import (
	"fmt"
	"strings"

	schema "github.com/speakeasy-api/schemaannotate"
	"github.com/speakeasy-api/schemaannotate/annotation"
)

// FormatMessages turns engine and handler messages into a user-facing
// report grouped by namespace.
func FormatMessages(msgs []annotation.Message) string {
	if len(msgs) == 0 {
		return "Annotation processing failed, but no additional details were provided."
	}

	var b strings.Builder
	b.WriteString("Annotation processing failed.\n")

	namespace := ""
	for i, m := range msgs {
		if i == 0 || m.Namespace != namespace {
			namespace = m.Namespace
			fmt.Fprintf(&b, "\n[%s]\n", namespace)
		}
		summary, hint := classifyAndHint(m.Category)

		fmt.Fprintf(&b, "- %s\n", summary)
		fmt.Fprintf(&b, "  Location: %s\n", schema.JoinPathSpec(m.Path))
		if hint != "" {
			fmt.Fprintf(&b, "  How to fix: %s\n", hint)
		}
		if details := extractDetails(m.Text); details != "" {
			fmt.Fprintf(&b, "  Details: %s\n", details)
		}
	}

	return b.String()
}

func classifyAndHint(c annotation.Category) (msg, hint string) {
	switch c {
	case annotation.CategoryMalformedPathSpec:
		msg = "Override key is not a valid path."
		hint = `Override keys start with "/" and name fields, "*" for array items or map values, or "$key" for map keys, e.g. "/address/zip".`
	case annotation.CategoryInvalidOverrides:
		msg = "Annotation on a complex field must be an override map."
		hint = `Fields whose type is a record, union, map or array take a map of path to value, e.g. {"/zip": ...}.`
	case annotation.CategoryPathTooShort:
		msg = "Override path stops before reaching a leaf."
		hint = "Extend the path down to a primitive, enum or fixed field."
	case annotation.CategoryPathTooLong:
		msg = "Override path continues past a leaf."
		hint = "Remove the trailing segments after the primitive field."
	case annotation.CategoryUnreachable:
		msg = "Override path does not match the schema."
		hint = "Check field names and union member keys along the path. Typerefs are transparent and must not appear in the path."
	case annotation.CategoryCyclicOverride:
		msg = "Overrides reference each other in a cycle."
		hint = "Move the override to the record that declares the target field, or drop one side of the cycle."
	case annotation.CategoryResolveFailed:
		msg = "The handler could not resolve the annotation."
	case annotation.CategoryValidateFailed:
		msg = "The resolved annotation is not valid."
	default:
		msg = "Annotation processing error."
	}
	return msg, hint
}

func extractDetails(s string) string {
	// Engine texts repeat the path; keep what follows the last separator.
	if idx := strings.LastIndex(s, " :: "); idx != -1 {
		s = s[idx+4:]
	}
	return strings.TrimSpace(s)
}
