package annotation

import (
	"context"
	"testing"

	schema "github.com/speakeasy-api/schemaannotate"
)

const testNS = "validate"

// overrides builds an override map value.
func overrides(kv ...string) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = NewNoopLogger()
	return opts
}

func mustProcess(t *testing.T, root schema.Schema, handlers ...Handler) *Result {
	t.Helper()
	return mustProcessWith(t, quietOptions(), root, handlers...)
}

func mustProcessWith(t *testing.T, opts Options, root schema.Schema, handlers ...Handler) *Result {
	t.Helper()
	if len(handlers) == 0 {
		handlers = []Handler{NewFirstWinsHandler(testNS)}
	}
	res, err := Process(context.Background(), handlers, root, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	return res
}

func mustResolve(t *testing.T, res *Result, path string) schema.Properties {
	t.Helper()
	props, err := GetResolvedPropertiesByPath(path, res.Schema)
	if err != nil {
		t.Fatalf("GetResolvedPropertiesByPath(%q): %v", path, err)
	}
	return props
}

func requireSuccess(t *testing.T, res *Result) {
	t.Helper()
	if res.HasError() {
		t.Fatalf("unexpected failure:\n%s", res.ErrorText)
	}
}

func messagesOf(res *Result, cat Category) []Message {
	var out []Message
	for _, m := range res.Messages {
		if m.Category == cat {
			out = append(out, m)
		}
	}
	return out
}

// recordingHandler keeps the candidates handed to Resolve per PathSpec.
type recordingHandler struct {
	*FirstWinsHandler
	seen map[string][]Candidate
}

func newRecordingHandler(ns string) *recordingHandler {
	return &recordingHandler{
		FirstWinsHandler: NewFirstWinsHandler(ns),
		seen:             make(map[string][]Candidate),
	}
}

func (h *recordingHandler) Resolve(candidates []Candidate, meta ResolutionMeta) ResolutionResult {
	h.seen[schema.JoinPathSpec(meta.Path)] = candidates
	return h.FirstWinsHandler.Resolve(candidates, meta)
}
