package annotation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	schema "github.com/speakeasy-api/schemaannotate"
)

func simpleSchema() *schema.Record {
	sRec := schema.NewRecord("com.example.S", schema.NewField("v", schema.StringType()))
	return schema.NewRecord("com.example.R",
		schema.NewField("f", sRec).WithProperty(testNS, overrides("/v", "bad")),
	)
}

func TestProcessChainsHandlers(t *testing.T) {
	leaf := schema.StringType()
	sRec := schema.NewRecord("com.example.S", schema.NewField("v", leaf))
	root := schema.NewRecord("com.example.R",
		schema.NewField("f", sRec).
			WithProperty("first", overrides("/v", "A")).
			WithProperty("second", overrides("/v", "B")),
		schema.NewField("g", sRec).WithProperty("second", overrides("/v", "C")),
	)

	var sawFirst bool
	second := HandlerFuncs{
		NS: "second",
		ResolveFunc: func(c []Candidate, meta ResolutionMeta) ResolutionResult {
			if _, ok := meta.Node.ResolvedProperties().Lookup("first"); ok {
				sawFirst = true
			}
			return ResolutionResult{Resolved: schema.Properties{"second": c[0].Value}}
		},
	}

	res := mustProcess(t, root, NewFirstWinsHandler("first"), second)
	requireSuccess(t, res)

	if diff := cmp.Diff(schema.Properties{"first": "A", "second": "B"}, mustResolve(t, res, "/f/v")); diff != "" {
		t.Errorf("/f/v mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(schema.Properties{"second": "C"}, mustResolve(t, res, "/g/v")); diff != "" {
		t.Errorf("/g/v mismatch (-want +got):\n%s", diff)
	}
	if !sawFirst {
		t.Error("the second handler should see the first handler's results")
	}
	if leaf.ResolvedProperties() != nil {
		t.Error("the input graph must not be modified")
	}
}

func TestProcessValidationFailure(t *testing.T) {
	var validated []string
	h := HandlerFuncs{
		NS: testNS,
		ValidateFunc: func(path []string, resolved schema.Properties, node schema.Schema, meta ValidationMeta) ValidationResult {
			validated = append(validated, schema.JoinPathSpec(path))
			if meta.IsLeaf && resolved[testNS] == "bad" {
				return ValidationResult{Messages: []string{"bad value"}}
			}
			return ValidationResult{Valid: true}
		},
	}

	res := mustProcess(t, simpleSchema(), h)
	if !res.ResolutionSuccess {
		t.Fatalf("resolution should succeed:\n%s", res.ErrorText)
	}
	if res.ValidationSuccess {
		t.Fatal("expected validation failure")
	}
	if diff := cmp.Diff([]string{"/", "/f", "/f/v"}, validated); diff != "" {
		t.Errorf("validated nodes mismatch (-want +got):\n%s", diff)
	}

	want := "Annotation processing encountered errors during validation in \"validate\" handler. \n" +
		"ERROR :: /f/v :: bad value\n"
	if res.ErrorText != want {
		t.Errorf("error text mismatch:\n got: %q\nwant: %q", res.ErrorText, want)
	}
	if m := messagesOf(res, CategoryValidateFailed); len(m) != 1 || m[0].Namespace != testNS {
		t.Errorf("unexpected validation messages: %v", res.Messages)
	}
}

func TestProcessSkipValidation(t *testing.T) {
	called := false
	h := HandlerFuncs{
		NS: testNS,
		ValidateFunc: func([]string, schema.Properties, schema.Schema, ValidationMeta) ValidationResult {
			called = true
			return ValidationResult{}
		},
	}
	opts := quietOptions()
	opts.SkipValidation = true

	res := mustProcessWith(t, opts, simpleSchema(), h)
	requireSuccess(t, res)
	if called {
		t.Error("validation should be skipped")
	}
}

func TestProcessResolveFailureSkipsValidation(t *testing.T) {
	validations := 0
	h := HandlerFuncs{
		NS: testNS,
		ResolveFunc: func([]Candidate, ResolutionMeta) ResolutionResult {
			return ResolutionResult{Failed: true, Messages: []string{"boom"}}
		},
		ValidateFunc: func([]string, schema.Properties, schema.Schema, ValidationMeta) ValidationResult {
			validations++
			return ValidationResult{Valid: true}
		},
	}

	root := simpleSchema()
	res := mustProcess(t, root, h)
	if res.ResolutionSuccess || res.ValidationSuccess {
		t.Fatal("expected resolution failure")
	}
	if validations != 0 {
		t.Errorf("validation ran %d times after a resolution failure", validations)
	}
	if res.Schema != root {
		t.Error("a failed resolution keeps the last successful schema")
	}

	want := "Annotation processing encountered errors during resolution in \"validate\" handler. \n" +
		"ERROR :: /f/v :: Annotations override resolution failed in handlers for validate\n" +
		"ERROR :: /f/v :: boom\n" +
		"Annotation processing failed when processing resolution by at least one of the handlers"
	if res.ErrorText != want {
		t.Errorf("error text mismatch:\n got: %q\nwant: %q", res.ErrorText, want)
	}
}

func TestProcessContractViolations(t *testing.T) {
	h := HandlerFuncs{
		NS: testNS,
		ResolveFunc: func([]Candidate, ResolutionMeta) ResolutionResult {
			panic("handler bug")
		},
	}
	_, err := Process(context.Background(), []Handler{h}, simpleSchema(), quietOptions())
	if !errors.Is(err, ErrContractViolation) {
		t.Fatalf("expected ErrContractViolation, got %v", err)
	}
	if !strings.Contains(err.Error(), "namespace validate") {
		t.Errorf("error should name the namespace: %v", err)
	}
}

func TestProcessInvalidInput(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		handlers []Handler
		schema   schema.Schema
		want     error
	}{
		{"nil schema", nil, nil, ErrNilSchema},
		{"nil handler", []Handler{nil}, simpleSchema(), ErrInvalidArgument},
		{"empty namespace", []Handler{NewFirstWinsHandler("")}, simpleSchema(), ErrInvalidArgument},
		{"duplicate namespace", []Handler{NewFirstWinsHandler("a"), NewFirstWinsHandler("a")}, simpleSchema(), ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(ctx, tt.handlers, tt.schema, quietOptions())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProcessWithoutHandlersReturnsInput(t *testing.T) {
	root := simpleSchema()
	res, err := Process(context.Background(), nil, root, quietOptions())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	requireSuccess(t, res)
	if res.Schema != root {
		t.Error("without handlers the input is the result")
	}
}

func TestGetResolvedPropertiesByPathErrors(t *testing.T) {
	res := mustProcess(t, simpleSchema())
	requireSuccess(t, res)

	tests := []struct {
		path string
		want error
	}{
		{"", ErrInvalidPath},
		{"/", ErrInvalidPath},
		{"f/v", ErrInvalidPath},
		{"/f/", ErrInvalidPath},
		{"/f//v", ErrInvalidPath},
		{"/missing", ErrPathNotFound},
		{"/f/v/deeper", ErrPathNotFound},
		{"/f/*", ErrPathNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := GetResolvedPropertiesByPath(tt.path, res.Schema)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("lookup errors are argument errors, got %v", err)
			}
		})
	}

	_, err := GetResolvedPropertiesByPath("/missing", res.Schema)
	if want := "Could not find path segment {missing} in PathSpec {/missing}"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should contain %q", err, want)
	}
	if _, err := GetResolvedPropertiesByPath("/f", nil); !errors.Is(err, ErrNilSchema) {
		t.Errorf("nil schema: got %v", err)
	}
}

func TestResolvedPropertiesRoundTrip(t *testing.T) {
	item := schema.NewRecord("com.example.Item", schema.NewField("name", schema.StringType()))
	urn := schema.Annotate(schema.NewTyperef("com.example.Urn", schema.StringType()), testNS, "URN")
	node := schema.NewRecord("com.example.Node")
	node.AddFields(
		schema.NewField("id", urn),
		schema.NewField("items", schema.ArrayOf(item)).WithProperty(testNS, overrides("/*/name", "N")),
		schema.NewField("tags", schema.MapOf(schema.IntType())).WithProperty(testNS, overrides("/$key", "K")),
		schema.NewField("child", node).AsOptional(),
	)

	res := mustProcess(t, node)
	requireSuccess(t, res)

	collected, err := CollectResolvedProperties(context.Background(), res.Schema)
	if err != nil {
		t.Fatalf("CollectResolvedProperties: %v", err)
	}

	want := map[string]schema.Properties{
		"/id":           {testNS: "URN"},
		"/items/*/name": {testNS: "N"},
		"/tags/$key":    {testNS: "K"},
		"/tags/*":       {},
	}
	if diff := cmp.Diff(want, collected); diff != "" {
		t.Fatalf("collected mismatch (-want +got):\n%s", diff)
	}
	for path, props := range collected {
		got, err := GetResolvedPropertiesByPath(path, res.Schema)
		if err != nil {
			t.Fatalf("lookup %s: %v", path, err)
		}
		if diff := cmp.Diff(props, got); diff != "" {
			t.Errorf("%s round trip mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func TestProcessLogsThroughOptionsLogger(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = NewLogger(LevelDebug, &buf)

	res, err := Process(context.Background(), []Handler{NewFirstWinsHandler(testNS)}, simpleSchema(), opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	requireSuccess(t, res)

	out := buf.String()
	for _, want := range []string{"[DEBUG]", "processing record com.example.R{f}", "namespace=validate"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output should contain %q:\n%s", want, out)
		}
	}
}
