package annotation

import (
	"testing"

	schema "github.com/speakeasy-api/schemaannotate"
)

func TestFingerprintIsDeterministic(t *testing.T) {
	fp := NewFingerprinter()

	a := mustProcess(t, simpleSchema())
	b := mustProcess(t, simpleSchema())
	if fp.Fingerprint(a.Schema) != fp.Fingerprint(b.Schema) {
		t.Error("identical inputs should produce identical fingerprints")
	}
	if a.Fingerprint() != fp.Fingerprint(a.Schema) {
		t.Error("Result.Fingerprint should agree with a fresh fingerprinter")
	}
}

func TestFingerprintCoversResolvedProperties(t *testing.T) {
	fp := NewFingerprinter()

	raw := simpleSchema()
	res := mustProcess(t, simpleSchema())
	if fp.Fingerprint(raw) == fp.Fingerprint(res.Schema) {
		t.Error("resolution should change the fingerprint")
	}

	other := simpleSchema()
	other.Fields[0].Properties[testNS] = overrides("/v", "good")
	if fp.Fingerprint(res.Schema) == fp.Fingerprint(mustProcess(t, other).Schema) {
		t.Error("different resolved values should produce different fingerprints")
	}
}

func TestFingerprintPropertyOrderIndependent(t *testing.T) {
	fp := NewFingerprinter()
	a := schema.Annotate(schema.StringType(), "x", map[string]any{"a": 1, "b": []any{"y", "z"}})
	b := schema.Annotate(schema.StringType(), "x", schema.Properties{"b": []any{"y", "z"}, "a": 1})
	if fp.Fingerprint(a) != fp.Fingerprint(b) {
		t.Error("property maps should be canonicalized")
	}
}

func TestFingerprintTerminatesOnCycles(t *testing.T) {
	node := schema.NewRecord("com.example.Node")
	node.AddFields(schema.NewField("next", node), schema.NewField("v", schema.IntType()))

	fp := NewFingerprinter()
	sum := fp.Fingerprint(node)
	if sum == "" || sum == "bottom" {
		t.Fatalf("unexpected fingerprint %q", sum)
	}
	fp.Reset()
	if fp.Fingerprint(node) != sum {
		t.Error("fingerprint should be stable across resets")
	}
	if fp.Fingerprint(nil) != "bottom" {
		t.Error("nil schema fingerprints as bottom")
	}
}

func TestFingerprintKeepsEnumSymbolOrder(t *testing.T) {
	fp := NewFingerprinter()
	ab := schema.NewEnum("com.example.E", "A", "B")
	ba := schema.NewEnum("com.example.E", "B", "A")
	if fp.Fingerprint(ab) == fp.Fingerprint(ba) {
		t.Error("enums with reordered symbols should not share a fingerprint")
	}
	if fp.Fingerprint(ab) != fp.Fingerprint(schema.NewEnum("com.example.E", "A", "B")) {
		t.Error("equal enums should share a fingerprint")
	}
}
