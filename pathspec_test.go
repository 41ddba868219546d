package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidatePathSpec(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"/", true},
		{"/a", true},
		{"/a/b/*/$key", true},
		{"", false},
		{"a/b", false},
		{"/a/", false},
		{"/a//b", false},
		{"//", false},
	}
	for _, tt := range tests {
		if got := ValidatePathSpec(tt.in); got != tt.want {
			t.Errorf("ValidatePathSpec(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitAndJoinPathSpec(t *testing.T) {
	segs := SplitPathSpec("/a/*/$key")
	if diff := cmp.Diff([]string{"a", "*", "$key"}, segs); diff != "" {
		t.Fatalf("SplitPathSpec mismatch (-want +got):\n%s", diff)
	}
	if got := JoinPathSpec(segs); got != "/a/*/$key" {
		t.Errorf("JoinPathSpec = %q", got)
	}
	if got := SplitPathSpec("/"); len(got) != 0 {
		t.Errorf("SplitPathSpec(/) = %v, want empty", got)
	}
	if got := JoinPathSpec(nil); got != "/" {
		t.Errorf("JoinPathSpec(nil) = %q, want /", got)
	}
}

func TestParsePrimitiveType(t *testing.T) {
	if pt, ok := ParsePrimitiveType("long"); !ok || pt != TypeLong {
		t.Errorf("ParsePrimitiveType(long) = %q, %v", pt, ok)
	}
	if _, ok := ParsePrimitiveType("decimal"); ok {
		t.Error("decimal is not a primitive type")
	}
}
