package annotation

import (
	"fmt"

	schema "github.com/speakeasy-api/schemaannotate"
)

// CandidateOrder selects how candidates for a leaf are ordered before they
// are handed to Handler.Resolve.
type CandidateOrder int

const (
	// NearestFirst puts overrides declared closest to the leaf first, then
	// direct annotations from the usage site inwards, ending with the
	// annotation declared on the leaf type itself.
	NearestFirst CandidateOrder = iota
	// OutermostFirst keeps declaration order: overrides from the outermost
	// declaring schema first, direct annotations last.
	OutermostFirst
)

func (o CandidateOrder) String() string {
	switch o {
	case NearestFirst:
		return "nearest-first"
	case OutermostFirst:
		return "outermost-first"
	default:
		panic(o)
	}
}

// ParseCandidateOrder parses the names produced by CandidateOrder.String.
func ParseCandidateOrder(s string) (CandidateOrder, error) {
	switch s {
	case "nearest-first", "":
		return NearestFirst, nil
	case "outermost-first":
		return OutermostFirst, nil
	default:
		return NearestFirst, fmt.Errorf("%w: unknown candidate order %q", ErrInvalidArgument, s)
	}
}

// Options configures annotation processing.
type Options struct {
	// Candidate ordering handed to handlers (default: NearestFirst)
	CandidateOrder CandidateOrder

	// SkipValidation skips the validation pass after a successful resolution (default: false)
	SkipValidation bool

	// Logging configuration
	LogLevel string // "error", "warn", "info", "debug" (default: "warn")
	// Logger overrides the logger built from LogLevel. Output goes to stderr when nil.
	Logger Logger
	// Max entries shown when a log line summarizes a schema (default: 5)
	LogMaxFields int
}

// DefaultOptions returns the default processing configuration.
func DefaultOptions() Options {
	return Options{
		CandidateOrder: NearestFirst,
		SkipValidation: false,
		LogLevel:       "warn",
		LogMaxFields:   5,
	}
}

// Result is the outcome of Process.
type Result struct {
	// Schema is the resolved graph. When resolution fails it is the graph
	// produced by the last handler that succeeded, or the input.
	Schema            schema.Schema
	ResolutionSuccess bool
	ValidationSuccess bool
	// ErrorText is the human readable report of every failing pass.
	ErrorText string
	// Messages holds the structured messages behind ErrorText.
	Messages []Message
}

// HasError reports whether resolution or validation failed.
func (r *Result) HasError() bool {
	return !r.ResolutionSuccess || !r.ValidationSuccess
}

// Fingerprint returns a deterministic hash of the resolved schema,
// including resolved properties.
func (r *Result) Fingerprint() string {
	return NewFingerprinter().Fingerprint(r.Schema)
}

// String returns a string representation of the result for debugging.
func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	msgs := ""
	if len(r.Messages) > 0 {
		msgs = fmt.Sprintf(" (messages: %d)", len(r.Messages))
	}
	return fmt.Sprintf("Result{Schema: %p, resolved: %t, validated: %t%s}",
		r.Schema, r.ResolutionSuccess, r.ValidationSuccess, msgs)
}
