package annotation

import (
	schema "github.com/speakeasy-api/schemaannotate"
)

// Candidate is one (pathspec, value) pair offered to a handler for a leaf.
// Direct annotations carry an empty PathSpec.
type Candidate struct {
	PathSpec string
	Value    any
	Origin   OriginKind
}

// ResolutionMeta describes where a resolution happens.
type ResolutionMeta struct {
	// Path is the PathSpec path of the leaf, without typeref hops.
	Path []string
	// Node is the source leaf being resolved.
	Node schema.Schema
}

// ResolutionResult is what a handler returns from Resolve.
type ResolutionResult struct {
	Resolved schema.Properties
	Failed   bool
	Messages []string
}

// ValidationMeta carries extra facts about the node being validated.
type ValidationMeta struct {
	IsLeaf bool
}

// ValidationResult is what a handler returns from Validate.
type ValidationResult struct {
	Valid    bool
	Messages []string
}

// Handler owns one annotation namespace. Resolve merges the candidates for a
// leaf into its resolved properties; candidates arrive ordered by
// precedence (see CandidateOrder). Validate checks a node of the resolved
// schema.
type Handler interface {
	Namespace() string
	Resolve(candidates []Candidate, meta ResolutionMeta) ResolutionResult
	Validate(path []string, resolved schema.Properties, node schema.Schema, meta ValidationMeta) ValidationResult
}

// FirstWinsHandler resolves a leaf to the first candidate's value and
// accepts every node.
type FirstWinsHandler struct {
	ns string
}

// NewFirstWinsHandler returns a FirstWinsHandler for namespace ns.
func NewFirstWinsHandler(ns string) *FirstWinsHandler {
	return &FirstWinsHandler{ns: ns}
}

func (h *FirstWinsHandler) Namespace() string { return h.ns }

func (h *FirstWinsHandler) Resolve(candidates []Candidate, _ ResolutionMeta) ResolutionResult {
	if len(candidates) == 0 {
		return ResolutionResult{
			Resolved: schema.Properties{},
			Failed:   true,
			Messages: []string{"no candidate values to resolve"},
		}
	}
	return ResolutionResult{Resolved: schema.Properties{h.ns: candidates[0].Value}}
}

func (h *FirstWinsHandler) Validate([]string, schema.Properties, schema.Schema, ValidationMeta) ValidationResult {
	return ValidationResult{Valid: true}
}

// HandlerFuncs adapts plain functions to a Handler. A nil ResolveFunc
// behaves like FirstWinsHandler; a nil ValidateFunc accepts every node.
type HandlerFuncs struct {
	NS           string
	ResolveFunc  func(candidates []Candidate, meta ResolutionMeta) ResolutionResult
	ValidateFunc func(path []string, resolved schema.Properties, node schema.Schema, meta ValidationMeta) ValidationResult
}

func (h HandlerFuncs) Namespace() string { return h.NS }

func (h HandlerFuncs) Resolve(candidates []Candidate, meta ResolutionMeta) ResolutionResult {
	if h.ResolveFunc == nil {
		return NewFirstWinsHandler(h.NS).Resolve(candidates, meta)
	}
	return h.ResolveFunc(candidates, meta)
}

func (h HandlerFuncs) Validate(path []string, resolved schema.Properties, node schema.Schema, meta ValidationMeta) ValidationResult {
	if h.ValidateFunc == nil {
		return ValidationResult{Valid: true}
	}
	return h.ValidateFunc(path, resolved, node, meta)
}
