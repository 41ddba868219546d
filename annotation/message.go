package annotation

import (
	"fmt"
	"strings"

	schema "github.com/speakeasy-api/schemaannotate"
)

// Category classifies an engine or handler message.
type Category int

const (
	CategoryMalformedPathSpec Category = iota
	CategoryInvalidOverrides
	CategoryPathTooShort
	CategoryPathTooLong
	CategoryUnreachable
	CategoryCyclicOverride
	CategoryResolveFailed
	CategoryValidateFailed
)

func (c Category) String() string {
	switch c {
	case CategoryMalformedPathSpec:
		return "malformed-pathspec"
	case CategoryInvalidOverrides:
		return "invalid-overrides"
	case CategoryPathTooShort:
		return "path-too-short"
	case CategoryPathTooLong:
		return "path-too-long"
	case CategoryUnreachable:
		return "unreachable"
	case CategoryCyclicOverride:
		return "cyclic-override"
	case CategoryResolveFailed:
		return "resolve-failed"
	case CategoryValidateFailed:
		return "validate-failed"
	default:
		panic(c)
	}
}

// Message is a recoverable problem found while resolving or validating.
type Message struct {
	// Namespace is the annotation namespace of the handler that was running.
	Namespace string
	// Path locates the problem: a detailed traverse path for engine
	// messages, a PathSpec path for handler messages.
	Path     []string
	Category Category
	Text     string
}

func (m Message) String() string {
	return fmt.Sprintf("ERROR :: %s :: %s", schema.JoinPathSpec(m.Path), m.Text)
}

// messageList accumulates the messages of one traversal.
type messageList struct {
	namespace string
	msgs      []Message
}

func newMessageList(namespace string) *messageList {
	return &messageList{namespace: namespace}
}

func (l *messageList) add(path []string, cat Category, format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	l.msgs = append(l.msgs, Message{
		Namespace: l.namespace,
		Path:      clonePath(path),
		Category:  cat,
		Text:      text,
	})
}

func (l *messageList) failed() bool { return len(l.msgs) > 0 }

// format renders the messages one per line.
func (l *messageList) format() string {
	var b strings.Builder
	for _, m := range l.msgs {
		b.WriteString(m.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func clonePath(p []string) []string {
	out := make([]string, len(p))
	copy(out, p)
	return out
}

// forkPath returns a copy of p extended by segs, with room for one more
// segment so the callee can append its own component without reallocating
// a shared backing array.
func forkPath(p []string, segs ...string) []string {
	out := make([]string, len(p), len(p)+len(segs)+1)
	copy(out, p)
	return append(out, segs...)
}
