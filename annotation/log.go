package annotation

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/itchyny/timefmt-go"

	schema "github.com/speakeasy-api/schemaannotate"
)

// LogLevel selects which engine diagnostics are written. Only debug and
// warn lines are emitted; error and info act as thresholds.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l LogLevel) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "INFO":
		return LevelInfo
	case "DEBUG":
		return LevelDebug
	default:
		return LevelWarn // default
	}
}

// Logger receives the engine's diagnostics. Override matching and
// resolution steps go to Debugf; failed passes go to Warnf.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	// With returns a logger that appends fields to every line.
	With(fields map[string]any) Logger
}

// timestampLayout is a strftime layout rendered with timefmt.
const timestampLayout = "%Y-%m-%dT%H:%M:%SZ"

// writerLogger writes lines of the form
//
//	[LEVEL] 2006-01-02T15:04:05Z message key=value ...
//
// with fields sorted by key.
type writerLogger struct {
	out    io.Writer
	level  LogLevel
	now    func() time.Time
	fields map[string]any
	mu     *sync.Mutex
}

// NewLogger returns a Logger writing at level and above to w, or to
// os.Stderr when w is nil.
func NewLogger(level LogLevel, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &writerLogger{out: w, level: level, now: time.Now, mu: &sync.Mutex{}}
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any)         {}
func (noopLogger) Warnf(string, ...any)          {}
func (l noopLogger) With(map[string]any) Logger { return l }

// NewNoopLogger returns a logger that discards all output.
func NewNoopLogger() Logger { return noopLogger{} }

func (l *writerLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	child := *l
	child.fields = merged
	return &child
}

func (l *writerLogger) Debugf(format string, args ...any) { l.write(LevelDebug, format, args) }
func (l *writerLogger) Warnf(format string, args ...any)  { l.write(LevelWarn, format, args) }

func (l *writerLogger) write(level LogLevel, format string, args []any) {
	if level > l.level {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s ", level, timefmt.Format(l.now().UTC(), timestampLayout))
	fmt.Fprintf(&b, format, args...)

	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fieldValue(l.fields[k]))
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, b.String())
}

// fieldValue quotes strings containing whitespace or control characters.
func fieldValue(v any) string {
	str, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	if strings.IndexFunc(str, func(r rune) bool { return r <= ' ' }) >= 0 {
		return strconv.Quote(str)
	}
	return str
}

// loggerFor returns the logger configured in opts.
func loggerFor(opts Options) Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return NewLogger(ParseLogLevel(opts.LogLevel), nil)
}

// schemaSummary returns a compact one-line representation of a node.
// Collections are truncated to limit entries.
func schemaSummary(s schema.Schema, limit int) string {
	if s == nil {
		return "<nil>"
	}
	switch v := s.(type) {
	case *schema.Primitive:
		return string(v.Type)
	case *schema.Record:
		names := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			names = append(names, f.Name)
		}
		return "record " + v.FullName + "{" + truncateList(names, limit) + "}"
	case *schema.Union:
		keys := make([]string, 0, len(v.Members))
		for _, m := range v.Members {
			keys = append(keys, m.Key())
		}
		return "union[" + truncateList(keys, limit) + "]"
	case *schema.Map:
		return "map[" + schemaSummary(v.Values, 0) + "]"
	case *schema.Array:
		return "array[" + schemaSummary(v.Items, 0) + "]"
	case *schema.Typeref:
		return "typeref " + v.FullName
	case *schema.Enum:
		return "enum " + v.FullName + "(" + truncateList(v.Symbols, limit) + ")"
	case *schema.Fixed:
		return fmt.Sprintf("fixed %s(%d)", v.FullName, v.Size)
	default:
		return fmt.Sprintf("%T", s)
	}
}

// truncateList joins items with "," and appends +N if truncated.
func truncateList(items []string, max int) string {
	if max < 0 || len(items) <= max {
		return strings.Join(items, ",")
	}
	if max == 0 {
		return fmt.Sprintf("+%d", len(items))
	}
	head := items[:max]
	return strings.Join(head, ",") + fmt.Sprintf(",+%d", len(items)-max)
}
