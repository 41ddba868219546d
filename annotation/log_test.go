package annotation

import (
	"bytes"
	"strings"
	"testing"
	"time"

	schema "github.com/speakeasy-api/schemaannotate"
)

func fixedLogger(level LogLevel, buf *bytes.Buffer) Logger {
	l := NewLogger(level, buf).(*writerLogger)
	l.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return l
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := fixedLogger(LevelWarn, &buf).With(map[string]any{"namespace": "validate", "path": "/a b"})

	log.Warnf("resolution reported %d messages", 3)
	log.Debugf("hidden")

	want := "[WARN] 2024-03-09T14:05:07Z resolution reported 3 messages namespace=validate path=\"/a b\"\n"
	if got := buf.String(); got != want {
		t.Errorf("log line mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := fixedLogger(LevelDebug, &buf)
	log.Debugf("d")
	log.Warnf("w")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "[DEBUG]") || !strings.HasPrefix(lines[1], "[WARN]") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	quiet := fixedLogger(LevelError, &buf)
	quiet.Debugf("d")
	quiet.Warnf("w")
	if buf.Len() != 0 {
		t.Errorf("error level should suppress warnings:\n%s", buf.String())
	}

	for in, want := range map[string]LogLevel{"debug": LevelDebug, "INFO": LevelInfo, "warning": LevelWarn, "error": LevelError, "bogus": LevelWarn} {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSchemaSummary(t *testing.T) {
	rec := schema.NewRecord("com.example.R",
		schema.NewField("a", schema.IntType()),
		schema.NewField("b", schema.IntType()),
		schema.NewField("c", schema.IntType()),
	)
	tests := []struct {
		s     schema.Schema
		limit int
		want  string
	}{
		{rec, 2, "record com.example.R{a,b,+1}"},
		{rec, -1, "record com.example.R{a,b,c}"},
		{schema.MapOf(rec), 5, "map[record com.example.R{+3}]"},
		{schema.NewEnum("com.example.E", "X", "Y"), 5, "enum com.example.E(X,Y)"},
		{schema.NewFixed("com.example.F", 4), 5, "fixed com.example.F(4)"},
		{nil, 5, "<nil>"},
	}
	for _, tt := range tests {
		if got := schemaSummary(tt.s, tt.limit); got != tt.want {
			t.Errorf("schemaSummary = %q, want %q", got, tt.want)
		}
	}
}

func TestParseCandidateOrder(t *testing.T) {
	for _, o := range []CandidateOrder{NearestFirst, OutermostFirst} {
		got, err := ParseCandidateOrder(o.String())
		if err != nil || got != o {
			t.Errorf("ParseCandidateOrder(%q) = %v, %v", o.String(), got, err)
		}
	}
	if _, err := ParseCandidateOrder("random"); err == nil {
		t.Error("expected an error for an unknown order")
	}
}
