package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	schema "github.com/speakeasy-api/schemaannotate"
)

// Row is one line of a resolved-properties table.
type Row struct {
	Component string
	Path      string
	Namespace string
	Value     string
}

// Rows flattens resolved properties into table rows sorted by path and
// namespace. Leaves without resolved properties are skipped.
func Rows(component string, resolved map[string]schema.Properties) []Row {
	paths := make([]string, 0, len(resolved))
	for p := range resolved {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var rows []Row
	for _, p := range paths {
		for _, ns := range resolved[p].Keys() {
			rows = append(rows, Row{
				Component: component,
				Path:      p,
				Namespace: ns,
				Value:     formatValue(resolved[p][ns]),
			})
		}
	}
	return rows
}

// TableOptions controls table rendering.
type TableOptions struct {
	// MaxValueWidth truncates values wider than this many cells (0: no limit).
	MaxValueWidth int
	// Color highlights the header and component names with ANSI escapes.
	Color bool
}

const (
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"
	ansiReset = "\x1b[0m"
)

// WriteTable renders rows as aligned columns. Widths are measured in
// terminal cells so wide characters line up.
func WriteTable(w io.Writer, rows []Row, opts TableOptions) error {
	header := []string{"COMPONENT", "PATH", "NAMESPACE", "VALUE"}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		value := r.Value
		if opts.MaxValueWidth > 0 {
			value = runewidth.Truncate(value, opts.MaxValueWidth, "...")
		}
		cells = append(cells, []string{r.Component, r.Path, r.Namespace, value})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range cells {
		for i, c := range row {
			if cw := runewidth.StringWidth(c); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	var b strings.Builder
	writeRow := func(row []string, style func(col int, s string) string) {
		for i, c := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			padded := c
			if i < len(row)-1 {
				padded = runewidth.FillRight(c, widths[i])
			}
			b.WriteString(style(i, padded))
		}
		b.WriteByte('\n')
	}

	plain := func(_ int, s string) string { return s }
	headerStyle, rowStyle := plain, plain
	if opts.Color {
		headerStyle = func(_ int, s string) string { return ansiBold + s + ansiReset }
		rowStyle = func(col int, s string) string {
			if col == 0 {
				return ansiCyan + s + ansiReset
			}
			return s
		}
	}

	writeRow(header, headerStyle)
	for _, row := range cells {
		writeRow(row, rowStyle)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
	}
}
