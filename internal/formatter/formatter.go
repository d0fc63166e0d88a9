// package formatter provides functions to export statements and entity states to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/jmmunozr/semdata/internal/graph"
	"github.com/jmmunozr/semdata/internal/mapping"
)

// Format names an export format accepted by [Export].
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a format name, accepting "nt"/"ntriples" for text and "md" for Markdown.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "nt", "ntriples":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", name)
	}
}

// Export renders statements in format. The title is only used by Markdown.
func Export(statements []graph.Statement, format Format, title string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(statements)
	case FormatMarkdown:
		return ExportToMarkdown(title, statements)
	case FormatText:
		return ExportToText(statements)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportToCSV converts statements to CSV format with columns: Subject, Predicate, Object, Context
func ExportToCSV(statements []graph.Statement) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Subject", "Predicate", "Object", "Context"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range statements {
		record := []string{
			s.Subject.NTriples(),
			s.Predicate.NTriples(),
			s.Object.NTriples(),
			s.Context,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts statements to a Markdown table under a heading
func ExportToMarkdown(title string, statements []graph.Statement) ([]byte, error) {
	var buf bytes.Buffer

	if title != "" {
		buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	}
	buf.WriteString(fmt.Sprintf("**Statements**: %d\n\n", len(statements)))

	if len(statements) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| Subject | Predicate | Object | Context |\n")
	buf.WriteString("|---|---|---|---|\n")
	for _, s := range statements {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			markdownCell(s.Subject.NTriples()),
			markdownCell(s.Predicate.NTriples()),
			markdownCell(s.Object.NTriples()),
			markdownCell(s.Context),
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts statements to an N-Triples document
func ExportToText(statements []graph.Statement) ([]byte, error) {
	return []byte(graph.EncodeNTriples(statements)), nil
}

// ExportStateToText renders a loaded entity state as "name: value" lines sorted by property name.
// Nested states are indented under their property.
func ExportStateToText(state *mapping.State) ([]byte, error) {
	var buf bytes.Buffer
	writeState(&buf, state, 0, make(map[*mapping.State]bool))
	return buf.Bytes(), nil
}

func writeState(buf *bytes.Buffer, state *mapping.State, depth int, seen map[*mapping.State]bool) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(fmt.Sprintf("%s%s %s\n", indent, state.Type, state.Subject.NTriples()))
	if seen[state] {
		return
	}
	seen[state] = true

	values := state.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		items, multiple := values[name].([]any)
		if !multiple {
			items = []any{values[name]}
		}
		for _, item := range items {
			if nested, ok := item.(*mapping.State); ok {
				buf.WriteString(fmt.Sprintf("%s  %s:\n", indent, name))
				writeState(buf, nested, depth+2, seen)
				continue
			}
			buf.WriteString(fmt.Sprintf("%s  %s: %v\n", indent, name, item))
		}
	}
}

func markdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteExport renders statements and writes them to path.
//
// Defaults to statements.{ext} in the working directory when path is empty.
func WriteExport(statements []graph.Statement, format Format, title, path string) (string, error) {
	if path == "" {
		path = "statements" + format.Extension()
	}

	data, err := Export(statements, format, title)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// Extension returns the file extension, with the dot, used for f.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	default:
		return ".nt"
	}
}
