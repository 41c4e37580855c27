package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	formatAuto  = "auto"
	formatText  = "text"
	formatYAML  = "yaml"
	formatTable = "table"
)

var formats = []string{formatAuto, formatText, formatYAML, formatTable}

// field is a named value of a result, in display order.
type field struct {
	name  string
	value any
}

// result is what a query prints: text is the plain output, fields the structured one.
type result struct {
	text   string
	fields []field
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// print writes r to w in the configured format.
func (a *App) print(w io.Writer, r result) error {
	format := a.config.Format
	if format == formatAuto {
		format = formatText
		if a.options.isTerminal(w) {
			format = formatTable
		}
	}

	switch format {
	case formatText:
		_, err := fmt.Fprintln(w, r.text)
		return err
	case formatYAML:
		return printYAML(w, r.fields)
	case formatTable:
		return printTable(w, r.fields)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// printYAML writes fields as a mapping, keeping their order.
func printYAML(w io.Writer, fields []field) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		var v yaml.Node
		if err := v.Encode(f.value); err != nil {
			return fmt.Errorf("could not encode %s: %w", f.name, err)
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: f.name}, &v)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func printTable(w io.Writer, fields []field) error {
	headers := make([]string, 0, len(fields))
	row := make([]string, 0, len(fields))
	for _, f := range fields {
		headers = append(headers, strings.ToUpper(f.name))
		row = append(row, formatValue(f.value))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Row(row...)

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func formatValue(v any) string {
	if ids, ok := v.([]uint32); ok {
		return joinIDs(ids, ",")
	}
	return fmt.Sprint(v)
}

func formatID(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

func joinIDs(ids []uint32, sep string) string {
	s := make([]string, 0, len(ids))
	for _, id := range ids {
		s = append(s, formatID(id))
	}
	return strings.Join(s, sep)
}

// parseID parses a decimal user or group id.
func parseID(kind, s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		// Remove the "strconv.ParseUint: parsing ..." part from the error message
		// because it doesn't add any useful information.
		if unwrappedErr := errors.Unwrap(err); unwrappedErr != nil {
			err = unwrappedErr
		}
		return 0, fmt.Errorf("failed to parse %s %q: %w", kind, s, err)
	}
	return uint32(id), nil
}

// idArg accepts a single decimal id, so that a malformed one is reported as a usage error.
func idArg(kind string) cobra.PositionalArgs {
	return cobra.MatchAll(cobra.ExactArgs(1), func(cmd *cobra.Command, args []string) error {
		_, err := parseID(kind, args[0])
		return err
	})
}

// asID returns s as a numeric id when it is one rather than a name.
func asID(s string) (uint32, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	return uint32(id), err == nil
}
