package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Tabular values choose their own columns for the table format.
type Tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// WriteTable renders v as a bordered table. Values that are not Tabular are shown as
// one row per slice element (columns from the union of keys) or key/value pairs.
func WriteTable(w io.Writer, v any) error {
	headers, rows, err := tabulate(v)
	if err != nil {
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err = fmt.Fprintln(w, t.Render())
	return err
}

func tabulate(v any) ([]string, [][]string, error) {
	if tv, ok := v.(Tabular); ok {
		return tv.TableHeaders(), tv.TableRows(), nil
	}
	x, err := generic(v)
	if err != nil {
		return nil, nil, err
	}
	switch t := x.(type) {
	case []any:
		return objectRows(t)
	case map[string]any:
		keys := sortedKeys(t)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, cell(t[k])})
		}
		return []string{"key", "value"}, rows, nil
	default:
		return []string{"value"}, [][]string{{cell(t)}}, nil
	}
}

func objectRows(items []any) ([]string, [][]string, error) {
	colSet := map[string]struct{}{}
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			for k := range m {
				colSet[k] = struct{}{}
			}
		}
	}
	if len(colSet) == 0 {
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{cell(it)})
		}
		return []string{"value"}, rows, nil
	}
	cols := make([]string, 0, len(colSet))
	for k := range colSet {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		m, _ := it.(map[string]any)
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = cell(m[c])
		}
		rows = append(rows, row)
	}
	return cols, rows, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "yes"
		}
		return "no"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSpace(string(b))
	}
}
