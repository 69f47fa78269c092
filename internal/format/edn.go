package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes maps as keyword maps and slices as vectors. Keys are converted to
// kebab-case keywords (start_date becomes :start-date).
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	var sb strings.Builder
	p := ednPrinter{sb: &sb, pretty: pretty}
	p.value(x, 0)
	sb.WriteByte('\n')
	_, err = io.WriteString(w, sb.String())
	return err
}

type ednPrinter struct {
	sb     *strings.Builder
	pretty bool
}

func (p ednPrinter) newline(depth int) {
	if !p.pretty {
		p.sb.WriteByte(' ')
		return
	}
	p.sb.WriteByte('\n')
	p.sb.WriteString(strings.Repeat("  ", depth))
}

func (p ednPrinter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		p.sb.WriteString("nil")
	case bool:
		p.sb.WriteString(strconv.FormatBool(t))
	case json.Number:
		p.sb.WriteString(t.String())
	case string:
		p.sb.WriteString(strconv.Quote(t))
	case []any:
		p.sb.WriteByte('[')
		for i, it := range t {
			if i > 0 {
				p.newline(depth + 1)
			}
			p.value(it, depth+1)
		}
		p.sb.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		p.sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				p.newline(depth + 1)
			}
			p.sb.WriteString(keyword(k))
			p.sb.WriteByte(' ')
			p.value(t[k], depth+1)
		}
		p.sb.WriteByte('}')
	default:
		p.sb.WriteString(strconv.Quote(fmt.Sprint(t)))
	}
}

func keyword(k string) string {
	k = strings.TrimSpace(k)
	k = strings.NewReplacer("_", "-", " ", "-").Replace(k)
	if k == "" {
		return `:_`
	}
	return ":" + k
}
