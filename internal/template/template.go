// Package template renders text around KQL queries: dynamic list and
// datatable literals, parameterised query templates, and the
// .set-or-append / .set-or-replace control commands that store a query's
// result in a table.
package template

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	texttemplate "text/template"

	"github.com/Masterminds/sprig"

	"github.com/roach88/kustoq/internal/expr"
)

// DynamicList renders values as a KQL dynamic array literal, one element
// per line:
//
//	dynamic([
//		'a',
//		'b'
//	])
func DynamicList(values ...any) (string, error) {
	if len(values) == 0 {
		return "dynamic([])", nil
	}
	items := make([]string, len(values))
	for i, v := range values {
		l, err := expr.NewLiteral(v)
		if err != nil {
			return "", fmt.Errorf("dynamic list element %d: %w", i, err)
		}
		if l.Kind() == expr.KindNull {
			items[i] = "null"
			continue
		}
		items[i] = l.String()
	}
	return "dynamic([\n\t" + strings.Join(items, ",\n\t") + "\n])", nil
}

// Pair is one row of a key/value datatable.
type Pair struct {
	Key   string
	Value string
}

// Datatable renders rows as a two-column string datatable, in order.
func Datatable(rows []Pair) string {
	var b strings.Builder
	b.WriteString("datatable(key: string, value: string)[\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "\t%s, %s,\n", expr.QuoteString(r.Key), expr.QuoteString(r.Value))
	}
	b.WriteString("]")
	return b.String()
}

// Render executes query as a Go text/template with params as its data. When
// query names an existing file, the file's contents are the template.
//
// Slice and array params are replaced by their DynamicList rendering, so
// {{ .states }} with states = []string{"WA", "OR"} becomes a dynamic array.
// The sprig function library is available, along with:
//
//	kqlstring  quote a value as a KQL string literal
//	ident      quote a name as a KQL identifier when needed
//	dynamic    render a slice as a dynamic array
//
// Referencing a missing param is an error.
func Render(query string, params map[string]any) (string, error) {
	text, err := maybeReadFile(query)
	if err != nil {
		return "", err
	}

	data := make(map[string]any, len(params))
	for k, v := range params {
		if vals, ok := sliceValues(v); ok {
			list, err := DynamicList(vals...)
			if err != nil {
				return "", fmt.Errorf("param %q: %w", k, err)
			}
			data[k] = list
			continue
		}
		data[k] = v
	}

	tmpl, err := texttemplate.New("query").
		Funcs(sprig.TxtFuncMap()).
		Funcs(funcMap).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

var funcMap = texttemplate.FuncMap{
	"kqlstring": func(v any) string { return expr.QuoteString(fmt.Sprint(v)) },
	"ident":     expr.QuoteIdent,
	"dynamic": func(v any) (string, error) {
		vals, ok := sliceValues(v)
		if !ok {
			return "", fmt.Errorf("dynamic: expected a slice, got %T", v)
		}
		return DynamicList(vals...)
	},
}

// maybeReadFile returns the contents of the file named by query, or query
// itself when no such file exists.
func maybeReadFile(query string) (string, error) {
	if strings.ContainsAny(query, "\n{") {
		return query, nil
	}
	info, err := os.Stat(query)
	if err != nil || info.IsDir() {
		return query, nil
	}
	data, err := os.ReadFile(query)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}
	return string(data), nil
}

func sliceValues(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// SetCommand stores the result of a query in a table, creating the table
// when it does not exist.
type SetCommand struct {
	Table     string
	Folder    string
	Docstring string

	// Replace selects .set-or-replace; the default is .set-or-append.
	Replace bool
}

// Verb returns the command name.
func (c SetCommand) Verb() string {
	if c.Replace {
		return ".set-or-replace"
	}
	return ".set-or-append"
}

// Wrap renders the control command around a rendered query:
//
//	.set-or-append Target
//	with (
//	folder = "Reports",
//	docstring = "Daily totals",
//	)
//	<|
//	<query>
func (c SetCommand) Wrap(query string) (string, error) {
	if c.Table == "" {
		return "", expr.Errorf(expr.ErrCodeInvalidArgument, "set command needs a target table")
	}
	if strings.TrimSpace(query) == "" {
		return "", expr.Errorf(expr.ErrCodeInvalidArgument, "set command needs a query")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", c.Verb(), expr.QuoteIdent(c.Table))
	b.WriteString("with (\n")
	fmt.Fprintf(&b, "folder = %s,\n", strconv.Quote(c.Folder))
	fmt.Fprintf(&b, "docstring = %s,\n", strconv.Quote(c.Docstring))
	b.WriteString(")\n<|\n")
	b.WriteString(strings.TrimRight(query, "\n"))
	return b.String(), nil
}
