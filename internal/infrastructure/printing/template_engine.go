package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"maps"
	"reflect"
	"strings"
	"time"

	"github.com/calculation/backend/internal/domain/printing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders HTML templates with the document helpers.
// It uses Go's html/template package with custom functions for formatting.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine creates a new template engine with default configuration
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{}

	e.funcMap = template.FuncMap{
		// Number formatting
		"formatAmount":  formatAmount,
		"formatDecimal": formatDecimal,
		"formatPercent": formatPercent,
		"formatCell":    formatCell,

		// Date formatting
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,

		// String utilities
		"truncate": truncate,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"title":    titleCase,
		"trim":     strings.TrimSpace,
		"join":     strings.Join,
		"replace":  strings.ReplaceAll,
		"nl2br":    nl2br,

		// Comparison
		"lt": ltFunc,
		"le": leFunc,
		"gt": gtFunc,
		"ge": geFunc,

		// Arithmetic
		"add": add,
		"sub": sub,
		"mul": mul,
		"div": div,

		// Switch
		"switch":  switchFunc,
		"case":    caseFunc,
		"default": defaultFunc,

		// Misc
		"empty":    empty,
		"notEmpty": notEmpty,
		"ternary":  ternary,
		"dict":     dict,
		"list":     list,
		"seq":      seq,
		"safeHTML": safeHTML,
		"now":      time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data any) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", NewRenderError(ErrCodeRenderTimeout, "render cancelled", err)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// =============================================================================
// Template Functions - Switch
// =============================================================================

// switchFunc returns the result paired with the first case equal to value.
// Arguments are case/result pairs, an odd trailing argument is the default.
// Usage: {{ switch .State "open" "Open" "closed" "Closed" "Unknown" }}
func switchFunc(value any, pairs ...any) any {
	v := fmt.Sprint(value)
	i := 0
	for ; i+1 < len(pairs); i += 2 {
		if fmt.Sprint(pairs[i]) == v {
			return pairs[i+1]
		}
	}
	if i < len(pairs) {
		return pairs[i]
	}
	return ""
}

// caseFunc reports whether value equals one of the cases
// Usage: {{ if case .State "open" "new" }}...{{ end }}
func caseFunc(value any, cases ...any) bool {
	v := fmt.Sprint(value)
	for _, c := range cases {
		if fmt.Sprint(c) == v {
			return true
		}
	}
	return false
}

// defaultFunc returns the first non-empty value
// Usage: {{ default .Customer "No customer" }}
func defaultFunc(vals ...any) any {
	for _, v := range vals {
		if !empty(v) {
			return v
		}
	}
	if len(vals) > 0 {
		return vals[len(vals)-1]
	}
	return ""
}

// =============================================================================
// Template Functions - Formatting
// =============================================================================

// formatAmount formats a value with two decimals and thousand separators
// Example: 1234.5 -> "1'234.50"
func formatAmount(v any) string {
	return printing.FormatAmount(toDecimal(v))
}

// formatDecimal formats a decimal with specified precision
func formatDecimal(v any, precision int) string {
	return toDecimal(v).StringFixed(int32(precision))
}

// formatPercent formats a ratio as percentage
// Example: 1.15 -> "115%"
func formatPercent(v any, precision int) string {
	return toDecimal(v).Mul(decimal.NewFromInt(100)).StringFixed(int32(precision)) + "%"
}

// formatCell formats a table value for its column
func formatCell(c printing.Column, v any) string {
	return printing.FormatCell(c.Kind, v)
}

// formatDate formats a time value as dd.mm.yyyy
func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

// formatDateTime formats a time value as dd.mm.yyyy hh:mm
func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

// =============================================================================
// Template Functions - String Utilities
// =============================================================================

// truncate truncates a string to max runes with optional suffix
func truncate(s string, max int, suffix ...string) string {
	suf := "..."
	if len(suffix) > 0 {
		suf = suffix[0]
	}
	runes := []rune(s)
	sufRunes := []rune(suf)
	if len(runes) <= max {
		return s
	}
	if max <= len(sufRunes) {
		return string(sufRunes[:max])
	}
	return string(runes[:max-len(sufRunes)]) + suf
}

// titleCase converts string to title case using proper Unicode handling
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// nl2br escapes s and converts line breaks to <br>
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// =============================================================================
// Template Functions - Comparison and Arithmetic
// =============================================================================

func ltFunc(a, b any) bool { return toDecimal(a).LessThan(toDecimal(b)) }
func leFunc(a, b any) bool { return toDecimal(a).LessThanOrEqual(toDecimal(b)) }
func gtFunc(a, b any) bool { return toDecimal(a).GreaterThan(toDecimal(b)) }
func geFunc(a, b any) bool { return toDecimal(a).GreaterThanOrEqual(toDecimal(b)) }

func add(a, b any) decimal.Decimal { return toDecimal(a).Add(toDecimal(b)) }
func sub(a, b any) decimal.Decimal { return toDecimal(a).Sub(toDecimal(b)) }
func mul(a, b any) decimal.Decimal { return toDecimal(a).Mul(toDecimal(b)) }

func div(a, b any) decimal.Decimal {
	d := toDecimal(b)
	if d.IsZero() {
		return decimal.Zero
	}
	return toDecimal(a).Div(d)
}

// =============================================================================
// Template Functions - Misc
// =============================================================================

func empty(v any) bool {
	if v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) == ""
	case decimal.Decimal:
		return val.IsZero()
	case time.Time:
		return val.IsZero()
	case bool:
		return !val
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func notEmpty(v any) bool {
	return !empty(v)
}

func ternary(condition bool, trueVal, falseVal any) any {
	if condition {
		return trueVal
	}
	return falseVal
}

// dict creates a map from key-value pairs
func dict(pairs ...any) map[string]any {
	result := make(map[string]any)
	for i := 0; i < len(pairs)-1; i += 2 {
		if key, ok := pairs[i].(string); ok {
			result[key] = pairs[i+1]
		}
	}
	return result
}

// list creates a slice from values
func list(vals ...any) []any {
	return vals
}

// seq generates a sequence of integers from 0 to n-1
func seq(n int) []int {
	result := make([]int, max(n, 0))
	for i := range result {
		result[i] = i
	}
	return result
}

// safeHTML marks a string as safe HTML. Only use with content generated by the application.
func safeHTML(s string) template.HTML {
	return template.HTML(s)
}

// =============================================================================
// Helper Functions
// =============================================================================

// toDecimal converts various types to decimal.Decimal
func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int32:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float32:
		return decimal.NewFromFloat(float64(val))
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// toTime converts various types to time.Time
func toTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case string:
		for _, f := range []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
			if t, err := time.Parse(f, val); err == nil {
				return t
			}
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
