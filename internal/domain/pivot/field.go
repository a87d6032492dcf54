package pivot

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Method tells how a field extracts its key from a record value
type Method string

const (
	MethodDefault  Method = "default"
	MethodYear     Method = "year"
	MethodMonth    Method = "month"
	MethodQuarter  Method = "quarter"
	MethodSemester Method = "semester"
	MethodWeek     Method = "week"
)

// IsValid returns true for a known method
func (m Method) IsValid() bool {
	switch m {
	case MethodDefault, MethodYear, MethodMonth, MethodQuarter, MethodSemester, MethodWeek, "":
		return true
	}
	return false
}

// Record is one input row of the pivot table
type Record map[string]any

// Field extracts a grouping key from a record
type Field struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Method Method `json:"method"`
}

// NewField creates a field using the default method
func NewField(name, title string) Field {
	return Field{Name: name, Title: title, Method: MethodDefault}
}

// WithMethod returns a copy of the field using the given method
func (f Field) WithMethod(m Method) Field {
	f.Method = m
	return f
}

// Key returns the sortable key of the record for this field.
// Date based keys are zero padded so that keys sort chronologically.
func (f Field) Key(record Record) (string, error) {
	value := record[f.Name]
	if f.Method == MethodDefault || f.Method == "" {
		if value == nil {
			return "", nil
		}
		return fmt.Sprint(value), nil
	}

	t, err := toTime(value)
	if err != nil {
		return "", fmt.Errorf("pivot: field %s: %w", f.Name, err)
	}
	switch f.Method {
	case MethodYear:
		return strconv.Itoa(t.Year()), nil
	case MethodMonth:
		return fmt.Sprintf("%02d", int(t.Month())), nil
	case MethodQuarter:
		return strconv.Itoa((int(t.Month())-1)/3 + 1), nil
	case MethodSemester:
		return strconv.Itoa((int(t.Month())-1)/6 + 1), nil
	case MethodWeek:
		_, week := t.ISOWeek()
		return fmt.Sprintf("%02d", week), nil
	default:
		return "", fmt.Errorf("pivot: unknown method %q", f.Method)
	}
}

// Label returns the display text of a key
func (f Field) Label(key string) string {
	switch f.Method {
	case MethodMonth:
		if m, err := strconv.Atoi(key); err == nil && m >= 1 && m <= 12 {
			return time.Month(m).String()
		}
	case MethodQuarter:
		return "Q" + key
	case MethodSemester:
		return "S" + key
	case MethodWeek:
		return "W" + key
	}
	return key
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("nil date")
		}
		return *v, nil
	case string:
		for _, layout := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", value)
	}
}

func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, nil
		}
		return *v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Zero, fmt.Errorf("unsupported number type %T", value)
	}
}
