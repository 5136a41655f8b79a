package dispatch

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParamType is the declared type of a command parameter.
type ParamType string

// Parameter types. Values arriving as strings (from the CLI) are coerced to
// the declared type; decoded JSON values (from MCP) are checked and
// converted.
const (
	TypeString     ParamType = "string"
	TypeInt        ParamType = "int"
	TypeFloat      ParamType = "float"
	TypeBool       ParamType = "bool"
	TypeEnum       ParamType = "enum"
	TypeJSON       ParamType = "json"
	TypeStringList ParamType = "string_list"
)

// Param declares one command parameter.
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Default     any
	Enum        []string
	Description string
	// Normalize rewrites string values after coercion.
	Normalize func(string) string
}

// ParamOption configures a Param.
type ParamOption func(*Param)

// Required marks a parameter as mandatory.
func Required() ParamOption {
	return func(p *Param) { p.Required = true }
}

// Default sets the value used when the parameter is omitted.
func Default(v any) ParamOption {
	return func(p *Param) { p.Default = v }
}

// Description documents a parameter.
func Description(desc string) ParamOption {
	return func(p *Param) { p.Description = desc }
}

// Normalize sets a function applied to string and enum values once they
// have been coerced.
func Normalize(fn func(string) string) ParamOption {
	return func(p *Param) { p.Normalize = fn }
}

func newParam(name string, t ParamType, opts []ParamOption) Param {
	p := Param{Name: name, Type: t}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// String declares a string parameter.
func String(name string, opts ...ParamOption) Param { return newParam(name, TypeString, opts) }

// Int declares an integer parameter.
func Int(name string, opts ...ParamOption) Param { return newParam(name, TypeInt, opts) }

// Float declares a floating point parameter.
func Float(name string, opts ...ParamOption) Param { return newParam(name, TypeFloat, opts) }

// Bool declares a boolean parameter.
func Bool(name string, opts ...ParamOption) Param { return newParam(name, TypeBool, opts) }

// JSON declares a parameter holding an arbitrary JSON value.
func JSON(name string, opts ...ParamOption) Param { return newParam(name, TypeJSON, opts) }

// StringList declares a list of strings. On the command line it is given as
// a comma separated list or a JSON array.
func StringList(name string, opts ...ParamOption) Param {
	return newParam(name, TypeStringList, opts)
}

// Enum declares a string parameter restricted to values. Matching ignores
// case; the canonical spelling is passed to the handler.
func Enum(name string, values []string, opts ...ParamOption) Param {
	p := newParam(name, TypeEnum, opts)
	p.Enum = values
	return p
}

// Expected describes the accepted values of p for error messages.
func (p Param) Expected() string {
	switch p.Type {
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeEnum:
		return "one of " + strings.Join(p.Enum, "|")
	case TypeJSON:
		return "JSON value"
	case TypeStringList:
		return "list of strings"
	default:
		return "string"
	}
}

// coerce converts v into the Go type for p.Type: string, int64, float64,
// bool, string (enum), any (json) or []string.
func (p Param) coerce(v any) (any, error) {
	switch p.Type {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeInt:
		if n, ok := toInt(v); ok {
			return n, nil
		}
	case TypeFloat:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
	case TypeBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
				return parsed, nil
			}
		}
	case TypeEnum:
		if s, ok := v.(string); ok {
			for _, e := range p.Enum {
				if strings.EqualFold(e, strings.TrimSpace(s)) {
					return e, nil
				}
			}
		}
	case TypeJSON:
		if s, ok := v.(string); ok {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err != nil {
				return nil, p.invalid(fmt.Sprintf("malformed JSON: %v", err))
			}
			return decoded, nil
		}
		return v, nil
	case TypeStringList:
		if list, ok := toStringList(v); ok {
			return list, nil
		}
	}
	return nil, p.invalid(fmt.Sprintf("got %s", describeValue(v)))
}

func (p Param) invalid(reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Param: p.Name, Expected: p.Expected(), Reason: reason}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		// MaxInt64 rounds up to 2^63 as a float64, which does not fit.
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), true
		}
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}

func toStringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		trimmed := strings.TrimSpace(list)
		if strings.HasPrefix(trimmed, "[") {
			var out []string
			if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
				return nil, false
			}
			return out, true
		}
		if trimmed == "" {
			return []string{}, true
		}
		parts := strings.Split(trimmed, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, true
	}
	return nil, false
}

func describeValue(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T %v", v, v)
	}
}

// Args holds validated, coerced arguments. Accessors return the zero value
// for absent parameters.
type Args map[string]any

// Has reports whether name was given or defaulted.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a string or enum argument.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns an integer argument.
func (a Args) Int(name string) int64 {
	n, _ := a[name].(int64)
	return n
}

// Float returns a floating point argument.
func (a Args) Float(name string) float64 {
	f, _ := a[name].(float64)
	return f
}

// Bool returns a boolean argument.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// BoolPtr returns a boolean argument, or nil when it was not given.
func (a Args) BoolPtr(name string) *bool {
	b, ok := a[name].(bool)
	if !ok {
		return nil
	}
	return &b
}

// JSON returns a decoded JSON argument.
func (a Args) JSON(name string) any {
	return a[name]
}

// Strings returns a string list argument.
func (a Args) Strings(name string) []string {
	s, _ := a[name].([]string)
	return s
}
