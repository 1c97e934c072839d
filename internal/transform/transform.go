// Package transform holds the registry of named pure value transformations
// used by mapping rules, plus the evaluator for rule condition trees.
package transform

import (
	"fmt"
	"strings"
	"unicode"

	"metasync/internal/domain"
)

// Func is a pure value transformation.
type Func func(value any) (any, error)

// Registry resolves transformation names to functions. Construction is
// explicit; call SeedDefaults for the built-in set. Parameterized names use
// a colon: "prefix:dim_", "suffix:_v2", "join:,", "replace:old:new".
// "custom:<name>" defers resolution to the mapping profile.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register adds or replaces a named transformation.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// SeedDefaults installs the built-in transformations and returns the
// registry for chaining.
func (r *Registry) SeedDefaults() *Registry {
	r.Register("identity", func(v any) (any, error) { return v, nil })
	r.Register("lowercase", stringFunc(strings.ToLower))
	r.Register("uppercase", stringFunc(strings.ToUpper))
	r.Register("trim", stringFunc(strings.TrimSpace))
	r.Register("sanitize", stringFunc(Sanitize))
	r.Register("snake_case", stringFunc(SnakeCase))
	r.Register("camel_case", stringFunc(CamelCase))
	return r
}

// Resolve returns the transformation for the given name. The custom map, if
// non-nil, backs "custom:" names. The empty name resolves to identity.
func (r *Registry) Resolve(name string, custom map[string]func(any) (any, error)) (Func, error) {
	if name == "" {
		return func(v any) (any, error) { return v, nil }, nil
	}
	if fn, ok := r.funcs[name]; ok {
		return fn, nil
	}

	head, arg, parameterized := strings.Cut(name, ":")
	if !parameterized {
		return nil, domain.ErrMappingRule("unknown transformation %q", name)
	}
	switch head {
	case "custom":
		fn, ok := custom[arg]
		if !ok {
			return nil, domain.ErrMappingRule("unknown custom transformation %q", arg)
		}
		return Func(fn), nil
	case "prefix":
		return stringFunc(func(s string) string {
			if strings.HasPrefix(s, arg) {
				return s
			}
			return arg + s
		}), nil
	case "suffix":
		return stringFunc(func(s string) string {
			if strings.HasSuffix(s, arg) {
				return s
			}
			return s + arg
		}), nil
	case "join":
		sep := arg
		return func(v any) (any, error) {
			parts, ok := v.([]string)
			if !ok {
				return nil, domain.ErrMappingRule("join requires []string, got %T", v)
			}
			return strings.Join(parts, sep), nil
		}, nil
	case "replace":
		old, new, ok := strings.Cut(arg, ":")
		if !ok {
			return nil, domain.ErrMappingRule("replace requires old:new, got %q", arg)
		}
		return stringFunc(func(s string) string { return strings.ReplaceAll(s, old, new) }), nil
	default:
		return nil, domain.ErrMappingRule("unknown transformation %q", name)
	}
}

// stringFunc lifts a string function into a Func that rejects non-strings.
func stringFunc(fn func(string) string) Func {
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		return fn(s), nil
	}
}

// Sanitize cleans a name down to [a-z0-9_]: lower case, non-alphanumeric
// runs collapsed to single underscores, no leading or trailing underscore.
// Sanitize is idempotent.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// SnakeCase converts camelCase or space-separated names to snake_case.
func SnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	prevLower := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case r == ' ' || r == '-' || r == '.':
			b.WriteByte('_')
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return Sanitize(b.String())
}

// CamelCase converts snake_case or space-separated names to camelCase.
func CamelCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == ' ' || r == '-'
	})
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(strings.ToLower(p[1:]))
	}
	return b.String()
}
