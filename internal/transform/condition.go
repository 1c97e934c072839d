package transform

import (
	"fmt"
	"regexp"
	"strings"

	"metasync/internal/domain"
	"metasync/internal/fieldpath"
)

// Evaluate walks a condition tree against an asset. A nil condition is true.
func Evaluate(c *domain.Condition, asset *domain.MetadataAsset) (bool, error) {
	if c == nil {
		return true, nil
	}
	switch c.Kind {
	case domain.CondNotEmpty:
		v, ok := fieldpath.Resolve(asset, c.Field)
		return ok && valueString(v) != "", nil
	case domain.CondEmpty:
		v, ok := fieldpath.Resolve(asset, c.Field)
		return !ok || valueString(v) == "", nil
	case domain.CondEquals:
		v, _ := fieldpath.Resolve(asset, c.Field)
		return valueString(v) == c.Value, nil
	case domain.CondNotEquals:
		v, _ := fieldpath.Resolve(asset, c.Field)
		return valueString(v) != c.Value, nil
	case domain.CondHasPrefix:
		v, _ := fieldpath.Resolve(asset, c.Field)
		return strings.HasPrefix(valueString(v), c.Value), nil
	case domain.CondMatches:
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return false, domain.ErrMappingRule("condition pattern %q: %v", c.Value, err)
		}
		v, _ := fieldpath.Resolve(asset, c.Field)
		return re.MatchString(valueString(v)), nil
	case domain.CondAnd:
		for _, child := range c.Children {
			ok, err := Evaluate(child, asset)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case domain.CondOr:
		for _, child := range c.Children {
			ok, err := Evaluate(child, asset)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case domain.CondNot:
		if len(c.Children) != 1 {
			return false, domain.ErrMappingRule("NOT condition requires exactly one child")
		}
		ok, err := Evaluate(c.Children[0], asset)
		return !ok, err
	default:
		return false, domain.ErrMappingRule("unknown condition kind %q", c.Kind)
	}
}

// valueString renders a resolved field value for comparison.
func valueString(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case []string:
		return strings.Join(vv, ",")
	case fmt.Stringer:
		return vv.String()
	default:
		return fmt.Sprintf("%v", vv)
	}
}
