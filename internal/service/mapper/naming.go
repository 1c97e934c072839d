package mapper

import (
	"regexp"
	"strings"

	"metasync/internal/domain"
)

// backrefPattern rewrites \1-style capture references to Go's ${1} form so
// that conventions written either way behave identically.
var backrefPattern = regexp.MustCompile(`\\(\d+)`)

// applyConvention rewrites a technical name according to one naming
// convention: regex substitution, optional case folding, then optional
// system/environment qualification when the name is not already qualified.
func applyConvention(name string, conv domain.NamingConvention) (string, error) {
	out := name
	if conv.Pattern != "" {
		re, err := regexp.Compile(conv.Pattern)
		if err != nil {
			return "", domain.ErrConfiguration("naming convention pattern %q: %v", conv.Pattern, err)
		}
		replacement := backrefPattern.ReplaceAllString(conv.Replacement, `${$1}`)
		out = re.ReplaceAllString(out, replacement)
	}
	if conv.Lowercase {
		out = strings.ToLower(out)
	}
	if conv.EnvironmentSuffix && conv.SystemQualifier != "" {
		if !strings.HasPrefix(out, conv.SystemQualifier+"_") {
			out = conv.SystemQualifier + "_" + out
		}
		if conv.Environment != "" && !strings.HasSuffix(out, "_"+conv.Environment) {
			out = out + "_" + conv.Environment
		}
	}
	return out, nil
}
