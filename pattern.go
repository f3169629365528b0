package relay

import (
	"fmt"
	"regexp"
	"strings"
)

// defaultSeparators is the separator character set used when a route is
// registered without WithSeparators.
const defaultSeparators = "/"

// pattern is a criteria matcher compiled once at registration time.
type pattern struct {
	criteria string
	re       *regexp.Regexp
}

// compilePattern turns a criteria string into a pattern. The criteria is
// split on runs of separator characters; each segment becomes one of:
//
//   - :name       a named capture matching one-or-more non-separator chars
//   - contains *  each * matches one-or-more non-separator chars, the rest
//     of the segment is literal
//   - otherwise   a literal
//
// Segments are rejoined with a one-or-more-separators group and the whole
// expression is anchored at both ends, so a wildcard never crosses a
// separator and an empty criteria matches only the empty subject.
func compilePattern(criteria, separators string) (*pattern, error) {
	if separators == "" {
		separators = defaultSeparators
	}
	sep := regexp.QuoteMeta(separators)

	splitter, err := regexp.Compile("[" + sep + "]+")
	if err != nil {
		return nil, fmt.Errorf("%w: separators %q: %v", ErrInvalidPattern, separators, err)
	}

	segments := splitter.Split(criteria, -1)
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		parts = append(parts, compileSegment(segment, sep))
	}

	expr := "^" + strings.Join(parts, "["+sep+"]+") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: criteria %q: %v", ErrInvalidPattern, criteria, err)
	}
	return &pattern{criteria: criteria, re: re}, nil
}

func compileSegment(segment, sep string) string {
	switch {
	case strings.HasPrefix(segment, ":") && len(segment) > 1:
		return fmt.Sprintf("(?P<%s>[^%s]+)", segment[1:], sep)
	case strings.Contains(segment, "*"):
		var b strings.Builder
		for _, r := range segment {
			if r == '*' {
				b.WriteString("(?:[^" + sep + "]+)")
			} else {
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		}
		return b.String()
	default:
		return regexp.QuoteMeta(segment)
	}
}

// match tests subject against the pattern. On success it returns the named
// captures, possibly empty.
func (p *pattern) match(subject string) (map[string]string, bool) {
	m := p.re.FindStringSubmatch(subject)
	if m == nil {
		return nil, false
	}
	var params map[string]string
	for i, name := range p.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[name] = m[i]
	}
	return params, true
}
