package tarcodec

import (
	"regexp"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// Filter selects entries by name while reading.
// The implementations are NoFilter, Glob and Regexp; NewFilter rejects anything else.
type Filter interface {
	Match(name string) bool
	String() string
}

// NoFilter admits every entry.
var NoFilter Filter = noFilter{}

type noFilter struct{}

func (noFilter) Match(string) bool { return true }
func (noFilter) String() string    { return "<none>" }

type globFilter struct {
	pattern string
	g       glob.Glob
}

// Glob returns a filter using shell glob semantics on the literal name. A '*'
// also matches '/', so "*westmore*" selects "data/heneryIV-westmoreland.txt".
func Glob(pattern string) (Filter, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid glob %q", pattern)
	}
	return &globFilter{pattern: pattern, g: g}, nil
}

func (f *globFilter) Match(name string) bool { return f.g.Match(name) }
func (f *globFilter) String() string         { return f.pattern }

type regexpFilter struct {
	re *regexp.Regexp
}

// Regexp returns a filter admitting names the expression matches anywhere.
func Regexp(re *regexp.Regexp) Filter {
	return &regexpFilter{re: re}
}

// RegexpString compiles expr into a Regexp filter.
func RegexpString(expr string) (Filter, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid regular expression %q", expr)
	}
	return Regexp(re), nil
}

func (f *regexpFilter) Match(name string) bool { return f.re.MatchString(name) }
func (f *regexpFilter) String() string         { return "/" + f.re.String() + "/" }

// NewFilter converts a dynamically typed filter value: nil, a glob pattern string,
// a *regexp.Regexp or an existing Filter. Any other value yields *UnsupportedFilterError.
func NewFilter(v interface{}) (Filter, error) {
	switch f := v.(type) {
	case nil:
		return NoFilter, nil
	case string:
		return Glob(f)
	case *regexp.Regexp:
		if f == nil {
			return nil, &UnsupportedFilterError{Value: v}
		}
		return Regexp(f), nil
	case Filter:
		return f, nil
	default:
		return nil, &UnsupportedFilterError{Value: v}
	}
}
