package event

import "regexp"

// Matcher decides whether a subscription receives an emitted event.
type Matcher interface {
	// Match reports whether the event name is accepted.
	Match(name string) bool

	// String returns the matcher in a loggable form.
	String() string
}

// Name matches a single event name by string equality.
type Name string

// Match implements Matcher.
func (n Name) Match(name string) bool {
	return string(n) == name
}

func (n Name) String() string {
	return string(n)
}

// Pattern matches every event name accepted by a regular expression.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern wraps a compiled expression. A nil expression yields a nil matcher,
// which Subscribe rejects.
func NewPattern(re *regexp.Regexp) Matcher {
	if re == nil {
		return nil
	}
	return Pattern{re: re}
}

// MustPattern compiles expr and panics if it is not a valid expression.
func MustPattern(expr string) Matcher {
	return Pattern{re: regexp.MustCompile(expr)}
}

// Match implements Matcher.
func (p Pattern) Match(name string) bool {
	return p.re.MatchString(name)
}

func (p Pattern) String() string {
	return "/" + p.re.String() + "/"
}
