package eurobond

import (
	"regexp"
	"strings"
)

// Kind classifies a bond identifier.
type Kind int

const (
	// KindUnknown means the identifier matched no registered pattern.
	KindUnknown Kind = iota
	// KindDomestic is a Turkish domestic government bond code (TRT...T..).
	KindDomestic
	// KindEurobond is a standard 12-character ISIN.
	KindEurobond
)

func (k Kind) String() string {
	switch k {
	case KindDomestic:
		return "domestic"
	case KindEurobond:
		return "eurobond"
	default:
		return "unknown"
	}
}

// classificationRules is the identifier pattern registry, checked in order.
// Domestic codes come first: they also happen to be 12 characters, so the
// generic ISIN pattern must not see them.
var classificationRules = []struct {
	kind    Kind
	pattern *regexp.Regexp
}{
	{KindDomestic, regexp.MustCompile(`^TRT[0-9]{6}T[0-9]{2}$`)},
	{KindEurobond, regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)},
}

// Classify resolves a bond identifier to its kind via the pattern registry.
func Classify(id string) Kind {
	id = strings.ToUpper(strings.TrimSpace(id))
	for _, rule := range classificationRules {
		if rule.pattern.MatchString(id) {
			return rule.kind
		}
	}
	return KindUnknown
}
