package selector

import (
	"strings"
)

// implicitParent is prepended to alternatives which do not reference parent
// explicitly, making them descendants of the parent selector.
var implicitParent = Alternative{ParentMarker{}, Literal{Value: " "}}

// Resolve substitutes parent references in parsed selector with alternatives
// of ancestor. Nil ancestor means rule has no enclosing rule, in which case
// any parent reference results in ErrUnboundParentReference.
//
// With ancestor present every ancestor line is combined with every own line
// producing len(ancestor)*len(parsed) lines, alternatives are enumerated
// ancestor first. Neither argument is modified.
func Resolve(parsed ParsedRule, ancestor ResolvedRule) (ResolvedRule, error) {
	if ancestor == nil {
		resolved := make(ResolvedRule, 0, len(parsed))
		for _, line := range parsed {
			alts := make([]string, 0, len(line))
			for _, alt := range line {
				if alt.HasParent() {
					return nil, ErrUnboundParentReference
				}
				alts = append(alts, alt.String())
			}
			resolved = append(resolved, alts)
		}
		return resolved, nil
	}

	resolved := make(ResolvedRule, 0, len(ancestor)*len(parsed))
	for _, superLine := range ancestor {
		for _, line := range parsed {
			alts := make([]string, 0, len(superLine)*len(line))
			for _, super := range superLine {
				for _, alt := range line {
					alts = append(alts, substitute(alt, super))
				}
			}
			resolved = append(resolved, alts)
		}
	}
	return resolved, nil
}

func substitute(alt Alternative, super string) string {
	var sb strings.Builder
	if !alt.HasParent() {
		alt = append(implicitParent[:len(implicitParent):len(implicitParent)], alt...)
	}
	for _, t := range alt {
		if _, ok := t.(ParentMarker); ok {
			sb.WriteString(super)
			continue
		}
		sb.WriteString(t.Text())
	}
	return sb.String()
}
