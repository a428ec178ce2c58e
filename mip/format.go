package mip

import (
	"fmt"
	"strings"
)

// Format renders the problem as an LP-style listing, truncated to at most
// lineLimit lines. A lineLimit of 0 or less disables truncation.
func (p *Problem) Format(lineLimit int) string {
	var lines []string

	lines = append(lines, fmt.Sprintf(`\* %s *\`, p.name))
	if p.sense == Maximize {
		lines = append(lines, "Maximize")
	} else {
		lines = append(lines, "Minimize")
	}
	lines = append(lines, " obj: "+formatExpr(p.objective))

	lines = append(lines, "Subject To")
	for _, c := range p.constraints {
		lines = append(lines, fmt.Sprintf(" %s: %s %s %g", c.name, formatExpr(c.expr), c.op, c.rhs))
	}

	lines = append(lines, "Binaries")
	for _, v := range p.vars {
		lines = append(lines, " "+v.name)
	}
	lines = append(lines, "End")

	if lineLimit > 0 && len(lines) > lineLimit {
		lines = lines[:lineLimit]
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatExpr(e *Expr) string {
	var b strings.Builder
	for i, v := range e.order {
		coeff := e.terms[v]
		if i == 0 {
			fmt.Fprintf(&b, "%g %s", coeff, v.name)
			continue
		}
		if coeff < 0 {
			fmt.Fprintf(&b, " - %g %s", -coeff, v.name)
		} else {
			fmt.Fprintf(&b, " + %g %s", coeff, v.name)
		}
	}
	if e.constant != 0 || len(e.order) == 0 {
		if b.Len() == 0 {
			fmt.Fprintf(&b, "%g", e.constant)
		} else if e.constant < 0 {
			fmt.Fprintf(&b, " - %g", -e.constant)
		} else {
			fmt.Fprintf(&b, " + %g", e.constant)
		}
	}
	return b.String()
}
