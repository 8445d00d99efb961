package sema

import (
	"strings"

	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
)

func (v *validator) literal(n *estree.Node, c vctx) fact.List {
	if regex := n.Field("regex"); regex != nil {
		return v.regexp(n, c)
	}
	raw := n.Str("raw")
	if !c.strict || raw == "" {
		return nil
	}
	switch n.Field("value").(type) {
	case float64:
		if n.Has("bigint") {
			return nil
		}
		if len(raw) > 1 && raw[0] == '0' && isDecimalDigit(raw[1]) {
			msg := "Octal literals are not allowed in strict mode"
			if strings.ContainsAny(raw, "89") {
				msg = "Decimals with leading zeros are not allowed in strict mode"
			}
			return fact.ListOf(fact.NewError(diag.StrOctalLiteral, n.Loc, msg))
		}
	case string:
		if hasOctalEscape(raw) {
			return fact.ListOf(fact.Errorf(diag.StrOctalEscape, n.Loc, "Octal escape sequences are not allowed in strict mode"))
		}
	}
	return nil
}

func isDecimalDigit(b byte) bool { return b >= '0' && b <= '9' }

// hasOctalEscape scans the raw text of a string literal for legacy octal
// escapes and \8 \9. `\0` not followed by a digit is allowed.
func hasOctalEscape(raw string) bool {
	for i := 0; i < len(raw)-1; i++ {
		if raw[i] != '\\' {
			continue
		}
		next := raw[i+1]
		switch {
		case next == '0':
			if i+2 < len(raw) && isDecimalDigit(raw[i+2]) {
				return true
			}
		case next >= '1' && next <= '9':
			return true
		}
		i++
	}
	return false
}

const regexpFlags = "dgimsuyv"

func (v *validator) regexp(n *estree.Node, c vctx) fact.List {
	regex := n.Object("regex")
	pattern, ok := regex["pattern"].(string)
	if !ok {
		fail(n, c, "regex.pattern", "string", "other")
	}
	flags, ok := regex["flags"].(string)
	if !ok {
		fail(n, c, "regex.flags", "string", "other")
	}

	var errs fact.List
	if !validFlags(flags) {
		errs = append(errs, fact.Errorf(diag.FrmInvalidRegExpFlags, n.Loc, "Invalid regular expression flags '%s'", flags))
	}
	if name, dup := duplicateGroup(pattern, strings.ContainsRune(flags, 'v')); dup {
		errs = append(errs, fact.Errorf(diag.FrmDuplicateRegExpGroups, n.Loc, "Duplicate capture group name '%s'", name))
	}
	return errs
}

func validFlags(flags string) bool {
	var seen [128]bool
	for i := 0; i < len(flags); i++ {
		f := flags[i]
		if f >= 128 || strings.IndexByte(regexpFlags, f) < 0 || seen[f] {
			return false
		}
		seen[f] = true
	}
	return !(seen['u'] && seen['v'])
}

// altStep is one level of the path from the pattern root to a group: the
// disjunction it sits in and the alternative it takes.
type altStep struct {
	disjunction int
	alternative int
}

// duplicateGroup finds a group name declared twice where both groups can
// take part in the same match. Names may repeat in different alternatives
// of one disjunction.
func duplicateGroup(pattern string, vmode bool) (string, bool) {
	type frame struct {
		id  int
		alt int
	}
	var (
		stack = []frame{{id: 0}}
		next  = 1
		seen  = make(map[string][][]altStep)
	)
	path := func() []altStep {
		out := make([]altStep, len(stack))
		for i, f := range stack {
			out[i] = altStep{disjunction: f.id, alternative: f.alt}
		}
		return out
	}

	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			i = skipClass(pattern, i, vmode)
		case '|':
			stack[len(stack)-1].alt++
		case ')':
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case '(':
			name := ""
			if rest := pattern[i+1:]; strings.HasPrefix(rest, "?<") && !strings.HasPrefix(rest, "?<=") && !strings.HasPrefix(rest, "?<!") {
				if end := strings.IndexByte(rest, '>'); end > 2 {
					name = rest[2:end]
				}
			}
			if name != "" {
				p := path()
				for _, other := range seen[name] {
					if !exclusive(p, other) {
						return name, true
					}
				}
				seen[name] = append(seen[name], p)
			}
			stack = append(stack, frame{id: next})
			next++
		}
	}
	return "", false
}

// skipClass returns the index of the `]` closing the class opened at i.
func skipClass(pattern string, i int, vmode bool) int {
	depth := 0
	for ; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			if depth == 0 || vmode {
				depth++
			}
		case ']':
			if depth--; depth == 0 {
				return i
			}
		}
	}
	return i
}

// exclusive reports whether two group paths diverge into different
// alternatives of a shared disjunction.
func exclusive(a, b []altStep) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].disjunction != b[i].disjunction {
			return false
		}
		if a[i].alternative != b[i].alternative {
			return true
		}
	}
	return false
}
