package variables

import "strings"

// reference is one syntactic form of a variable reference: $NAME or ${NAME}.
type reference struct {
	name   string
	braced bool
}

// referencesTo returns both reference forms of name, short form first.
func referencesTo(name string) [2]reference {
	return [2]reference{{name: name}, {name: name, braced: true}}
}

func (r reference) token() string {
	if r.braced {
		return "${" + r.name + "}"
	}
	return "$" + r.name
}

// in reports whether s contains the reference. A short reference only
// matches where the name ends: $A does not occur in $AB.
func (r reference) in(s string) bool {
	return r.index(s, 0) >= 0
}

// replace substitutes value for every occurrence of the reference in s.
func (r reference) replace(s, value string) string {
	if r.braced {
		return strings.ReplaceAll(s, r.token(), value)
	}

	tok := r.token()
	var sb strings.Builder
	start := 0
	for {
		i := r.index(s, start)
		if i < 0 {
			break
		}
		sb.WriteString(s[start:i])
		sb.WriteString(value)
		start = i + len(tok)
	}
	if start == 0 {
		return s
	}
	sb.WriteString(s[start:])
	return sb.String()
}

// index finds the next occurrence of the reference at or after from.
func (r reference) index(s string, from int) int {
	tok := r.token()
	for from <= len(s) {
		i := strings.Index(s[from:], tok)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(tok)
		if r.braced || end == len(s) || !isNameByte(s[end]) {
			return i
		}
		from = i + 1
	}
	return -1
}

// isCyclic is the cycle guard: resolving ref with value is skipped when
// value still contains ref itself, since the substitution could never
// reach a fixed point.
func isCyclic(ref reference, value string) bool {
	return ref.in(value)
}

func isNameByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// isName reports whether s is a valid shell variable name.
func isName(s string) bool {
	if s == "" || s[0] >= '0' && s[0] <= '9' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

// trimDoubleQuotes removes one pair of surrounding double quotes.
func trimDoubleQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
