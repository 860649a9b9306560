package variables

import "strings"

// ParseAssignments parses the argument of an ENV or ARG instruction.
//
// Two forms are recognized:
//
//	NAME=value [NAME2=value2 ...]
//	NAME value
//
// Fields are split on unquoted whitespace; quotes are kept in values. The
// second form must have exactly two fields. Arguments matching neither
// form yield nil.
func ParseAssignments(argument string) []Variable {
	fields := splitFields(argument)

	if strings.Contains(argument, "=") {
		var vars []Variable
		for _, field := range fields {
			name, value, ok := strings.Cut(field, "=")
			if !ok {
				continue
			}
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			vars = append(vars, Variable{Name: name, Value: strings.TrimSpace(value)})
		}
		return vars
	}

	if len(fields) != 2 {
		return nil
	}
	return []Variable{{Name: fields[0], Value: fields[1]}}
}

// splitFields splits s on whitespace outside single or double quotes.
// Quotes and backslash escapes are preserved in the fields.
func splitFields(s string) []string {
	var (
		fields  []string
		cur     strings.Builder
		quote   byte
		inField bool
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			cur.WriteByte(c)
			switch {
			case c == quote:
				quote = 0
			case c == '\\' && quote == '"' && i+1 < len(s):
				i++
				cur.WriteByte(s[i])
			}
			continue
		}

		switch c {
		case ' ', '\t', '\n', '\r':
			if inField {
				fields = append(fields, cur.String())
				cur.Reset()
				inField = false
			}
		case '\\':
			cur.WriteByte(c)
			if i+1 < len(s) {
				i++
				cur.WriteByte(s[i])
			}
			inField = true
		case '"', '\'':
			quote = c
			cur.WriteByte(c)
			inField = true
		default:
			cur.WriteByte(c)
			inField = true
		}
	}

	if inField {
		fields = append(fields, cur.String())
	}
	return fields
}
