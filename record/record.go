// Package record implements the escaped pipe-delimited record format used for macro
// interchange and for compound values inside key/value settings.
//
// A record is a list of fields joined by '|'. Inside a field '\' escapes the next
// character: "\|" is a literal pipe, "\\" a backslash, "\n" and "\r" the control
// characters. Unknown escapes are kept verbatim.
package record

import "strings"

const (
	Delimiter = '|'
	Escape    = '\\'
)

// EscapeField escapes a single field so it can be joined with Delimiter.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, "|\\\n\r") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case Delimiter:
			b.WriteString(`\|`)
		case Escape:
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Encode joins fields into one record line.
func Encode(fields ...string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = EscapeField(f)
	}
	return strings.Join(parts, string(Delimiter))
}

// Decode splits a record line into unescaped fields. An empty line decodes to a single
// empty field.
func Decode(line string) []string {
	var (
		fields []string
		cur    strings.Builder
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == Escape && i+1 < len(line):
			i++
			switch n := line[i]; n {
			case Delimiter, Escape:
				cur.WriteByte(n)
			case 'n':
				cur.WriteByte('\n')
			case 'r':
				cur.WriteByte('\r')
			default:
				cur.WriteByte(Escape)
				cur.WriteByte(n)
			}
		case c == Delimiter:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}
