package hid

// Stroke is one key press needed to type a character.
type Stroke struct {
	Code  Code
	Shift bool
}

var charToCode = map[byte]Code{
	' ': KeySpace, '\n': KeyEnter, '\r': KeyEnter, '\t': KeyTab,
	'-': KeyMinus, '=': KeyEqual, '[': KeyLeftBrace, ']': KeyRightBrace,
	'\\': KeyBackslash, ';': KeySemicolon, '\'': KeyApostrophe, '`': KeyGrave,
	',': KeyComma, '.': KeyPeriod, '/': KeySlash,
}

// shifted maps a shifted symbol to its unshifted base character on a US layout.
var shifted = map[byte]byte{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
	'_': '-', '+': '=', '{': '[', '}': ']', '|': '\\',
	':': ';', '"': '\'', '~': '`', '<': ',', '>': '.', '?': '/',
}

// CharStroke returns the key press for an ASCII character on a US layout.
// ok is false for characters that have no key.
func CharStroke(c byte) (s Stroke, ok bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return Stroke{Code: KeyA + Code(c-'a')}, true
	case c >= 'A' && c <= 'Z':
		return Stroke{Code: KeyA + Code(c-'A'), Shift: true}, true
	case c == '0':
		return Stroke{Code: Key0}, true
	case c >= '1' && c <= '9':
		return Stroke{Code: Key1 + Code(c-'1')}, true
	}
	if code, found := charToCode[c]; found {
		return Stroke{Code: code}, true
	}
	if base, found := shifted[c]; found {
		s, ok = CharStroke(base)
		s.Shift = true
		return s, ok
	}
	return Stroke{}, false
}

// TypeString converts text into key strokes, dropping characters without a key.
func TypeString(text string) []Stroke {
	out := make([]Stroke, 0, len(text))
	for i := 0; i < len(text); i++ {
		if s, ok := CharStroke(text[i]); ok {
			out = append(out, s)
		}
	}
	return out
}
