package macro

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
)

// ConditionKind discriminates Condition.
type ConditionKind uint8

const (
	CondKey ConditionKind = iota
	CondMouse
	CondVariable
	CondRandom
	CondElapsed
	CondAnd
	CondOr
	CondNot
)

// CompareOp compares an observed value against Condition.Value.
type CompareOp uint8

const (
	CmpEq CompareOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

var compareOps = []string{"==", "!=", "<", "<=", ">", ">="}

func (op CompareOp) String() string {
	if int(op) < len(compareOps) {
		return compareOps[op]
	}
	return "?"
}

func (op CompareOp) apply(a, b int64) bool {
	switch op {
	case CmpEq:
		return a == b
	case CmpNe:
		return a != b
	case CmpLt:
		return a < b
	case CmpLe:
		return a <= b
	case CmpGt:
		return a > b
	case CmpGe:
		return a >= b
	}
	return false
}

// Condition guards a conditional block. It is evaluated when playback reaches the block.
type Condition struct {
	Kind ConditionKind

	Key    hid.Code
	Button input.MouseButton
	// Down is the required state for CondKey and CondMouse.
	Down bool

	Variable string
	Compare  CompareOp
	// Value is the comparison operand; for CondRandom the chance in percent.
	Value int64

	Children []Condition
}

func (c Condition) clone() Condition {
	if c.Children != nil {
		kids := make([]Condition, len(c.Children))
		for i, k := range c.Children {
			kids[i] = k.clone()
		}
		c.Children = kids
	}
	return c
}

// env answers condition queries during playback.
type env interface {
	keyDown(hid.Code) bool
	mouseDown(input.MouseButton) bool
	variable(name string) int64
	// roll returns a number in [0,100).
	roll() int64
	elapsedMs() int64
}

func (c Condition) eval(e env) bool {
	switch c.Kind {
	case CondKey:
		return e.keyDown(c.Key) == c.Down
	case CondMouse:
		return e.mouseDown(c.Button) == c.Down
	case CondVariable:
		return c.Compare.apply(e.variable(c.Variable), c.Value)
	case CondRandom:
		return e.roll() < c.Value
	case CondElapsed:
		return c.Compare.apply(e.elapsedMs(), c.Value)
	case CondAnd:
		for _, k := range c.Children {
			if !k.eval(e) {
				return false
			}
		}
		return true
	case CondOr:
		for _, k := range c.Children {
			if k.eval(e) {
				return true
			}
		}
		return false
	case CondNot:
		return len(c.Children) == 1 && !c.Children[0].eval(e)
	}
	return false
}

func upDown(down bool) string {
	if down {
		return "down"
	}
	return "up"
}

// String renders c as an s-expression, e.g. (and (key 0x04 down) (random 50)).
func (c Condition) String() string {
	switch c.Kind {
	case CondKey:
		return fmt.Sprintf("(key 0x%02X %s)", uint8(c.Key), upDown(c.Down))
	case CondMouse:
		return fmt.Sprintf("(mouse %s %s)", c.Button, upDown(c.Down))
	case CondVariable:
		return fmt.Sprintf("(var %s %s %d)", atom(c.Variable), c.Compare, c.Value)
	case CondRandom:
		return fmt.Sprintf("(random %d)", c.Value)
	case CondElapsed:
		return fmt.Sprintf("(elapsed %s %d)", c.Compare, c.Value)
	case CondAnd, CondOr, CondNot:
		name := map[ConditionKind]string{CondAnd: "and", CondOr: "or", CondNot: "not"}[c.Kind]
		var b strings.Builder
		b.WriteString("(" + name)
		for _, k := range c.Children {
			b.WriteString(" " + k.String())
		}
		b.WriteString(")")
		return b.String()
	}
	return "()"
}

// ParseCondition parses the form produced by Condition.String.
func ParseCondition(s string) (Condition, error) {
	toks, err := tokenize(s)
	if err != nil {
		return Condition{}, err
	}
	c, rest, err := parseCond(toks)
	if err != nil {
		return Condition{}, err
	}
	if len(rest) > 0 {
		return Condition{}, fmt.Errorf("trailing tokens after condition: %v", rest)
	}
	return c, nil
}

// atom quotes s unless it reads back as a single bare token.
func atom(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool {
		return r == '(' || r == ')' || r == '"' || unicode.IsSpace(r)
	}) {
		return strconv.Quote(s)
	}
	return s
}

// tokenize splits s into parens and atoms. Double-quoted atoms are unquoted
// and keep their spaces and parens.
func tokenize(s string) ([]string, error) {
	var toks []string
	for i := 0; i < len(s); {
		switch r := s[i]; {
		case r == '(' || r == ')':
			toks = append(toks, s[i:i+1])
			i++
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == '"':
			end := i + 1
			for end < len(s) && s[end] != '"' {
				if s[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(s) {
				return nil, errors.New("unterminated quoted name")
			}
			v, err := strconv.Unquote(s[i : end+1])
			if err != nil {
				return nil, fmt.Errorf("quoted name %s: %w", s[i:end+1], err)
			}
			toks = append(toks, v)
			i = end + 1
		default:
			end := i
			for end < len(s) && !strings.ContainsRune("() \t\n\r\"", rune(s[end])) {
				end++
			}
			toks = append(toks, s[i:end])
			i = end
		}
	}
	return toks, nil
}

var errUnexpectedEnd = errors.New("unexpected end of condition")

func parseCond(toks []string) (Condition, []string, error) {
	if len(toks) < 2 {
		return Condition{}, nil, errUnexpectedEnd
	}
	if toks[0] != "(" {
		return Condition{}, nil, fmt.Errorf("expected '(' got %q", toks[0])
	}
	head, toks := toks[1], toks[2:]

	// args collects atoms up to the closing paren.
	args := func(n int) ([]string, []string, error) {
		if len(toks) < n+1 {
			return nil, nil, errUnexpectedEnd
		}
		if toks[n] != ")" {
			return nil, nil, fmt.Errorf("%s takes %d arguments", head, n)
		}
		return toks[:n], toks[n+1:], nil
	}

	var c Condition
	switch head {
	case "key", "mouse":
		a, rest, err := args(2)
		if err != nil {
			return c, nil, err
		}
		down, err := parseUpDown(a[1])
		if err != nil {
			return c, nil, err
		}
		c.Down = down
		if head == "key" {
			c.Kind = CondKey
			c.Key, err = hid.ParseCode(a[0])
			return c, rest, err
		}
		c.Kind = CondMouse
		b, ok := input.ParseMouseButton(a[0])
		if !ok {
			return c, nil, fmt.Errorf("unknown mouse button %q", a[0])
		}
		c.Button = b
		return c, rest, nil
	case "var":
		a, rest, err := args(3)
		if err != nil {
			return c, nil, err
		}
		c.Kind = CondVariable
		c.Variable = a[0]
		if c.Compare, err = parseCompare(a[1]); err != nil {
			return c, nil, err
		}
		c.Value, err = strconv.ParseInt(a[2], 10, 64)
		return c, rest, err
	case "random":
		a, rest, err := args(1)
		if err != nil {
			return c, nil, err
		}
		c.Kind = CondRandom
		c.Value, err = strconv.ParseInt(a[0], 10, 64)
		return c, rest, err
	case "elapsed":
		a, rest, err := args(2)
		if err != nil {
			return c, nil, err
		}
		c.Kind = CondElapsed
		if c.Compare, err = parseCompare(a[0]); err != nil {
			return c, nil, err
		}
		c.Value, err = strconv.ParseInt(a[1], 10, 64)
		return c, rest, err
	case "and", "or", "not":
		c.Kind = map[string]ConditionKind{"and": CondAnd, "or": CondOr, "not": CondNot}[head]
		for {
			if len(toks) == 0 {
				return c, nil, errUnexpectedEnd
			}
			if toks[0] == ")" {
				toks = toks[1:]
				break
			}
			kid, rest, err := parseCond(toks)
			if err != nil {
				return c, nil, err
			}
			c.Children = append(c.Children, kid)
			toks = rest
		}
		if c.Kind == CondNot && len(c.Children) != 1 {
			return c, nil, errors.New("not takes exactly one condition")
		}
		return c, toks, nil
	}
	return c, nil, fmt.Errorf("unknown condition %q", head)
}

func parseUpDown(s string) (bool, error) {
	switch s {
	case "down":
		return true, nil
	case "up":
		return false, nil
	}
	return false, fmt.Errorf("expected up or down, got %q", s)
}

func parseCompare(s string) (CompareOp, error) {
	for i, op := range compareOps {
		if op == s {
			return CompareOp(i), nil
		}
	}
	return 0, fmt.Errorf("unknown comparison %q", s)
}
