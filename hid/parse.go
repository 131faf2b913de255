package hid

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCode parses a key token: a decimal code ("26"), a 0x-prefixed hex code ("0x1A")
// or a key name ("W", "LeftShift"). Digit keys are named with a "Key" prefix ("Key1")
// since bare digits are decimal codes.
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return KeyNone, fmt.Errorf("empty key token")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return KeyNone, fmt.Errorf("invalid key token %q: %w", s, err)
		}
		return Code(n), nil
	}
	if s[0] >= '0' && s[0] <= '9' {
		n, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return KeyNone, fmt.Errorf("invalid key token %q: %w", s, err)
		}
		return Code(n), nil
	}
	name := lower(s)
	if c, ok := nameToCode[name]; ok {
		return c, nil
	}
	if c, ok := nameToCode[strings.TrimPrefix(name, "key")]; ok {
		return c, nil
	}
	return KeyNone, fmt.Errorf("unknown key name %q", s)
}

// ParseCodeList parses a comma or semicolon separated key list. Invalid tokens are
// skipped and reported in the returned error; the valid codes are still returned.
func ParseCodeList(s string) ([]Code, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]Code, 0, len(fields))
	var bad []string
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		c, err := ParseCode(f)
		if err != nil || c == KeyNone {
			bad = append(bad, strings.TrimSpace(f))
			continue
		}
		out = append(out, c)
	}
	if len(bad) > 0 {
		return out, fmt.Errorf("skipped invalid key tokens: %s", strings.Join(bad, ", "))
	}
	return out, nil
}

// FormatCodeList renders codes as a comma separated list of 0x-prefixed hex tokens.
func FormatCodeList(codes []Code) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = hexCode(c)
	}
	return strings.Join(parts, ",")
}

func hexCode(c Code) string {
	return fmt.Sprintf("0x%02X", uint8(c))
}

func lower(s string) string {
	return strings.ToLower(s)
}
