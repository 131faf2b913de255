package record

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Scale is the fixed-point factor for persisted fractional values.
const Scale = 1000

// Pair is one persisted key/value entry.
type Pair struct {
	Key   string
	Value string
}

// Pairs is an ordered key/value list as produced by Serialize methods.
type Pairs []Pair

// Add appends a pair.
func (p *Pairs) Add(key, value string) {
	*p = append(*p, Pair{Key: key, Value: value})
}

// AddUnits appends v scaled by Scale and rounded to an integer.
func (p *Pairs) AddUnits(key string, v float64) {
	p.Add(key, FormatUnits(v))
}

// AddInt appends an integer value.
func (p *Pairs) AddInt(key string, v int) {
	p.Add(key, strconv.Itoa(v))
}

// AddBool appends a 0/1 value.
func (p *Pairs) AddBool(key string, v bool) {
	p.Add(key, FormatBool(v))
}

// Lookup returns the value of the last pair with the given key.
func (p Pairs) Lookup(key string) (string, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return "", false
}

// Map returns the pairs as a map; later duplicates win.
func (p Pairs) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, kv := range p {
		m[kv.Key] = kv.Value
	}
	return m
}

// FromMap builds pairs from a map with keys in sorted order.
func FromMap(m map[string]string) Pairs {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make(Pairs, 0, len(keys))
	for _, k := range keys {
		out.Add(k, m[k])
	}
	return out
}

// FormatUnits renders a fraction as a x1000 integer.
func FormatUnits(v float64) string {
	return strconv.FormatInt(int64(math.Round(v*Scale)), 10)
}

// ParseUnits parses a x1000 integer back into a fraction.
func ParseUnits(s string) (float64, error) {
	n, err := ParseInt(s)
	if err != nil {
		return 0, err
	}
	return float64(n) / Scale, nil
}

// ParseInt parses a decimal integer, tolerating surrounding whitespace.
func ParseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", s, err)
	}
	return n, nil
}

// FormatBool renders a boolean as 0 or 1.
func FormatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// ParseBool accepts 0/1 as well as true/false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true, nil
	case "0", "false", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
