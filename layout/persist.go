package layout

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/record"
)

// Persisted keys. Presets are numbered from zero:
//
//	Active       name of the active preset
//	Preset.N     name|uniformSpacing|uniformGap
//	Preset.N.M   label|hid|row|x|w|h
const (
	KeyActive    = "Active"
	PresetPrefix = "Preset."
)

const (
	presetFields = 3
	keyFields    = 6
)

// EncodeKey renders k as label|hid|row|x|w|h.
func EncodeKey(k KeyDef) string {
	return record.Encode(k.Label, hid.FormatCodeList([]hid.Code{k.HID}),
		strconv.Itoa(k.Row), strconv.Itoa(k.X), strconv.Itoa(k.W), strconv.Itoa(k.H))
}

// DecodeKey parses a record written by EncodeKey.
func DecodeKey(s string) (KeyDef, error) {
	f := record.Decode(s)
	if len(f) != keyFields {
		return KeyDef{}, fmt.Errorf("key record has %d fields, want %d", len(f), keyFields)
	}
	code, err := hid.ParseCode(f[1])
	if err != nil {
		return KeyDef{}, err
	}
	k := KeyDef{Label: f[0], HID: code}
	for i, dst := range []*int{&k.Row, &k.X, &k.W, &k.H} {
		if *dst, err = record.ParseInt(f[i+2]); err != nil {
			return KeyDef{}, err
		}
	}
	return k, nil
}

// Serialize returns all presets as key/value pairs.
func (s *Store) Serialize() record.Pairs {
	var out record.Pairs
	out.Add(KeyActive, s.Active().Name)
	for i, p := range s.Presets() {
		base := PresetPrefix + strconv.Itoa(i)
		out.Add(base, record.Encode(p.Name, record.FormatBool(p.UniformSpacing), strconv.Itoa(p.UniformGap)))
		for j, k := range p.Keys {
			out.Add(base+"."+strconv.Itoa(j), EncodeKey(k))
		}
	}
	return out
}

type loadedKey struct {
	idx int
	key KeyDef
}

type loadedPreset struct {
	preset Preset
	named  bool
	keys   []loadedKey
}

// Deserialize replaces the presets with those in pairs. Malformed entries are skipped
// and logged; if no preset survives the current presets are kept.
func (s *Store) Deserialize(pairs record.Pairs, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	skip := func(key string, err error) {
		logger.Warn("skipping malformed layout entry", "key", key, "error", err)
	}

	byIdx := map[int]*loadedPreset{}
	get := func(i int) *loadedPreset {
		lp := byIdx[i]
		if lp == nil {
			lp = &loadedPreset{}
			byIdx[i] = lp
		}
		return lp
	}
	for _, kv := range pairs {
		rest, ok := strings.CutPrefix(kv.Key, PresetPrefix)
		if !ok {
			continue
		}
		pi, ki, hasKey := strings.Cut(rest, ".")
		i, err := strconv.Atoi(pi)
		if err != nil || i < 0 {
			skip(kv.Key, fmt.Errorf("invalid preset index %q", pi))
			continue
		}
		if hasKey {
			j, err := strconv.Atoi(ki)
			if err != nil {
				skip(kv.Key, fmt.Errorf("invalid key index %q", ki))
				continue
			}
			k, err := DecodeKey(kv.Value)
			if err != nil {
				skip(kv.Key, err)
				continue
			}
			lp := get(i)
			lp.keys = append(lp.keys, loadedKey{idx: j, key: k})
			continue
		}
		f := record.Decode(kv.Value)
		if len(f) != presetFields {
			skip(kv.Key, fmt.Errorf("preset record has %d fields, want %d", len(f), presetFields))
			continue
		}
		uniform, err := record.ParseBool(f[1])
		if err != nil {
			skip(kv.Key, err)
			continue
		}
		gap, err := record.ParseInt(f[2])
		if err != nil {
			skip(kv.Key, err)
			continue
		}
		lp := get(i)
		lp.preset.Name, lp.preset.UniformSpacing, lp.preset.UniformGap = f[0], uniform, gap
		lp.named = true
	}

	var presets []Preset
	for _, i := range slices.Sorted(maps.Keys(byIdx)) {
		lp := byIdx[i]
		if !lp.named {
			skip(PresetPrefix+strconv.Itoa(i), fmt.Errorf("keys without a preset record"))
			continue
		}
		slices.SortStableFunc(lp.keys, func(a, b loadedKey) int { return cmp.Compare(a.idx, b.idx) })
		for _, k := range lp.keys {
			lp.preset.Keys = append(lp.preset.Keys, k.key)
		}
		p := lp.preset.Normalize()
		if len(p.Keys) != len(lp.preset.Keys) {
			skip(PresetPrefix+strconv.Itoa(i), fmt.Errorf("dropped %d duplicate keys", len(lp.preset.Keys)-len(p.Keys)))
		}
		if p.Name == "" || slices.ContainsFunc(presets, func(q Preset) bool { return q.Name == p.Name }) {
			skip(PresetPrefix+strconv.Itoa(i), fmt.Errorf("empty or duplicate preset name %q", p.Name))
			continue
		}
		presets = append(presets, p)
	}
	active, _ := pairs.Lookup(KeyActive)
	s.replace(presets, active)
}
