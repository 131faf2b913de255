package settings

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/kb2pad/curve"
	"github.com/Alia5/kb2pad/gamepad"
	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/record"
)

// Persisted keys.
const (
	KeyDeadzoneLow        = "DeadzoneLow"
	KeyDeadzoneHigh       = "DeadzoneHigh"
	KeyAntiDeadzone       = "AntiDeadzone"
	KeyOutputCap          = "OutputCap"
	KeyInvert             = "Invert"
	KeyCurveMode          = "CurveMode"
	KeyCP1X               = "CP1X"
	KeyCP1Y               = "CP1Y"
	KeyCP2X               = "CP2X"
	KeyCP2Y               = "CP2Y"
	KeyCP1Weight          = "CP1Weight"
	KeyCP2Weight          = "CP2Weight"
	KeyPollingRateMs      = "PollingRateMs"
	KeySnappyJoystick     = "SnappyJoystick"
	KeyLastKeyPriority    = "LastKeyPriority"
	KeyLastKeySensitivity = "LastKeySensitivity"
	KeyRampUpMs           = "RampUpMs"
	KeyRampDownMs         = "RampDownMs"
	KeyComboRepeatMs      = "ComboRepeatMs"

	// KeyCurvePrefix + hex code holds one per-key curve record.
	KeyCurvePrefix = "Key."
	// BindPrefix + target name holds a key list.
	BindPrefix = "Bind."
)

// keyDeadzoneFields is the field count of an encoded KeyDeadzone record.
const keyDeadzoneFields = 13

// EncodeKeyDeadzone renders kd as a pipe record:
// useUnique|low|high|anti|cap|invert|mode|cp1x|cp1y|cp2x|cp2y|cp1w|cp2w.
func EncodeKeyDeadzone(kd KeyDeadzone) string {
	p := kd.Params
	return record.Encode(
		record.FormatBool(kd.UseUnique),
		record.FormatUnits(p.Low), record.FormatUnits(p.High),
		record.FormatUnits(p.AntiDeadzone), record.FormatUnits(p.OutputCap),
		record.FormatBool(p.Invert), fmt.Sprint(uint8(p.Mode)),
		record.FormatUnits(p.CP1.X), record.FormatUnits(p.CP1.Y),
		record.FormatUnits(p.CP2.X), record.FormatUnits(p.CP2.Y),
		record.FormatUnits(p.CP1Weight), record.FormatUnits(p.CP2Weight),
	)
}

// DecodeKeyDeadzone parses a record written by EncodeKeyDeadzone. Values are not
// repaired here; storing the result into a Curve does that.
func DecodeKeyDeadzone(s string) (KeyDeadzone, error) {
	f := record.Decode(s)
	if len(f) != keyDeadzoneFields {
		return KeyDeadzone{}, fmt.Errorf("key curve record has %d fields, want %d", len(f), keyDeadzoneFields)
	}
	var (
		kd   KeyDeadzone
		errs []error
	)
	boolAt := func(i int) bool {
		v, err := record.ParseBool(f[i])
		errs = append(errs, err)
		return v
	}
	unitsAt := func(i int) float64 {
		v, err := record.ParseUnits(f[i])
		errs = append(errs, err)
		return v
	}
	kd.UseUnique = boolAt(0)
	kd.Low, kd.High = unitsAt(1), unitsAt(2)
	kd.AntiDeadzone, kd.OutputCap = unitsAt(3), unitsAt(4)
	kd.Invert = boolAt(5)
	mode, err := record.ParseInt(f[6])
	errs = append(errs, err)
	kd.Mode = curve.ModeSmooth
	if mode == int(curve.ModeLinear) {
		kd.Mode = curve.ModeLinear
	}
	kd.CP1 = curve.Point{X: unitsAt(7), Y: unitsAt(8)}
	kd.CP2 = curve.Point{X: unitsAt(9), Y: unitsAt(10)}
	kd.CP1Weight, kd.CP2Weight = unitsAt(11), unitsAt(12)
	for _, err := range errs {
		if err != nil {
			return KeyDeadzone{}, err
		}
	}
	return kd, nil
}

// Serialize returns every tunable as ordered key/value pairs.
func (s *Settings) Serialize() record.Pairs {
	var out record.Pairs
	g := s.Global.Params()
	out.AddUnits(KeyDeadzoneLow, g.Low)
	out.AddUnits(KeyDeadzoneHigh, g.High)
	out.AddUnits(KeyAntiDeadzone, g.AntiDeadzone)
	out.AddUnits(KeyOutputCap, g.OutputCap)
	out.AddBool(KeyInvert, g.Invert)
	out.AddInt(KeyCurveMode, int(g.Mode))
	out.AddUnits(KeyCP1X, g.CP1.X)
	out.AddUnits(KeyCP1Y, g.CP1.Y)
	out.AddUnits(KeyCP2X, g.CP2.X)
	out.AddUnits(KeyCP2Y, g.CP2.Y)
	out.AddUnits(KeyCP1Weight, g.CP1Weight)
	out.AddUnits(KeyCP2Weight, g.CP2Weight)

	out.AddInt(KeyPollingRateMs, s.PollingRateMs())
	out.AddBool(KeySnappyJoystick, s.SnappyJoystick())
	out.AddBool(KeyLastKeyPriority, s.LastKeyPriority())
	out.AddUnits(KeyLastKeySensitivity, s.Sensitivity())
	out.AddInt(KeyRampUpMs, s.RampUpMs())
	out.AddInt(KeyRampDownMs, s.RampDownMs())
	out.AddInt(KeyComboRepeatMs, s.ComboRepeatMs())

	for _, k := range s.Keys.Keys() {
		c, ok := s.Keys.Get(k)
		if !ok {
			continue
		}
		out.Add(KeyCurvePrefix+hid.FormatCodeList([]hid.Code{k}), EncodeKeyDeadzone(c.KeyDeadzone()))
	}
	for _, t := range gamepad.Targets() {
		if keys := s.Bindings.Keys(t); len(keys) > 0 {
			out.Add(BindPrefix+t.String(), hid.FormatCodeList(keys))
		}
	}
	return out
}

// Deserialize loads pairs produced by Serialize. Missing global keys keep their current
// value; per-key curves are replaced; bindings are replaced when any are present.
// Malformed entries are skipped and logged.
func (s *Settings) Deserialize(pairs record.Pairs, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	skip := func(key string, err error) {
		logger.Warn("skipping malformed setting", "key", key, "error", err)
	}

	g := s.Global.Params()
	units := func(key string, dst *float64) {
		v, ok := pairs.Lookup(key)
		if !ok {
			return
		}
		f, err := record.ParseUnits(v)
		if err != nil {
			skip(key, err)
			return
		}
		*dst = f
	}
	ints := func(key string, set func(int)) {
		v, ok := pairs.Lookup(key)
		if !ok {
			return
		}
		n, err := record.ParseInt(v)
		if err != nil {
			skip(key, err)
			return
		}
		set(n)
	}
	bools := func(key string, set func(bool)) {
		v, ok := pairs.Lookup(key)
		if !ok {
			return
		}
		b, err := record.ParseBool(v)
		if err != nil {
			skip(key, err)
			return
		}
		set(b)
	}

	units(KeyDeadzoneLow, &g.Low)
	units(KeyDeadzoneHigh, &g.High)
	units(KeyAntiDeadzone, &g.AntiDeadzone)
	units(KeyOutputCap, &g.OutputCap)
	bools(KeyInvert, func(v bool) { g.Invert = v })
	ints(KeyCurveMode, func(v int) {
		g.Mode = curve.ModeSmooth
		if v == int(curve.ModeLinear) {
			g.Mode = curve.ModeLinear
		}
	})
	units(KeyCP1X, &g.CP1.X)
	units(KeyCP1Y, &g.CP1.Y)
	units(KeyCP2X, &g.CP2.X)
	units(KeyCP2Y, &g.CP2.Y)
	units(KeyCP1Weight, &g.CP1Weight)
	units(KeyCP2Weight, &g.CP2Weight)
	s.Global.Store(g)

	ints(KeyPollingRateMs, s.SetPollingRateMs)
	bools(KeySnappyJoystick, s.SetSnappyJoystick)
	bools(KeyLastKeyPriority, s.SetLastKeyPriority)
	sens := s.Sensitivity()
	units(KeyLastKeySensitivity, &sens)
	s.SetSensitivity(sens)
	ints(KeyRampUpMs, s.SetRampUpMs)
	ints(KeyRampDownMs, s.SetRampDownMs)
	ints(KeyComboRepeatMs, s.SetComboRepeatMs)

	curves := map[hid.Code]KeyDeadzone{}
	var bindings map[gamepad.Target][]hid.Code
	for _, kv := range pairs {
		switch {
		case strings.HasPrefix(kv.Key, KeyCurvePrefix):
			code, err := hid.ParseCode(strings.TrimPrefix(kv.Key, KeyCurvePrefix))
			if err != nil {
				skip(kv.Key, err)
				continue
			}
			kd, err := DecodeKeyDeadzone(kv.Value)
			if err != nil {
				skip(kv.Key, err)
				continue
			}
			curves[code] = kd
		case strings.HasPrefix(kv.Key, BindPrefix):
			t, ok := gamepad.ParseTarget(strings.TrimPrefix(kv.Key, BindPrefix))
			if !ok {
				skip(kv.Key, fmt.Errorf("unknown binding target"))
				continue
			}
			if bindings == nil {
				bindings = map[gamepad.Target][]hid.Code{}
			}
			keys, err := hid.ParseCodeList(kv.Value)
			if err != nil {
				skip(kv.Key, err)
			}
			bindings[t] = keys
		}
	}

	// publish each table once so a concurrent tick never sees it half loaded
	s.Keys.Replace(curves)
	if bindings != nil {
		s.Bindings.Replace(bindings)
	}
}
