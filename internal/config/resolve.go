package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/cast"
)

// Warning records a default applied in place of an unusable value.
type Warning struct {
	Key     string
	Value   string
	Message string
}

func (w Warning) String() string {
	if w.Value == "" {
		return fmt.Sprintf("%s: %s", w.Key, w.Message)
	}
	return fmt.Sprintf("%s=%q: %s", w.Key, w.Value, w.Message)
}

// MissingKeyError is returned when a required parameter is absent.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required parameter %s", e.Key)
}

// InvalidValueError is returned when a required parameter is not usable.
type InvalidValueError struct {
	Key   string
	Value string
	Err   error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Key, e.Err)
}

func (e *InvalidValueError) Unwrap() error { return e.Err }

// Resolve converts layered parameters into Settings.
//
// catalyst.sitebalancespecies and reactor.reactortemp are required. Every
// other numeric option that is absent or fails to parse falls back to its
// default, and the fallback is reported as a Warning when a value was present.
func Resolve(k *koanf.Koanf) (*Settings, []Warning, error) {
	var warnings []Warning

	site := strings.TrimSpace(k.String(KeySiteSpecies))
	if site == "" {
		return nil, nil, &MissingKeyError{Key: KeySiteSpecies}
	}
	if !k.Exists(KeyTemperature) {
		return nil, nil, &MissingKeyError{Key: KeyTemperature}
	}
	temperature, err := cast.ToFloat64E(trimmed(k.Get(KeyTemperature)))
	if err != nil {
		return nil, nil, &InvalidValueError{Key: KeyTemperature, Value: k.String(KeyTemperature), Err: err}
	}
	if temperature <= 0 {
		return nil, nil, &InvalidValueError{Key: KeyTemperature, Value: k.String(KeyTemperature), Err: fmt.Errorf("temperature must be positive")}
	}

	s := NewSettings(site, temperature)

	if name := strings.TrimSpace(k.String(KeyCatalystName)); name != "" {
		s.CatalystName = name
	}
	if out := strings.TrimSpace(k.String(KeyMapleOutput)); out != "" {
		s.MapleOutput = out
	}

	optionalFloat := func(key string, def float64) float64 {
		if !k.Exists(key) {
			return def
		}
		v, err := cast.ToFloat64E(trimmed(k.Get(key)))
		if err != nil {
			warnings = append(warnings, Warning{Key: key, Value: k.String(key), Message: fmt.Sprintf("not a number, using %g", def)})
			return def
		}
		return v
	}

	s.SiteArea = optionalFloat(KeySiteArea, 0)
	s.LayerThickness = optionalFloat(KeyLayerThickness, 0)
	s.DampTime = optionalFloat(KeyDampTime, DefaultDampTime)

	s.Time = ParseTime(k.String(KeyTime))

	if label := strings.TrimSpace(k.String(KeyElectronLabel)); label != "" {
		s.Electrochemistry.ElectronLabel = label
	}
	s.Electrochemistry.PotentialRHE = optionalPointer(k, KeyPotentialRHE, &warnings)
	s.Electrochemistry.PH = optionalPointer(k, KeyPH, &warnings)

	all := k.All()
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		section, label, ok := strings.Cut(key, ".")
		if !ok {
			continue
		}
		var target map[string]float64
		switch section {
		case SectionPressures:
			target = s.Pressures
		case SectionConcentrations:
			target = s.Concentrations
		default:
			continue
		}
		v, err := cast.ToFloat64E(trimmed(all[key]))
		if err != nil {
			warnings = append(warnings, Warning{Key: key, Value: cast.ToString(all[key]), Message: "not a number, using 0"})
			v = 0
		}
		target[strings.ToLower(label)] = v
	}

	return s, warnings, nil
}

func optionalPointer(k *koanf.Koanf, key string, warnings *[]Warning) *float64 {
	if !k.Exists(key) {
		return nil
	}
	v, err := cast.ToFloat64E(trimmed(k.Get(key)))
	if err != nil {
		*warnings = append(*warnings, Warning{Key: key, Value: k.String(key), Message: "not a number, electrode potential disabled"})
		return nil
	}
	return &v
}

// ParseTime interprets reactor.time1: a single instant, or a comma-separated
// list (optionally bracketed) that renders as a loop.
func ParseTime(raw string) TimeControl {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TimeControl{Values: []string{DefaultTime}}
	}
	if !strings.Contains(raw, ",") {
		return TimeControl{Values: []string{raw}}
	}
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			values = append(values, p)
		}
	}
	return TimeControl{Values: values, Loop: true}
}

func trimmed(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}
