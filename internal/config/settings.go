// Package config resolves the run parameters of a network compile.
//
// Parameters are layered (defaults, parameters file, environment, flags) into
// a koanf instance by Load and converted once into a typed Settings by Resolve.
// Resolve is the only place defaults are applied; no other package falls back
// on its own.
package config

import (
	"strings"
)

// Default values applied by Resolve.
const (
	DefaultDampTime      = 1.0
	DefaultElectronLabel = "ne"
	DefaultTime          = "1.0"
	DefaultMapleOutput   = "amk.mpl"

	// DampingThreshold is the damping time constant at or below which
	// damping is disabled.
	DampingThreshold = 1e-13
)

// Settings are the resolved run parameters.
type Settings struct {
	SiteSpecies  string
	CatalystName string

	Temperature float64 // K

	// SiteArea is the area of one active site in Å².
	SiteArea float64
	// LayerThickness is the thickness of the liquid layer over the site in Å.
	LayerThickness float64

	// DampTime is the damping rate constant of the gas/aqueous driving terms.
	DampTime float64

	Time TimeControl

	// Pressures and Concentrations are keyed by lower-cased species label.
	Pressures      map[string]float64
	Concentrations map[string]float64

	Electrochemistry Electrochemistry

	MapleOutput string
}

// TimeControl is the output time specification of the Maple worksheet.
type TimeControl struct {
	Values []string
	Loop   bool // true when time1 listed several instants
}

// Electrochemistry holds the optional electrode-potential inputs.
// A nil pointer means the value was absent or not numeric.
type Electrochemistry struct {
	PotentialRHE  *float64
	PH            *float64
	ElectronLabel string
}

// NewSettings returns settings with every default applied.
func NewSettings(site string, temperature float64) *Settings {
	return &Settings{
		SiteSpecies:    site,
		CatalystName:   site,
		Temperature:    temperature,
		DampTime:       DefaultDampTime,
		Time:           TimeControl{Values: []string{DefaultTime}},
		Pressures:      map[string]float64{},
		Concentrations: map[string]float64{},
		Electrochemistry: Electrochemistry{
			ElectronLabel: DefaultElectronLabel,
		},
		MapleOutput: DefaultMapleOutput,
	}
}

// Pressure returns the configured partial pressure of a gas species, 0 if unset.
func (s *Settings) Pressure(label string) float64 {
	return s.Pressures[strings.ToLower(label)]
}

// Concentration returns the configured concentration (mol/L) of a solute, 0 if unset.
func (s *Settings) Concentration(label string) float64 {
	return s.Concentrations[strings.ToLower(label)]
}

// Damping returns the damping rate constant and whether damping is active.
func (s *Settings) Damping() (float64, bool) {
	if s.DampTime <= DampingThreshold {
		return 0, false
	}
	return s.DampTime, true
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	out := *s
	out.Time.Values = append([]string(nil), s.Time.Values...)
	out.Pressures = make(map[string]float64, len(s.Pressures))
	for k, v := range s.Pressures {
		out.Pressures[k] = v
	}
	out.Concentrations = make(map[string]float64, len(s.Concentrations))
	for k, v := range s.Concentrations {
		out.Concentrations[k] = v
	}
	if s.Electrochemistry.PotentialRHE != nil {
		v := *s.Electrochemistry.PotentialRHE
		out.Electrochemistry.PotentialRHE = &v
	}
	if s.Electrochemistry.PH != nil {
		v := *s.Electrochemistry.PH
		out.Electrochemistry.PH = &v
	}
	return &out
}
