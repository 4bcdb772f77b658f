package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/amk/internal/compiler"
	"github.com/roach88/amk/internal/config"
	"github.com/roach88/amk/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Settings  SettingsSpec   `yaml:"settings"`
	Species   []SpeciesSpec  `yaml:"species"`
	Reactions []ReactionSpec `yaml:"reactions"`

	// Zeroed lists reactions compiled with zero rate constants.
	Zeroed []string `yaml:"zeroed,omitempty"`

	// Assertions validate the compiled model.
	Assertions []Assertion `yaml:"assertions"`

	// Golden names the golden worksheet, without extension. Optional.
	Golden string `yaml:"golden,omitempty"`
}

// SettingsSpec holds the run parameters of a scenario.
type SettingsSpec struct {
	Site           string             `yaml:"site"`
	Catalyst       string             `yaml:"catalyst,omitempty"`
	Temperature    float64            `yaml:"temperature"`
	SiteArea       float64            `yaml:"site_area,omitempty"`
	LayerThickness float64            `yaml:"layer_thickness,omitempty"`
	DampTime       *float64           `yaml:"damp_time,omitempty"`
	Time           string             `yaml:"time,omitempty"`
	Pressures      map[string]float64 `yaml:"pressures,omitempty"`
	Concentrations map[string]float64 `yaml:"concentrations,omitempty"`
	PotentialRHE   *float64           `yaml:"potential_rhe,omitempty"`
	PH             *float64           `yaml:"ph,omitempty"`
	MapleOutput    string             `yaml:"maple_output,omitempty"`
}

// SpeciesSpec is one inline species.
type SpeciesSpec struct {
	Label       string    `yaml:"label"`
	Phase       string    `yaml:"phase"`
	G           float64   `yaml:"G"`
	Electrons   *float64  `yaml:"ne,omitempty"`
	MW          *float64  `yaml:"mw,omitempty"`
	Frequencies []float64 `yaml:"frq,omitempty"`
}

// ReactionSpec is one inline reaction.
type ReactionSpec struct {
	ID        string   `yaml:"id"`
	IS1       string   `yaml:"is1"`
	IS2       string   `yaml:"is2"`
	FS1       string   `yaml:"fs1"`
	FS2       string   `yaml:"fs2"`
	G         float64  `yaml:"G"`
	Electrons *float64 `yaml:"ne,omitempty"`
	Alpha     *float64 `yaml:"alpha,omitempty"`
}

// Assertion validates the compiled model.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Species and Text are used by equation_contains and equation_lacks.
	Species string `yaml:"species,omitempty"`
	Text    string `yaml:"text,omitempty"`

	// Reaction and Direction (forward|reverse) are used by
	// rate_constant_form and activation_energy.
	Reaction  string `yaml:"reaction,omitempty"`
	Direction string `yaml:"direction,omitempty"`

	// Form is the expected rate-constant form (rate_constant_form).
	Form string `yaml:"form,omitempty"`

	// Value and Tolerance are used by activation_energy.
	Value     *float64 `yaml:"value,omitempty"`
	Tolerance float64  `yaml:"tolerance,omitempty"`

	// Kind is the expected error kind (error); Text, when set, must
	// appear in the error message.
	Kind string `yaml:"kind,omitempty"`
}

// Assertion type constants.
const (
	AssertEquationContains = "equation_contains"
	AssertEquationLacks    = "equation_lacks"
	AssertRateConstantForm = "rate_constant_form"
	AssertActivationEnergy = "activation_energy"
	AssertError            = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var scenarios []*Scenario
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		s, err := LoadScenario(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Settings.Site == "" {
		return fmt.Errorf("settings.site is required")
	}
	if s.Settings.Temperature <= 0 {
		return fmt.Errorf("settings.temperature must be positive")
	}
	if len(s.Species) == 0 {
		return fmt.Errorf("species list is required and must be non-empty")
	}
	for i, sp := range s.Species {
		if sp.Label == "" {
			return fmt.Errorf("species[%d]: label is required", i)
		}
		if sp.Phase == "" {
			return fmt.Errorf("species[%d]: phase is required", i)
		}
	}
	for i, r := range s.Reactions {
		if r.ID == "" {
			return fmt.Errorf("reactions[%d]: id is required", i)
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertEquationContains, AssertEquationLacks:
		if a.Species == "" || a.Text == "" {
			return fmt.Errorf("assertions[%d]: species and text are required for %s", index, a.Type)
		}
	case AssertRateConstantForm:
		if a.Reaction == "" || a.Form == "" {
			return fmt.Errorf("assertions[%d]: reaction and form are required for %s", index, a.Type)
		}
		if _, err := parseDirection(a.Direction); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertActivationEnergy:
		if a.Reaction == "" || a.Value == nil {
			return fmt.Errorf("assertions[%d]: reaction and value are required for %s", index, a.Type)
		}
		if _, err := parseDirection(a.Direction); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Tolerance < 0 {
			return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
		}
	case AssertError:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// parseDirection maps forward/reverse; empty means forward.
func parseDirection(s string) (ir.Direction, error) {
	switch strings.ToLower(s) {
	case "", "forward", "d":
		return ir.Forward, nil
	case "reverse", "i":
		return ir.Reverse, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want forward or reverse)", s)
	}
}

// settings converts the scenario's settings to config.Settings.
func (s *Scenario) settings() *config.Settings {
	in := s.Settings
	out := config.NewSettings(in.Site, in.Temperature)
	if in.Catalyst != "" {
		out.CatalystName = in.Catalyst
	}
	out.SiteArea = in.SiteArea
	out.LayerThickness = in.LayerThickness
	if in.DampTime != nil {
		out.DampTime = *in.DampTime
	}
	if in.Time != "" {
		out.Time = config.ParseTime(in.Time)
	}
	for label, p := range in.Pressures {
		out.Pressures[strings.ToLower(label)] = p
	}
	for label, c := range in.Concentrations {
		out.Concentrations[strings.ToLower(label)] = c
	}
	out.Electrochemistry.PotentialRHE = in.PotentialRHE
	out.Electrochemistry.PH = in.PH
	if in.MapleOutput != "" {
		out.MapleOutput = in.MapleOutput
	}
	return out
}

// network converts the inline species and reactions.
func (s *Scenario) network() ([]ir.Species, []ir.Reaction) {
	species := make([]ir.Species, 0, len(s.Species))
	for _, sp := range s.Species {
		out := ir.Species{
			Label:       sp.Label,
			RawPhase:    sp.Phase,
			Phase:       ir.ParsePhase(sp.Phase),
			Energy:      sp.G,
			Frequencies: sp.Frequencies,
		}
		if sp.Electrons != nil {
			out.Electrons, out.HasElectrons = *sp.Electrons, true
		}
		if sp.MW != nil && out.Phase == ir.PhaseGas {
			out.Gas = &ir.GasProperties{MolecularWeight: *sp.MW}
		}
		species = append(species, out)
	}

	reactions := make([]ir.Reaction, 0, len(s.Reactions))
	for _, r := range s.Reactions {
		out := ir.Reaction{ID: r.ID, Energy: r.G, Alpha: r.Alpha}
		for slot, label := range [4]string{r.IS1, r.IS2, r.FS1, r.FS2} {
			if !ir.IsNone(label) {
				out.Participants[slot] = label
			}
		}
		if r.Electrons != nil {
			out.Electrons, out.HasElectrons = *r.Electrons, true
		}
		reactions = append(reactions, out)
	}
	return species, reactions
}

// options returns the compile options of the scenario.
func (s *Scenario) options() compiler.Options {
	if len(s.Zeroed) == 0 {
		return compiler.Options{}
	}
	zeroed := make(map[string]bool, len(s.Zeroed))
	for _, id := range s.Zeroed {
		zeroed[id] = true
	}
	return compiler.Options{Zeroed: zeroed}
}
