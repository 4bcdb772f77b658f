package ir

import (
	"fmt"
	"regexp"
	"strings"
)

// Phase classifies where a species lives.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseSurface
	PhaseGas
	PhaseAqueous
)

// ParsePhase maps an input token to a Phase.
// Unrecognized tokens yield PhaseUnknown; the caller keeps the raw token for
// diagnostics because the site-balance species is allowed to carry any phase.
func ParsePhase(token string) Phase {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "cat", "surface":
		return PhaseSurface
	case "gas":
		return PhaseGas
	case "aqu", "aqueous":
		return PhaseAqueous
	default:
		return PhaseUnknown
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseSurface:
		return "cat"
	case PhaseGas:
		return "gas"
	case PhaseAqueous:
		return "aqu"
	default:
		return "unknown"
	}
}

// Species is a catalog entry: an adsorbed intermediate, a gas or a solute.
type Species struct {
	Label    string `json:"label"`
	Phase    Phase  `json:"phase"`
	RawPhase string `json:"raw_phase,omitempty"`

	// Energy is the Gibbs free energy in eV.
	Energy float64 `json:"energy"`

	// Electrons is the number of transferred electrons. HasElectrons is false
	// when the column was absent or not numeric.
	Electrons    float64 `json:"electrons"`
	HasElectrons bool    `json:"has_electrons"`

	Frequencies []float64 `json:"frequencies,omitempty"`

	// Gas is non-nil iff Phase == PhaseGas.
	Gas *GasProperties `json:"gas,omitempty"`
}

// GasProperties holds fields that only make sense for volatile species.
type GasProperties struct {
	MolecularWeight float64 `json:"molecular_weight"` // g/mol
}

// MolecularWeight returns the molecular weight of a gas-phase species.
// ok is false for every other phase.
func (s Species) MolecularWeight() (mw float64, ok bool) {
	if s.Phase != PhaseGas || s.Gas == nil {
		return 0, false
	}
	return s.Gas.MolecularWeight, true
}

// NoParticipant is the empty participant slot.
const NoParticipant = ""

// IsNone reports whether an input token is the "none" sentinel.
func IsNone(token string) bool {
	switch strings.TrimSpace(token) {
	case "", "-", "none", "None", "NONE", "nan", "NaN":
		return true
	}
	return false
}

// Slot identifies one of the four participant positions of a reaction.
type Slot int

const (
	SlotIS1 Slot = iota
	SlotIS2
	SlotFS1
	SlotFS2
)

// Slots lists the participant positions in processing order.
var Slots = [4]Slot{SlotIS1, SlotIS2, SlotFS1, SlotFS2}

func (s Slot) String() string {
	switch s {
	case SlotIS1:
		return "is1"
	case SlotIS2:
		return "is2"
	case SlotFS1:
		return "fs1"
	case SlotFS2:
		return "fs2"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// Direction returns the half-reaction a slot feeds: initial-state slots feed
// the forward rate law, final-state slots the reverse one.
func (s Slot) Direction() Direction {
	if s == SlotIS1 || s == SlotIS2 {
		return Forward
	}
	return Reverse
}

// Sign is the flux sign a surface participant in this slot receives.
func (s Slot) Sign() Sign {
	if s.Direction() == Forward {
		return Consumed
	}
	return Produced
}

// Direction is a half-reaction.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "reverse"
}

// Suffix is the rate-constant suffix used in symbol names (kr1d / kr1i).
func (d Direction) Suffix() string {
	if d == Forward {
		return "d"
	}
	return "i"
}

// Sign of a flux contribution to a differential equation.
type Sign int

const (
	Consumed Sign = -1
	Produced Sign = 1
)

func (s Sign) String() string {
	if s == Consumed {
		return "-"
	}
	return "+"
}

// Reaction is an elementary step between an initial and a final state.
type Reaction struct {
	ID           string    `json:"id"`
	Participants [4]string `json:"participants"` // indexed by Slot; NoParticipant for "none"
	Energy       float64   `json:"energy"`       // transition-state G in eV
	Electrons    float64   `json:"electrons"`
	HasElectrons bool      `json:"has_electrons"`

	// Alpha is the optional symmetry factor used to derive Electrons from the
	// participants when the reaction row does not carry its own count.
	Alpha *float64 `json:"alpha,omitempty"`
}

// Participant returns the species label in slot s and whether the slot is used.
func (r Reaction) Participant(s Slot) (string, bool) {
	label := r.Participants[s]
	return label, label != NoParticipant
}

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	labelPattern      = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// IsIdentifier reports whether id is a Maple name on its own. Reaction IDs
// appear bare as rate-law names (r1:=(t)-> ...).
func IsIdentifier(id string) bool {
	return identifierPattern.MatchString(id)
}

// IsLabel reports whether label forms a Maple name behind one of the
// c, sc, P or CSL prefixes. Leading digits are allowed.
func IsLabel(label string) bool {
	return labelPattern.MatchString(label)
}
