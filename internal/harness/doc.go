// Package harness runs compiler conformance scenarios.
//
// A scenario is a small network written inline in YAML together with run
// settings and a list of assertions about the compiled model. The harness
// compiles it, stores the model in a fresh in-memory registry, reads it back
// and evaluates the assertions against what was stored.
//
// # Scenario Format
//
//	name: adsorption
//	description: "Gas-phase adsorption uses the Hertz-Knudsen prefactor"
//	settings:
//	  site: iO
//	  temperature: 500
//	  site_area: 6
//	  pressures: { gA: 1.0 }
//	species:
//	  - { label: iO, phase: cat, G: 0.0 }
//	  - { label: iR, phase: cat, G: -1.0 }
//	  - { label: gA, phase: gas, G: 0.2, mw: 28.0 }
//	reactions:
//	  - { id: r2, is1: iO, is2: gA, fs1: iR, fs2: none, G: -0.3 }
//	assertions:
//	  - type: equation_contains
//	    species: iR
//	    text: "+r2(t)"
//	  - type: rate_constant_form
//	    reaction: r2
//	    direction: forward
//	    form: hertz-knudsen
//	golden: adsorption
//
// # Assertion Types
//
//   - equation_contains: the ODE of a species contains a text
//   - equation_lacks: the ODE of a species does not contain a text
//   - rate_constant_form: eyring, hertz-knudsen or zero for one direction
//   - activation_energy: the activation energy of one direction, within tolerance
//   - error: compilation fails with the given error kind
//
// # Golden Files
//
// When golden is set, the rendered Maple worksheet is compared byte for byte
// with testdata/golden/<golden>.golden. Regenerate with
//
//	go test ./internal/harness -update
package harness
