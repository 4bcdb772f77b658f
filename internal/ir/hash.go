package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainModel = "amk/model/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ModelHash computes the content-addressed identity of a compiled model.
// Only rendered expression text takes part; floats never reach the hash, so
// two compiles of the same input always agree.
func ModelHash(m *Model) (string, error) {
	canonical, err := MarshalCanonical(modelObject(m))
	if err != nil {
		return "", fmt.Errorf("ModelHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainModel, canonical), nil
}

// MustModelHash is like ModelHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustModelHash(m *Model) string {
	h, err := ModelHash(m)
	if err != nil {
		panic(err)
	}
	return h
}

func modelObject(m *Model) map[string]any {
	equations := make([]any, 0, len(m.Equations))
	for _, eq := range m.Equations {
		equations = append(equations, eq.Expr)
	}
	constants := make([]any, 0, 2*len(m.Reactions))
	laws := make([]any, 0, len(m.Reactions))
	for _, r := range m.Reactions {
		constants = append(constants, r.Forward.Constant.Expr, r.Reverse.Constant.Expr)
		laws = append(laws, r.RateExpr)
	}
	drivers := make([]any, 0, len(m.Drivers))
	for _, d := range m.Drivers {
		drivers = append(drivers, d.Symbol)
	}
	return map[string]any{
		"site":               m.SiteSpecies,
		"site_balance":       m.SiteBalance.Expr,
		"equations":          equations,
		"initial_conditions": m.InitialConditions,
		"solver":             m.SolverCall,
		"rate_constants":     constants,
		"rate_laws":          laws,
		"drivers":            drivers,
	}
}
