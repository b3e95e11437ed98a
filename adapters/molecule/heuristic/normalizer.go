// Package heuristic provides dependency-free stand-ins for the external
// cheminformatics collaborators: a string-level SMILES normalizer and a
// placeholder molecule renderer. They are good enough for tests and offline
// runs; a real toolkit plugs in behind the same ports.
package heuristic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"molcure/ports"
)

// Normalizer standardizes SMILES strings without a chemistry backend: it
// keeps the largest fragment, strips whitespace, hashes the result with and
// without stereochemistry markers, and counts stereocenters from the marker
// tokens themselves.
type Normalizer struct{}

// NewNormalizer creates a heuristic SMILES normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

const smilesAlphabet = "ABCDEFGHIKLMNOPRSTUVWXYZabcdefghiklmnoprstuy0123456789@+-[]()=#$%/\\.:*"

// Normalize implements ports.MoleculeNormalizer. A malformed input yields the
// invalid record, never an error.
func (n *Normalizer) Normalize(_ context.Context, input string) ports.MoleculeRecord {
	canonical, ok := canonicalize(input)
	if !ok {
		return ports.MoleculeRecord{}
	}

	noStereo := stripStereo(canonical)
	defined, undefined := countStereoCenters(canonical)
	total := defined + undefined

	return ports.MoleculeRecord{
		Smiles:                    canonical,
		SmilesNoStereo:            noStereo,
		MolhashID:                 hash(canonical),
		MolhashIDNoStereo:         hash(noStereo),
		NumStereoCenters:          total,
		NumDefinedStereoCenters:   defined,
		NumUndefinedStereoCenters: undefined,
		// Each center doubles the number of possible forms.
		NumStereoisomers:          1 << total,
		NumUndefinedStereoisomers: 1 << undefined,
		UndefinedED:               defined == 0 && total > 0,
		UndefinedEZ:               !strings.Contains(canonical, "@") && undefined > 0,
		Valid:                     true,
	}
}

// canonicalize trims the input, keeps the largest dot-separated fragment
// (dropping salts and solvents) and rejects strings that cannot be SMILES.
func canonicalize(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}

	largest := ""
	for _, fragment := range strings.Split(s, ".") {
		if len(fragment) > len(largest) {
			largest = fragment
		}
	}
	if largest == "" {
		return "", false
	}

	depthParen, depthBracket := 0, 0
	for _, r := range largest {
		if !strings.ContainsRune(smilesAlphabet, r) {
			return "", false
		}
		switch r {
		case '(':
			depthParen++
		case ')':
			depthParen--
		case '[':
			depthBracket++
		case ']':
			depthBracket--
		}
		if depthParen < 0 || depthBracket < 0 {
			return "", false
		}
	}
	if depthParen != 0 || depthBracket != 0 {
		return "", false
	}
	return largest, true
}

// stripStereo removes tetrahedral (@) and double-bond (/, \) stereo markers,
// giving the stereo-insensitive identity.
func stripStereo(s string) string {
	r := strings.NewReplacer("@", "", "/", "", "\\", "")
	return r.Replace(s)
}

// countStereoCenters counts marker tokens: @ runs are defined tetrahedral
// centers; a double bond with geometry markers is defined, one without any is
// counted as a single undefined center candidate.
func countStereoCenters(s string) (defined, undefined int) {
	inRun := false
	for _, r := range s {
		if r == '@' {
			if !inRun {
				defined++
				inRun = true
			}
			continue
		}
		inRun = false
	}

	if strings.Contains(s, "=") {
		if strings.ContainsAny(s, "/\\") {
			defined++
		} else {
			undefined++
		}
	}
	return defined, undefined
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
