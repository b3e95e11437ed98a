package ports

import "context"

// MoleculeRecord is the result of normalizing one raw molecular string:
// a canonical representation plus structural identity hashes and
// stereochemistry counts. An invalid input yields the zero record with
// Valid=false; normalization itself never fails per molecule, so callers can
// count invalid rows instead of aborting.
type MoleculeRecord struct {
	Smiles            string `json:"smiles"`
	SmilesNoStereo    string `json:"smiles_no_stereo"`
	MolhashID         string `json:"molhash_id"`
	MolhashIDNoStereo string `json:"molhash_id_no_stereo"`

	NumStereoCenters          int `json:"num_stereo_center"`
	NumDefinedStereoCenters   int `json:"num_defined_stereo_center"`
	NumUndefinedStereoCenters int `json:"num_undefined_stereo_center"`

	// Stereoisomer counts enumerate the distinct forms the molecule can
	// take: all of them, and only those arising from undefined centers.
	NumStereoisomers          int `json:"num_stereoisomers"`
	NumUndefinedStereoisomers int `json:"num_undefined_stereoisomers"`

	// UndefinedED marks a molecule with stereocenters but none of them
	// assigned; UndefinedEZ marks undefined double-bond geometry on a
	// molecule without tetrahedral centers.
	UndefinedED bool `json:"undefined_E_D"`
	UndefinedEZ bool `json:"undefined_E/Z"`

	Valid bool `json:"valid"`
}

// MoleculeNormalizer standardizes raw molecular strings. Implementations must
// confine any per-molecule failure to the returned record (Valid=false) and
// only return a hard error for a broken mechanism (e.g. a missing backend).
type MoleculeNormalizer interface {
	Normalize(ctx context.Context, input string) MoleculeRecord
}
