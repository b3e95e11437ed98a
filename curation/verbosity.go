package curation

import (
	"encoding/json"
	"fmt"
)

// VerbosityLevel controls how chatty a curation run is.
type VerbosityLevel int

const (
	Silent VerbosityLevel = iota
	Normal
	Verbose
	Deafening
)

var verbosityNames = map[VerbosityLevel]string{
	Silent:    "SILENT",
	Normal:    "NORMAL",
	Verbose:   "VERBOSE",
	Deafening: "DEAFENING",
}

// String returns the canonical name used in workflow documents.
func (v VerbosityLevel) String() string {
	if name, ok := verbosityNames[v]; ok {
		return name
	}
	return fmt.Sprintf("VerbosityLevel(%d)", int(v))
}

// ParseVerbosity converts a document name into a level.
func ParseVerbosity(name string) (VerbosityLevel, error) {
	for level, n := range verbosityNames {
		if n == name {
			return level, nil
		}
	}
	return Normal, fmt.Errorf("unknown verbosity level %q", name)
}

// MarshalJSON serializes the level by name.
func (v VerbosityLevel) MarshalJSON() ([]byte, error) {
	name, ok := verbosityNames[v]
	if !ok {
		return nil, fmt.Errorf("invalid verbosity level %d", int(v))
	}
	return json.Marshal(name)
}

// UnmarshalJSON deserializes the level by name.
func (v *VerbosityLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	level, err := ParseVerbosity(name)
	if err != nil {
		return err
	}
	*v = level
	return nil
}
