package dataset

import "encoding/json"

// Flag is a three-valued boolean used for row annotations such as outlier or
// activity-cliff marks. Undetermined means the question could not be decided
// for that row (e.g. a missing measurement or a group of size one) and is
// distinct from both true and false.
type Flag int8

const (
	FlagFalse Flag = iota
	FlagTrue
	FlagUndetermined
)

// String returns "true", "false" or "undetermined".
func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "true"
	case FlagFalse:
		return "false"
	default:
		return "undetermined"
	}
}

// Bool returns the flag as a bool plus whether the flag is determined.
func (f Flag) Bool() (value bool, ok bool) {
	switch f {
	case FlagTrue:
		return true, true
	case FlagFalse:
		return false, true
	default:
		return false, false
	}
}

// FlagOf converts a bool to a determined Flag.
func FlagOf(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

// MarshalJSON encodes true/false and null for undetermined.
func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case FlagTrue:
		return []byte("true"), nil
	case FlagFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes true/false/null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*f = FlagUndetermined
	} else {
		*f = FlagOf(*v)
	}
	return nil
}
