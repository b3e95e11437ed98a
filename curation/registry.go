package curation

import (
	"fmt"
	"sort"

	"molcure/adapters/molecule/heuristic"
)

// ActionFactory builds a fresh action with its defaults and default
// collaborators wired in.
type ActionFactory func() Action

// actionRegistry is the closed tag -> constructor map used to decode the
// discriminated step list. It is assembled here at start-up; unknown tags in
// a workflow document are a configuration error, never silently ignored.
var actionRegistry = map[string]ActionFactory{
	"outlier_detection": func() Action { return NewOutlierDetection() },
	"deduplicate":       func() Action { return NewDeduplication() },
	"discretize":        func() Action { return NewDiscretization() },
	"distribution":      func() Action { return NewDistribution() },
	"ac_stereoisomer": func() Action {
		a := NewStereoisomerACDetection()
		a.SetRenderer(heuristic.NewRenderer())
		return a
	},
	"mol_curation": func() Action {
		a := NewMoleculeCuration()
		a.SetNormalizer(heuristic.NewNormalizer())
		a.SetRenderer(heuristic.NewRenderer())
		return a
	},
}

// NewAction builds a registered action by tag.
func NewAction(name string) (Action, error) {
	factory, ok := actionRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown action %q (choose from %v)", name, ActionNames())
	}
	return factory(), nil
}

// ActionNames returns the registered tags, sorted.
func ActionNames() []string {
	names := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
