package curation

import (
	"encoding/json"
	"fmt"
	"os"

	"molcure/domain/dataset"
	"molcure/domain/report"
	"molcure/internal"
	tableio "molcure/internal/dataset"
)

// Curator is a serializable collection of actions applied in order to a
// dataset. A run works on a deep copy, opens one report section per action,
// and is all-or-nothing: any step error aborts the whole run and nothing is
// returned.
type Curator struct {
	Steps              []Action
	SrcDatasetPath     string
	Verbosity          VerbosityLevel
	ParallelizedKwargs map[string]interface{}

	logger *internal.Logger
}

// NewCurator creates a curator over the given steps with NORMAL verbosity.
func NewCurator(steps ...Action) *Curator {
	return &Curator{Steps: steps, Verbosity: Normal}
}

// Logger returns the logger for this curator's verbosity, creating it on
// first use.
func (c *Curator) Logger() *internal.Logger {
	if c.logger == nil {
		c.logger = internal.NewLogger(logLevelFor(c.Verbosity))
	}
	return c.logger
}

func logLevelFor(v VerbosityLevel) internal.LogLevel {
	switch v {
	case Silent:
		return internal.LogLevelError
	case Verbose:
		return internal.LogLevelDebug
	case Deafening:
		return internal.LogLevelTrace
	default:
		return internal.LogLevelInfo
	}
}

// Transform runs the curation process and returns the curated dataset plus
// the report. The passed-in dataset always takes precedence; SrcDatasetPath
// is a convenience loader used only when no dataset is supplied.
func (c *Curator) Transform(table *dataset.Table) (*dataset.Table, *report.Report, error) {
	logger := c.Logger()

	if table == nil && c.SrcDatasetPath != "" {
		loaded, err := LoadDataset(c.SrcDatasetPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading source dataset: %w", err)
		}
		table = loaded
	} else if table != nil && c.SrcDatasetPath != "" {
		logger.Warn("Both src_dataset_path and a dataset are specified. Using the passed-in dataset.")
	}
	if table == nil {
		return nil, nil, fmt.Errorf("a source dataset is required")
	}

	if err := c.validateSteps(); err != nil {
		return nil, nil, err
	}

	rep := report.New()
	pipelineCtx := NewContext()

	// Changes are not made in place.
	working := table.DeepCopy()

	for _, action := range c.Steps {
		logger.Info("Performing step: %s", action.Name())

		section := rep.StartSection(action.Name())
		next, err := action.Transform(working, section, RunOptions{
			Verbosity:          c.Verbosity,
			ParallelizedKwargs: c.ParallelizedKwargs,
			Context:            pipelineCtx,
		})
		section.End()
		if err != nil {
			return nil, nil, fmt.Errorf("step %q: %w", action.Name(), err)
		}
		working = next
	}

	return working, rep, nil
}

// validateSteps runs every action's own validation and checks the declared
// cross-step dependency chain once, before anything executes.
func (c *Curator) validateSteps() error {
	if len(c.Steps) == 0 {
		return fmt.Errorf("curator has no steps configured")
	}

	provided := make(map[ContextKey]bool)
	for _, action := range c.Steps {
		if err := action.Validate(); err != nil {
			return err
		}
		if req, ok := action.(Requirer); ok {
			for _, key := range req.Requires() {
				if !provided[key] {
					return fmt.Errorf("step %q requires %q, which no earlier step provides", action.Name(), key)
				}
			}
		}
		if prov, ok := action.(Provider); ok {
			for _, key := range prov.Provides() {
				provided[key] = true
			}
		}
	}
	return nil
}

// LoadDataset loads a dataset to be curated from a path. Format selection
// sniffs the file structure: a spreadsheet container is read as xlsx,
// anything else as delimited text.
func LoadDataset(path string) (*dataset.Table, error) {
	return tableio.LoadTable(path)
}

// curatorDoc is the wire shape of the workflow document.
type curatorDoc struct {
	Steps              []json.RawMessage      `json:"steps"`
	SrcDatasetPath     string                 `json:"src_dataset_path,omitempty"`
	Verbosity          VerbosityLevel         `json:"verbosity"`
	ParallelizedKwargs map[string]interface{} `json:"parallelized_kwargs,omitempty"`
}

// MarshalJSON serializes the workflow with the step list as a discriminated
// union keyed by each action's name. Unset optional fields are omitted.
func (c *Curator) MarshalJSON() ([]byte, error) {
	doc := curatorDoc{
		SrcDatasetPath:     c.SrcDatasetPath,
		Verbosity:          c.Verbosity,
		ParallelizedKwargs: c.ParallelizedKwargs,
	}
	for _, action := range c.Steps {
		fields, err := json.Marshal(action)
		if err != nil {
			return nil, err
		}
		var m map[string]interface{}
		if err := json.Unmarshal(fields, &m); err != nil {
			return nil, err
		}
		m["name"] = action.Name()
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		doc.Steps = append(doc.Steps, raw)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reconstructs the exact ordered action list. Each step is
// either a flat object carrying a "name" tag or a single-key object keyed by
// the action name; unknown tags are a configuration error. A document that
// omits "verbosity" gets NORMAL, same as NewCurator.
func (c *Curator) UnmarshalJSON(data []byte) error {
	doc := curatorDoc{Verbosity: Normal}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	steps := make([]Action, 0, len(doc.Steps))
	for i, raw := range doc.Steps {
		action, err := decodeStep(raw)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if err := action.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, action)
	}

	c.Steps = steps
	c.SrcDatasetPath = doc.SrcDatasetPath
	c.Verbosity = doc.Verbosity
	c.ParallelizedKwargs = doc.ParallelizedKwargs
	return nil
}

func decodeStep(raw json.RawMessage) (Action, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	// Flat form: {"name": "...", ...fields}.
	if nameRaw, ok := probe["name"]; ok {
		var name string
		if err := json.Unmarshal(nameRaw, &name); err != nil {
			return nil, err
		}
		action, err := NewAction(name)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, action); err != nil {
			return nil, err
		}
		return action, nil
	}

	// Keyed form: {"<action_name>": {...fields}}.
	if len(probe) == 1 {
		for name, fields := range probe {
			action, err := NewAction(name)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(fields, action); err != nil {
				return nil, err
			}
			return action, nil
		}
	}

	return nil, fmt.Errorf("step object must carry a \"name\" tag or be keyed by the action name")
}

// FromJSON loads a curation workflow from a JSON file.
func FromJSON(path string) (*Curator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow: %w", err)
	}
	var c Curator
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing workflow: %w", err)
	}
	return &c, nil
}

// ToJSON saves the curation workflow to a JSON file.
func (c *Curator) ToJSON(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
