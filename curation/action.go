// Package curation implements the pipeline engine: a serializable, ordered
// list of named actions applied sequentially to a working copy of a tabular
// dataset, each writing to its own section of an accumulating report.
package curation

import (
	"strings"

	"molcure/domain/dataset"
	"molcure/domain/report"
)

// RunOptions carries the per-run execution parameters every action receives.
type RunOptions struct {
	Verbosity VerbosityLevel

	// ParallelizedKwargs is an opaque key-value map forwarded to collaborators
	// that support parallel per-element work (e.g. molecule normalization).
	ParallelizedKwargs map[string]interface{}

	// Context is the explicit cross-step side channel.
	Context *Context
}

// Action is one named, serializable unit of work over a dataset. An action is
// immutable after construction, invoked exactly once per pipeline run, and
// must not retain the input table after returning. Errors propagate to the
// caller uncaught; there are no per-step retries.
type Action interface {
	// Name uniquely identifies the action variant. It doubles as the
	// serialization tag and the report section title.
	Name() string

	// Prefix is prepended to every column the action creates.
	Prefix() string

	// Validate checks the configuration. Called at construction time and
	// again at the start of a run so a decoded document fails fast.
	Validate() error

	// Transform applies the action to the table and returns the resulting
	// table. Only deduplication may change the row count.
	Transform(t *dataset.Table, section *report.Section, opts RunOptions) (*dataset.Table, error)
}

// defaultPrefix derives the fallback column prefix from an action name.
func defaultPrefix(name string) string {
	return strings.ToUpper(name) + "_"
}

// columnName joins a prefix and a base column name.
func columnName(prefix, base string) string {
	return prefix + base
}
