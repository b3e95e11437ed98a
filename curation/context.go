package curation

import "fmt"

// ContextKey names a cross-step data contract published by one action and
// consumed by a later one.
type ContextKey string

// DiscretizationThresholdsKey names the thresholds a Discretize step
// publishes for a later Distribution step to overlay. The key is namespaced
// by the discretized column so several Discretize steps in one workflow do
// not collide.
func DiscretizationThresholdsKey(column string) ContextKey {
	return ContextKey("discretization_thresholds:" + column)
}

// Context is the explicit side channel threaded through a pipeline run.
// Entries are write-once: an action publishes a value under a declared key
// and later actions read it; republishing a key is a programming error.
type Context struct {
	values map[ContextKey]interface{}
}

// NewContext creates an empty pipeline context.
func NewContext() *Context {
	return &Context{values: make(map[ContextKey]interface{})}
}

// Publish records a value under a key. Overwriting is rejected so published
// contracts stay immutable for the rest of the run.
func (c *Context) Publish(key ContextKey, value interface{}) error {
	if _, exists := c.values[key]; exists {
		return fmt.Errorf("pipeline context key %q already published", key)
	}
	c.values[key] = value
	return nil
}

// Value returns the published value for a key.
func (c *Context) Value(key ContextKey) (interface{}, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Provider is implemented by actions that publish context keys.
type Provider interface {
	Provides() []ContextKey
}

// Requirer is implemented by actions that consume context keys published by
// an earlier step. The Curator verifies the chain once before execution.
type Requirer interface {
	Requires() []ContextKey
}
