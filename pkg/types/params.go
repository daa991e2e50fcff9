package types

// ParameterKind identifies how a parameter validates, coerces, and renders.
type ParameterKind string

const (
	ParameterText         ParameterKind = "text"
	ParameterNumber       ParameterKind = "number"
	ParameterSingleSelect ParameterKind = "single_select"
	ParameterMultiSelect  ParameterKind = "multi_select"
	ParameterRange        ParameterKind = "range"
)

// Valid reports whether k is one of the recognized parameter kinds.
func (k ParameterKind) Valid() bool {
	switch k {
	case ParameterText, ParameterNumber, ParameterSingleSelect, ParameterMultiSelect, ParameterRange:
		return true
	}
	return false
}

// Bounds is an inclusive (min, max) constraint for number and range parameters.
type Bounds struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether v lies within the bounds.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Option is one selectable value for single/multi-select parameters.
// Value is the underlying value substituted into SQL (string or number);
// Label is display-only.
type Option struct {
	Label string `yaml:"label" json:"label"`
	Value any    `yaml:"value" json:"value"`
	Group string `yaml:"group,omitempty" json:"group,omitempty"` // sector grouping for tech fields
}

// ParameterDefinition describes one customizable slot in a query template.
// Exactly one of Options or OptionsRef is set for select kinds; OptionsRef
// names a shared option set (e.g. "jurisdictions") resolved at catalog load.
type ParameterDefinition struct {
	Name       string        `yaml:"name" json:"name"`
	Kind       ParameterKind `yaml:"kind" json:"kind"`
	Label      string        `yaml:"label" json:"label"`
	Required   bool          `yaml:"required" json:"required"`
	Default    any           `yaml:"default,omitempty" json:"default,omitempty"`
	Bounds     *Bounds       `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	Options    []Option      `yaml:"options,omitempty" json:"options,omitempty"`
	OptionsRef string        `yaml:"options_ref,omitempty" json:"options_ref,omitempty"`
}

// BindParameter is one named value sent to the query backend alongside the
// template text. Values are never spliced into the SQL itself.
type BindParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Array bool   `json:"array,omitempty"`
}
