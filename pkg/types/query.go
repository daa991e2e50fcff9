package types

// Query categories and tags are fixed enumerations; submissions referencing
// anything else are rejected before reaching the catalog.
var (
	QueryCategories = []string{"Competitors", "Trends", "Regional", "Technology"}
	QueryTags       = []string{"PATLIB", "BUSINESS", "UNIVERSITY"}
)

// QueryDefinition is one catalog entry: a SQL template with @name placeholder
// tokens, the parameters that fill them, and presentation metadata.
type QueryDefinition struct {
	Id          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Category    string   `yaml:"category" json:"category"`
	Tags        []string `yaml:"tags" json:"tags"`

	Template   string                `yaml:"sql" json:"sql"`
	Parameters []ParameterDefinition `yaml:"parameters" json:"parameters"`

	Explanation string   `yaml:"explanation,omitempty" json:"explanation,omitempty"`
	KeyOutputs  []string `yaml:"key_outputs,omitempty" json:"key_outputs,omitempty"`

	// Common marks the query for the landing page's common-questions strip.
	Common bool `yaml:"common,omitempty" json:"common,omitempty"`

	// Advisory timing hints in seconds, not enforced.
	EstimatedSecondsCached   float64 `yaml:"estimated_seconds_cached,omitempty" json:"estimated_seconds_cached,omitempty"`
	EstimatedSecondsFirstRun float64 `yaml:"estimated_seconds_first_run,omitempty" json:"estimated_seconds_first_run,omitempty"`

	// Contributed is true for entries accepted through the submission flow.
	// They live only for the process lifetime.
	Contributed bool `yaml:"-" json:"contributed,omitempty"`

	// UnusedParameters records declared parameters never referenced in the
	// template text. A warning surfaced to authors, not an error: some
	// parameters are consumed by optional-clause logic instead.
	UnusedParameters []string `yaml:"-" json:"unused_parameters,omitempty"`
}

// Parameter returns the definition for the named parameter, if declared.
func (q *QueryDefinition) Parameter(name string) (ParameterDefinition, bool) {
	for _, p := range q.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterDefinition{}, false
}

// Submission is the shape the contribution flow hands to the catalog.
// The id is assigned by the catalog on acceptance.
type Submission struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Tags        []string              `json:"tags"`
	SQLTemplate string                `json:"sql_template"`
	Parameters  []ParameterDefinition `json:"parameters"`
}
