// Package catalog holds the process-wide collection of query definitions:
// builtins loaded at startup plus runtime contributions. Contributions live
// in memory for the process lifetime only.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mtc-analytics/patlens/pkg/params"
	"github.com/mtc-analytics/patlens/pkg/template"
	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/rs/zerolog/log"
)

// DryRunner validates SQL against the backend without materializing
// results. Used by the contribution flow's validate-before-accept step.
type DryRunner interface {
	DryRun(ctx context.Context, query string, binds []types.BindParameter) error
}

// Filter selects catalog entries. All fields are optional and combine as a
// conjunction; Tags matches any.
type Filter struct {
	Category   string
	Tags       []string
	Search     string
	CommonOnly bool
}

// Catalog is the in-memory query collection. Mutation is serialized so two
// simultaneous contributions cannot claim the same auto-generated id.
// Definitions handed out by Get and List are never mutated after
// publication; repairs swap in a fresh copy instead.
type Catalog struct {
	mu            sync.RWMutex
	entries       map[string]*types.QueryDefinition
	order         []string
	contributions int

	dryRunner DryRunner
}

// Option configures the catalog.
type Option func(*Catalog)

// WithDryRunner enables backend validation of contributed SQL.
func WithDryRunner(dr DryRunner) Option {
	return func(c *Catalog) { c.dryRunner = dr }
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{entries: make(map[string]*types.QueryDefinition)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the query with the given id.
func (c *Catalog) Get(id string) (*types.QueryDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.entries[id]
	if !ok {
		return nil, &types.ErrQueryNotFound{QueryId: id}
	}
	return def, nil
}

// List returns entries matching the filter in catalog insertion order, so
// identical filters always produce an identical ordering.
func (c *Catalog) List(f Filter) []*types.QueryDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*types.QueryDefinition
	for _, id := range c.order {
		def := c.entries[id]
		if f.Category != "" && def.Category != f.Category {
			continue
		}
		if f.CommonOnly && !def.Common {
			continue
		}
		if len(f.Tags) > 0 && !matchesAnyTag(def.Tags, f.Tags) {
			continue
		}
		if f.Search != "" && !matchesSearch(def, f.Search) {
			continue
		}
		out = append(out, def)
	}
	return out
}

// Len returns the number of registered queries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Register validates and inserts a query definition. Parameter definitions
// are checked first, then placeholder cross-validation: undefined tokens
// reject the query, unused parameters are recorded as a warning on the
// definition.
func (c *Catalog) Register(def *types.QueryDefinition) error {
	if err := validateDefinition(def); err != nil {
		return err
	}

	undefined, unused := CrossValidate(def.Template, def.Parameters)
	if len(undefined) > 0 {
		return &types.ErrUndefinedPlaceholder{QueryId: def.Id, Tokens: undefined}
	}
	def.UnusedParameters = unused
	if len(unused) > 0 {
		log.Warn().
			Str("query_id", def.Id).
			Strs("parameters", unused).
			Msg("declared parameters never referenced in template text")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[def.Id]; exists {
		return &types.ErrDuplicateQueryId{QueryId: def.Id}
	}
	c.entries[def.Id] = def
	c.order = append(c.order, def.Id)
	return nil
}

// Submit runs the contribution flow: field validation, id assignment,
// registration (including cross-validation), and an optional backend
// dry-run rendered with the declared defaults.
func (c *Catalog) Submit(ctx context.Context, sub types.Submission) (*types.QueryDefinition, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	def := &types.QueryDefinition{
		Title:       sub.Title,
		Description: sub.Description,
		Category:    sub.Category,
		Tags:        sub.Tags,
		Template:    sub.SQLTemplate,
		Parameters:  sub.Parameters,
		Contributed: true,
	}

	if err := validateDefinitionParameters(def); err != nil {
		return nil, err
	}
	undefined, unused := CrossValidate(def.Template, def.Parameters)
	if len(undefined) > 0 {
		return nil, &types.ErrUndefinedPlaceholder{QueryId: def.Id, Tokens: undefined}
	}
	def.UnusedParameters = unused

	if c.dryRunner != nil {
		if err := c.dryRunValidate(ctx, def); err != nil {
			return nil, err
		}
	}

	// Id assignment must be atomic with respect to concurrent submissions,
	// so it happens under the same lock as insertion.
	c.mu.Lock()
	defer c.mu.Unlock()

	c.contributions++
	def.Id = fmt.Sprintf("C%02d", c.contributions)
	c.entries[def.Id] = def
	c.order = append(c.order, def.Id)

	log.Info().
		Str("query_id", def.Id).
		Str("title", def.Title).
		Msg("contributed query accepted")
	return def, nil
}

// FixSQL replaces a query's template (maintainer repair flow). The new
// template is cross-validated against the existing parameters before taking
// effect. The published definition is replaced with a clone rather than
// mutated, so readers holding a pointer from Get or List keep a consistent
// snapshot while a run is in flight.
func (c *Catalog) FixSQL(id, sql string) (*types.QueryDefinition, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, &types.ErrInvalidSubmission{Field: "sql_template", Reason: "must not be empty"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	def, ok := c.entries[id]
	if !ok {
		return nil, &types.ErrQueryNotFound{QueryId: id}
	}

	undefined, unused := CrossValidate(sql, def.Parameters)
	if len(undefined) > 0 {
		return nil, &types.ErrUndefinedPlaceholder{QueryId: id, Tokens: undefined}
	}

	next := *def
	next.Template = sql
	next.UnusedParameters = unused
	c.entries[id] = &next

	log.Info().Str("query_id", id).Msg("query template updated")
	return &next, nil
}

// dryRunValidate renders the submission with its declared defaults and asks
// the backend to validate without materializing results.
func (c *Catalog) dryRunValidate(ctx context.Context, def *types.QueryDefinition) error {
	vals, err := params.BuildValueSet(def, nil)
	if err != nil {
		return err
	}
	rendered, err := template.Render(def, vals)
	if err != nil {
		return err
	}
	if err := c.dryRunner.DryRun(ctx, rendered.Query, rendered.Binds); err != nil {
		return &types.ErrInvalidSubmission{Field: "sql_template", Reason: err.Error()}
	}
	return nil
}

func validateDefinition(def *types.QueryDefinition) error {
	if strings.TrimSpace(def.Id) == "" {
		return &types.ErrInvalidSubmission{Field: "id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(def.Title) == "" {
		return &types.ErrInvalidSubmission{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(def.Template) == "" {
		return &types.ErrInvalidSubmission{Field: "sql_template", Reason: "must not be empty"}
	}
	return validateDefinitionParameters(def)
}

func validateDefinitionParameters(def *types.QueryDefinition) error {
	seen := make(map[string]bool, len(def.Parameters))
	for _, p := range def.Parameters {
		if seen[p.Name] {
			return &types.ErrInvalidParameterDefinition{Parameter: p.Name, Reason: "duplicate parameter name"}
		}
		seen[p.Name] = true
		if err := params.ValidateDefinition(p); err != nil {
			return err
		}
	}
	return nil
}

func validateSubmission(sub types.Submission) error {
	if strings.TrimSpace(sub.Title) == "" {
		return &types.ErrInvalidSubmission{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(sub.Description) == "" {
		return &types.ErrInvalidSubmission{Field: "description", Reason: "must not be empty"}
	}
	if strings.TrimSpace(sub.SQLTemplate) == "" {
		return &types.ErrInvalidSubmission{Field: "sql_template", Reason: "must not be empty"}
	}
	if !slices.Contains(types.QueryCategories, sub.Category) {
		return &types.ErrInvalidSubmission{Field: "category", Reason: fmt.Sprintf("must be one of %s", strings.Join(types.QueryCategories, ", "))}
	}
	if len(sub.Tags) == 0 {
		return &types.ErrInvalidSubmission{Field: "tags", Reason: "select at least one stakeholder tag"}
	}
	for _, t := range sub.Tags {
		if !slices.Contains(types.QueryTags, t) {
			return &types.ErrInvalidSubmission{Field: "tags", Reason: fmt.Sprintf("unknown tag %q", t)}
		}
	}
	return nil
}

func matchesAnyTag(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

func matchesSearch(def *types.QueryDefinition, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(def.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(def.Description), needle) {
		return true
	}
	for _, t := range def.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}
