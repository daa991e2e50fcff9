// Package assist drafts catalog submissions from natural-language analysis
// descriptions using an LLM. Drafts are never executed directly; they go
// through the same contribution validation as any hand-written query.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

const (
	defaultMaxConcurrent = 2
	defaultTimeout       = 60 * time.Second
	acquireTimeout       = 5 * time.Second
)

// ErrBusy is returned when all drafting slots are taken.
var ErrBusy = errors.New("assist is processing too many requests, try again in a moment")

// Draft is the LLM's proposal: a submission skeleton plus the model's notes.
type Draft struct {
	Submission types.Submission `json:"submission"`
	Notes      string           `json:"notes,omitempty"`
}

// Drafter turns analysis descriptions into SQL drafts with bounded
// concurrency and a per-request timeout.
type Drafter struct {
	model     llms.Model
	semaphore chan struct{}
	timeout   time.Duration
}

// NewDrafter creates a drafter over the given model.
func NewDrafter(model llms.Model, maxConcurrent int, timeout time.Duration) *Drafter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Drafter{
		model:     model,
		semaphore: make(chan struct{}, maxConcurrent),
		timeout:   timeout,
	}
}

var draftPrompt = prompts.NewPromptTemplate(
	`You are a patent-analytics SQL expert writing BigQuery Standard SQL against the EPO PATSTAT dataset.

Relevant tables:
- tls201_appln: applications (appln_id, appln_auth, appln_filing_year, appln_kind, granted, docdb_family_id)
- tls206_person: applicants and inventors (person_id, person_name, psn_sector, person_ctry_code)
- tls207_pers_appln: person-application link (person_id, appln_id, applt_seq_nr, invt_seq_nr)
- tls209_appln_ipc: IPC classifications (appln_id, ipc_class_symbol)
- tls230_appln_techn_field: WIPO technology fields (appln_id, techn_field_nr, weight)
- tls801_country: country reference (ctry_code, st3_name)

Parameter placeholders use the form @name and must each be declared. Common parameters:
@year_start and @year_end (numbers), @jurisdictions (multi-select, use IN UNNEST(@jurisdictions)), @tech_field (single-select, 1-35).
Optional clauses are wrapped in braces: { AND t.techn_field_nr = @tech_field }.

Task: draft one SQL query for the analysis described below. Respond with:
1. A short title on the first line, prefixed "Title: ".
2. A one-sentence description prefixed "Description: ".
3. The SQL inside a fenced code block.

Analysis request: {{.request}}`,
	[]string{"request"},
)

// DraftSQL asks the model for a query skeleton answering the description.
func (d *Drafter) DraftSQL(ctx context.Context, request string) (*Draft, error) {
	select {
	case d.semaphore <- struct{}{}:
		defer func() { <-d.semaphore }()
	case <-time.After(acquireTimeout):
		return nil, ErrBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	genCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	formatted, err := draftPrompt.Format(map[string]any{"request": request})
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}

	response, err := llms.GenerateFromSinglePrompt(genCtx, d.model, formatted)
	if err != nil {
		return nil, fmt.Errorf("llm draft failed: %w", err)
	}

	draft, err := ParseDraft(response)
	if err != nil {
		return nil, err
	}

	log.Info().Str("title", draft.Submission.Title).Msg("assist drafted query")
	return draft, nil
}

// ParseDraft extracts the title, description, and fenced SQL block from a
// model completion. Models do not always follow instructions exactly, so
// the SQL fence is the only hard requirement.
func ParseDraft(response string) (*Draft, error) {
	sql, rest := extractFence(response)
	if sql == "" {
		return nil, fmt.Errorf("no SQL block in model response")
	}

	draft := &Draft{
		Submission: types.Submission{SQLTemplate: sql},
	}
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "Title:"); ok && draft.Submission.Title == "" {
			draft.Submission.Title = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(line, "Description:"); ok && draft.Submission.Description == "" {
			draft.Submission.Description = strings.TrimSpace(v)
		}
	}
	draft.Notes = strings.TrimSpace(rest)
	return draft, nil
}

// extractFence returns the first fenced code block and the remaining text.
func extractFence(s string) (code, rest string) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", s
	}
	body := s[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// Drop a language tag such as ```sql.
		if lang := strings.TrimSpace(body[:nl]); lang == "" || isLangTag(lang) {
			body = body[nl+1:]
		}
	}
	end := strings.Index(body, "```")
	if end < 0 {
		return strings.TrimSpace(body), s[:start]
	}
	return strings.TrimSpace(body[:end]), s[:start] + body[end+3:]
}

func isLangTag(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return len(s) <= 12
}
