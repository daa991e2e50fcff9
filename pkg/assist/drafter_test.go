package assist

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel returns a canned completion and records the prompt it received.
type fakeModel struct {
	response string
	err      error
	prompt   string
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompt = text.Text
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

const wellFormedResponse = "Title: Grant rate by office\n" +
	"Description: Share of granted applications per office and year.\n" +
	"```sql\n" +
	"SELECT appln_auth, COUNTIF(granted = 'Y') / COUNT(*) AS grant_rate\n" +
	"FROM tls201_appln\n" +
	"WHERE appln_filing_year BETWEEN @year_start AND @year_end\n" +
	"GROUP BY appln_auth\n" +
	"```\n"

func TestDraftSQL(t *testing.T) {
	model := &fakeModel{response: wellFormedResponse}
	d := NewDrafter(model, 1, 0)

	draft, err := d.DraftSQL(context.Background(), "grant rate per patent office over time")
	require.NoError(t, err)

	assert.Equal(t, "Grant rate by office", draft.Submission.Title)
	assert.Equal(t, "Share of granted applications per office and year.", draft.Submission.Description)
	assert.Contains(t, draft.Submission.SQLTemplate, "FROM tls201_appln")
	assert.Contains(t, draft.Submission.SQLTemplate, "@year_start")

	// The analysis request and the placeholder contract reach the model
	assert.Contains(t, model.prompt, "grant rate per patent office over time")
	assert.Contains(t, model.prompt, "IN UNNEST(@jurisdictions)")
}

func TestDraftSQL_ModelError(t *testing.T) {
	model := &fakeModel{err: fmt.Errorf("connection refused")}
	d := NewDrafter(model, 1, 0)

	_, err := d.DraftSQL(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm draft failed")
}

func TestParseDraft_FenceWithoutLanguageTag(t *testing.T) {
	draft, err := ParseDraft("Title: T\n```\nSELECT 1\n```")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", draft.Submission.SQLTemplate)
	assert.Equal(t, "T", draft.Submission.Title)
}

func TestParseDraft_MissingFence(t *testing.T) {
	_, err := ParseDraft("Title: T\nSELECT 1 FROM t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no SQL block")
}

func TestParseDraft_UnterminatedFence(t *testing.T) {
	draft, err := ParseDraft("```sql\nSELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", draft.Submission.SQLTemplate)
}

func TestParseDraft_TitleAfterFence(t *testing.T) {
	// Metadata lines are picked up wherever they appear outside the fence
	draft, err := ParseDraft("```sql\nSELECT 1\n```\nTitle: After\nDescription: D")
	require.NoError(t, err)
	assert.Equal(t, "After", draft.Submission.Title)
	assert.Equal(t, "D", draft.Submission.Description)
	assert.Equal(t, "SELECT 1", draft.Submission.SQLTemplate)
}
