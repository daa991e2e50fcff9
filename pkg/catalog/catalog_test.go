package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefinition(id string) *types.QueryDefinition {
	return &types.QueryDefinition{
		Id:       id,
		Title:    "Filings by year",
		Category: "Trends",
		Tags:     []string{"PATLIB"},
		Template: "SELECT yr, COUNT(*) FROM t WHERE yr >= @year_start GROUP BY yr",
		Parameters: []types.ParameterDefinition{
			{Name: "year_start", Kind: types.ParameterNumber, Default: 2015},
		},
	}
}

func TestRegister_UndefinedPlaceholderRejected(t *testing.T) {
	c := New()

	def := testDefinition("Q90")
	def.Template = "SELECT a FROM t WHERE a = @a AND b = @b"
	def.Parameters = []types.ParameterDefinition{{Name: "a", Kind: types.ParameterNumber}}

	err := c.Register(def)
	var undefined *types.ErrUndefinedPlaceholder
	require.True(t, undefined.From(err))
	assert.Contains(t, err.Error(), "b")
	assert.Equal(t, 0, c.Len())
}

func TestRegister_UnusedParameterIsWarningOnly(t *testing.T) {
	c := New()

	def := testDefinition("Q91")
	def.Parameters = append(def.Parameters, types.ParameterDefinition{Name: "c", Kind: types.ParameterNumber})

	require.NoError(t, c.Register(def))
	got, err := c.Get("Q91")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got.UnusedParameters)
}

func TestRegister_DuplicateId(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(testDefinition("Q92")))

	err := c.Register(testDefinition("Q92"))
	var dup *types.ErrDuplicateQueryId
	assert.True(t, dup.From(err))
}

func TestGet_NotFound(t *testing.T) {
	c := New()
	_, err := c.Get("Q99")
	var notFound *types.ErrQueryNotFound
	assert.True(t, notFound.From(err))
}

func TestList_FiltersAndStableOrder(t *testing.T) {
	c := New()

	trend := testDefinition("Q01")
	trend.Common = true
	require.NoError(t, c.Register(trend))

	competitors := testDefinition("Q02")
	competitors.Title = "Top applicants"
	competitors.Category = "Competitors"
	competitors.Tags = []string{"BUSINESS"}
	require.NoError(t, c.Register(competitors))

	regional := testDefinition("Q03")
	regional.Category = "Regional"
	regional.Tags = []string{"PATLIB", "UNIVERSITY"}
	require.NoError(t, c.Register(regional))

	all := c.List(Filter{})
	require.Len(t, all, 3)
	assert.Equal(t, "Q01", all[0].Id)
	assert.Equal(t, "Q02", all[1].Id)
	assert.Equal(t, "Q03", all[2].Id)

	assert.Len(t, c.List(Filter{Category: "Competitors"}), 1)
	assert.Len(t, c.List(Filter{Tags: []string{"PATLIB"}}), 2)
	assert.Len(t, c.List(Filter{Tags: []string{"BUSINESS", "UNIVERSITY"}}), 2)
	assert.Len(t, c.List(Filter{CommonOnly: true}), 1)

	// Case-insensitive substring search over title and description
	found := c.List(Filter{Search: "top appl"})
	require.Len(t, found, 1)
	assert.Equal(t, "Q02", found[0].Id)
}

func TestSubmit_AssignsSequentialIds(t *testing.T) {
	c := New()

	sub := types.Submission{
		Title:       "Grant rate by office",
		Description: "Share of granted applications per office",
		Category:    "Trends",
		Tags:        []string{"BUSINESS"},
		SQLTemplate: "SELECT auth, COUNT(*) FROM t WHERE yr >= @year_start GROUP BY auth",
		Parameters: []types.ParameterDefinition{
			{Name: "year_start", Kind: types.ParameterNumber, Default: 2015},
		},
	}

	def, err := c.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "C01", def.Id)
	assert.True(t, def.Contributed)

	def2, err := c.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "C02", def2.Id)
}

func TestSubmit_ConcurrentIdsUnique(t *testing.T) {
	c := New()

	sub := types.Submission{
		Title:       "Concurrent",
		Description: "d",
		Category:    "Trends",
		Tags:        []string{"PATLIB"},
		SQLTemplate: "SELECT 1",
	}

	const n = 20
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			def, err := c.Submit(context.Background(), sub)
			if assert.NoError(t, err) {
				ids[i] = def.Id
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Equal(t, n, c.Len())
}

func TestSubmit_FieldValidation(t *testing.T) {
	c := New()
	var invalid *types.ErrInvalidSubmission

	_, err := c.Submit(context.Background(), types.Submission{
		Description: "d", Category: "Trends", Tags: []string{"PATLIB"}, SQLTemplate: "SELECT 1",
	})
	require.True(t, invalid.From(err), "missing title")

	_, err = c.Submit(context.Background(), types.Submission{
		Title: "t", Description: "d", Category: "Nonsense", Tags: []string{"PATLIB"}, SQLTemplate: "SELECT 1",
	})
	require.True(t, invalid.From(err), "unknown category")

	_, err = c.Submit(context.Background(), types.Submission{
		Title: "t", Description: "d", Category: "Trends", Tags: []string{"FRIENDS"}, SQLTemplate: "SELECT 1",
	})
	require.True(t, invalid.From(err), "unknown tag")
}

type rejectingDryRunner struct{ err error }

func (r rejectingDryRunner) DryRun(ctx context.Context, query string, binds []types.BindParameter) error {
	return r.err
}

func TestSubmit_DryRunRejection(t *testing.T) {
	c := New(WithDryRunner(rejectingDryRunner{err: fmt.Errorf("table not found: tls999")}))

	_, err := c.Submit(context.Background(), types.Submission{
		Title: "t", Description: "d", Category: "Trends", Tags: []string{"PATLIB"},
		SQLTemplate: "SELECT 1 FROM tls999",
	})
	var invalid *types.ErrInvalidSubmission
	require.True(t, invalid.From(err))
	assert.Contains(t, err.Error(), "tls999")
	assert.Equal(t, 0, c.Len())
}

func TestFixSQL(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(testDefinition("Q93")))

	// Replacement referencing an undeclared token is rejected
	_, err := c.FixSQL("Q93", "SELECT 1 WHERE x = @mystery")
	var undefined *types.ErrUndefinedPlaceholder
	require.True(t, undefined.From(err))

	// Valid replacement takes effect in place
	def, err := c.FixSQL("Q93", "SELECT 2 FROM t WHERE yr = @year_start")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2 FROM t WHERE yr = @year_start", def.Template)

	got, err := c.Get("Q93")
	require.NoError(t, err)
	assert.Equal(t, def.Template, got.Template)
}

func TestFixSQL_ConcurrentReadersKeepConsistentSnapshot(t *testing.T) {
	c := New()
	require.NoError(t, c.Register(testDefinition("Q94")))

	before, err := c.Get("Q94")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, err := c.FixSQL("Q94", fmt.Sprintf("SELECT %d FROM t WHERE yr = @year_start", i))
			assert.NoError(t, err)
		}
	}()

	for i := 0; i < 200; i++ {
		// The snapshot taken before the repairs never changes underneath
		// the reader.
		assert.Equal(t, testDefinition("Q94").Template, before.Template)

		got, err := c.Get("Q94")
		require.NoError(t, err)
		assert.Contains(t, got.Template, "@year_start")
	}
	wg.Wait()

	got, err := c.Get("Q94")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 199 FROM t WHERE yr = @year_start", got.Template)
}

func TestLoadBuiltins(t *testing.T) {
	c := New()
	require.NoError(t, LoadBuiltins(c))

	assert.Equal(t, 16, c.Len())

	// Every category is populated
	for _, category := range types.QueryCategories {
		assert.NotEmpty(t, c.List(Filter{Category: category}), "category %s", category)
	}

	// The trend scenario query is present with its standard parameters
	q01, err := c.Get("Q01")
	require.NoError(t, err)
	_, ok := q01.Parameter("year_start")
	assert.True(t, ok)
	_, ok = q01.Parameter("jurisdictions")
	assert.True(t, ok)

	// No builtin declares an undefined placeholder; unused stays a warning
	for _, def := range c.List(Filter{}) {
		undefined, _ := CrossValidate(def.Template, def.Parameters)
		assert.Empty(t, undefined, "query %s", def.Id)
	}
}
