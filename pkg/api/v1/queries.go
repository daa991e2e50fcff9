package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mtc-analytics/patlens/pkg/catalog"
	"github.com/mtc-analytics/patlens/pkg/export"
	"github.com/mtc-analytics/patlens/pkg/presentation"
	"github.com/mtc-analytics/patlens/pkg/runner"
	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/rs/zerolog/log"
)

type QueriesGroup struct {
	routerGroup *echo.Group
	catalog     *catalog.Catalog
	runner      *runner.Runner
	archive     *export.Archive
}

type RunRequest struct {
	Parameters map[string]any `json:"parameters"`
}

type FixSQLRequest struct {
	SQL string `json:"sql"`
}

// RunResponse is everything a frontend needs to render one execution:
// the table plus headline, chart proposal, and the literal SQL for display.
type RunResponse struct {
	QueryId      string                  `json:"query_id"`
	Table        *types.ResultTable      `json:"table"`
	EffectiveSQL string                  `json:"effective_sql"`
	Binds        []types.BindParameter   `json:"bind_parameters"`
	Summary      presentation.Summary    `json:"summary"`
	Chart        *presentation.ChartSpec `json:"chart,omitempty"`
	CacheHit     bool                    `json:"cache_hit"`
	RowCount     int                     `json:"row_count"`
	Duration     string                  `json:"duration"`
	DurationMs   int64                   `json:"duration_ms"`
}

// NewQueriesGroup creates the query catalog API group.
// archive may be nil when no export bucket is configured.
func NewQueriesGroup(g *echo.Group, cat *catalog.Catalog, run *runner.Runner, archive *export.Archive) *QueriesGroup {
	group := &QueriesGroup{
		routerGroup: g,
		catalog:     cat,
		runner:      run,
		archive:     archive,
	}
	group.registerRoutes()
	return group
}

func (g *QueriesGroup) registerRoutes() {
	g.routerGroup.GET("", g.ListQueries)
	g.routerGroup.POST("", g.ContributeQuery)
	g.routerGroup.GET("/:id", g.GetQuery)
	g.routerGroup.PATCH("/:id/sql", g.FixSQL)
	g.routerGroup.POST("/:id/run", g.RunQuery)
	g.routerGroup.POST("/:id/export", g.ExportQuery)
}

// ListQueries returns catalog entries matching the filter query params.
func (g *QueriesGroup) ListQueries(c echo.Context) error {
	filter := catalog.Filter{
		Category:   c.QueryParam("category"),
		Search:     c.QueryParam("search"),
		CommonOnly: c.QueryParam("common") == "true",
	}
	if tags, ok := c.QueryParams()["tag"]; ok {
		filter.Tags = tags
	}

	return SuccessResponse(c, g.catalog.List(filter))
}

// GetQuery returns one query definition by id.
func (g *QueriesGroup) GetQuery(c echo.Context) error {
	def, err := g.catalog.Get(c.Param("id"))
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, def)
}

// ContributeQuery accepts a user-contributed query for the session catalog.
func (g *QueriesGroup) ContributeQuery(c echo.Context) error {
	var sub types.Submission
	if err := c.Bind(&sub); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	def, err := g.catalog.Submit(c.Request().Context(), sub)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    def,
	})
}

// FixSQL replaces a query's template text, the maintainer repair flow.
func (g *QueriesGroup) FixSQL(c echo.Context) error {
	var req FixSQLRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	def, err := g.catalog.FixSQL(c.Param("id"), req.SQL)
	if err != nil {
		return DomainErrorResponse(c, err)
	}
	return SuccessResponse(c, def)
}

// RunQuery executes a query with the supplied parameter values.
func (g *QueriesGroup) RunQuery(c echo.Context) error {
	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	queryId := c.Param("id")
	result, err := g.runner.Run(c.Request().Context(), queryId, req.Parameters)
	if err != nil {
		log.Warn().Err(err).Str("query_id", queryId).Msg("run failed")
		return DomainErrorResponse(c, err)
	}

	def, err := g.catalog.Get(queryId)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, RunResponse{
		QueryId:      result.QueryId,
		Table:        result.Table,
		EffectiveSQL: result.EffectiveSQL,
		Binds:        result.Binds,
		Summary:      presentation.Summarize(result.Table),
		Chart:        presentation.BuildChartSpec(result.Table, def.Title),
		CacheHit:     result.CacheHit,
		RowCount:     result.Table.NumRows(),
		Duration:     presentation.FormatDuration(result.Duration),
		DurationMs:   result.Duration.Milliseconds(),
	})
}

// ExportQuery runs the query (usually a cache hit) and archives the CSV.
func (g *QueriesGroup) ExportQuery(c echo.Context) error {
	if !g.archive.Enabled() {
		return ErrorResponse(c, http.StatusNotImplemented, "export archive is not configured")
	}

	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	queryId := c.Param("id")
	result, err := g.runner.Run(ctx, queryId, req.Parameters)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	def, err := g.catalog.Get(queryId)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	artifact, err := g.archive.SaveCSV(ctx, def, result.Table)
	if err != nil {
		log.Error().Err(err).Str("query_id", queryId).Msg("export failed")
		return ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    artifact,
	})
}
