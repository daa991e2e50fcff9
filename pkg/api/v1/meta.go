package apiv1

import (
	"github.com/labstack/echo/v4"
	"github.com/mtc-analytics/patlens/pkg/params"
	"github.com/mtc-analytics/patlens/pkg/types"
)

type MetaGroup struct {
	routerGroup *echo.Group
}

// NewMetaGroup registers the shared reference-data endpoints used to render
// parameter forms: option sets, categories, and tags.
func NewMetaGroup(g *echo.Group) *MetaGroup {
	group := &MetaGroup{routerGroup: g}

	g.GET("/options", group.ListOptions)
	g.GET("/categories", group.ListCategories)

	return group
}

// ListOptions returns every shared option set keyed by reference name.
func (g *MetaGroup) ListOptions(c echo.Context) error {
	return SuccessResponse(c, params.OptionSets())
}

// ListCategories returns the fixed category and tag enumerations.
func (g *MetaGroup) ListCategories(c echo.Context) error {
	return SuccessResponse(c, map[string][]string{
		"categories": types.QueryCategories,
		"tags":       types.QueryTags,
	})
}
