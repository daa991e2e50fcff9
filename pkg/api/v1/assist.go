package apiv1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mtc-analytics/patlens/pkg/assist"
	"github.com/rs/zerolog/log"
)

type AssistGroup struct {
	routerGroup *echo.Group
	drafter     *assist.Drafter
}

type DraftRequest struct {
	Request string `json:"request"`
}

// NewAssistGroup registers the NL to SQL drafting endpoint. drafter may be
// nil when assist is disabled in config.
func NewAssistGroup(g *echo.Group, drafter *assist.Drafter) *AssistGroup {
	group := &AssistGroup{routerGroup: g, drafter: drafter}

	g.POST("/draft", group.DraftSQL)

	return group
}

// DraftSQL asks the model for a submission skeleton. The draft is returned
// to the user for review; nothing is registered or executed here.
func (g *AssistGroup) DraftSQL(c echo.Context) error {
	if g.drafter == nil {
		return ErrorResponse(c, http.StatusNotImplemented, "assist is not enabled")
	}

	var req DraftRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Request) == "" {
		return ErrorResponse(c, http.StatusBadRequest, "request text is required")
	}

	draft, err := g.drafter.DraftSQL(c.Request().Context(), req.Request)
	if err != nil {
		if errors.Is(err, assist.ErrBusy) {
			return ErrorResponse(c, http.StatusTooManyRequests, err.Error())
		}
		log.Error().Err(err).Msg("assist draft failed")
		return ErrorResponse(c, http.StatusBadGateway, err.Error())
	}

	return SuccessResponse(c, draft)
}
