package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/rs/zerolog/log"
)

const (
	HttpServerBaseRoute string = "/api/v1"
	HttpServerRootRoute string = ""
)

// Response is a standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SuccessResponse returns a successful response
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// ErrorResponse returns an error response
func ErrorResponse(c echo.Context, code int, message string) error {
	return c.JSON(code, Response{
		Success: false,
		Error:   message,
	})
}

// InternalErrorMessage is what clients see for internal failures. The
// underlying detail, such as an unresolved placeholder token, goes to the
// log only.
const InternalErrorMessage = "something went wrong with this query"

// DomainErrorResponse maps a domain error to its HTTP status. Unrecognized
// errors are internal by definition and surface as a generic message.
func DomainErrorResponse(c echo.Context, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("internal error serving request")
		return ErrorResponse(c, code, InternalErrorMessage)
	}
	return ErrorResponse(c, code, err.Error())
}

func statusOf(err error) int {
	var (
		notFound   *types.ErrQueryNotFound
		duplicate  *types.ErrDuplicateQueryId
		undefined  *types.ErrUndefinedPlaceholder
		badDef     *types.ErrInvalidParameterDefinition
		badSubmit  *types.ErrInvalidSubmission
		badParam   *types.ErrParameterValidation
		execFailed *types.ErrQueryExecution
		unresolved *types.ErrUnresolvedPlaceholder
	)
	switch {
	case notFound.From(err):
		return http.StatusNotFound
	case duplicate.From(err):
		return http.StatusConflict
	case undefined.From(err), badDef.From(err), badSubmit.From(err):
		return http.StatusBadRequest
	case badParam.From(err):
		return http.StatusUnprocessableEntity
	case execFailed.From(err):
		return http.StatusBadGateway
	case unresolved.From(err):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
