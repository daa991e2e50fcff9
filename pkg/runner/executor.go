package runner

import (
	"context"

	"github.com/mtc-analytics/patlens/pkg/types"
)

// Executor is the boundary to the query backend. Implementations receive
// the template text with @name tokens intact plus the bind parameters;
// values are never spliced into the SQL.
type Executor interface {
	Execute(ctx context.Context, query string, binds []types.BindParameter) (*types.ResultTable, error)
	DryRun(ctx context.Context, query string, binds []types.BindParameter) error
}
