package clients

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/mtc-analytics/patlens/pkg/types"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BigQueryClient executes rendered queries against PATSTAT on BigQuery.
// Parameter values travel as named query parameters, never spliced into
// the SQL text.
type BigQueryClient struct {
	client *bigquery.Client
	cfg    types.BigQueryConfig
}

// NewBigQueryClient creates a client for the configured project. Credentials
// come from the inline service-account JSON when set, otherwise from
// application default credentials.
func NewBigQueryClient(ctx context.Context, cfg types.BigQueryConfig) (*BigQueryClient, error) {
	opts := []option.ClientOption{}
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	client, err := bigquery.NewClient(ctx, cfg.Project, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	if cfg.Location != "" {
		client.Location = cfg.Location
	}

	log.Info().
		Str("project", cfg.Project).
		Str("dataset", cfg.Dataset).
		Str("location", cfg.Location).
		Msg("bigquery client initialized")

	return &BigQueryClient{client: client, cfg: cfg}, nil
}

func (c *BigQueryClient) Close() error {
	return c.client.Close()
}

// Execute runs the query and materializes the full result set into a table.
func (c *BigQueryClient) Execute(ctx context.Context, query string, binds []types.BindParameter) (*types.ResultTable, error) {
	q := c.prepare(query, binds)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}

	table := &types.ResultTable{}
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(table.Columns) == 0 {
			table.Columns = columnsFromSchema(it.Schema)
		}
		table.Rows = append(table.Rows, convertRow(row))
	}
	if len(table.Columns) == 0 {
		table.Columns = columnsFromSchema(it.Schema)
	}
	return table, nil
}

// DryRun validates the query without executing it. BigQuery checks syntax
// and referenced objects and reports the bytes the query would scan.
func (c *BigQueryClient) DryRun(ctx context.Context, query string, binds []types.BindParameter) error {
	q := c.prepare(query, binds)
	q.DryRun = true

	job, err := q.Run(ctx)
	if err != nil {
		return err
	}
	status := job.LastStatus()
	if status != nil && status.Err() != nil {
		return status.Err()
	}
	if status != nil {
		if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
			log.Debug().Int64("bytes_processed", stats.TotalBytesProcessed).Msg("dry run validated")
		}
	}
	return nil
}

func (c *BigQueryClient) prepare(query string, binds []types.BindParameter) *bigquery.Query {
	q := c.client.Query(query)
	q.DefaultProjectID = c.cfg.Project
	q.DefaultDatasetID = c.cfg.Dataset
	if c.cfg.Location != "" {
		q.Location = c.cfg.Location
	}

	q.Parameters = make([]bigquery.QueryParameter, 0, len(binds))
	for _, b := range binds {
		q.Parameters = append(q.Parameters, bigquery.QueryParameter{
			Name:  b.Name,
			Value: bindValue(b),
		})
	}
	return q
}

// bindValue narrows []any array binds to a homogeneous slice; the bigquery
// package cannot infer a parameter type from interface elements.
func bindValue(b types.BindParameter) any {
	vs, ok := b.Value.([]any)
	if !ok {
		return b.Value
	}

	strs := make([]string, 0, len(vs))
	ints := make([]int64, 0, len(vs))
	floats := make([]float64, 0, len(vs))
	for _, v := range vs {
		switch t := v.(type) {
		case string:
			strs = append(strs, t)
		case int:
			ints = append(ints, int64(t))
		case int64:
			ints = append(ints, t)
		case float64:
			floats = append(floats, t)
		}
	}
	switch {
	case len(ints) == len(vs):
		return ints
	case len(floats) == len(vs):
		return floats
	case len(strs) == len(vs):
		return strs
	}
	return vs
}

func columnsFromSchema(schema bigquery.Schema) []types.Column {
	cols := make([]types.Column, 0, len(schema))
	for _, f := range schema {
		cols = append(cols, types.Column{Name: f.Name, Type: columnType(f.Type)})
	}
	return cols
}

func columnType(t bigquery.FieldType) types.ColumnType {
	switch t {
	case bigquery.IntegerFieldType:
		return types.ColumnTypeInteger
	case bigquery.FloatFieldType, bigquery.NumericFieldType, bigquery.BigNumericFieldType:
		return types.ColumnTypeFloat
	case bigquery.BooleanFieldType:
		return types.ColumnTypeBool
	case bigquery.DateFieldType:
		return types.ColumnTypeDate
	case bigquery.TimestampFieldType, bigquery.DateTimeFieldType:
		return types.ColumnTypeTimestamp
	default:
		return types.ColumnTypeString
	}
}

func convertRow(row []bigquery.Value) []any {
	out := make([]any, len(row))
	for i, v := range row {
		switch tv := v.(type) {
		case civil.Date:
			out[i] = tv.String()
		case time.Time:
			out[i] = tv.UTC()
		default:
			out[i] = v
		}
	}
	return out
}
