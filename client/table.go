// Package client runs table-level operations against the Quickbase API:
// metadata lookups, record upserts, deletes and paged queries that decode
// into schema-bound records.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BrobridgeOrg/go-quickbase/api"
	"github.com/BrobridgeOrg/go-quickbase/orm"
	"github.com/BrobridgeOrg/go-quickbase/query"
)

// ErrEmptyFilter is returned when a delete has no where-string.
var ErrEmptyFilter = errors.New("delete requires a where filter")

// TableClient binds a table definition to a transport.
type TableClient struct {
	table  *orm.Table
	api    *api.Client
	logger *slog.Logger
}

// Option configures a TableClient.
type Option func(*TableClient)

// WithLogger sets the logger for page events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *TableClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewTableClient creates a client for table t over transport.
func NewTableClient(t *orm.Table, transport *api.Client, opts ...Option) *TableClient {
	c := &TableClient{
		table:  t,
		api:    transport,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the table definition.
func (c *TableClient) Table() *orm.Table {
	return c.table
}

// API returns the underlying transport.
func (c *TableClient) API() *api.Client {
	return c.api
}

// GetApp fetches the table's app.
func (c *TableClient) GetApp(ctx context.Context) (*api.Response, error) {
	return c.api.GetApp(ctx, c.table.AppID())
}

// GetTables lists every table of the table's app.
func (c *TableClient) GetTables(ctx context.Context) (*api.Response, error) {
	return c.api.GetTables(ctx, c.table.AppID())
}

// GetTable fetches the table.
func (c *TableClient) GetTable(ctx context.Context) (*api.Response, error) {
	return c.api.GetTable(ctx, c.table.AppID(), c.table.ID())
}

// GetFields lists the table's fields.
func (c *TableClient) GetFields(ctx context.Context) (*api.Response, error) {
	return c.api.GetFields(ctx, c.table.ID())
}

// GetField fetches one field of the table.
func (c *TableClient) GetField(ctx context.Context, fieldID int) (*api.Response, error) {
	return c.api.GetField(ctx, c.table.ID(), fieldID)
}

// GetReports lists the table's reports.
func (c *TableClient) GetReports(ctx context.Context) (*api.Response, error) {
	return c.api.GetReports(ctx, c.table.ID())
}

// GetReport fetches one report of the table.
func (c *TableClient) GetReport(ctx context.Context, reportID int) (*api.Response, error) {
	return c.api.GetReport(ctx, c.table.ID(), reportID)
}

// RunReport runs a saved report of the table.
func (c *TableClient) RunReport(ctx context.Context, reportID, skip, top int) (*api.Response, error) {
	return c.api.RunReport(ctx, c.table.ID(), reportID, skip, top)
}

// RunNamedReport runs a report registered on the table definition by name.
func (c *TableClient) RunNamedReport(ctx context.Context, name string, skip, top int) (*api.Response, error) {
	r, err := c.table.Report(name)
	if err != nil {
		return nil, err
	}
	return c.RunReport(ctx, r.ID, skip, top)
}

// AddRecord upserts one record.
func (c *TableClient) AddRecord(ctx context.Context, r *orm.Record, opts ...orm.UpsertOption) (*api.UpsertResult, error) {
	return c.AddRecords(ctx, []*orm.Record{r}, opts...)
}

// AddRecords upserts records in one request. Every record is validated
// against the table before anything is sent.
func (c *TableClient) AddRecords(ctx context.Context, records []*orm.Record, opts ...orm.UpsertOption) (*api.UpsertResult, error) {
	req, err := orm.NewUpsert(c.table, records, opts...)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Upsert(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var result api.UpsertResult
	if err := resp.JSON(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", api.ErrMalformedResponse, err)
	}
	return &result, nil
}

// DeleteRecords deletes the records matching q's where-string and returns
// how many were deleted.
func (c *TableClient) DeleteRecords(ctx context.Context, q query.Query) (int, error) {
	if q.Where() == "" {
		return 0, ErrEmptyFilter
	}

	resp, err := c.api.DeleteRecords(ctx, c.table.ID(), q.Where())
	if err != nil {
		return 0, err
	}
	if err := resp.Err(); err != nil {
		return 0, err
	}

	var result api.DeleteResult
	if err := resp.JSON(&result); err != nil {
		return 0, fmt.Errorf("%w: %v", api.ErrMalformedResponse, err)
	}
	return result.NumberDeleted, nil
}

// request builds the query body. A query without a select list selects
// every field of the schema.
func (c *TableClient) request(q query.Query) *query.Request {
	if len(q.Fields()) == 0 {
		q = q.Select(c.table.Schema().FieldIDs()...)
	}
	return q.Request(c.table.ID())
}

// QueryRaw runs q and returns the response as-is, whatever its status.
func (c *TableClient) QueryRaw(ctx context.Context, q query.Query) (*api.Response, error) {
	return c.api.QueryRecords(ctx, c.request(q))
}

// Query runs q and decodes one page of results into records.
func (c *TableClient) Query(ctx context.Context, q query.Query) ([]*orm.Record, error) {
	records, _, err := c.queryPage(ctx, q)
	return records, err
}

func (c *TableClient) queryPage(ctx context.Context, q query.Query) ([]*orm.Record, api.ResultMetadata, error) {
	resp, err := c.QueryRaw(ctx, q)
	if err != nil {
		return nil, api.ResultMetadata{}, err
	}
	if err := resp.Err(); err != nil {
		return nil, api.ResultMetadata{}, err
	}

	qr, err := resp.QueryResult()
	if err != nil {
		return nil, api.ResultMetadata{}, err
	}

	records, err := orm.DecodeRecords(c.table, qr.Data)
	if err != nil {
		return nil, api.ResultMetadata{}, err
	}
	if qr.Metadata.NumRecords == 0 {
		qr.Metadata.NumRecords = len(qr.Data)
	}
	return records, qr.Metadata, nil
}

// QueryPages runs q page by page until the pager reports no more records,
// returning every record. The pager must not have been used before.
func (c *TableClient) QueryPages(ctx context.Context, q query.Query, pager *ResponsePager) ([]*orm.Record, error) {
	if err := pager.Begin(); err != nil {
		return nil, err
	}

	offset := q.Options().Skip
	var all []*orm.Record
	for pager.MoreRemaining() {
		page := q.Skip(offset + pager.Skip())
		if pager.PageSize() > 0 {
			page = page.Top(pager.PageSize())
		}

		records, meta, err := c.queryPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("failed to query page at %d: %w", offset+pager.Skip(), err)
		}
		pager.Update(meta)

		c.logger.Debug("quickbase query page",
			"table", c.table.ID(),
			"skip", offset+meta.Skip,
			"rows", len(records),
			"seen", pager.RecordsSeen(),
			"total", pager.TotalRecords(),
		)
		all = append(all, records...)
	}

	return all, nil
}
