package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/BrobridgeOrg/go-quickbase/orm"
	"github.com/BrobridgeOrg/go-quickbase/query"
)

func byApp(appID string) url.Values {
	return url.Values{"appId": {appID}}
}

func byTable(tableID string) url.Values {
	return url.Values{"tableId": {tableID}}
}

// GetApp fetches app metadata.
func (c *Client) GetApp(ctx context.Context, appID string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/apps/"+url.PathEscape(appID), nil, nil)
}

// GetTables lists the tables of an app.
func (c *Client) GetTables(ctx context.Context, appID string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/tables", byApp(appID), nil)
}

// GetTable fetches one table of an app.
func (c *Client) GetTable(ctx context.Context, appID, tableID string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/tables/"+url.PathEscape(tableID), byApp(appID), nil)
}

// GetFields lists the fields of a table.
func (c *Client) GetFields(ctx context.Context, tableID string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/fields", byTable(tableID), nil)
}

// GetField fetches one field of a table.
func (c *Client) GetField(ctx context.Context, tableID string, fieldID int) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/fields/"+strconv.Itoa(fieldID), byTable(tableID), nil)
}

// GetReports lists the reports of a table.
func (c *Client) GetReports(ctx context.Context, tableID string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/reports", byTable(tableID), nil)
}

// GetReport fetches one report of a table.
func (c *Client) GetReport(ctx context.Context, tableID string, reportID int) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/reports/"+strconv.Itoa(reportID), byTable(tableID), nil)
}

// RunReport runs a saved report. Non-positive skip and top are omitted.
func (c *Client) RunReport(ctx context.Context, tableID string, reportID, skip, top int) (*Response, error) {
	q := byTable(tableID)
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if top > 0 {
		q.Set("top", strconv.Itoa(top))
	}
	return c.Do(ctx, http.MethodPost, "/reports/"+strconv.Itoa(reportID)+"/run", q, nil)
}

// Upsert inserts or updates records.
func (c *Client) Upsert(ctx context.Context, req *orm.UpsertRequest) (*Response, error) {
	return c.Do(ctx, http.MethodPost, "/records", nil, req)
}

// QueryRecords runs a record query.
func (c *Client) QueryRecords(ctx context.Context, req *query.Request) (*Response, error) {
	return c.Do(ctx, http.MethodPost, "/records/query", nil, req)
}

// DeleteRecords deletes the records of a table matching a where-string.
func (c *Client) DeleteRecords(ctx context.Context, tableID, where string) (*Response, error) {
	body := struct {
		From  string `json:"from"`
		Where string `json:"where"`
	}{From: tableID, Where: where}
	return c.Do(ctx, http.MethodDelete, "/records", nil, body)
}
