package quickbase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/BrobridgeOrg/go-quickbase/api"
	"github.com/BrobridgeOrg/go-quickbase/client"
	"github.com/BrobridgeOrg/go-quickbase/export"
	qbio "github.com/BrobridgeOrg/go-quickbase/io"
	"github.com/BrobridgeOrg/go-quickbase/orm"
	"github.com/BrobridgeOrg/go-quickbase/query"
)

// Client is the main entry point for go-quickbase operations.
type Client struct {
	api      *api.Client
	config   *Config
	io       qbio.FileIO
	exporter *export.Exporter
	logger   *slog.Logger
}

// NewClient creates a new go-quickbase client with the given configuration.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	transport, err := createTransport(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	fileIO, err := createFileIO(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create file IO: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		api:      transport,
		config:   config,
		io:       fileIO,
		exporter: export.NewExporter(fileIO, export.WithLogger(logger)),
		logger:   logger,
	}, nil
}

// NewTableClient creates a table client for t authenticated with userToken,
// using the realm of the table's app.
func NewTableClient(t *orm.Table, userToken string, opts ...Option) (*client.TableClient, error) {
	config := DefaultConfig()
	config.RealmHostname = t.RealmHostname()
	config.UserToken = userToken
	for _, opt := range opts {
		opt(config)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	transport, err := createTransport(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	var copts []client.Option
	if config.Logger != nil {
		copts = append(copts, client.WithLogger(config.Logger))
	}
	return client.NewTableClient(t, transport, copts...), nil
}

// validateConfig validates the client configuration.
func validateConfig(config *Config) error {
	if config.RealmHostname == "" {
		return fmt.Errorf("%w: realm hostname is required", ErrInvalidConfig)
	}
	if config.UserToken == "" {
		return fmt.Errorf("%w: user token is required", ErrInvalidConfig)
	}
	if config.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalidConfig, config.Timeout)
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("%w: negative rate limit %v", ErrInvalidConfig, config.RateLimit)
	}
	switch config.StorageType {
	case "", StorageLocal, StorageS3:
	default:
		return fmt.Errorf("%w: unsupported storage type: %s", ErrInvalidConfig, config.StorageType)
	}
	return nil
}

// createTransport creates the API client based on the configuration.
func createTransport(config *Config) (*api.Client, error) {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	opts := []api.Option{
		api.WithHTTPClient(httpClient),
		api.WithRateLimit(config.RateLimit, config.RateBurst),
	}
	if config.BaseURL != "" {
		opts = append(opts, api.WithBaseURL(config.BaseURL))
	}
	if config.UserAgent != "" {
		opts = append(opts, api.WithUserAgent(config.UserAgent))
	}
	if config.Logger != nil {
		opts = append(opts, api.WithLogger(config.Logger))
	}
	if config.Registerer != nil {
		opts = append(opts, api.WithMetrics(config.Registerer))
	}

	return api.New(config.RealmHostname, config.UserToken, opts...)
}

// createFileIO creates a file IO based on the configuration.
func createFileIO(ctx context.Context, config *Config) (qbio.FileIO, error) {
	switch config.StorageType {
	case StorageS3:
		if config.S3Config == nil {
			config.S3Config = &S3Config{}
		}
		return qbio.NewS3FileIO(ctx, config.S3Config)
	default:
		return qbio.NewLocalFileIO(config.LocalConfig), nil
	}
}

// Config returns the client configuration.
func (c *Client) Config() *Config {
	return c.config
}

// API returns the underlying transport for advanced operations.
func (c *Client) API() *api.Client {
	return c.api
}

// FileIO returns the file I/O handler used for exports.
func (c *Client) FileIO() qbio.FileIO {
	return c.io
}

// Table returns a client for operations on t.
func (c *Client) Table(t *orm.Table) *client.TableClient {
	return client.NewTableClient(t, c.api, client.WithLogger(c.logger))
}

// Describe builds a table definition from the live metadata of tableID.
func (c *Client) Describe(ctx context.Context, app orm.App, tableID string) (*orm.Table, error) {
	t, err := client.DescribeTable(ctx, c.api, app, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", tableID, err)
	}
	return t, nil
}

// Export runs q through every page and writes the records to location in the
// given format. A location ending in "/" names a directory.
func (c *Client) Export(ctx context.Context, tc *client.TableClient, q query.Query, format export.Format, location string, opts ...client.PagerOption) (*export.Result, error) {
	records, err := tc.QueryPages(ctx, q, client.NewResponsePager(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", tc.Table().ID(), err)
	}

	res, err := c.exporter.Export(ctx, tc.Table(), records, format, location)
	if err != nil {
		return nil, fmt.Errorf("failed to export table %s: %w", tc.Table().ID(), err)
	}
	return res, nil
}
