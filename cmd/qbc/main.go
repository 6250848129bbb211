// Command qbc inspects, queries and exports Quickbase tables from the shell.
//
// Credentials come from QB_* environment variables or a .env file in the
// working directory; flags override them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	quickbase "github.com/BrobridgeOrg/go-quickbase"
	"github.com/BrobridgeOrg/go-quickbase/orm"
)

type globalFlags struct {
	realm   string
	token   string
	baseURL string
	appID   string
	tableID string
	verbose bool
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:           "qbc",
	Short:         "Quickbase table client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.realm, "realm", "", "realm hostname (overrides QB_REALM_HOSTNAME)")
	pf.StringVar(&flags.token, "token", "", "user token (overrides QB_USER_TOKEN)")
	pf.StringVar(&flags.baseURL, "base-url", "", "API base URL (overrides QB_BASE_URL)")
	pf.StringVar(&flags.appID, "app", "", "app id")
	pf.StringVar(&flags.tableID, "table", "", "table id")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(newDescribeCmd(), newQueryCmd(), newExportCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newClient builds a client from the environment and the global flags.
func newClient(ctx context.Context, extra ...quickbase.Option) (*quickbase.Client, error) {
	cfg, err := quickbase.LoadConfig("QB")
	if err != nil {
		return nil, err
	}

	opts := cfg.Options()
	if flags.realm != "" {
		opts = append(opts, quickbase.WithRealmHostname(flags.realm))
	}
	if flags.token != "" {
		opts = append(opts, quickbase.WithUserToken(flags.token))
	}
	if flags.baseURL != "" {
		opts = append(opts, quickbase.WithBaseURL(flags.baseURL))
	}

	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	opts = append(opts, quickbase.WithLogger(logger))

	return quickbase.NewClient(ctx, append(opts, extra...)...)
}

// describe fetches the table named by --app and --table.
func describe(ctx context.Context, c *quickbase.Client) (*orm.Table, error) {
	if flags.appID == "" || flags.tableID == "" {
		return nil, fmt.Errorf("--app and --table are required")
	}
	app := orm.App{ID: flags.appID, RealmHostname: c.API().RealmHostname()}
	return c.Describe(ctx, app, flags.tableID)
}
