package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/intake/internal/api"
	"github.com/cleared-dev/intake/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(e *env) *cobra.Command {
	var workspace, rules string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ingest API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := e.newServer(workspace, rules)
			if err != nil {
				return err
			}
			return serveUntilDone(cmd.Context(), srv, e.cfg.Server.Addr)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&workspace, "dir", ".", "workspace holding rules and the chart of accounts")
	cmd.Flags().StringVar(&rules, "rules", "", "categorization rules file (default from config)")
	_ = e.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func (e *env) newServer(workspace, rules string) (*api.Server, error) {
	in, err := e.newIngester()
	if err != nil {
		return nil, err
	}
	opts := pipeline.OptionsFromConfig(e.cfg)
	opts.Categorizer, err = e.loadCategorizer(workspace, rules)
	if err != nil {
		return nil, err
	}
	return api.New(api.Options{
		Ingester:    in,
		Pipeline:    opts,
		BodyLimitMB: e.cfg.Server.BodyLimitMB,
		Logger:      e.log,
	}), nil
}

// serveUntilDone runs srv until it fails or ctx is cancelled.
func serveUntilDone(ctx context.Context, srv *api.Server, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.Listen(addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
