package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/config"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/server"
)

// serveCommand runs the HTTP render service over the configured source.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders of the configured source over HTTP",
		Long: `Serve renders of the configured source over HTTP.

Routes:
  GET /healthz
  GET /trees/{treeID}/snapshot?focal=
  GET /trees/{treeID}/render.png?focal=&width=&height=&dpr=&theme=
  GET /trees/{treeID}/scene?focal=
  GET /trees/{treeID}/hit?focal=&x=&y=
  GET /trees/{treeID}/graph.svg?focal=&detailed=
  GET /trees/{treeID}/graph.dot?focal=&detailed=`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	logger := loggerFromContext(ctx)
	if src := c.Config.Source; src.Kind == config.SourceFile && src.Path == "" {
		return fmt.Errorf("serving files needs [source] path in the config")
	}
	opts := pipeline.Options{}
	runner, err := c.newRunner(ctx, &opts, noCache)
	if err != nil {
		return err
	}
	defer runner.Close(context.WithoutCancel(ctx))

	srv := server.New(runner,
		server.WithLogger(logger),
		server.WithDefaults(c.renderDefaults()),
		server.WithSourceName(opts.Source))

	printInfo("Serving %s on %s", c.Config.Source.Kind, StyleLink.Render("http://"+displayAddr(addr)))
	err = srv.ListenAndServe(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
