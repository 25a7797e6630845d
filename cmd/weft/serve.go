package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/server"
)

type serveOptions struct {
	host      string
	port      int
	keyed     bool
	dev       bool
	noMetrics bool
}

func serveCmd(g *globals) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve [demo]",
		Short: "Serve a demo app live over a WebSocket",
		Long: `Serve a demo app.

The first request is rendered on the server. The page then opens a
WebSocket; every click or keystroke runs on the server and the
resulting host mutations stream back as patches.

Examples:
  weft serve
  weft serve todo --port=3000
  weft serve list --keyed --host=0.0.0.0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, app, err := g.app(args)
			if err != nil {
				return err
			}
			applyServeFlags(cmd, g.cfg, opts)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.App(app), serverConfig(g.cfg, name, opts, cmd.ErrOrStderr()))
			out := cmd.OutOrStdout()
			printBanner(out)
			success(out, "Serving %s on http://%s", name, g.cfg.Address())
			if !opts.noMetrics && g.cfg.Serve.Metrics {
				info(out, "Metrics at http://%s%s", g.cfg.Address(), g.cfg.Serve.MetricsPath)
			}
			if err := srv.Run(ctx); err != nil {
				return errors.New("W071").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&opts.keyed, "keyed", false, "Match children by key")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "Disable client caching")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "Do not expose Prometheus metrics")

	return cmd
}

// applyServeFlags copies explicitly set flags over the configuration.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config, opts serveOptions) {
	if opts.port > 0 {
		cfg.Serve.Port = opts.port
	}
	if opts.host != "" {
		cfg.Serve.Host = opts.host
	}
	if cmd.Flags().Changed("keyed") {
		cfg.Render.Keyed = opts.keyed
	}
}

// serverConfig translates the configuration into a server.Config.
func serverConfig(cfg *config.Config, name string, opts serveOptions, logOut io.Writer) *server.Config {
	sc := server.DefaultConfig().WithAddress(cfg.Address())
	sc.Title = "weft · " + name
	sc.DevMode = opts.dev
	sc.Slice = cfg.SliceBudget()
	sc.Logger = cfg.Logger(logOut)
	sc.Engine = append(cfg.EngineOptions(), engine.WithLogger(sc.Logger))
	if cfg.Serve.Metrics && !opts.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sc.Registry = reg
		sc.MetricsPath = cfg.Serve.MetricsPath
	}
	return sc
}
