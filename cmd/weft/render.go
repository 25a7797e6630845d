package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/demo"
	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/export"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/render"
)

type renderOptions struct {
	out      string
	name     string
	bucket   string
	prefix   string
	pretty   bool
	stdout   bool
	list     bool
	maxBytes int64
}

func renderCmd(g *globals) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render [demo]",
		Short: "Render a demo app to a static HTML page",
		Long: `Render a demo app once and write the resulting HTML page.

The page is written to the export directory, to an S3 bucket when one
is configured, or to standard output.

Examples:
  weft render --list
  weft render counter --stdout
  weft render todo --out dist --name todo/index.html
  weft render list --s3-bucket my-bucket --s3-prefix snapshots`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.list {
				for _, name := range demo.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}
			name, app, err := g.app(args)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), out, g.cfg, name, app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "Snapshot name (default <demo>.html)")
	cmd.Flags().StringVar(&opts.bucket, "s3-bucket", "", "Write to this S3 bucket instead of a directory")
	cmd.Flags().StringVar(&opts.prefix, "s3-prefix", "", "Key prefix inside the S3 bucket")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Indent the HTML output")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "Write the page to standard output")
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "List the available demos")
	cmd.Flags().Int64Var(&opts.maxBytes, "max-bytes", 0, "Reject pages larger than this (0 = no limit)")

	return cmd
}

func runRender(ctx context.Context, w io.Writer, cfg *config.Config, name string, app demo.App, opts renderOptions) error {
	logger := cfg.Logger(io.Discard)
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logger = cfg.Logger(w)
	}

	mem := host.NewMemory()
	root := mem.NewContainer("div")
	eng := engine.New(mem, append(cfg.EngineOptions(), engine.WithLogger(logger))...)
	if err := eng.Render(app(), root); err != nil {
		return err
	}
	if err := eng.Flush(); err != nil {
		return err
	}
	defer func() {
		eng.Unmount()
		_ = eng.Flush()
	}()

	renderer := render.NewRenderer(render.RendererConfig{Pretty: opts.pretty, Indent: "  "})
	page := render.PageData{Body: root, Title: "weft · " + name}

	if opts.stdout {
		return renderer.RenderPage(w, page)
	}

	store, err := openStore(cfg, opts, logger)
	if err != nil {
		return err
	}
	snapshot := opts.name
	if snapshot == "" {
		snapshot = name + ".html"
	}
	location, err := export.Page(ctx, store, renderer, snapshot, page)
	if err != nil {
		if we := errors.Classify(err); we.Code != "" {
			return we
		}
		return errors.New("W060").Wrap(err)
	}
	stats := eng.LastCommit()
	success(w, "Rendered %s to %s", name, location)
	info(w, "%d nodes, %d host operations", stats.Inserts, stats.HostOps)
	return nil
}

// openStore picks S3 when a bucket is set by flag or config, and the
// export directory otherwise.
func openStore(cfg *config.Config, opts renderOptions, logger *slog.Logger) (export.Store, error) {
	bucket := opts.bucket
	if bucket == "" {
		bucket = cfg.Export.Bucket
	}
	if bucket != "" {
		prefix := opts.prefix
		if prefix == "" {
			prefix = cfg.Export.Prefix
		}
		client := export.NewS3Client(export.S3Config{
			Region:    cfg.Export.Region,
			Endpoint:  cfg.Export.Endpoint,
			PathStyle: cfg.Export.PathStyle,
		})
		logger.Debug("exporting to s3", "bucket", bucket, "prefix", prefix)
		return export.NewS3Store(client, bucket, prefix).WithMaxSize(opts.maxBytes), nil
	}

	dir := opts.out
	if dir == "" {
		dir = cfg.Export.Dir
	}
	store, err := export.NewDirStore(dir, opts.maxBytes)
	if err != nil {
		return nil, errors.New("W060").Wrap(err)
	}
	return store, nil
}
