package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/demo"
	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/sched"
	"github.com/vango-dev/weft/pkg/vdom"
)

type benchOptions struct {
	rows       int
	iterations int
	slice      time.Duration
	keyed      bool
	action     string
}

// benchResult is one measured render.
type benchResult struct {
	Phase  string
	Stats  engine.CommitStats
	Yields int
	Wall   time.Duration
}

func benchCmd(g *globals) *cobra.Command {
	opts := benchOptions{rows: demo.DefaultRows, iterations: 5}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure rendering of a large list",
		Long: `Render a table of rows, then reverse or rotate it repeatedly.

Each render runs in slices of the configured budget, as it would on
a server loop, and the command reports units processed, slices used
and host operations per commit.

Examples:
  weft bench
  weft bench --rows=5000 --keyed
  weft bench --action=rotate --slice=1ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("slice") {
				opts.slice = g.cfg.SliceBudget()
			}
			if !cmd.Flags().Changed("keyed") {
				opts.keyed = g.cfg.Render.Keyed
			}
			results, err := runBench(g.cfg, opts)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), opts, results)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.rows, "rows", opts.rows, "Number of rows")
	cmd.Flags().IntVarP(&opts.iterations, "iterations", "i", opts.iterations, "Number of updates after the first render")
	cmd.Flags().DurationVar(&opts.slice, "slice", sched.DefaultSlice, "Slice budget")
	cmd.Flags().BoolVar(&opts.keyed, "keyed", false, "Match rows by key")
	cmd.Flags().StringVar(&opts.action, "action", "reverse", "Update to measure: reverse or rotate")

	return cmd
}

// yieldCounter counts yields of the current render.
type yieldCounter struct {
	engine.BaseObserver
	n int
}

func (y *yieldCounter) RenderStarted(engine.Reason) { y.n = 0 }
func (y *yieldCounter) Yielded(int)                 { y.n++ }

func runBench(cfg *config.Config, opts benchOptions) ([]benchResult, error) {
	if opts.action != "reverse" && opts.action != "rotate" {
		return nil, fmt.Errorf("unknown action %q: want reverse or rotate", opts.action)
	}
	if opts.rows < 1 {
		return nil, fmt.Errorf("rows must be positive, got %d", opts.rows)
	}

	scheduler := sched.NewManual()
	scheduler.NewDeadline = func() sched.Deadline {
		return sched.NewSliceDeadline(time.Now, opts.slice)
	}
	yields := &yieldCounter{}
	var errs []error

	mem := host.NewMemory()
	root := mem.NewContainer("div")
	eng := engine.New(mem, append(cfg.EngineOptions(),
		engine.WithKeyedReconciliation(opts.keyed),
		engine.WithScheduler(scheduler),
		engine.WithObserver(yields),
		engine.WithLogger(cfg.Logger(io.Discard)),
		engine.WithOnError(func(err error) { errs = append(errs, err) }),
	)...)

	measure := func(phase string, start func() error) (benchResult, error) {
		commits := eng.Commits()
		began := time.Now()
		if err := start(); err != nil {
			return benchResult{}, err
		}
		scheduler.RunUntilIdle(0)
		if len(errs) > 0 {
			return benchResult{}, errs[0]
		}
		if eng.Commits() == commits {
			return benchResult{}, fmt.Errorf("%s: nothing was committed", phase)
		}
		return benchResult{Phase: phase, Stats: eng.LastCommit(), Yields: yields.n, Wall: time.Since(began)}, nil
	}

	var results []benchResult
	first, err := measure("mount", func() error {
		return eng.Render(vdom.Comp(demo.Rows, vdom.Props{"count": opts.rows}), root)
	})
	if err != nil {
		return nil, err
	}
	results = append(results, first)

	button := root.Find(func(e *host.Element) bool { return e.Attr("id") == opts.action })
	if button == nil {
		return nil, fmt.Errorf("no %s button rendered", opts.action)
	}
	for i := 0; i < opts.iterations; i++ {
		r, err := measure(fmt.Sprintf("%s #%d", opts.action, i+1), func() error {
			if !mem.Dispatch(button, host.Event{Type: "click"}) {
				return fmt.Errorf("%s button has no click listener", opts.action)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	eng.Unmount()
	scheduler.RunUntilIdle(0)
	return results, nil
}

func printResults(w io.Writer, opts benchOptions, results []benchResult) {
	mode := "positional"
	if opts.keyed {
		mode = "keyed"
	}
	fmt.Fprintf(w, "%d rows, %s slices, %s reconciliation\n\n", opts.rows, opts.slice, mode)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "phase\tunits\tslices\tyields\tinserts\tupdates\tdeletes\tmoves\thost ops\tcommit\twall\t")
	for _, r := range results {
		s := r.Stats
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%s\t\n",
			r.Phase, s.Units, s.Slices, r.Yields, s.Inserts, s.Updates, s.Deletes, s.Moves, s.HostOps,
			s.Commit.Round(time.Microsecond), r.Wall.Round(time.Microsecond))
	}
	_ = tw.Flush()
}
