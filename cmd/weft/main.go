package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/demo"
	"github.com/vango-dev/weft/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┌─┐┌┬┐
  ║║║├┤ ├┤  │
  ╚╩╝└─┘└   ┴
`

// globals are the persistent flags and the configuration they load.
type globals struct {
	configPath  string
	logLevel    string
	errorFormat string
	cfg         *config.Config
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit code. Failures are
// printed to stderr in the style chosen with --error-format.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		style, _ := cmd.PersistentFlags().GetString("error-format")
		errors.PrintErrorAs(stderr, err, style)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "weft",
		Short: "Incremental UI rendering engine",
		Long: `weft renders component trees incrementally.

Renders are split into small units of work that yield to the
scheduler between units, and finished trees are committed to
the host in one step. The CLI renders, serves and benchmarks
the bundled demo apps:

  • render   write a server-rendered page to disk or S3
  • serve    serve an app live over a WebSocket
  • bench    measure units, slices and host operations`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", ".", "Config file or directory containing weft.toml / weft.json")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&g.errorFormat, "error-format", errors.StyleText, "Error output: text, compact, json")

	rootCmd.AddCommand(
		renderCmd(g),
		serveCmd(g),
		benchCmd(g),
		versionCmd(),
	)
	return rootCmd
}

// load reads the configuration and applies flag overrides.
func (g *globals) load() error {
	if !slices.Contains(errors.Styles, g.errorFormat) {
		return errors.New("W051").
			WithDetail(fmt.Sprintf("unknown error format %q", g.errorFormat)).
			WithSuggestion(fmt.Sprintf("Use one of %v", errors.Styles))
	}
	var (
		cfg *config.Config
		err error
	)
	if info, statErr := os.Stat(g.configPath); statErr == nil && !info.IsDir() {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load(filepath.Clean(g.configPath))
	}
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	return nil
}

// app resolves a demo app by name, defaulting to the configured one.
func (g *globals) app(args []string) (string, demo.App, error) {
	name := g.cfg.Demo
	if len(args) > 0 {
		name = args[0]
	}
	app, ok := demo.Lookup(name)
	if !ok {
		return "", nil, errors.New("W070").
			WithDetail(fmt.Sprintf("no demo named %q", name)).
			WithSuggestion(fmt.Sprintf("Available demos: %v", demo.Names()))
	}
	return name, app, nil
}

// printBanner prints the weft ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
