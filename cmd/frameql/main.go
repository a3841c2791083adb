// Command frameql is the CLI for the frameql table engine: an interactive
// query session, one-shot queries against CSV files, and an HTTP server.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/frameql/frameql/internal/ingest"
	"github.com/frameql/frameql/internal/logging"
	"github.com/frameql/frameql/internal/query"
	"github.com/frameql/frameql/internal/render"
	"github.com/frameql/frameql/internal/repl"
	"github.com/frameql/frameql/internal/web"
)

const version = "0.1.0"

// CLI defines the command-line interface for frameql.
var CLI struct {
	Seq string `name:"seq" help:"Seq ingestion URL for structured log shipping"`

	Repl    ReplCmd    `cmd:"" help:"Interactive query session"`
	Run     RunCmd     `cmd:"" help:"Run one query against CSV files"`
	Serve   ServeCmd   `cmd:"" help:"Serve loaded tables over HTTP"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

type ReplCmd struct {
	Files []string `arg:"" optional:"" help:"CSV files to preload (table name = file stem)" type:"existingfile"`
}

type RunCmd struct {
	Query string   `arg:"" help:"Query line, e.g. 'sales[val > 5, total = sum(val), by = grp]'"`
	Files []string `arg:"" help:"CSV files to load (table name = file stem)" type:"existingfile"`
}

type ServeCmd struct {
	Port  int      `default:"8080" help:"HTTP listen port"`
	Files []string `arg:"" optional:"" help:"CSV files to load (table name = file stem)" type:"existingfile"`
}

type VersionCmd struct{}

func (c *ReplCmd) Run() error {
	eng, err := newEngine(c.Files)
	if err != nil {
		return err
	}
	repl.Start(eng)
	return nil
}

func (c *RunCmd) Run() error {
	eng, err := newEngine(c.Files)
	if err != nil {
		return err
	}
	result, err := repl.Exec(eng, c.Query)
	if err != nil {
		return err
	}
	return render.PrintTable(os.Stdout, result)
}

func (c *ServeCmd) Run() error {
	eng, err := newEngine(c.Files)
	if err != nil {
		return err
	}
	return web.NewServer(c.Port, eng).Start()
}

func (c *VersionCmd) Run() error {
	fmt.Printf("frameql %s\n", version)
	return nil
}

// newEngine builds an engine with a logging observer and the given CSV
// files registered under their file stems.
func newEngine(files []string) (*query.Engine, error) {
	eng := query.NewEngine()
	eng.AddObserver(query.NewLoggingObserver())

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		t, err := ingest.ReadCSV(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		eng.Register(name, t)
		slog.Info("table loaded", "name", name, "rows", t.NumRows(), "cols", t.NumCols())
	}
	return eng, nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("frameql"),
		kong.Description("In-memory columnar table engine with data.table-style queries."),
		kong.UsageOnError(),
	)

	logger, closeFn := logging.SetupLogger(CLI.Seq)
	defer closeFn()
	slog.SetDefault(logger)

	if err := ctx.Run(); err != nil {
		slog.Error("command failed", "error", err)
		closeFn()
		os.Exit(1)
	}
}
