// Command msglog prints sample lines at every level through a configured
// logging service, to preview styles, formats and thresholds.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Station-Manager/msglog"
	"github.com/jessevdk/go-flags"
)

type options struct {
	Config  string `short:"c" long:"config" description:"logging config file (.yaml, .json or .toml)"`
	Level   string `short:"l" long:"level" description:"threshold level"`
	Styles  string `short:"s" long:"styles" choice:"ansi" choice:"plain" choice:"auto" description:"style table"`
	Format  string `short:"f" long:"format" choice:"text" choice:"json" choice:"pretty" description:"console format"`
	Emitter string `short:"e" long:"emitter" default:"demo" description:"emitter label"`
}

type sample struct {
	Name    string
	Path    string
	Entries []int
	Owner   *sample
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg := msglog.DefaultConfig()
	if opts.Config != "" {
		loaded, err := msglog.LoadConfig(opts.Config)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if opts.Level != "" {
		cfg.Threshold = opts.Level
	}
	if opts.Styles != "" {
		cfg.Styles = opts.Styles
	}
	if opts.Format != "" {
		cfg.Console.Enabled = true
		cfg.Console.Format = opts.Format
	}
	if opts.Emitter != "" {
		cfg.Emitter = opts.Emitter
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	svc := msglog.NewService(wd, &cfg)
	if err = svc.Initialize(); err != nil {
		return err
	}
	defer svc.Close()

	log := svc.Logger()
	log.Info().H1("msglog").Text("preview").Comment("threshold", log.ThresholdName()).Emit()

	for _, name := range log.Levels().Names() {
		log.Level(name).
			Label("level:").Value(name).
			Text("shown at or above").Highlight(name).
			Emit()
	}

	req := log.WithRequest("42", "s-1").WithAction("import")
	req.Info().Action("Imported").Value(128).Text("rows from").Path("/var/data/rows.csv").Emit()
	req.Warn().Label("Skipped:").Value(3).Strikethru("duplicates").Emit()
	req.Error().Err(errors.New("connection reset")).Comment("will retry").Emit()

	time.Sleep(5 * time.Millisecond)
	req.Verbose().Date(time.Now().Format(time.RFC3339)).Text("checkpoint").EmitWithTime()

	b := log.Info()
	b.Tab(1).Label("tabbed:").Value("one").Emit()
	b.Label("still tabbed:").Value("two").Emit()
	b.Tab(0).Indent(4).Label("indented:").Value("three").Emit()

	root := &sample{Name: "root", Path: "/", Entries: []int{1, 2, 3}}
	root.Owner = root
	log.Dump(msglog.LevelDebug, root)
	return nil
}
