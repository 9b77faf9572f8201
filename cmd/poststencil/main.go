// PostStencil - Declarative social post renderer.
//
// Usage:
//
//	poststencil [render] -state <path> -o <file> [-data <path>] [-mode post|highlight]
//	poststencil layout -state <path>
//	poststencil validate -state <path>
//	poststencil watch -state <path> -o <file>
//	poststencil serve [-addr 127.0.0.1:8080]
//	poststencil init
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/xob0t/poststencil/clients/server"
	"github.com/xob0t/poststencil/pkg/config"
	"github.com/xob0t/poststencil/pkg/export"
	"github.com/xob0t/poststencil/pkg/fonts"
	"github.com/xob0t/poststencil/pkg/generator"
	"github.com/xob0t/poststencil/pkg/imageload"
	"github.com/xob0t/poststencil/pkg/logger"
	"github.com/xob0t/poststencil/pkg/state"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fatal(err)
	}
}

// run dispatches a command line. Anything that is not a subcommand,
// including no arguments at all, is handed to render.
func run(args []string) error {
	if len(args) == 0 {
		return runRender(nil)
	}
	switch args[0] {
	case "render":
		return runRender(args[1:])
	case "init":
		return runInit(args[1:])
	case "layout":
		return runLayout(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "watch":
		return runWatch(args[1:])
	case "serve":
		return runServe(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return runRender(args)
	}
}

// ── Shared setup ──

type app struct {
	cfg    *config.Config
	log    *slog.Logger
	closer io.Closer
	x      *export.Exporter
}

// setup loads the config and builds the logger and exporter from it. A
// non-empty output picks the encoding by its extension.
func setup(configPath, output string) (*app, error) {
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, closer := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	x := export.New(export.Options{
		Images:      imageload.New(cfg.LoaderOptions(log)),
		Fonts:       fonts.New(cfg.FontOptions(log)),
		Encoding:    encodingFor(cfg, output),
		MinDuration: cfg.Export.MinDuration.Duration,
		Logger:      log,
	})
	return &app{cfg: cfg, log: log, closer: closer, x: x}, nil
}

// stateFlags are shared by every command that reads a state.
type stateFlags struct {
	config string
	state  string
	data   string
	mode   string
}

func (f *stateFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.config, "config", "", "Config file (default: user config dir)")
	fs.StringVar(&f.state, "state", "", "State JSON or .psbundle")
	fs.StringVar(&f.data, "data", "", "Data JSON overlaid on the state (optional)")
	fs.StringVar(&f.mode, "mode", "post", "Canvas: post or highlight")
}

// load reads the state, overlays data and returns the validation warnings
// of both documents.
func (f *stateFlags) load() (*state.State, state.Mode, []string, error) {
	if f.state == "" {
		return nil, "", nil, errors.New("-state is required")
	}
	mode, err := state.ParseMode(f.mode)
	if err != nil {
		return nil, "", nil, err
	}

	var st *state.State
	var warnings []string
	if strings.EqualFold(filepath.Ext(f.state), ".psbundle") {
		st, err = state.LoadBundle(f.state)
	} else {
		var raw []byte
		if raw, err = os.ReadFile(f.state); err == nil {
			st, warnings, err = state.DecodeChecked(raw)
		}
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("load state: %w", err)
	}

	if f.data != "" {
		raw, err := os.ReadFile(f.data)
		if err != nil {
			return nil, "", nil, fmt.Errorf("read data: %w", err)
		}
		if _, dw, err := state.DecodeChecked(raw); err == nil {
			warnings = append(warnings, dw...)
		}
		if err := state.ApplyData(st, raw); err != nil {
			return nil, "", nil, err
		}
	}
	return st, mode, warnings, nil
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}

// ── Commands ──

func runRender(args []string) error {
	fs := flag.NewFlagSet("poststencil", flag.ExitOnError)
	var sf stateFlags
	sf.register(fs)
	var output string
	fs.StringVar(&output, "o", "", "Output file (.png or .jpg)")
	fs.StringVar(&output, "output", "", "Output file (.png or .jpg)")
	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}
	if output == "" {
		printUsage()
		return errors.New("output file is required (-o)")
	}

	a, err := setup(sf.config, output)
	if err != nil {
		return err
	}
	defer a.closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return renderOnce(ctx, a, &sf, output)
}

func renderOnce(ctx context.Context, a *app, sf *stateFlags, output string) error {
	st, mode, warnings, err := sf.load()
	if err != nil {
		return err
	}
	printWarnings(warnings)

	res, err := a.x.Export(ctx, st, mode)
	if err != nil {
		return fmt.Errorf("%s (%w)", export.Message(err), err)
	}
	if err := generator.Generate(output, res.Data); err != nil {
		return err
	}
	fmt.Printf("Done: %s (%s %dx%d)\n", output, res.Template, res.Width, res.Height)
	return nil
}

// encodingFor keeps the configured JPEG quality.
func encodingFor(cfg *config.Config, output string) generator.Config {
	enc := cfg.Encoding()
	if f, err := generator.ParseFormat(filepath.Ext(output)); err == nil {
		enc.Format = f
	}
	return enc
}

func runLayout(args []string) error {
	fs := flag.NewFlagSet("layout", flag.ExitOnError)
	var sf stateFlags
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := setup(sf.config, "")
	if err != nil {
		return err
	}
	defer a.closer.Close()

	st, mode, warnings, err := sf.load()
	if err != nil {
		return err
	}
	printWarnings(warnings)
	plan, err := a.x.Layout(context.Background(), st, mode)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var sf stateFlags
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	_, _, warnings, err := sf.load()
	if err != nil {
		return err
	}
	if len(warnings) == 0 {
		fmt.Println("OK")
		return nil
	}
	for _, w := range warnings {
		fmt.Println(w)
	}
	return fmt.Errorf("%d warning(s)", len(warnings))
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var sf stateFlags
	sf.register(fs)
	var output string
	fs.StringVar(&output, "o", "", "Output file (.png or .jpg)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if output == "" || sf.state == "" {
		return errors.New("watch needs -state and -o")
	}
	a, err := setup(sf.config, output)
	if err != nil {
		return err
	}
	defer a.closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := newWatcher(sf.state, a.log)
	if err != nil {
		return err
	}
	defer w.Close()

	rerender := func() {
		if err := renderOnce(ctx, a, &sf, output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	rerender()
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", sf.state)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Events():
			rerender()
		}
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var configPath, addr string
	fs.StringVar(&configPath, "config", "", "Config file (default: user config dir)")
	fs.StringVar(&addr, "addr", "", "Listen address (default: from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := setup(configPath, "")
	if err != nil {
		return err
	}
	defer a.closer.Close()
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := server.New(a.x, server.Options{
		Addr:      addr,
		MaxUpload: int64(a.cfg.Server.MaxUploadMB) << 20,
		Logger:    a.log,
	})
	return srv.Run(ctx)
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var stateOut, dataOut, configOut string
	fs.StringVar(&stateOut, "state", "state.json", "Output path for the sample state")
	fs.StringVar(&dataOut, "data", "data.json", "Output path for the sample data")
	fs.StringVar(&configOut, "config", config.DefaultPath(), "Config file to create if missing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, d := state.ExampleJSON()
	if err := generator.WriteFile(stateOut, []byte(s)); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := generator.WriteFile(dataOut, []byte(d)); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	fmt.Printf("Created: %s, %s\n", stateOut, dataOut)

	if _, err := os.Stat(configOut); os.IsNotExist(err) {
		if err := config.DefaultConfig().Save(configOut); err != nil {
			return err
		}
		fmt.Printf("Created: %s\n", configOut)
	}
	fmt.Println("Run: poststencil -state state.json -data data.json -o post.png")
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`PostStencil - Declarative Social Post Renderer (Pure Go)

USAGE:
    poststencil [render] -state <path> -o <file> [options]
    poststencil layout -state <path> [options]
    poststencil validate -state <path> [options]
    poststencil watch -state <path> -o <file> [options]
    poststencil serve [-addr 127.0.0.1:8080]
    poststencil init [options]

RENDER:
    -state <path>          State JSON or .psbundle
    -data <path>           Data JSON overlaid on the state (optional)
    -mode <mode>           post (1080x1350) or highlight (1080x1080)
    -o, -output <path>     Output file (.png or .jpg)
    -config <path>         Config TOML (default: user config dir)

COMMANDS:
    layout                 Print the resolved layer plan as JSON
    validate               Report values that will be repaired or skipped
    watch                  Re-render whenever the state file changes
    serve                  Start the HTTP API
    init                   Write a sample state, data and config

EXAMPLES:
    poststencil init
    poststencil -state state.json -o post.png
    poststencil -state state.json -data data.json -o post.jpg
    poststencil -state state.json -mode highlight -o badge.png
    poststencil watch -state state.json -o preview.png
`)
}
