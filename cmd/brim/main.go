// brim CLI - reads s-expression source and prints the datum or the error
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/brim/config"
	"github.com/chazu/brim/reader"
	"github.com/chazu/brim/server"
	"github.com/chazu/brim/store"
	"github.com/chazu/brim/vm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	verbosity  int
	configPath string
	all        bool
	begin      bool
	expr       string
	save       string
	load       string
	storePath  string
	serve      bool
	repl       bool
	stats      bool
	paths      []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("brim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.IntVar(&o.verbosity, "v", -1, "Log verbosity (overrides brim.toml)")
	fs.StringVar(&o.configPath, "config", "", "Path to a brim.toml (default: search upward from the working directory)")
	fs.BoolVar(&o.all, "all", false, "Read every datum and print them as a list")
	fs.BoolVar(&o.begin, "begin", false, "Read every datum and wrap them in (begin ...)")
	fs.StringVar(&o.expr, "e", "", "Read source from this string instead of files or stdin")
	fs.StringVar(&o.save, "save", "", "Save the datum read to the snapshot store under this name")
	fs.StringVar(&o.load, "load", "", "Print the snapshot stored under this name instead of reading source")
	fs.StringVar(&o.storePath, "store", "", "Snapshot database path (overrides brim.toml)")
	fs.BoolVar(&o.serve, "serve", false, "Start the language server on stdio")
	fs.BoolVar(&o.repl, "i", false, "Read data interactively")
	fs.BoolVar(&o.stats, "stats", false, "Print collector statistics to stderr when done")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: brim [options] [files...]\n\n")
		fmt.Fprintf(stderr, "Reads a datum from -e, the given files, or stdin and prints it.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  brim -e '(a b . c)'           # >> (a b . c)\n")
		fmt.Fprintf(stderr, "  brim -all prog.scm            # every datum in prog.scm as a list\n")
		fmt.Fprintf(stderr, "  brim -begin -save prog *.scm  # store (begin ...) as snapshot 'prog'\n")
		fmt.Fprintf(stderr, "  brim -load prog               # print snapshot 'prog'\n")
		fmt.Fprintf(stderr, "  brim -i                       # interactive reader\n")
		fmt.Fprintf(stderr, "  brim -serve                   # language server on stdio\n")
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.all && o.begin {
		return nil, errors.New("-all and -begin are mutually exclusive")
	}
	o.paths = fs.Args()
	return o, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	verbosity := cfg.Log.Verbosity
	if opts.verbosity >= 0 {
		verbosity = opts.verbosity
	}
	var logPath *string
	if f := cfg.LogFile(); f != "" {
		logPath = &f
	}
	commonlog.Configure(verbosity, logPath)

	rt := vm.New(cfg.RuntimeOptions())

	if opts.serve {
		lsp := server.NewLSP(rt, cfg.LSP.Name)
		if err := lsp.Run(); err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return 1
		}
		return 0
	}

	if opts.repl {
		return runREPL(rt, stdout)
	}

	code := execute(context.Background(), rt, cfg, opts, stdin, stdout, stderr)
	if opts.stats {
		s := rt.Collector().Stats()
		fmt.Fprintf(stderr, "blocks: %d total, %d live, %d dead, %d symbols; %d collections\n",
			s.Total, s.Live, s.Dead, s.Symbols, s.Cycles)
	}
	return code
}

func execute(ctx context.Context, rt *vm.Runtime, cfg *config.Config, opts *options, stdin io.Reader, stdout, stderr io.Writer) int {
	storePath := cfg.StorePath()
	if opts.storePath != "" {
		storePath = opts.storePath
	}

	if opts.load != "" {
		st, err := store.Open(ctx, storePath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer st.Close()

		obj, err := st.Load(ctx, opts.load, rt)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, ">> %s\n", rt.Format(obj))
		return 0
	}

	src, err := source(opts, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	obj, err := readSource(rt, src, opts)
	if err != nil {
		if fault := rt.Fault(); fault != nil {
			fmt.Fprintf(stdout, ">> %s\n", fault.Message)
			return 1
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(stderr, "Error: no input")
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, ">> %s\n", rt.Format(obj))

	if opts.save != "" {
		st, err := store.Open(ctx, storePath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer st.Close()
		if err := st.Save(ctx, opts.save, rt, obj); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

// source returns the reader for the program text: -e, then the named files
// concatenated, then stdin.
func source(opts *options, stdin io.Reader) (io.Reader, error) {
	if opts.expr != "" {
		return bytes.NewBufferString(opts.expr), nil
	}
	if len(opts.paths) == 0 {
		return stdin, nil
	}

	var buf bytes.Buffer
	for _, path := range opts.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return &buf, nil
}

func readSource(rt *vm.Runtime, src io.Reader, opts *options) (vm.Object, error) {
	switch {
	case opts.all:
		return reader.ReadAll(rt, src)
	case opts.begin:
		return reader.ReadProgram(rt, src)
	}
	return reader.ReadDatum(rt, src)
}
