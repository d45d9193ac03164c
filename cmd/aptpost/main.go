// aptpost translates APT/CL tool path files into controller G-code.
//
// Usage:
//
//	aptpost [options] <input.apt>
//	aptpost -i [options]
//
// Options:
//
//	-dialect string     Controller dialect: generic, fanuc, fanuc_lathe, haas, siemens, heidenhain
//	-config string      Controller configuration merged over the dialect
//	-o string           Output file (default: stdout)
//	-tools string       Tool library CSV for tool comments
//	-log-level string   DEBUG, INFO, WARN or ERROR (default "WARN")
//	-log-format string  text or json (default "text")
//	-stats              Print a run summary and the metrics after the run
//	-i                  Interactive shell, one APT statement per line
//
// Examples:
//
//	# Post a program for a Fanuc mill
//	aptpost -dialect fanuc -o part.nc part.apt
//
//	# Siemens with a site configuration and tool comments
//	aptpost -dialect siemens -config shop.cfg -tools tools.csv part.apt
//
//	# Try statements by hand
//	aptpost -i -dialect heidenhain
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"

	"aptpost/pkg/config"
	"aptpost/pkg/log"
	"aptpost/pkg/macro"
	"aptpost/pkg/post"
	"aptpost/pkg/session"
	"aptpost/pkg/tools"
)

type options struct {
	dialect     string
	configFile  string
	output      string
	toolsFile   string
	logLevel    string
	logFormat   string
	stats       bool
	interactive bool
}

func main() {
	var opts options
	flag.StringVar(&opts.dialect, "dialect", "", "Controller dialect (default: from -config, else generic)")
	flag.StringVar(&opts.configFile, "config", "", "Controller configuration merged over the dialect")
	flag.StringVar(&opts.output, "o", "", "Output file (default: stdout)")
	flag.StringVar(&opts.toolsFile, "tools", "", "Tool library CSV")
	flag.StringVar(&opts.logLevel, "log-level", "WARN", "Log level [DEBUG|INFO|WARN|ERROR]")
	flag.StringVar(&opts.logFormat, "log-format", "text", "Log format [text|json]")
	flag.BoolVar(&opts.stats, "stats", false, "Print run summary and metrics")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive shell")
	flag.Parse()

	logger := log.New("aptpost")
	log.ConfigureFromEnv(logger)
	logger.SetLevel(log.ParseLevel(opts.logLevel))
	logger.SetFormat(log.ParseFormat(opts.logFormat))
	log.SetDefaultLogger(logger)

	if !opts.interactive && flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one input file is required\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(opts, flag.Arg(0), logger); err != nil {
		pterm.Error.Println(err)
		os.Exit(2)
	}
}

func run(opts options, input string, logger *log.Logger) (err error) {
	ctrl, err := loadController(opts)
	if err != nil {
		return err
	}
	set, err := macro.ForDialect(ctrl.Name)
	if err != nil {
		return err
	}

	sessOpts := []session.Option{session.WithLogger(logger)}
	if opts.toolsFile != "" {
		lib, err := loadTools(opts.toolsFile)
		if err != nil {
			return err
		}
		logger.Info("loaded %d tools from %s", lib.Len(), opts.toolsFile)
		sessOpts = append(sessOpts, session.WithTools(lib))
	}

	if opts.interactive {
		return interactive(set, ctrl, sessOpts)
	}

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if opts.output != "" {
		f, ferr := os.Create(opts.output)
		if ferr != nil {
			return ferr
		}
		defer closeOutput(f, opts.output, &err)
		out = f
	}

	s := session.New(ctrl, out, sessOpts...)
	p := post.New(set, s)

	start := time.Now()
	sum, err := p.Run(in)
	if opts.stats {
		printStats(ctrl.Name, sum, s, time.Since(start))
	}
	return err
}

// closeOutput closes the output file and reports a failed close through
// errp unless an earlier error is already set.
func closeOutput(c io.Closer, name string, errp *error) {
	if err := c.Close(); err != nil && *errp == nil {
		*errp = fmt.Errorf("close %s: %w", name, err)
	}
}

// loadController resolves the dialect from the flag or the user file.
func loadController(opts options) (*config.Controller, error) {
	var user *config.Config
	if opts.configFile != "" {
		cfg, err := config.Load(opts.configFile)
		if err != nil {
			return nil, err
		}
		user = cfg
	}
	return config.LoadController(opts.dialect, user)
}

func loadTools(path string) (*tools.Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return tools.LoadCSV(ctx, f)
}
