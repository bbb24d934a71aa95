// Command mymarket drives a storefront data directory from the shell.
//
//	mymarket [global flags] <command> [command flags] [args]
//
// Commands: list, search, categories, top, stats, signup, cart, buy, flush.
// Commands that change state persist every artifact once before exiting.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	mymarket "github.com/itsneelabh/mymarket"
	"github.com/itsneelabh/mymarket/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "mymarket: %v\n", err)
		}
		os.Exit(1)
	}
}

// globalFlags are accepted before the command name.
type globalFlags struct {
	configFile string
	dataDir    string
	redisURL   string
	namespace  string
	memory     bool
	logLevel   string
	logFormat  string
	telemetry  string
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.configFile, "config", "", "JSON or YAML config file")
	fs.StringVar(&g.dataDir, "data", "", "data directory for the file backend")
	fs.StringVar(&g.redisURL, "redis-url", "", "use the Redis backend at this URL")
	fs.StringVar(&g.namespace, "namespace", "", "Redis key namespace")
	fs.BoolVar(&g.memory, "memory", false, "keep everything in memory (nothing is saved)")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&g.logFormat, "log-format", "", "log format: text or json")
	fs.StringVar(&g.telemetry, "otel-endpoint", "", "export traces to an OTLP endpoint, or \"stdout\"")
}

// options turns the flags into config options. Flags override the config
// file, which overrides the environment.
func (g *globalFlags) options() []mymarket.Option {
	var opts []mymarket.Option
	if g.configFile != "" {
		opts = append(opts, mymarket.WithConfigFile(g.configFile))
	}
	switch {
	case g.memory:
		opts = append(opts, mymarket.WithMemoryStorage())
	case g.redisURL != "":
		opts = append(opts, mymarket.WithRedis(g.redisURL, g.namespace))
	case g.dataDir != "":
		opts = append(opts, mymarket.WithDataDir(g.dataDir))
	}
	if g.logLevel != "" {
		opts = append(opts, mymarket.WithLogLevel(g.logLevel))
	}
	if g.logFormat != "" {
		opts = append(opts, mymarket.WithLogFormat(g.logFormat))
	}
	if g.telemetry != "" {
		opts = append(opts, mymarket.WithTelemetry(true, g.telemetry))
	}
	return opts
}

// command is one subcommand. Mutating commands run inside a session that is
// persisted on success.
type command struct {
	usage    string
	mutating bool
	run      func(ctx context.Context, cat *core.Catalog, args []string, out io.Writer) error
}

var commands = map[string]command{
	"list":       {usage: "list [-category C] [-subcategory S] [-unavailable]", run: cmdList},
	"search":     {usage: "search QUERY", run: cmdSearch},
	"categories": {usage: "categories", run: cmdCategories},
	"top":        {usage: "top [-n N]", run: cmdTop},
	"stats":      {usage: "stats -user U -password P", run: cmdStats},
	"signup":     {usage: "signup USERNAME PASSWORD FIRSTNAME SURNAME", mutating: true, run: cmdSignup},
	"cart":       {usage: "cart -user U -password P [add|set|remove|clear] [TITLE [QTY]]", mutating: true, run: cmdCart},
	"buy":        {usage: "buy -user U -password P [TITLE QTY]...", mutating: true, run: cmdBuy},
	"flush":      {usage: "flush", mutating: true, run: func(context.Context, *core.Catalog, []string, io.Writer) error { return nil }},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mymarket", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var g globalFlags
	g.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: mymarket [flags] <command> [args]")
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "\ncommands:")
		for _, name := range []string{"list", "search", "categories", "top", "stats", "signup", "cart", "buy", "flush"} {
			fmt.Fprintf(stderr, "  %s\n", commands[name].usage)
		}
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", name)
	}

	if cmd.mutating {
		return mymarket.RunSession(ctx, func(ctx context.Context, cat *core.Catalog) error {
			return cmd.run(ctx, cat, rest, stdout)
		}, g.options()...)
	}

	cat, err := core.Open(ctx, g.options()...)
	if err != nil {
		return err
	}
	defer cat.Close(ctx)
	return cmd.run(ctx, cat, rest, stdout)
}
