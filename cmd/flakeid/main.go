package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/mantono/flakeid/pkg/log"
	"github.com/mantono/flakeid/pkg/version"
)

// envPrefix maps flags to environment variables, e.g. -node_source to
// FLAKEID_NODE_SOURCE.
const envPrefix = "FLAKEID"

type cliFlags struct {
	debug   bool
	logJSON bool

	node       string
	nodeSource string
	nodeName   string

	databaseURL string
	redisAddr   string
	redisPrefix string
}

// newLogger creates the process logger. Only long running commands listen
// for the level swap signal.
func (f *cliFlags) newLogger(w io.Writer, swap bool) log.Logger {
	opts := []log.Option{log.Output(w)}
	if f.debug {
		opts = append(opts, log.StartDebug())
	}
	if f.logJSON {
		opts = append(opts, log.JSON())
	}
	if !swap {
		opts = append(opts, log.SwapSignal(nil))
	}
	return log.New(opts...)
}

func flakeid(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		logger log.Logger = log.New(log.Output(stderr), log.SwapSignal(nil))
		ctx               = context.Background()
		cli               = &cliFlags{}
		rootfs            = flag.NewFlagSet("flakeid", flag.ContinueOnError)
		_                 = rootfs.String("config", "", "Path to config file (optional)")
	)

	rootfs.BoolVar(&cli.debug, "debug", false, "Allow debug level")
	rootfs.BoolVar(&cli.logJSON, "log_json", false, "Log JSON entries instead of logfmt")
	rootfs.StringVar(&cli.node, "node", "", "Node identifier (up to 48 bits) used with -node_source=static")
	rootfs.StringVar(&cli.nodeSource, "node_source", "auto", "Where the node identifier comes from: auto|mac|env|hash|static|registry")
	rootfs.StringVar(&cli.nodeName, "node_name", "", "Name hashed by -node_source=hash and registered by -node_source=registry (default: host name)")
	rootfs.StringVar(&cli.databaseURL, "database_url", "", "Node registry database: a postgres URL or a sqlite file path")
	rootfs.StringVar(&cli.redisAddr, "redis_addr", "", "Node registry Redis address, used instead of -database_url")
	rootfs.StringVar(&cli.redisPrefix, "redis_prefix", "flakeid:", "Prefix of the node registry Redis keys")

	// default output is os.Stderr.
	// setting the output and flag.ContinueOnError overrides allows testing usage.
	rootfs.SetOutput(stderr)

	setLogger := func(swap bool) log.Logger {
		logger = cli.newLogger(stderr, swap)
		return logger
	}

	versionfs := flag.NewFlagSet("version", flag.ContinueOnError)
	versionShort := versionfs.Bool("short", false, "Print only the version string")
	versionfs.SetOutput(stderr)

	versionCmd := &ffcli.Command{
		Name:       "version",
		ShortUsage: "version [-short]",
		ShortHelp:  "Print version information.",
		FlagSet:    versionfs,
		Exec: func(_ context.Context, args []string) error {
			if *versionShort {
				version.Print(stdout)
				return nil
			}
			return version.PrintFull(stdout)
		},
	}

	// add a help subcommand to make usage more discoverable.
	helpCmd := &ffcli.Command{
		Name:      "help",
		ShortHelp: "Print this help text.",
		UsageFunc: func(c *ffcli.Command) string { return "" },
		Exec: func(_ context.Context, args []string) error {
			rootfs.Usage()
			return flag.ErrHelp
		},
	}

	root := &ffcli.Command{
		ShortUsage: "flakeid [flags] <subcommand>",
		FlagSet:    rootfs,
		Options: []ff.Option{
			ff.WithEnvVarPrefix(envPrefix),
			ff.WithConfigFileParser(ff.PlainParser),
			ff.WithConfigFileFlag("config"),
		},
		Subcommands: []*ffcli.Command{
			generateCmd(cli, stdout, stderr, setLogger),
			decodeCmd(stdin, stdout, stderr, setLogger),
			serveCmd(cli, args, stderr, setLogger),
			versionCmd,
			helpCmd,
		},
		Exec: func(context.Context, []string) error {
			rootfs.Usage()
			return flag.ErrHelp
		},
	}

	switch err := root.ParseAndRun(ctx, args[1:]); {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 2
	default:
		log.Error(logger).Log("exit", err)
		return 1
	}
}

func main() { os.Exit(flakeid(os.Args, os.Stdin, os.Stdout, os.Stderr)) }
