package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/mantono/flakeid/internal/mint"
	"github.com/mantono/flakeid/pkg/flake"
	"github.com/mantono/flakeid/pkg/log"
)

func generateCmd(cli *cliFlags, stdout, stderr io.Writer, setLogger func(bool) log.Logger) *ffcli.Command {
	var (
		fs     = flag.NewFlagSet("generate", flag.ContinueOnError)
		n      = fs.Int("n", 1, "Number of identifiers to generate")
		format = fs.String("format", "base64", "Output format: base64|hex|HEX|bin|dec|json")
	)
	fs.SetOutput(stderr)

	return &ffcli.Command{
		Name:       "generate",
		ShortUsage: "flakeid [flags] generate [-n count] [-format base64]",
		ShortHelp:  "Print new identifiers, one per line.",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(ctx context.Context, _ []string) error {
			logger := setLogger(false)
			if *n < 1 {
				return fmt.Errorf("-n must be positive, got %d", *n)
			}
			if *format != "json" {
				if _, err := mint.Format(flake.Nil, *format); err != nil {
					return err
				}
			}

			gen, closeDB, err := newGenerator(ctx, cli, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			svc := mint.New(mint.Config{Generator: gen, Logger: logger})
			return generate(ctx, svc, *n, *format, stdout)
		},
	}
}

func generate(ctx context.Context, svc *mint.Service, n int, format string, w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for i := 0; i < n; i++ {
		id, err := svc.Mint(ctx)
		if err != nil {
			bw.Flush()
			return err
		}

		if format == "json" {
			if err := enc.Encode(mint.FieldsOf(id)); err != nil {
				return err
			}
			continue
		}

		s, err := mint.Format(id, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(bw, s)
	}
	return bw.Flush()
}
