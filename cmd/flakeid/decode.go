package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/mantono/flakeid/internal/mint"
	"github.com/mantono/flakeid/pkg/log"
)

func decodeCmd(stdin io.Reader, stdout, stderr io.Writer, setLogger func(bool) log.Logger) *ffcli.Command {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)

	return &ffcli.Command{
		Name:       "decode",
		ShortUsage: "flakeid decode [<id> ...]",
		ShortHelp:  "Print the fields of identifiers as JSON. Reads stdin when no id is given.",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			logger := setLogger(false)

			ids := args
			if len(ids) == 0 {
				sc := bufio.NewScanner(stdin)
				for sc.Scan() {
					if line := strings.TrimSpace(sc.Text()); line != "" {
						ids = append(ids, line)
					}
				}
				if err := sc.Err(); err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}

			enc := json.NewEncoder(stdout)
			var failed int
			for _, s := range ids {
				fields, err := mint.Decode(s)
				if err != nil {
					log.Info(logger).Log("msg", "decode id", "err", err)
					failed++
					continue
				}
				if err := enc.Encode(fields); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d ids could not be decoded", failed, len(ids))
			}
			return nil
		},
	}
}
