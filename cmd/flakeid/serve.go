package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mantono/flakeid/internal/api"
	"github.com/mantono/flakeid/internal/mint"
	"github.com/mantono/flakeid/pkg/log"
)

// write a pid so that the server can be restarted with SIGHUP
func writePID(path string) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		return fmt.Errorf("writing pidfile: %w", err)
	}
	return nil
}

func serveCmd(cli *cliFlags, args []string, stderr io.Writer, setLogger func(bool) log.Logger) *ffcli.Command {
	var (
		fs      = flag.NewFlagSet("serve", flag.ContinueOnError)
		addr    = fs.String("http", "localhost:8080", "HTTP service address")
		pidfile = fs.String("pidfile", "/tmp/flakeid.pid", "Path to server pidfile")
	)
	fs.SetOutput(stderr)

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "flakeid [flags] serve [-http addr] [-pidfile path]",
		ShortHelp:  "Serve identifiers over HTTP.",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(ctx context.Context, _ []string) error {
			logger := setLogger(true)

			if err := writePID(*pidfile); err != nil {
				return err
			}

			gen, closeDB, err := newGenerator(ctx, cli, logger)
			if err != nil {
				os.Remove(*pidfile)
				return err
			}
			defer closeDB()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			svc := mint.New(mint.Config{
				Generator: gen,
				Logger:    log.Component(logger, "mint"),
				Metrics:   mint.NewMetrics(reg),
			})
			srv := api.New(api.Config{
				Logger:   logger,
				Mint:     svc,
				Gatherer: reg,
			})

			// run.Group manages lifecycles of various long running goroutines:
			// - signal handlers for SIGTERM/SIGHUP etc.
			// - http.Server listeners.
			var g run.Group
			{
				server := &http.Server{
					Handler:           srv.Handler(),
					Addr:              *addr,
					ReadHeaderTimeout: 10 * time.Second,
				}

				g.Add(func() error {
					log.Info(logger).Log("component", "api", "msg", "started", "addr", *addr, "node", gen.Node())
					return server.ListenAndServe()
				}, func(error) {
					ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
					defer cancel()
					server.Shutdown(ctx)
				})
			}
			{
				// when the binary receives SIGINT or SIGTERM, execution is cancelled
				ctx, cancel := context.WithCancel(ctx)
				g.Add(func() error {
					c := make(chan os.Signal, 1)
					signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(c)
					select {
					case <-ctx.Done():
						return ctx.Err()
					case sig := <-c:
						return fmt.Errorf("received signal %s", sig)
					}
				}, func(error) {
					os.Remove(*pidfile)
					cancel()
				})
			}
			{
				// restart the process after SIGHUP to pick up config file changes.
				ctx, cancel := context.WithCancel(ctx)
				g.Add(func() error {
					c := make(chan os.Signal, 1)
					signal.Notify(c, syscall.SIGHUP)
					defer signal.Stop(c)
					for {
						select {
						case <-ctx.Done():
							return ctx.Err()
						case sig := <-c:
							log.Info(logger).Log("msg", "restarting process", "signal", sig.String())
							if err := syscall.Exec(args[0], args, os.Environ()); err != nil {
								log.Info(logger).Log("msg", "restart failed", "err", err)
							}
						}
					}
				}, func(error) {
					cancel()
				})
			}

			return g.Run()
		},
	}
}
