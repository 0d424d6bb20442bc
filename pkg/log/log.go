/*
MIT License

Copyright (c) 2017 Kolide

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Based on https://github.com/kolide/kit/tree/8cde91971ef08747188adf1f0673c2565598aa73/logutil

package log

import (
	"io"
	"os"
	"os/signal"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Option sets configuration for the logger.
type Option func(*config)

// SwapSignal sets the signal which toggles between debug and info levels while
// the process runs. The default is SIGUSR2. A nil signal disables swapping.
func SwapSignal(sig os.Signal) Option {
	return func(c *config) {
		c.sig = sig
	}
}

// JSON writes JSON entries instead of logfmt.
func JSON() Option {
	return func(c *config) {
		c.format = log.NewJSONLogger
	}
}

// StartDebug allows debug entries from the start.
func StartDebug() Option {
	return func(c *config) {
		c.debug = true
	}
}

// Output sets where entries are written. The default is os.Stderr.
func Output(w io.Writer) Option {
	return func(c *config) {
		c.w = w
	}
}

type config struct {
	w      io.Writer
	format func(io.Writer) log.Logger
	sig    os.Signal
	debug  bool
}

// New creates a leveled Logger. Entries carry a UTC timestamp and default
// to the info level when logged without one.
func New(opts ...Option) *log.SwapLogger {
	c := config{
		w:      os.Stderr,
		format: log.NewLogfmtLogger,
		sig:    defaultSwapSignal,
	}
	for _, optFn := range opts {
		optFn(&c)
	}

	base := c.format(log.NewSyncWriter(c.w))
	base = log.With(base, "ts", log.DefaultTimestampUTC)
	base = level.NewInjector(base, level.InfoValue())

	var swap log.SwapLogger
	swap.Swap(filter(base, c.debug))

	if c.sig != nil {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, c.sig)
		go swapLevels(sigc, base, &swap, c.debug)
	}
	return &swap
}

func filter(base log.Logger, debug bool) log.Logger {
	if debug {
		return level.NewFilter(base, level.AllowDebug())
	}
	return level.NewFilter(base, level.AllowInfo())
}

func swapLevels(sigc <-chan os.Signal, base log.Logger, swap *log.SwapLogger, debug bool) {
	for range sigc {
		debug = !debug
		swap.Swap(filter(base, debug))
		Info(swap).Log("msg", "swapping level", "debug", debug)
	}
}
