package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/avi3tal/functionsagent/internal/config"
	"github.com/avi3tal/functionsagent/pkg/node"
	"github.com/avi3tal/functionsagent/pkg/runner"
	"github.com/avi3tal/functionsagent/pkg/sessions"
)

type RunCmd struct {
	Input string `short:"i" help:"Items file (JSON array or JSON Lines); '-' reads stdin." default:"-"`
}

func (c *RunCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	app, err := newApp(cli, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	items, err := readItems(c.Input)
	if err != nil {
		return err
	}
	res, err := app.Invoke(ctx, items)
	if err != nil {
		return err
	}
	return node.WriteOutput(os.Stdout, res.Output)
}

type WatchCmd struct {
	Rate        float64 `help:"Maximum invocations per second (0 = unlimited)." default:"0"`
	Burst       int     `help:"Rate limiter burst size." default:"1"`
	MetricsAddr string  `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)."`
}

func (c *WatchCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	stdin := runner.NewStreamListener(os.Stdin)
	defer stdin.Close()

	reg := prometheus.NewRegistry()
	var opts []runner.AppOption
	opts = append(opts,
		runner.WithListener(stdin),
		runner.WithCallback(&outputCallback{w: os.Stdout}),
	)
	if c.Rate > 0 {
		opts = append(opts, runner.WithRateLimit(rate.Limit(c.Rate), c.Burst))
	}
	app, err := newApp(cli, reg, opts...)
	if err != nil {
		return err
	}
	if c.MetricsAddr != "" {
		stop := serveMetrics(ctx, c.MetricsAddr, reg)
		defer stop()
	}
	return ignoreCanceled(app.Start(ctx))
}

type ScheduleCmd struct {
	Cron        string `help:"Cron expression or descriptor (e.g. '@every 1m')." required:""`
	Input       string `short:"i" help:"Items file (JSON array or JSON Lines)." required:"" type:"path"`
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)."`
}

func (c *ScheduleCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	items, err := readItems(c.Input)
	if err != nil {
		return err
	}
	listener, err := runner.NewCronListener(c.Cron, items)
	if err != nil {
		return err
	}
	defer listener.Stop()

	reg := prometheus.NewRegistry()
	app, err := newApp(cli, reg,
		runner.WithListener(listener),
		runner.WithCallback(&outputCallback{w: os.Stdout}),
	)
	if err != nil {
		return err
	}
	if c.MetricsAddr != "" {
		stop := serveMetrics(ctx, c.MetricsAddr, reg)
		defer stop()
	}
	return ignoreCanceled(app.Start(ctx))
}

func newApp(cli *CLI, reg *prometheus.Registry, opts ...runner.AppOption) (*runner.App, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	logger := slog.Default()
	asm, err := assemble(cfg, logger, reg, sessions.NewMemoryStore())
	if err != nil {
		return nil, err
	}
	opts = append([]runner.AppOption{
		runner.WithLogger(logger),
		runner.WithRecorder(asm.metrics),
	}, opts...)
	return runner.NewApp(asm.adapter, cfg.Parameters(), opts...)
}

// outputCallback writes every completed invocation as one JSON line.
type outputCallback struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *outputCallback) OnComplete(_ context.Context, res runner.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	line := struct {
		Execution string        `json:"execution"`
		Output    [][]node.Item `json:"output"`
	}{res.ExecutionID, res.Output}
	return json.NewEncoder(c.w).Encode(line)
}

func (c *outputCallback) OnError(_ context.Context, err error) error {
	slog.Error("invocation error", "error", err)
	return nil
}

func readItems(path string) ([]node.Item, error) {
	if path == "" || path == "-" {
		return node.ReadItems(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open items")
	}
	defer f.Close()
	return node.ReadItems(f)
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
