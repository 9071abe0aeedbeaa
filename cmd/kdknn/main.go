// Command kdknn computes the k nearest neighbors of every point of a random
// 3-D dataset across in-process workers and prints one line per point.
//
//	kdknn [flags] [n]
//
// n is the total number of points (default 1000).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/kdknn"
	"github.com/hupe1980/kdknn/codec"
	"github.com/hupe1980/kdknn/report"
)

const (
	exitOK    = 0
	exitRun   = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	workers     int
	variant     string
	kmin        int
	kmax        int
	kstep       int
	seed        int64
	format      string
	compress    string
	configFile  string
	logLevel    string
	scaling     string
	metricsAddr string
	repeat      int
}

func parseFlags(args []string, stderr io.Writer) (*flags, map[string]bool, []string, error) {
	f := &flags{}

	fs := flag.NewFlagSet("kdknn", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kdknn [flags] [n]\n\n")
		fs.PrintDefaults()
	}

	fs.IntVar(&f.workers, "workers", runtime.GOMAXPROCS(0), "number of workers")
	fs.StringVar(&f.variant, "variant", "replicate", "replicate | partition | sequential")
	fs.IntVar(&f.kmin, "kmin", kdknn.DefaultConfig().KMin, "first k of the sweep")
	fs.IntVar(&f.kmax, "kmax", kdknn.DefaultConfig().KMax, "last k of the sweep (inclusive)")
	fs.IntVar(&f.kstep, "kstep", kdknn.DefaultConfig().KStep, "k increment")
	fs.Int64Var(&f.seed, "seed", 0, "base seed (default: time based)")
	fs.StringVar(&f.format, "format", "text", "text | json | go-json | msgpack")
	fs.StringVar(&f.compress, "compress", "none", "none | lz4 | zstd")
	fs.StringVar(&f.configFile, "config", "", "YAML config file")
	fs.StringVar(&f.logLevel, "log-level", "info", "debug | info | warn | error")
	fs.StringVar(&f.scaling, "scaling", "", "comma separated worker counts; prints a speedup table instead of results")
	fs.IntVar(&f.repeat, "repeat", 1, "timed runs per worker count with -scaling")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	return f, set, fs.Args(), nil
}

// atoi returns the integer prefix of s (optional sign, then digits), or 0
// when s has none. Negative counts are clamped to 0.
func atoi(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseWorkerList(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid worker count %q", field)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.New("empty worker list")
	}
	return out, nil
}

// settings is the merged view of defaults, config file and flags.
type settings struct {
	cfg         kdknn.Config
	opts        []kdknn.Option
	format      string
	level       slog.Level
	metricsAddr string
	scaling     []int
}

func resolve(args []string, stderr io.Writer) (*settings, error) {
	f, set, rest, err := parseFlags(args, stderr)
	if err != nil {
		return nil, err
	}

	s := &settings{
		cfg:         kdknn.DefaultConfig(),
		format:      f.format,
		metricsAddr: f.metricsAddr,
		level:       slog.LevelInfo,
	}
	s.cfg.Seed = time.Now().UnixNano()

	fileWorkers := false

	// Config file first, explicit flags win.
	if f.configFile != "" {
		fc, err := kdknn.ReadConfig(f.configFile)
		if err != nil {
			return nil, err
		}
		s.cfg = fc.Apply(s.cfg)
		fileOpts, err := fc.Options()
		if err != nil {
			return nil, err
		}
		s.opts = append(s.opts, fileOpts...)
		if s.level, err = fc.Level(s.level); err != nil {
			return nil, err
		}
		if fc.Format != "" && !set["format"] {
			s.format = fc.Format
		}
		if fc.MetricsAddr != "" && !set["metrics-addr"] {
			s.metricsAddr = fc.MetricsAddr
		}
		fileWorkers = fc.Workers != nil
	}

	if len(rest) > 0 {
		s.cfg.Points = atoi(rest[0])
	}
	if set["variant"] || f.configFile == "" {
		if s.cfg.Variant, err = kdknn.ParseVariant(f.variant); err != nil {
			return nil, err
		}
	}
	switch {
	case set["workers"]:
		s.opts = append(s.opts, kdknn.WithWorkers(f.workers))
	case fileWorkers:
	case s.cfg.Variant == kdknn.Sequential:
		s.opts = append(s.opts, kdknn.WithWorkers(1))
	default:
		s.opts = append(s.opts, kdknn.WithWorkers(f.workers))
	}
	if set["kmin"] {
		s.cfg.KMin = f.kmin
	}
	if set["kmax"] {
		s.cfg.KMax = f.kmax
	}
	if set["kstep"] {
		s.cfg.KStep = f.kstep
	}
	if set["seed"] {
		s.cfg.Seed = f.seed
	}
	if set["compress"] || f.configFile == "" {
		c, err := kdknn.ParseCompression(f.compress)
		if err != nil {
			return nil, err
		}
		s.opts = append(s.opts, kdknn.WithCompression(c))
	}
	if set["log-level"] {
		if err := s.level.UnmarshalText([]byte(f.logLevel)); err != nil {
			return nil, fmt.Errorf("%w: %w", kdknn.ErrInvalidConfig, err)
		}
	}
	if set["repeat"] {
		if f.repeat < 1 {
			return nil, fmt.Errorf("%w: repeat must be at least 1", kdknn.ErrInvalidConfig)
		}
		s.opts = append(s.opts, kdknn.WithRepeats(f.repeat))
	}
	if f.scaling != "" {
		if s.scaling, err = parseWorkerList(f.scaling); err != nil {
			return nil, fmt.Errorf("%w: %w", kdknn.ErrInvalidConfig, err)
		}
	}

	if s.format != "text" {
		if _, ok := codec.ByName(s.format); !ok {
			return nil, fmt.Errorf("%w: unknown format %q", kdknn.ErrInvalidConfig, s.format)
		}
	}

	return s, nil
}

// newSink picks the result sink for a format already checked by resolve.
// Every format but text names a codec.
func newSink(format string, variant kdknn.Variant, w io.Writer) report.Sink {
	c, ok := codec.ByName(format)
	switch {
	case !ok && variant == kdknn.Sequential:
		return report.NewPreviewSink(w)
	case !ok:
		return report.NewTextSink(w)
	}

	if _, binary := c.(codec.MsgPack); binary {
		return report.NewMsgPackSink(w)
	}
	return report.NewJSONSink(w, c)
}

func serveMetrics(logger *kdknn.Logger, addr string) (*kdknn.PrometheusCollector, func(), error) {
	reg := prometheus.NewRegistry()
	collector, err := kdknn.NewPrometheusCollector(reg)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return collector, shutdown, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	s, err := resolve(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "kdknn: %v\n", err)
		return exitUsage
	}

	logger := kdknn.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: s.level}))
	opts := append(s.opts, kdknn.WithLogger(logger))

	if s.metricsAddr != "" {
		collector, shutdown, err := serveMetrics(logger, s.metricsAddr)
		if err != nil {
			fmt.Fprintf(stderr, "kdknn: %v\n", err)
			return exitRun
		}
		defer shutdown()
		opts = append(opts, kdknn.WithMetricsCollector(collector))
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	if len(s.scaling) > 0 {
		ms, err := kdknn.Scale(ctx, s.cfg, s.scaling, opts...)
		if err != nil {
			fmt.Fprintf(stderr, "kdknn: %v\n", err)
			return exitRun
		}
		if err := report.WriteScaling(out, report.Scaling(ms)); err != nil {
			fmt.Fprintf(stderr, "kdknn: %v\n", err)
			return exitRun
		}
		return exitOK
	}

	opts = append(opts, kdknn.WithSink(newSink(s.format, s.cfg.Variant, out)))
	if _, err := kdknn.Run(ctx, s.cfg, opts...); err != nil {
		fmt.Fprintf(stderr, "kdknn: %v\n", err)
		return exitRun
	}
	return exitOK
}
