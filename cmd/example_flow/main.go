package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"iter"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/birdayz/kflow"
	"github.com/birdayz/kflow/kblock"
	"github.com/birdayz/kflow/kmetrics"
	"github.com/birdayz/kflow/pkg/log"
)

type pageView struct {
	User string
	Path string
}

type purchase struct {
	User  string
	Cents int
}

const sample = `view alice /home
buy alice 1299
view bob /cart
garbage line
buy bob 250
view carol /checkout`

func main() {
	var (
		input     = flag.String("input", "", "file with one event per line, reads a built-in sample if empty")
		addr      = flag.String("metrics-addr", "localhost:9464", "address of the /metrics endpoint")
		verbosity = flag.Int("v", 0, "log verbosity")
		linger    = flag.Duration("linger", 0, "keep serving metrics this long after the flow finished")
	)
	flag.Parse()

	logger := log.NewLogr(*verbosity)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var r io.Reader = strings.NewReader(sample)
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			logger.Error(err, "failed to open input")
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	gauges := kmetrics.NewBufferGaugeVec("kflow")
	collector := kmetrics.NewCollector("kflow")
	prometheus.MustRegister(gauges, collector)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(*addr, nil); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "metrics endpoint stopped")
		}
	}()

	p, err := build(ctx, logger, gauges)
	if err != nil {
		logger.Error(err, "failed to build pipeline")
		os.Exit(1)
	}
	collector.Watch(p.root, p.parser)

	p.parser.DrainAndComplete(ctx, lines(r))
	<-p.root.Completion().Done()
	o := p.root.Completion().Outcome()

	logger.Info("pipeline finished",
		"status", o.Status.String(),
		"views", p.views.Load(),
		"revenueCents", p.revenue.Load(),
		"unmatched", p.parser.UnmatchedStats().String(),
	)
	if *linger > 0 {
		time.Sleep(*linger)
	}
	if o.Failed() {
		os.Exit(1)
	}
}

type pipeline struct {
	root    *kflow.Flow
	parser  *kflow.IOFlow[string, any]
	views   atomic.Int64
	revenue atomic.Int64
}

// build wires parser -> {views, revenue}. Lines no route matches end up in
// the unmatched sink of the parser.
func build(ctx context.Context, logger logr.Logger, gauges *prometheus.GaugeVec) (*pipeline, error) {
	p := &pipeline{
		root: kflow.NewFlow(kflow.WithName("pipeline"), kflow.WithLogr(logger), kflow.WithBlockMonitor()),
	}

	parser, err := kflow.FromPropagator[string, any](
		kblock.NewTransformBlock(parse, kblock.WithContext(ctx), kblock.WithCapacity(64), kblock.WithLogr(logger)),
		kflow.WithName("parser"),
		kflow.WithLogr(logger),
		kflow.WithFlowMonitor(),
		kflow.WithMonitorHook(kmetrics.GaugeHook(gauges)),
	)
	if err != nil {
		return nil, err
	}
	p.parser = parser

	views, err := kflow.FromTarget[pageView](kblock.NewActionBlock(func(_ context.Context, v pageView) error {
		p.views.Add(1)
		logger.V(1).Info("page view", "user", v.User, "path", v.Path)
		return nil
	}), kflow.WithName("views"), kflow.WithLogr(logger))
	if err != nil {
		return nil, err
	}

	revenue, err := kflow.FromTarget[int](kblock.NewActionBlock(func(_ context.Context, cents int) error {
		p.revenue.Add(int64(cents))
		return nil
	}), kflow.WithName("revenue"), kflow.WithLogr(logger))
	if err != nil {
		return nil, err
	}

	for _, u := range []kflow.Unit{parser, views, revenue} {
		if err := p.root.RegisterChild(u); err != nil {
			return nil, err
		}
	}

	if err := kflow.LinkSubTypeTo[string, any, pageView](parser, views); err != nil {
		return nil, err
	}
	if err := kflow.TransformSubTypeAndLink[string, any, purchase, int](parser, revenue, func(b purchase) int { return b.Cents }); err != nil {
		return nil, err
	}
	if err := parser.LinkUnmatchedToSink(); err != nil {
		return nil, err
	}
	return p, nil
}

func parse(_ context.Context, line string) (any, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return line, nil
	}
	switch fields[0] {
	case "view":
		return pageView{User: fields[1], Path: fields[2]}, nil
	case "buy":
		cents, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("invalid purchase amount %q: %w", fields[2], err)
		}
		return purchase{User: fields[1], Cents: cents}, nil
	default:
		return line, nil
	}
}

func lines(r io.Reader) iter.Seq[string] {
	return func(yield func(string) bool) {
		s := bufio.NewScanner(r)
		for s.Scan() {
			if !yield(s.Text()) {
				return
			}
		}
	}
}
