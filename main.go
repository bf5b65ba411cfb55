package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"time"

	"stationstats/internal/parallel"
	"stationstats/internal/source"
	"stationstats/internal/stats"

	"github.com/schollz/progressbar/v3"
)

const progressEveryRows = 1 << 20

type config struct {
	inputFile  string
	engine     string
	workers    int
	chunkSize  int
	channelCap int
	progress   bool
}

func main() {
	cfg := config{}
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	flag.StringVar(&cfg.inputFile, "f", "data/measurements.txt", "input file (.gz/.zst/.lz4/.s2 decompressed transparently)")
	flag.StringVar(&cfg.engine, "engine", "scan", "aggregation engine: scan, chunks or mmap")
	flag.IntVar(&cfg.workers, "n", runtime.GOMAXPROCS(0), "number of workers for parallel engines")
	flag.IntVar(&cfg.chunkSize, "chunksize", 256*1024, "size of the chunks to be processed by workers")
	flag.IntVar(&cfg.channelCap, "channel-cap", 256, "capacity of the chunk channel")
	flag.BoolVar(&cfg.progress, "progress", true, "show a progress spinner on stderr (scan engine)")
	var loglevel slog.Level
	flag.TextVar(&loglevel, "loglevel", slog.LevelInfo, "loglevel")

	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: loglevel,
	})))

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run aggregates the configured input and writes the sorted report to
// out. Nothing is written on failure.
func run(ctx context.Context, cfg config, out io.Writer) error {
	start := time.Now()
	slog.Debug("starting", "engine", cfg.engine, "file", cfg.inputFile)

	var (
		report stats.Report
		err    error
	)
	switch cfg.engine {
	case "scan":
		report, err = runScan(ctx, cfg)
	case "chunks":
		var rc io.ReadCloser
		rc, err = source.Open(cfg.inputFile)
		if err != nil {
			return err
		}
		defer rc.Close()
		report, err = parallel.Run(ctx, rc, parallel.Options{
			Workers:    cfg.workers,
			ChunkSize:  cfg.chunkSize,
			ChannelCap: cfg.channelCap,
		})
	case "mmap":
		report, err = parallel.RunFile(ctx, cfg.inputFile, parallel.Options{
			Workers: cfg.workers,
		})
	default:
		return fmt.Errorf("unknown engine %q", cfg.engine)
	}
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(out)
	if _, err := report.WriteTo(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	slog.Info("done", "stations", len(report), "elapsed", time.Since(start))
	return nil
}

// runScan is the reference sequential behavior: one line parsed and
// aggregated at a time, with the per-N-rows progress spinner the original
// tool showed.
func runScan(ctx context.Context, cfg config) (stats.Report, error) {
	rc, err := source.Open(cfg.inputFile)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var opts []stats.Option
	if cfg.progress {
		bar := progressbar.NewOptions64(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("aggregating"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSpinnerType(14),
		)
		defer func() { _ = bar.Finish() }()
		opts = append(opts, stats.WithProgress(progressEveryRows, func(rows int64) {
			_ = bar.Set64(rows)
		}))
	}

	return stats.NewEngine(opts...).Run(ctx, rc)
}
