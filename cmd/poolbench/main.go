// File: cmd/poolbench/main.go
// Author: momentics <momentics@gmail.com>
//
// poolbench measures pool-backed buffers against plain heap allocation and
// stores the raw timings, one row per measurement.

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/momentics/hioload-pool/internal/bench"
	"github.com/momentics/hioload-pool/internal/logging"
	"github.com/pkg/errors"
	ucli "gopkg.in/urfave/cli.v2"
)

const (
	argIterations = "iterations"
	argBatch      = "batch"
	argInnerLoop  = "inner"
	argSizes      = "sizes"
	argPatterns   = "patterns"
	argKinds      = "kinds"
	argOutDir     = "out"
	argSeed       = "seed"
	argLogLevel   = "log-level"
	argLogFormat  = "log-format"
)

func main() {
	def := bench.DefaultConfig()

	logFlags := []ucli.Flag{
		&ucli.StringFlag{
			Name:  argLogLevel,
			Value: "info",
			Usage: "log level: debug, info, warn or error",
		},
		&ucli.StringFlag{
			Name:  argLogFormat,
			Value: "text",
			Usage: "log format: text or json",
		},
	}

	runFlags := []ucli.Flag{
		&ucli.IntFlag{
			Name:  argIterations,
			Value: def.Iterations,
			Usage: "measurements per case",
		},
		&ucli.IntFlag{
			Name:  argBatch,
			Value: def.Batch,
			Usage: "operations per batch",
		},
		&ucli.IntFlag{
			Name:  argInnerLoop,
			Value: def.InnerLoop,
			Usage: "batches per measurement; the first one is the latency sample",
		},
		&ucli.StringFlag{
			Name:  argSizes,
			Value: joinInts(def.Sizes),
			Usage: "comma separated buffer sizes, units allowed (e.g. \"8,64,1KiB\")",
		},
		&ucli.StringFlag{
			Name:  argPatterns,
			Value: joinStringers(def.Patterns),
			Usage: "comma separated access patterns: immediate, lifo, fifo, random",
		},
		&ucli.StringFlag{
			Name:  argKinds,
			Value: joinStringers(def.Kinds),
			Usage: "comma separated allocator kinds: box (heap), slab_cold, slab_warm, shared",
		},
		&ucli.StringFlag{
			Name:  argOutDir,
			Value: def.OutDir,
			Usage: "directory for the results file",
		},
		&ucli.IntFlag{
			Name:  argSeed,
			Value: int(def.Seed),
			Usage: "seed of the random pattern",
		},
	}
	runFlags = append(runFlags, logFlags...)

	app := &ucli.App{
		Name:    "poolbench",
		Version: "0.1.0",
		Usage:   "Buffer pool allocation benchmark",
		Commands: []*ucli.Command{
			{
				Name:      "run",
				Usage:     "Run all measurements and write the results file",
				UsageText: "poolbench run [command options] <platform>",
				Action:    runBench,
				Flags:     runFlags,
			},
			{
				Name:      "summary",
				Usage:     "Print median timings per case from a results file",
				UsageText: "poolbench summary [command options] <results file>",
				Action:    runSummary,
				Flags:     logFlags,
			},
		},
	}

	for _, c := range app.Commands {
		sort.Sort(ucli.FlagsByName(c.Flags))
	}

	if err := app.Run(os.Args); err != nil {
		logging.Error(err, "poolbench failed")
		os.Exit(1)
	}
}

func setupLogging(c *ucli.Context) *logging.Logger {
	return logging.Setup(&logging.LogOptions{
		Level:  c.String(argLogLevel),
		Format: c.String(argLogFormat),
	})
}

func runBench(c *ucli.Context) error {
	log := setupLogging(c)
	cfg, err := configFromArgs(c)
	if err != nil {
		return err
	}

	r, err := bench.NewRunner(cfg, log)
	if err != nil {
		return err
	}
	log.LogInfo("starting", sortedFields(r.Probes().DumpState())...)

	w, path, err := bench.Create(cfg.OutDir, cfg.Platform)
	if err != nil {
		return err
	}

	log.LogInfo("warming up")
	r.Warmup()

	start := time.Now()
	runErr := r.Run(w.Write)
	if err := w.Close(); runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}

	for _, key := range r.Metrics().Keys() {
		v, _ := r.Metrics().Get(key)
		log.LogDebug("pool stat", "key", key, "value", v)
	}
	log.LogInfo("done",
		"path", path,
		"records", humanize.Comma(int64(w.Rows())),
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	return nil
}

func runSummary(c *ucli.Context) error {
	setupLogging(c)
	if c.Args().Len() != 1 {
		return errors.New("summary expects exactly one results file")
	}
	results, err := bench.ReadFile(c.Args().First())
	if err != nil {
		return err
	}

	fmt.Printf("%-12s %-10s %-10s %8s %8s %14s %14s\n",
		"platform", "allocator", "pattern", "size", "samples", "total(med)", "latency(med)")
	for _, s := range bench.Summarize(results) {
		fmt.Printf("%-12s %-10s %-10s %8s %8d %14s %14s\n",
			s.Platform, s.Allocator, s.Pattern,
			humanize.IBytes(uint64(s.SizeBytes)), s.Samples,
			s.TotalMedian, s.LatencyMedian)
	}
	return nil
}

// configFromArgs overlays the command line on the default config.
func configFromArgs(c *ucli.Context) (bench.Config, error) {
	cfg := bench.DefaultConfig()
	if c.Args().Len() != 1 {
		return cfg, errors.New("expected exactly one argument: the platform label (e.g. local, hpc-xeon-8280)")
	}
	cfg.Platform = c.Args().First()
	cfg.Iterations = c.Int(argIterations)
	cfg.Batch = c.Int(argBatch)
	cfg.InnerLoop = c.Int(argInnerLoop)
	cfg.OutDir = c.String(argOutDir)
	cfg.Seed = uint64(c.Int(argSeed))

	var err error
	if cfg.Sizes, err = bench.ParseSizes(c.String(argSizes)); err != nil {
		return cfg, err
	}
	if cfg.Patterns, err = parseList(c.String(argPatterns), bench.ParsePattern); err != nil {
		return cfg, err
	}
	if cfg.Kinds, err = parseList(c.String(argKinds), bench.ParseKind); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func parseList[T any](s string, parse func(string) (T, error)) ([]T, error) {
	var out []T
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f == "" {
			continue
		}
		v, err := parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}

func joinStringers[T fmt.Stringer](v []T) string {
	parts := make([]string, len(v))
	for i, s := range v {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// sortedFields flattens m into key/value pairs ordered by key.
func sortedFields(m map[string]any) []interface{} {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]interface{}, 0, 2*len(m))
	for _, k := range keys {
		out = append(out, k, m[k])
	}
	return out
}
