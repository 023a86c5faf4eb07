package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/message"

	"CollatzScan/batch"
	"CollatzScan/common"
)

/*
Brute-force verification of the Collatz conjecture over a range of starting
values.

Every value in the range is iterated under n -> n/2 (even) / 3n+1 (odd)
until it reaches 1, revisits one of its own values, or exhausts the step
budget. Resolved trajectories are memoized so that a trajectory landing on
an already-resolved value stops immediately, and every value on its prefix
is recorded in the same pass. Starting values are also classified against
the efficient families a*4^j + 1 +- z.

No counterexample is expected in any range this program can reach (the
conjecture has been checked far past 2^68); the point is step statistics
and family coverage over fresh ranges, and catching regressions in the
engine itself. Any cycled or unresolved value is written to the records
file for a second look.
*/

func main() {
	verbose := flag.Bool("verbose", false, "verbose output")
	start := flag.Uint64("start", 1, "First value to test")
	limitString := flag.String("limit", "10M", "Count of values to test. Can use K, M, G, T, P and E as powers of ten")
	threads := flag.Int("threads", runtime.NumCPU()/2, "Number of worker goroutines")
	steps := flag.Int("steps", 0, "Step budget per trajectory (0 takes the config value)")
	chunk := flag.Uint64("chunk", 0, "Chunk size (0 takes the config value)")
	odd := flag.Bool("odd", true, "Test odd values only")
	configPath := flag.String("config", "", "YAML run configuration")
	records := flag.String("records", "records.json", "Where to write cycled/unresolved candidates")
	cpuProfile := flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile to file")
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		err = pprof.StartCPUProfile(f)
		if err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}
	defer func() {
		if *memProfile != "" {
			f, err := os.Create(*memProfile)
			if err != nil {
				log.Fatal(err)
			}
			runtime.GC()
			err = pprof.WriteHeapProfile(f)
			if err != nil {
				log.Fatal(err)
			}
			_ = f.Close()
		}
	}()

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *steps > 0 {
		cfg.MaxSteps = *steps
	}
	if *chunk > 0 {
		cfg.ChunkSize = *chunk
	}
	cfg.OddOnly = *odd
	cfg.Workers = *threads
	cfg.Verbose = *verbose

	limit, err := common.DecodeLimit(*limitString)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := message.NewPrinter(message.MatchLanguage("en"))
	_, _ = p.Printf("%d workers, %d values from %d, budget %d steps\n",
		cfg.Workers, limit, *start, cfg.MaxSteps)

	t0 := time.Now()
	res, err := batch.VerifyRange(ctx, *start, *start+limit, cfg)
	if err != nil {
		log.Printf("run ended early: %v", err)
	}
	dt := time.Since(t0).Seconds()

	writeRecords(*records, res)

	_, _ = p.Printf("%d tested in %.1f s (%.0f values/s)\n", res.Tested, dt, float64(res.Tested)/dt)
	_, _ = p.Printf("converged %d, cycled %d, unresolved %d\n", res.Converged, res.Cycled, res.Unresolved)
	fmt.Printf("convergence rate: %s%%\n", res.ConvergenceRate().Mul(decimal.NewFromInt(100)).StringFixed(2))
	_, _ = p.Printf("mean steps %s, max steps %d\n", res.MeanSteps().StringFixed(2), res.MaxSteps)
	if res.MaxValue != nil {
		_, _ = p.Printf("largest trajectory value: %v\n", res.MaxValue)
	}
	_, _ = p.Printf("cache: %d hits, %d misses\n", res.CacheHits, res.CacheMisses)

	generators := make([]int64, 0, len(res.Families))
	for a := range res.Families {
		generators = append(generators, a)
	}
	slices.Sort(generators)
	for _, a := range generators {
		_, _ = p.Printf(
			"  a=%3d: %8d values (%s%%)\n",
			a, res.Families[a],
			res.FamilyRate(a).Mul(decimal.NewFromInt(100)).StringFixed(2),
		)
	}

	if res.Cycled > 0 || res.Unresolved > 0 {
		log.Printf("ATTENTION: %d cycled and %d unresolved values, see %s",
			res.Cycled, res.Unresolved, *records)
	}
}

// writeRecords saves the anomalous starting values for later inspection.
func writeRecords(name string, res batch.Result) {
	cycled := slices.Clone(res.CycledSamples)
	unresolved := slices.Clone(res.UnresolvedSamples)
	slices.Sort(cycled)
	slices.Sort(unresolved)

	output := struct {
		Cycled     []uint64
		Unresolved []uint64
	}{
		Cycled:     cycled,
		Unresolved: unresolved,
	}

	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		log.Fatal(err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	txt, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	_, err = f.Write(txt)
	if err != nil {
		log.Fatal(err)
	}
	_ = f.Close()
}
