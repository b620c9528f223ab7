// wal-bench measures append throughput of the block-framed log writer
// against a real file sink.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/CairnDB/cairn/pkg/common/log"
	"github.com/CairnDB/cairn/pkg/stats"
	"github.com/CairnDB/cairn/pkg/wal"
)

var (
	numRecords = flag.Int("records", 100000, "Number of records to append")
	recordSize = flag.Int("record-size", 1024, "Size of each record in bytes")
	dataDir    = flag.String("data-dir", "./wal-bench-data", "Directory to store the benchmark log file")
	seed       = flag.Int64("seed", 1, "Seed for the payload generator")
	verbose    = flag.Bool("v", false, "Enable debug logging")
	cpuProfile = flag.String("cpu-profile", "", "Write CPU profile to file")
)

func main() {
	flag.Parse()

	level := log.LevelInfo
	if *verbose {
		level = log.LevelDebug
	}
	logger := log.New(log.WithLevel(level)).WithField("component", "wal-bench")

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			logger.Error("could not create CPU profile: %v", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error("could not start CPU profile: %v", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		logger.Error("could not create data directory: %v", err)
		os.Exit(1)
	}
	path := filepath.Join(*dataDir, fmt.Sprintf("%020d.log", time.Now().UnixNano()))

	sink, err := wal.CreateFileSink(path, wal.WithLogger(logger))
	if err != nil {
		logger.Error("could not create log file: %v", err)
		os.Exit(1)
	}
	defer func() {
		sink.Close()
		os.Remove(path)
	}()

	writer := wal.NewWriter(sink)
	collector := stats.NewAtomicCollector()
	rng := rand.New(rand.NewSource(*seed))

	payload := make([]byte, *recordSize)
	rng.Read(payload)

	logger.Info("appending %d records of %d bytes to %s", *numRecords, *recordSize, path)

	start := time.Now()
	for i := 0; i < *numRecords; i++ {
		opStart := time.Now()
		if err := writer.AddRecord(payload); err != nil {
			collector.TrackError("append")
			logger.Error("append %d failed: %v", i, err)
			os.Exit(1)
		}
		collector.TrackOperationWithLatency(stats.OpAppend, uint64(time.Since(opStart).Nanoseconds()))
		collector.TrackBytes(uint64(*recordSize))
	}
	elapsed := time.Since(start)

	printReport(collector, sink, elapsed)
}

func printReport(collector *stats.AtomicCollector, sink *wal.FileSink, elapsed time.Duration) {
	logical := float64(*numRecords) * float64(*recordSize)
	physical := float64(sink.Size())

	fmt.Printf("\nResults\n")
	fmt.Printf("  records:          %d\n", *numRecords)
	fmt.Printf("  elapsed:          %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  records/sec:      %.0f\n", float64(*numRecords)/elapsed.Seconds())
	fmt.Printf("  logical MB/sec:   %.2f\n", logical/elapsed.Seconds()/(1<<20))
	fmt.Printf("  framing overhead: %.2f%%\n", (physical-logical)/logical*100)
	fmt.Printf("  stream digest:    %016x\n", sink.Digest())

	fmt.Printf("\nCollector stats\n")
	st := collector.GetStatsFiltered("latency_")
	keys := make([]string, 0, len(st))
	for k := range st {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %v\n", k, st[k])
	}
}
