package benchmark

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nathantp/gpu-rank-sort/pkg/device"
	"github.com/nathantp/gpu-rank-sort/pkg/ranksort"
)

// Config controls a benchmark sweep.
type Config struct {
	// Sizes are the array lengths to sweep over.
	Sizes []int

	// Max is the exclusive upper bound for generated values.
	Max int32

	// Seed for input generation. Each repetition perturbs it so repeated
	// runs do not sort identical data.
	Seed int64

	// Repeat is the number of timed runs per size.
	Repeat int

	Log *logrus.Logger
}

// BenchParallelOne runs the device sorter once over vals, recording host
// wall time under TTotal and device kernel time under TDevice. The output
// is verified before timings count as valid.
func BenchParallelOne(sorter *ranksort.Sorter, vals []int32, stats SortStats) error {
	tTotal := stats.getTimer("TTotal")

	tTotal.Start()
	out, err := sorter.Sort(vals)
	tTotal.Record()

	if err != nil {
		return err
	}
	if err := ranksort.CheckSort(vals, out); err != nil {
		return errors.Wrap(err, "Parallel sort returned wrong answer")
	}

	stats.getTimer("TDevice").Observe(sorter.DeviceTime())
	stats.getTimer("TCompare").Observe(sorter.CompareTime())
	stats.getTimer("TAssign").Observe(sorter.AssignTime())
	return nil
}

// BenchMergeOne runs the reference merge sort once over vals, recording
// host wall time under TTotal.
func BenchMergeOne(vals []int32, stats SortStats) error {
	tTotal := stats.getTimer("TTotal")

	tTotal.Start()
	out := ranksort.MergeSort(vals)
	tTotal.Record()

	if err := ranksort.CheckSort(vals, out); err != nil {
		return errors.Wrap(err, "Merge sort returned wrong answer")
	}
	return nil
}

// RunBenchmarks sweeps cfg.Sizes, timing the parallel sorter against the
// merge-sort baseline cfg.Repeat times each. Even if an error is returned,
// the returned stats may be non-nil and contain valid results up until the
// error.
func RunBenchmarks(ctx *device.Context, cfg Config) (map[string]SortStats, error) {
	log := cfg.Log
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}

	repeat := cfg.Repeat
	if repeat < 1 {
		repeat = 1
	}

	stats := make(map[string]SortStats)

	sorter, err := ranksort.NewSorter(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "Failed to create sorter")
	}

	for _, size := range cfg.Sizes {
		parKey := fmt.Sprintf("Parallel%v", size)
		mergeKey := fmt.Sprintf("Merge%v", size)
		stats[parKey] = make(SortStats)
		stats[mergeKey] = make(SortStats)

		for rep := 0; rep < repeat; rep++ {
			vals := ranksort.RandomInputs(size, cfg.Max, cfg.Seed+(int64)(rep))

			log.WithFields(logrus.Fields{
				"size": size,
				"rep":  rep,
			}).Debug("Benchmark iteration")

			if err := BenchParallelOne(sorter, vals, stats[parKey]); err != nil {
				return stats, errors.Wrapf(err, "Failed to benchmark parallel sort at size %v", size)
			}
			if err := BenchMergeOne(vals, stats[mergeKey]); err != nil {
				return stats, errors.Wrapf(err, "Failed to benchmark merge sort at size %v", size)
			}
		}
	}

	return stats, nil
}
