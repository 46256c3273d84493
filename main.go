package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"github.com/nathantp/gpu-rank-sort/pkg/benchmark"
	"github.com/nathantp/gpu-rank-sort/pkg/device"
	"github.com/nathantp/gpu-rank-sort/pkg/ranksort"
)

// Above this many elements we stop printing whole arrays.
const printLimit = 256

var (
	sizeFlag = &cli.IntFlag{
		Name:  "size",
		Usage: "Number of elements to sort",
		Value: 64,
	}
	maxFlag = &cli.IntFlag{
		Name:  "max",
		Usage: "Exclusive upper bound for generated values (must be positive)",
		Value: 1024,
	}
	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Seed for input generation",
		Value: 0,
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Enable debug logging",
	}
	sizesFlag = &cli.IntSliceFlag{
		Name:  "sizes",
		Usage: "Array lengths to sweep in the benchmark",
		Value: cli.NewIntSlice(256, 1024, 4096),
	}
	repeatFlag = &cli.IntFlag{
		Name:  "repeat",
		Usage: "Timed runs per size",
		Value: 5,
	}
)

func main() {
	app := &cli.App{
		Name:           "gpu-rank-sort",
		Usage:          "Rank sort on a simulated accelerator, benchmarked against merge sort",
		DefaultCommand: "run",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Sort one random array and report device vs host timing",
				Flags:  []cli.Flag{sizeFlag, maxFlag, seedFlag, verboseFlag},
				Action: runAction,
			},
			{
				Name:   "bench",
				Usage:  "Sweep array sizes and report timing statistics",
				Flags:  []cli.Flag{sizesFlag, maxFlag, seedFlag, repeatFlag, verboseFlag},
				Action: benchAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

func openContext(log *logrus.Logger) (*device.Context, error) {
	platform := device.Discover()
	for _, dev := range platform.Devices() {
		fmt.Println(dev)
	}
	fmt.Println()

	return platform.Open(device.WithLogger(log))
}

func printVals(vals []int32) {
	if len(vals) > printLimit {
		fmt.Printf("(%v elements, not printing)\n", len(vals))
		return
	}
	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = fmt.Sprint(v)
	}
	fmt.Println(strings.Join(strs, " "))
}

func runAction(c *cli.Context) error {
	size := c.Int("size")
	max := c.Int("max")
	if size < 0 {
		return fmt.Errorf("Invalid size %v", size)
	}
	if max < 1 {
		return fmt.Errorf("Invalid max %v (must be positive)", max)
	}

	log := newLogger(c.Bool("verbose"))

	ctx, err := openContext(log)
	if err != nil {
		return err
	}
	defer ctx.Close()

	input := ranksort.RandomInputs(size, (int32)(max), c.Int64("seed"))

	sorter, err := ranksort.NewSorter(ctx)
	if err != nil {
		return err
	}

	result, err := sorter.Sort(input)
	if err != nil {
		return err
	}

	fmt.Println("Array to Sort")
	printVals(input)
	fmt.Println()
	fmt.Println("Parallel Sorted Array")
	printVals(result)
	fmt.Printf("Parallel execution duration (ns): %v\n\n", sorter.DeviceTime().Nanoseconds())

	start := time.Now()
	mergeResult := ranksort.MergeSort(input)
	elapsed := time.Since(start)

	fmt.Println("MergeSort Sorted Array")
	printVals(mergeResult)
	fmt.Printf("MergeSort execution duration (ns): %v\n", elapsed.Nanoseconds())

	if err := ranksort.CheckSort(input, result); err != nil {
		return fmt.Errorf("Sorted Wrong: %v", err)
	}

	return nil
}

func benchAction(c *cli.Context) error {
	max := c.Int("max")
	if max < 1 {
		return fmt.Errorf("Invalid max %v (must be positive)", max)
	}

	log := newLogger(c.Bool("verbose"))

	ctx, err := openContext(log)
	if err != nil {
		return err
	}
	defer ctx.Close()

	cfg := benchmark.Config{
		Sizes:  c.IntSlice("sizes"),
		Max:    (int32)(max),
		Seed:   c.Int64("seed"),
		Repeat: c.Int("repeat"),
		Log:    log,
	}

	stats, err := benchmark.RunBenchmarks(ctx, cfg)
	if err != nil {
		return err
	}

	for name, runStats := range stats {
		fmt.Printf("%v:\n", name)
		benchmark.ReportStats(runStats, os.Stdout)
		fmt.Println()
	}
	return nil
}
