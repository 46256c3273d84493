package benchmark

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// A helper object for timing events, the timer can be reused multiple
// times in order to derive averages or other statistics (Record() saves
// the current measurement and begins a new measurement).
type PerfTimer struct {
	Vals  []float64 // nanoseconds, the stats module wants float64
	cur   time.Duration
	start time.Time
}

// Begin (or resume) the timer
func (self *PerfTimer) Start() {
	self.start = time.Now()
}

// Stop (or pause) the timer
func (self *PerfTimer) Stop() {
	self.cur += time.Since(self.start)
}

// Add a duration measured elsewhere (e.g. device profiling timestamps) as
// a datapoint without touching the host clock.
func (self *PerfTimer) Observe(d time.Duration) {
	self.Vals = append(self.Vals, (float64)(d))
}

// Finalize the timer, adding it as a new datapoint and resetting the
// timer to 0.
func (self *PerfTimer) Record() {
	self.Stop()
	self.Vals = append(self.Vals, (float64)(self.cur))
	self.cur = 0
}

// Add the recorded values from other to the current object. Does not
// modify other.
func (self *PerfTimer) Update(other *PerfTimer) {
	self.Vals = append(self.Vals, other.Vals...)
}

// Mean of all recorded datapoints, in nanoseconds.
func (self *PerfTimer) Mean() float64 {
	return stat.Mean(self.Vals, nil)
}

// Collects statistics about a set of sort runs, keyed by measurement name.
type SortStats map[string]*PerfTimer

// getTimer returns the named timer, creating it if needed.
func (self SortStats) getTimer(name string) *PerfTimer {
	t, ok := self[name]
	if !ok {
		t = &PerfTimer{}
		self[name] = t
	}
	return t
}

// ReportStats prints the mean and standard deviation of every timer, in
// seconds, in stable name order.
func ReportStats(stats SortStats, writer io.Writer) {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mean, stdev := stat.MeanStdDev(stats[name].Vals, nil)
		fmt.Fprintf(writer, "%v (mean):\t%vs\n", name, mean/1e9)
		fmt.Fprintf(writer, "%v (std):\t%vs\n", name, stdev/1e9)
	}
}
