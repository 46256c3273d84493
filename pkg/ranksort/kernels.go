package ranksort

import "github.com/nathantp/gpu-rank-sort/pkg/device"

// EmptySlot marks an unclaimed slot in the results buffer. Inputs are
// restricted to non-negative values so it can never collide with real
// data.
const EmptySlot int32 = -1

// compareKernel runs over the full NxN index grid. Each (i, j) pair
// contributes one atomic increment to counts[i] when source[i] is strictly
// greater than source[j], so counts[i] converges to the number of elements
// smaller than source[i]: its rank, and its slot in the sorted output when
// all values are distinct. No ordering among the N^2 comparisons matters.
func compareKernel(item device.WorkItem, args []*device.Buffer) {
	source, counts := args[0], args[1]

	i := item.GlobalID(0)
	j := item.GlobalID(1)
	if source.Load(i) > source.Load(j) {
		counts.Inc(i)
	}
}

// assignKernel runs over the N-element index grid. Each element tries to
// claim the result slot named by its rank; duplicates share a rank, so a
// failed claim means an equal-valued element got there first and the loser
// probes forward one slot at a time. Equal values therefore fill a
// contiguous run starting at their shared rank, in whatever order the
// claims happen to interleave.
//
// The probe is bounded by the end of the array. Because ranks come from
// strictly-less-than comparisons, every duplicate run should fit within
// the bound; if it ever did not, the element would be dropped silently.
func assignKernel(item device.WorkItem, args []*device.Buffer) {
	source, counts, results := args[0], args[1], args[2]

	id := item.GlobalID(0)
	n := item.GlobalSize(0)

	val := source.Load(id)
	base := (int)(counts.Load(id))
	for slot := base; slot < n; slot++ {
		if results.CompareAndSwap(slot, EmptySlot, val) {
			return
		}
	}
}

// NewCompareKernel builds the rank-counting kernel. Arguments: source
// (read), counts (read-write, zeroed). Global work size: NxN.
func NewCompareKernel() *device.Kernel {
	return device.NewKernel("compare_kernel", 2, compareKernel)
}

// NewAssignKernel builds the rank-scatter kernel. Arguments: source
// (read), counts (read), results (read-write, filled with EmptySlot).
// Global work size: N.
func NewAssignKernel() *device.Kernel {
	return device.NewKernel("assign_kernel", 3, assignKernel)
}
