package ranksort

import (
	"fmt"
	"math/rand"
	"sort"
)

// RandomInputs generates n values drawn uniformly from [0, max). max must
// be positive.
func RandomInputs(n int, max int32, seed int64) []int32 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		out[i] = rng.Int31n(max)
	}
	return out
}

// CheckSort verifies that sorted is an ascending permutation of orig by
// comparing it against an independently sorted copy.
func CheckSort(orig []int32, sorted []int32) error {
	if len(orig) != len(sorted) {
		return fmt.Errorf("Lengths do not match: Expected %v, Got %v", len(orig), len(sorted))
	}

	origCpy := make([]int32, len(orig))
	copy(origCpy, orig)
	sort.Slice(origCpy, func(i, j int) bool { return origCpy[i] < origCpy[j] })
	for i := 0; i < len(orig); i++ {
		if origCpy[i] != sorted[i] {
			return fmt.Errorf("Result doesn't match reference at %v: Expected %v, Got %v", i, origCpy[i], sorted[i])
		}
	}
	return nil
}
