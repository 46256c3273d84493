package ranksort

// MergeSort returns an ascending sorted copy of vals using a sequential
// recursive merge sort. It is the host-side baseline for the device path:
// no shared state, purely functional over its input, and stable (the left
// run wins ties, so equal elements keep their relative order).
func MergeSort(vals []int32) []int32 {
	if len(vals) < 2 {
		out := make([]int32, len(vals))
		copy(out, vals)
		return out
	}

	mid := len(vals) / 2
	left := MergeSort(vals[:mid])
	right := MergeSort(vals[mid:])
	return merge(left, right)
}

func merge(left, right []int32) []int32 {
	merged := make([]int32, 0, len(left)+len(right))

	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if left[i] <= right[j] {
			merged = append(merged, left[i])
			i++
		} else {
			merged = append(merged, right[j])
			j++
		}
	}

	merged = append(merged, left[i:]...)
	merged = append(merged, right[j:]...)
	return merged
}
