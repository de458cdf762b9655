package par

// ExclusiveScan writes the exclusive prefix sum of counts into out and
// returns the total. out must have len(counts) elements; it may alias counts.
//
// The scan runs in three phases: per-chunk totals, a serial scan over the
// chunk totals, then a per-chunk pass that writes the final offsets.
func ExclusiveScan(counts, out []int64) int64 {
	n := len(counts)
	c := Chunks(n)
	if c == 0 {
		return 0
	}

	totals := make([]int64, c)
	ForChunks(n, func(chunk, lo, hi int) {
		var s int64
		for i := lo; i < hi; i++ {
			s += counts[i]
		}
		totals[chunk] = s
	})

	var running int64
	for i, t := range totals {
		totals[i] = running
		running += t
	}

	ForChunks(n, func(chunk, lo, hi int) {
		acc := totals[chunk]
		for i := lo; i < hi; i++ {
			v := counts[i]
			out[i] = acc
			acc += v
		}
	})
	return running
}
