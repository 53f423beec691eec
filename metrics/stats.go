package metrics

import "math"

// MovingAverage averages every full window of data. The result has
// len(data)-window+1 points and is empty if no full window exists.
func MovingAverage(data []float64, window int) []float64 {
	if window <= 0 || len(data) < window {
		return nil
	}
	out := make([]float64, 0, len(data)-window+1)
	sum := 0.0
	for i, v := range data {
		sum += v
		if i >= window {
			sum -= data[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

// Mean is zero for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Tail returns the last n values, or all of them if there are fewer.
func Tail(data []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n > len(data) {
		n = len(data)
	}
	return data[len(data)-n:]
}

// Histogram splits [min(data), max(data)] into equal-width bins. edges has
// bins+1 entries; the last bin is closed on the right. When every value is
// equal the range is widened by half a unit either side.
func Histogram(data []float64, bins int) (edges []float64, counts []int) {
	if bins <= 0 || len(data) == 0 {
		return nil, nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(bins)
	edges = make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi

	counts = make([]int, bins)
	for _, v := range data {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return edges, counts
}
