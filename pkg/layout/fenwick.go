package layout

// lengths records the measured main-axis length of each container ordinal
// in two Fenwick trees, one for the summed lengths and one for how many
// containers contributed. Both prefix queries are O(log n), so estimating
// the position of an unrealized container never walks the dataset.
//
// A measurement survives virtualization; it is only dropped when the rows
// under an ordinal change.
type lengths struct {
	sum   []float64 // 1-based Fenwick tree
	count []int     // 1-based Fenwick tree
	value []float64
	known []bool
	total float64
	n     int
}

func newLengths(n int) *lengths {
	l := &lengths{}
	l.resize(n, 0)
	return l
}

// resize changes the ordinal count to n, keeping measurements of ordinals
// below keep and forgetting the rest.
func (l *lengths) resize(n, keep int) {
	keep = max(0, min(keep, n, len(l.value)))
	value := make([]float64, n)
	known := make([]bool, n)
	copy(value, l.value[:keep])
	copy(known, l.known[:keep])

	l.sum = make([]float64, n+1)
	l.count = make([]int, n+1)
	l.value, l.known = value, known
	l.total, l.n = 0, 0
	for i := 0; i < keep; i++ {
		if known[i] {
			l.add(i, value[i], 1)
			l.total += value[i]
			l.n++
		}
	}
}

func (l *lengths) add(i int, dv float64, dc int) {
	for j := i + 1; j < len(l.sum); j += j & -j {
		l.sum[j] += dv
		l.count[j] += dc
	}
}

// set records the measured length of ordinal i.
func (l *lengths) set(i int, v float64) {
	if l.known[i] {
		d := v - l.value[i]
		l.add(i, d, 0)
		l.total += d
	} else {
		l.add(i, v, 1)
		l.total += v
		l.n++
		l.known[i] = true
	}
	l.value[i] = v
}

// get returns the measured length of ordinal i and whether it is known.
func (l *lengths) get(i int) (float64, bool) { return l.value[i], l.known[i] }

// prefix returns the summed length and the number of measured ordinals in
// [0, i).
func (l *lengths) prefix(i int) (sum float64, n int) {
	for j := i; j > 0; j -= j & -j {
		sum += l.sum[j]
		n += l.count[j]
	}
	return sum, n
}

// average returns the mean measured length, or fallback when nothing has
// been measured.
func (l *lengths) average(fallback float64) float64 {
	if l.n == 0 {
		return fallback
	}
	return l.total / float64(l.n)
}

// estimate returns the estimated start of ordinal i: the measured lengths
// before it plus avg for each unmeasured one.
func (l *lengths) estimate(i int, avg float64) float64 {
	sum, n := l.prefix(i)
	return sum + float64(i-n)*avg
}

// length returns the measured length of ordinal i or avg.
func (l *lengths) length(i int, avg float64) float64 {
	if l.known[i] {
		return l.value[i]
	}
	return avg
}

// extent returns the estimated total length of all ordinals. It is exact
// once every ordinal has been measured.
func (l *lengths) extent(avg float64) float64 {
	return l.total + float64(len(l.value)-l.n)*avg
}

// find returns the ordinal whose estimated span contains x, clamped to the
// valid range. Estimated starts are monotone, so a binary search over
// prefix queries suffices.
func (l *lengths) find(x, avg float64) int {
	lo, hi := 0, len(l.value)-1
	if hi < 0 {
		return -1
	}
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l.estimate(mid, avg) <= x {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// size returns the ordinal count.
func (l *lengths) size() int { return len(l.value) }
