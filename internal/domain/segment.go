package domain

// Segment is one contiguous byte range of the target resource, owned by
// exactly one worker. Start and End are both inclusive.
type Segment struct {
	Index int
	Start int64
	End   int64
}

// Size returns the number of bytes the segment spans.
func (s Segment) Size() int64 {
	return s.End - s.Start + 1
}

// Partition splits [0, total-1] into n contiguous ranges. Boundaries sit
// block = total/n bytes apart; the last range is stretched to total-1 so the
// integer-division remainder lands in the final segment.
func Partition(total int64, n int) []Segment {
	if n < 1 {
		n = 1
	}
	block := total / int64(n)
	segs := make([]Segment, n)
	for i := 0; i < n; i++ {
		start := int64(i) * block
		end := start + block - 1
		if i == n-1 {
			end = total - 1
		}
		segs[i] = Segment{Index: i, Start: start, End: end}
	}
	return segs
}
