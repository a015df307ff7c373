package indexed

// Filter is a scanline filter type.
type Filter byte

// The five scanline filters. Indexed pixels are packed so the predictor
// always looks one byte back regardless of bit depth.
const (
	FilterNone Filter = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth
	numFilters
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

// unfilter reconstructs cur in place; prev is the previous reconstructed
// row, or nil for the first row.
func unfilter(f Filter, cur, prev []byte) error {
	up := func(i int) uint8 {
		if prev == nil {
			return 0
		}
		return prev[i]
	}

	switch f {
	case FilterNone:
	case FilterSub:
		for i := 1; i < len(cur); i++ {
			cur[i] += cur[i-1]
		}
	case FilterUp:
		for i := range cur {
			cur[i] += up(i)
		}
	case FilterAverage:
		for i := range cur {
			var left int
			if i > 0 {
				left = int(cur[i-1])
			}
			cur[i] += uint8((left + int(up(i))) >> 1)
		}
	case FilterPaeth:
		for i := range cur {
			var left, upLeft uint8
			if i > 0 {
				left = cur[i-1]
				upLeft = up(i - 1)
			}
			cur[i] += paeth(left, up(i), upLeft)
		}
	default:
		return errBadFilter
	}
	return nil
}

// filter writes the filtered form of cur into out, prev is the previous
// unfiltered row, or nil for the first row.
func filter(f Filter, out, cur, prev []byte) {
	up := func(i int) uint8 {
		if prev == nil {
			return 0
		}
		return prev[i]
	}

	for i := range cur {
		var left, upLeft uint8
		if i > 0 {
			left = cur[i-1]
			upLeft = up(i - 1)
		}

		switch f {
		case FilterSub:
			out[i] = cur[i] - left
		case FilterUp:
			out[i] = cur[i] - up(i)
		case FilterAverage:
			out[i] = cur[i] - uint8((int(left)+int(up(i)))>>1)
		case FilterPaeth:
			out[i] = cur[i] - paeth(left, up(i), upLeft)
		default:
			out[i] = cur[i]
		}
	}
}
