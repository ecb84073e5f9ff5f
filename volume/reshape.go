package volume

import "strings"

// ReshapeTZYXC normalizes a volume to the canonical tzyxc axis order.
// Axes the volume does not carry are inserted with size 1; existing axes
// are transposed into canonical position. The input is never modified.
// Calling it on an already canonical volume returns a copy.
func ReshapeTZYXC(v *Volume) *Volume {
	// Extend with the missing axes as trailing size-1 dimensions, then
	// permute everything into canonical order.
	axes := v.axes
	shape := v.Shape()
	for i := 0; i < len(CanonicalAxes); i++ {
		a := CanonicalAxes[i]
		if !strings.ContainsRune(axes, rune(a)) {
			axes += string(a)
			shape = append(shape, 1)
		}
	}

	// perm[i] is the source dimension feeding canonical dimension i.
	perm := make([]int, len(CanonicalAxes))
	outShape := make([]int, len(CanonicalAxes))
	for i := 0; i < len(CanonicalAxes); i++ {
		perm[i] = strings.IndexByte(axes, CanonicalAxes[i])
		outShape[i] = shape[perm[i]]
	}

	out := &Volume{
		axes:  CanonicalAxes,
		shape: outShape,
		data:  make([]float32, len(v.data)),
	}

	srcStrides := strides(shape)

	// Walk the canonical index space in row-major order; size-1 axes
	// contribute nothing to the source offset, so the data is only permuted.
	idx := make([]int, len(outShape))
	for dst := 0; dst < len(out.data); dst++ {
		src := 0
		for i, x := range idx {
			src += x * srcStrides[perm[i]]
		}
		out.data[dst] = v.data[src]

		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < outShape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return out
}

// IsCanonical reports whether the volume already carries all five axes
// in canonical order.
func IsCanonical(v *Volume) bool {
	return v.axes == CanonicalAxes
}
