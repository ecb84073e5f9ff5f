// Package volume provides the n-dimensional array plumbing around the
// label scatterer: canonical axis reshaping, probability-channel merging
// and a compact binary encoding for caching round outputs.
package volume

import (
	"fmt"
	"strings"
)

// CanonicalAxes is the axis order every dataset is normalized to before
// training: time, z, y, x, channel.
const CanonicalAxes = "tzyxc"

// Volume is an n-dimensional float32 array with one axis tag per
// dimension. Axis tags are single characters from CanonicalAxes and must
// be unique within a volume. Data is stored row-major.
type Volume struct {
	axes  string
	shape []int
	data  []float32
}

// New returns a zero-filled volume with the given axes and shape.
func New(axes string, shape ...int) (*Volume, error) {
	n, err := checkAxesShape(axes, shape)
	if err != nil {
		return nil, err
	}
	return &Volume{
		axes:  axes,
		shape: append([]int(nil), shape...),
		data:  make([]float32, n),
	}, nil
}

// NewFrom wraps an existing row-major buffer. The buffer is not copied.
func NewFrom(data []float32, axes string, shape ...int) (*Volume, error) {
	n, err := checkAxesShape(axes, shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("volume: data length %d does not match shape %v (%d elements)", len(data), shape, n)
	}
	return &Volume{
		axes:  axes,
		shape: append([]int(nil), shape...),
		data:  data,
	}, nil
}

func checkAxesShape(axes string, shape []int) (int, error) {
	if len(axes) == 0 {
		return 0, fmt.Errorf("volume: at least one axis is required")
	}
	if len(axes) != len(shape) {
		return 0, fmt.Errorf("volume: %d axes for %d dimensions", len(axes), len(shape))
	}
	seen := map[byte]bool{}
	for i := 0; i < len(axes); i++ {
		a := axes[i]
		if !strings.ContainsRune(CanonicalAxes, rune(a)) {
			return 0, fmt.Errorf("volume: unknown axis %q", string(a))
		}
		if seen[a] {
			return 0, fmt.Errorf("volume: duplicate axis %q", string(a))
		}
		seen[a] = true
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("volume: invalid dimension %d in shape %v", d, shape)
		}
		n *= d
	}
	return n, nil
}

// Axes returns the axis tags, one per dimension.
func (v *Volume) Axes() string {
	return v.axes
}

// Shape returns a copy of the volume's dimensions.
func (v *Volume) Shape() []int {
	return append([]int(nil), v.shape...)
}

// Len returns the total number of elements.
func (v *Volume) Len() int {
	return len(v.data)
}

// Data returns the underlying buffer. The slice is shared with the
// volume; callers must not modify it unless they own the volume.
func (v *Volume) Data() []float32 {
	return v.data
}

// Dim returns the size of the given axis, or 1 if the volume does not
// carry that axis.
func (v *Volume) Dim(axis byte) int {
	for i := 0; i < len(v.axes); i++ {
		if v.axes[i] == axis {
			return v.shape[i]
		}
	}
	return 1
}

// Channels returns the size of the channel axis.
func (v *Volume) Channels() int {
	return v.Dim('c')
}

// Clone returns a deep copy of the volume.
func (v *Volume) Clone() *Volume {
	data := make([]float32, len(v.data))
	copy(data, v.data)
	return &Volume{
		axes:  v.axes,
		shape: append([]int(nil), v.shape...),
		data:  data,
	}
}

// strides returns the row-major stride of every dimension.
func strides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}
