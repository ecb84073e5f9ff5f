package volume

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Binary volume format, little-endian:
//
//	[4]byte  magic "ACVL"
//	uint8    format version
//	uint8    axis count
//	[n]byte  axis tags
//	[n]uint32 shape
//	[...]float32 row-major payload
const (
	encodingVersion = 1
)

var encodingMagic = [4]byte{'A', 'C', 'V', 'L'}

// WriteTo serializes the volume. It implements io.WriterTo.
func (v *Volume) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	n := int64(0)

	write := func(data any) error {
		if err := binary.Write(bw, binary.LittleEndian, data); err != nil {
			return err
		}
		n += int64(binary.Size(data))
		return nil
	}

	if err := write(encodingMagic); err != nil {
		return n, err
	}
	if err := write(uint8(encodingVersion)); err != nil {
		return n, err
	}
	if err := write(uint8(len(v.axes))); err != nil {
		return n, err
	}
	if err := write([]byte(v.axes)); err != nil {
		return n, err
	}
	shape := make([]uint32, len(v.shape))
	for i, d := range v.shape {
		shape[i] = uint32(d)
	}
	if err := write(shape); err != nil {
		return n, err
	}
	if err := write(v.data); err != nil {
		return n, err
	}
	return n, bw.Flush()
}

// Read deserializes a volume written by WriteTo.
func Read(r io.Reader) (*Volume, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("volume: reading header: %w", err)
	}
	if magic != encodingMagic {
		return nil, fmt.Errorf("volume: bad magic %q", magic[:])
	}
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != encodingVersion {
		return nil, fmt.Errorf("volume: unsupported format version %d", version)
	}
	var axisCount uint8
	if err := binary.Read(br, binary.LittleEndian, &axisCount); err != nil {
		return nil, err
	}
	if axisCount == 0 || int(axisCount) > len(CanonicalAxes) {
		return nil, fmt.Errorf("volume: invalid axis count %d", axisCount)
	}
	axes := make([]byte, axisCount)
	if _, err := io.ReadFull(br, axes); err != nil {
		return nil, err
	}
	shape32 := make([]uint32, axisCount)
	if err := binary.Read(br, binary.LittleEndian, shape32); err != nil {
		return nil, err
	}
	shape := make([]int, axisCount)
	elems := 1
	for i, d := range shape32 {
		if d == 0 || elems > math.MaxInt32/int(d) {
			return nil, fmt.Errorf("volume: invalid encoded shape %v", shape32)
		}
		shape[i] = int(d)
		elems *= int(d)
	}
	data := make([]float32, elems)
	if err := binary.Read(br, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("volume: reading payload: %w", err)
	}
	return NewFrom(data, string(axes), shape...)
}
