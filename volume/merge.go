package volume

import "fmt"

// MergeChannels overlays probability channels onto a raw volume, keyed by
// channel offset: the result keeps the first keep channels of raw and
// appends every channel of probs after them. Channels of raw beyond keep
// (stale probabilities from an earlier round) are discarded.
//
// Both volumes must be canonical (tzyxc) and agree on all non-channel
// dimensions. Neither input is modified.
func MergeChannels(raw, probs *Volume, keep int) (*Volume, error) {
	if !IsCanonical(raw) || !IsCanonical(probs) {
		return nil, fmt.Errorf("volume: merge requires canonical %s volumes, got %q and %q", CanonicalAxes, raw.axes, probs.axes)
	}
	if keep < 1 || keep > raw.Channels() {
		return nil, fmt.Errorf("volume: keep channel count %d out of range [1,%d]", keep, raw.Channels())
	}
	for i := 0; i < len(CanonicalAxes)-1; i++ {
		if raw.shape[i] != probs.shape[i] {
			return nil, fmt.Errorf("volume: shape mismatch on axis %q: %d != %d", string(CanonicalAxes[i]), raw.shape[i], probs.shape[i])
		}
	}

	rawC := raw.Channels()
	probC := probs.Channels()
	outC := keep + probC

	outShape := raw.Shape()
	outShape[len(outShape)-1] = outC
	out := &Volume{
		axes:  CanonicalAxes,
		shape: outShape,
		data:  make([]float32, raw.Len()/rawC*outC),
	}

	// The channel axis is innermost, so each spatial position is one
	// contiguous run per volume.
	positions := raw.Len() / rawC
	for p := 0; p < positions; p++ {
		copy(out.data[p*outC:p*outC+keep], raw.data[p*rawC:p*rawC+keep])
		copy(out.data[p*outC+keep:(p+1)*outC], probs.data[p*probC:(p+1)*probC])
	}
	return out, nil
}
