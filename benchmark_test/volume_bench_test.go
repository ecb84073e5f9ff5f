package benchmark_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/akreshuk/autocontext/testutil"
	"github.com/akreshuk/autocontext/volume"
)

func BenchmarkReshapeTZYXC(b *testing.B) {
	cases := []struct {
		axes  string
		shape []int
	}{
		{"yx", []int{1024, 1024}},
		{"xyz", []int{128, 128, 64}},
		{"cyx", []int{3, 512, 512}},
	}

	for _, tc := range cases {
		b.Run(tc.axes, func(b *testing.B) {
			v := testutil.NewRNG(42).UniformVolume(tc.axes, tc.shape...)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				volume.ReshapeTZYXC(v)
			}
		})
	}
}

func BenchmarkMergeChannels(b *testing.B) {
	for _, probC := range []int{2, 4, 8} {
		b.Run(fmt.Sprintf("classes_%d", probC), func(b *testing.B) {
			rng := testutil.NewRNG(42)
			raw := rng.UniformVolume(volume.CanonicalAxes, 1, 1, 512, 512, 1)
			probs := rng.UniformVolume(volume.CanonicalAxes, 1, 1, 512, 512, probC)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := volume.MergeChannels(raw, probs, 1); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkVolumeWriteTo(b *testing.B) {
	v := testutil.NewRNG(42).UniformVolume(volume.CanonicalAxes, 1, 1, 512, 512, 3)
	b.SetBytes(int64(v.Len() * 4))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := v.WriteTo(io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}
