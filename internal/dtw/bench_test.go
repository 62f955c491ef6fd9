package dtw_test

import (
	"testing"

	"github.com/himanishpuri/VocalCoach/internal/dtw"
)

// benchmarkAlign runs Align on ramps of lengths n and m.
func benchmarkAlign(b *testing.B, n, m int, opts *dtw.Options) {
	a := make([]float64, n)
	bSeq := make([]float64, m)
	for i := range a {
		a[i] = float64(i)
	}
	for j := range bSeq {
		bSeq[j] = float64(j)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := dtw.Align(a, bSeq, opts); err != nil {
			b.Fatalf("Align failed: %v", err)
		}
	}
}

func BenchmarkAlign_Small(b *testing.B) {
	benchmarkAlign(b, 100, 120, nil)
}

// About ten seconds of audio per side at the default hop.
func BenchmarkAlign_TenSeconds(b *testing.B) {
	benchmarkAlign(b, 430, 470, nil)
}

func BenchmarkAlign_TenSecondsBanded(b *testing.B) {
	benchmarkAlign(b, 430, 470, &dtw.Options{Window: 64})
}
