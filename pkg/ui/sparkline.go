package ui

import (
	"math"
	"strings"
)

// sparkBlocks are the eight block glyphs used for one-row sparklines, from
// lowest to highest.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a one-row block-glyph chart of exactly width
// cells. Values are scaled to the observed min/max; a flat series renders at
// mid height. Longer series are downsampled by bucket mean, shorter ones are
// left-aligned and padded.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}

	samples := resample(values, width)

	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range samples {
		idx := len(sparkBlocks) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	for i := len(samples); i < width; i++ {
		b.WriteByte(' ')
	}
	return b.String()
}

// resample reduces values to at most width samples by averaging equal
// buckets. Fewer values than width pass through unchanged.
func resample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		sum := 0.0
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
