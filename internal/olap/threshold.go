package olap

import (
	"math"
	"strconv"
	"strings"

	"github.com/hotspot-olap/internal/domain"
)

// Цвета хороплета, от low к high
const (
	ColorLow    = "#B3D1FF"
	ColorMedium = "#4F8EF7"
	ColorHigh   = "#0047AB"
)

// Classify computes the break points from the positive values of the map.
// The scale is relative to whatever is in view: each drill level gets its own
// min and max, so the result must not be reused across levels.
func Classify(agg domain.AggregateMap) domain.Thresholds {
	return ClassifyValues(agg.Positive())
}

// ClassifyValues splits [min, max] into three equal intervals. Narrow ranges
// (max-min < 3) use an integer step of at least one; no values gives 0/1/2.
func ClassifyValues(values []int64) domain.Thresholds {
	positive := values[:0:0]
	for _, v := range values {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	if len(positive) == 0 {
		return domain.Thresholds{Min: 0, T1: 1, T2: 2}
	}

	lo, hi := positive[0], positive[0]
	for _, v := range positive[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	base, rng := float64(lo), float64(hi-lo)

	if rng < 3 {
		step := math.Ceil(rng / 3)
		if step == 0 {
			step = 1
		}
		return domain.Thresholds{Min: base, T1: base + step, T2: base + 2*step}
	}
	return domain.Thresholds{Min: base, T1: base + rng/3, T2: base + 2*rng/3}
}

// BucketOf classifies a count: below T1 low, below T2 medium, otherwise high.
func BucketOf(t domain.Thresholds, v int64) domain.Bucket {
	f := float64(v)
	switch {
	case f < t.T1:
		return domain.BucketLow
	case f < t.T2:
		return domain.BucketMedium
	default:
		return domain.BucketHigh
	}
}

// Color returns the fill color of a bucket.
func Color(b domain.Bucket) string {
	switch b {
	case domain.BucketMedium:
		return ColorMedium
	case domain.BucketHigh:
		return ColorHigh
	default:
		return ColorLow
	}
}

// Legend returns the three legend rows with rounded bounds.
func Legend(t domain.Thresholds) []domain.LegendEntry {
	lo := int64(math.Round(t.Min))
	t1 := int64(math.Round(t.T1))
	t2 := int64(math.Round(t.T2))
	return []domain.LegendEntry{
		{Bucket: domain.BucketLow, Color: ColorLow, Label: "Rendah (" + FormatNumber(lo) + "-" + FormatNumber(t1) + ")"},
		{Bucket: domain.BucketMedium, Color: ColorMedium, Label: "Sedang (" + FormatNumber(t1+1) + "-" + FormatNumber(t2) + ")"},
		{Bucket: domain.BucketHigh, Color: ColorHigh, Label: "Tinggi (" + FormatNumber(t2+1) + "+)"},
	}
}

// FormatNumber groups thousands with dots (12345 → "12.345").
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
