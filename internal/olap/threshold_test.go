package olap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/olap"
)

func TestClassify_EqualIntervals(t *testing.T) {
	th := olap.Classify(domain.AggregateMap{"A": 10, "B": 20, "C": 30})

	assert.Equal(t, 10.0, th.Min)
	assert.InDelta(t, 10+20.0/3, th.T1, 1e-9)
	assert.InDelta(t, 10+40.0/3, th.T2, 1e-9)
	assert.InDelta(t, 16.7, th.T1, 0.05)
	assert.InDelta(t, 23.3, th.T2, 0.05)

	assert.Equal(t, domain.BucketLow, olap.BucketOf(th, 10))
	assert.Equal(t, domain.BucketMedium, olap.BucketOf(th, 20))
	assert.Equal(t, domain.BucketHigh, olap.BucketOf(th, 30))
}

func TestClassify_SingleValue(t *testing.T) {
	th := olap.Classify(domain.AggregateMap{"A": 5})
	assert.Equal(t, domain.Thresholds{Min: 5, T1: 6, T2: 7}, th)
	assert.Greater(t, th.T1, th.Min)
	assert.Greater(t, th.T2, th.T1)
}

func TestClassifyValues(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		want   domain.Thresholds
	}{
		{name: "no values", values: nil, want: domain.Thresholds{Min: 0, T1: 1, T2: 2}},
		{name: "zeros ignored", values: []int64{0, 0}, want: domain.Thresholds{Min: 0, T1: 1, T2: 2}},
		{name: "narrow range", values: []int64{1, 3}, want: domain.Thresholds{Min: 1, T1: 2, T2: 3}},
		{name: "range of three", values: []int64{1, 4, 0}, want: domain.Thresholds{Min: 1, T1: 2, T2: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, olap.ClassifyValues(tt.values))
		})
	}
}

func TestClassify_LevelRelative(t *testing.T) {
	provinces := olap.Classify(domain.AggregateMap{"RIAU": 900, "JAMBI": 300, "ACEH": 30})
	regencies := olap.Classify(domain.AggregateMap{"SIAK": 40, "KAMPAR": 12, "PELALAWAN": 3})
	assert.NotEqual(t, provinces, regencies)
	assert.Equal(t, domain.BucketHigh, olap.BucketOf(regencies, 40))
	assert.Equal(t, domain.BucketLow, olap.BucketOf(provinces, 40))
}

func TestColorAndLegend(t *testing.T) {
	assert.Equal(t, "#B3D1FF", olap.Color(domain.BucketLow))
	assert.Equal(t, "#4F8EF7", olap.Color(domain.BucketMedium))
	assert.Equal(t, "#0047AB", olap.Color(domain.BucketHigh))

	legend := olap.Legend(domain.Thresholds{Min: 10, T1: 10 + 20.0/3, T2: 10 + 40.0/3})
	assert.Equal(t, []domain.LegendEntry{
		{Bucket: domain.BucketLow, Color: "#B3D1FF", Label: "Rendah (10-17)"},
		{Bucket: domain.BucketMedium, Color: "#4F8EF7", Label: "Sedang (18-23)"},
		{Bucket: domain.BucketHigh, Color: "#0047AB", Label: "Tinggi (24+)"},
	}, legend)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", olap.FormatNumber(0))
	assert.Equal(t, "999", olap.FormatNumber(999))
	assert.Equal(t, "1.000", olap.FormatNumber(1000))
	assert.Equal(t, "12.345", olap.FormatNumber(12345))
	assert.Equal(t, "1.234.567", olap.FormatNumber(1234567))
	assert.Equal(t, "-4.500", olap.FormatNumber(-4500))
}
