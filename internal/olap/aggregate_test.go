package olap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/olap"
)

func feature(loc domain.HotspotLocation, count int64, confidence, satellite, ts string) domain.HotspotFeature {
	return domain.HotspotFeature{
		Lat: -7.7, Lon: 110.4,
		Properties: domain.HotspotProperties{
			Confidence:   confidence,
			Satellite:    satellite,
			Time:         ts,
			HotspotCount: count,
			Location:     &loc,
		},
	}
}

var (
	slemanProper = domain.HotspotLocation{Pulau: "JAWA", Provinsi: "DI YOGYAKARTA", KabKota: "Kabupaten Sleman", Kecamatan: "Depok", Desa: "Desa Caturtunggal"}
	slemanUpper  = domain.HotspotLocation{Pulau: "JAWA", Provinsi: "DAERAH ISTIMEWA YOGYAKARTA", KabKota: "SLEMAN", Kecamatan: "NGAGLIK", Desa: "SARDONOHARJO"}
	klaten       = domain.HotspotLocation{Pulau: "JAWA", Provinsi: "JAWA TENGAH", KabKota: "KLATEN", Kecamatan: "PRAMBANAN", Desa: "TLOGO"}
	riau         = domain.HotspotLocation{Pulau: "SUMATERA", Provinsi: "RIAU", KabKota: "SIAK", Kecamatan: "MINAS", Desa: "MINAS JAYA"}
)

func TestAggregator_FromPairs(t *testing.T) {
	agg := olap.NewAggregator(defaultNormalizer())

	got := agg.FromPairs(pairs("Kabupaten Sleman", 4, "SLEMAN", 3, "Kota Yogyakarta", 2, "Bantul", 1, "", 9))

	assert.Equal(t, domain.AggregateMap{
		"SLEMAN":                     7,
		"DAERAH ISTIMEWA YOGYAKARTA": 2,
		"BANTUL":                     1,
	}, got)
	assert.Equal(t, int64(10), got.Total())
}

func TestAggregator_FromFeed_RegencyPrefixVariantsShareBucket(t *testing.T) {
	agg := olap.NewAggregator(defaultNormalizer())
	feed := []domain.HotspotFeature{
		feature(slemanProper, 2, "high", "NOAA20", "2024-08-01T03:00:00Z"),
		feature(slemanUpper, 3, "low", "NOAA20", "2024-08-02T03:00:00Z"),
		feature(klaten, 5, "high", "SNPP", "2024-08-03T03:00:00Z"),
	}

	got := agg.FromFeed(feed, domain.LevelRegency, nil, domain.Filters{})
	assert.Equal(t, domain.AggregateMap{"SLEMAN": 5, "KLATEN": 5}, got)

	th := olap.Classify(got)
	assert.Equal(t, olap.BucketOf(th, got["SLEMAN"]), olap.BucketOf(th, got["KLATEN"]))
}

func TestAggregator_FromFeed_ScopeAndMissingFields(t *testing.T) {
	agg := olap.NewAggregator(defaultNormalizer())
	noDistrict := klaten
	noDistrict.Kecamatan = ""

	feed := []domain.HotspotFeature{
		feature(slemanProper, 1, "high", "NOAA20", "2024-08-01"),
		feature(slemanUpper, 1, "high", "NOAA20", "2024-08-01"),
		feature(klaten, 1, "high", "NOAA20", "2024-08-01"),
		feature(noDistrict, 1, "high", "NOAA20", "2024-08-01"),
		feature(riau, 1, "high", "NOAA20", "2024-08-01"),
		{Properties: domain.HotspotProperties{HotspotCount: 4}},
	}

	got := agg.FromFeed(feed, domain.LevelDistrict, []string{"Jawa", "Yogyakarta", "Kabupaten Sleman"}, domain.Filters{})
	assert.Equal(t, domain.AggregateMap{"DEPOK": 1, "NGAGLIK": 1}, got)

	got = agg.FromFeed(feed, domain.LevelDistrict, []string{"JAWA"}, domain.Filters{})
	assert.Equal(t, domain.AggregateMap{"DEPOK": 1, "NGAGLIK": 1, "PRAMBANAN": 1}, got, "record without kecamatan is dropped")

	got = agg.FromFeed(feed, domain.LevelIsland, fullPath, domain.Filters{})
	assert.Equal(t, domain.AggregateMap{"JAWA": 4, "SUMATERA": 1}, got, "path labels finer than the level are ignored")
}

func TestAggregator_FromFeed_MissingCountIsZero(t *testing.T) {
	agg := olap.NewAggregator(defaultNormalizer())
	feed := []domain.HotspotFeature{
		feature(riau, 0, "low", "", "2024-08-01"),
		feature(klaten, -3, "low", "", "2024-08-01"),
		feature(slemanUpper, 2, "low", "", "2024-08-02"),
	}

	got := agg.FromFeed(feed, domain.LevelProvince, nil, domain.Filters{})
	assert.Equal(t, domain.AggregateMap{"RIAU": 0, "JAWA TENGAH": 0, "DAERAH ISTIMEWA YOGYAKARTA": 2}, got)
	assert.Equal(t, int64(2), got.Total())
	assert.Equal(t, []int64{2}, got.Positive(), "zero buckets stay out of the thresholds")

	assert.Equal(t, map[string]int64{"2024-08-01": 0, "2024-08-02": 2}, agg.DateCounts(feed, domain.Filters{}))
}

func TestMatchFilters(t *testing.T) {
	// 2024-05-13 is a Monday
	props := domain.HotspotProperties{Confidence: "High", Satellite: "NOAA20", Time: "2024-05-13 14:20:00"}

	tests := []struct {
		name    string
		filters domain.Filters
		want    bool
	}{
		{name: "no filters", want: true},
		{name: "confidence case-insensitive", filters: domain.Filters{Confidence: "high"}, want: true},
		{name: "confidence mismatch", filters: domain.Filters{Confidence: "low"}, want: false},
		{name: "satellite", filters: domain.Filters{Satellite: "noaa20"}, want: true},
		{name: "satellite mismatch", filters: domain.Filters{Satellite: "SNPP"}, want: false},
		{name: "full time match", filters: domain.Filters{Time: domain.TimeFilterState{Year: "2024", Semester: "1", Quarter: "Q2", Month: "Mei", Day: "Senin"}}, want: true},
		{name: "quarter lower case", filters: domain.Filters{Time: domain.TimeFilterState{Year: "2024", Semester: "1", Quarter: "q2"}}, want: true},
		{name: "wrong year", filters: domain.Filters{Time: domain.TimeFilterState{Year: "2023"}}, want: false},
		{name: "wrong semester", filters: domain.Filters{Time: domain.TimeFilterState{Year: "2024", Semester: "2"}}, want: false},
		{name: "wrong month", filters: domain.Filters{Time: domain.TimeFilterState{Year: "2024", Semester: "1", Quarter: "Q2", Month: "Juni"}}, want: false},
		{name: "wrong day", filters: domain.Filters{Time: domain.TimeFilterState{Year: "2024", Semester: "1", Quarter: "Q2", Month: "Mei", Day: "Selasa"}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, olap.MatchFilters(props, tt.filters))
		})
	}

	t.Run("unparsable time fails time filters only", func(t *testing.T) {
		bad := domain.HotspotProperties{Confidence: "high", Time: "yesterday"}
		assert.True(t, olap.MatchFilters(bad, domain.Filters{Confidence: "high"}))
		assert.False(t, olap.MatchFilters(bad, domain.Filters{Time: domain.TimeFilterState{Year: "2024"}}))
	})
}

func TestAggregator_DateCounts(t *testing.T) {
	agg := olap.NewAggregator(defaultNormalizer())
	feed := []domain.HotspotFeature{
		feature(klaten, 2, "high", "NOAA20", "2024-08-01T03:00:00Z"),
		feature(riau, 1, "low", "NOAA20", "2024-08-03T01:00:00Z"),
		feature(riau, 1, "high", "NOAA20", "2024-08-03T05:00:00Z"),
		feature(riau, 1, "high", "NOAA20", "not a date"),
	}

	counts := agg.DateCounts(feed, domain.Filters{Confidence: "high"})
	assert.Equal(t, map[string]int64{"2024-08-01": 2, "2024-08-03": 1}, counts)
	assert.Equal(t, "2024-08-03", olap.LatestDate(counts))
	assert.Equal(t, "", olap.LatestDate(nil))
}
