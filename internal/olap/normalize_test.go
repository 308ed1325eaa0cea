package olap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotspot-olap/internal/olap"
)

func defaultNormalizer() *olap.Normalizer {
	return olap.NewNormalizer(olap.DefaultNormalizerConfig())
}

func TestNormalizer_Normalize(t *testing.T) {
	n := defaultNormalizer()

	tests := []struct {
		in   string
		want string
	}{
		{"Desa Sendangadi", "SENDANGADI"},
		{"DESA SENDANGADI", "SENDANGADI"},
		{"sendangadi", "SENDANGADI"},
		{"  Kabupaten   Sleman ", "SLEMAN"},
		{"KELURAHAN  Caturtunggal", "CATURTUNGGAL"},
		{"Kota Yogyakarta", "DAERAH ISTIMEWA YOGYAKARTA"},
		{"DI Jogjakarta", "DAERAH ISTIMEWA YOGYAKARTA"},
		{"Kota Semarang", "KOTA SEMARANG"},
		{"DESA", "DESA"},
		{"desa desa baru", "BARU"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := defaultNormalizer()
	inputs := []string{
		"Desa Sendangadi", "kabupaten kabupaten x", "Daerah Istimewa Yogyakarta",
		"  jawa   tengah ", "DESA ", "Kelurahan Desa Kabupaten Ngaglik", "Nusa Tenggara Barat",
		"Kabupaten Kepulauan Seribu", "kota jogjakarta", "ß-straße",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalizer_CanonicalWithoutSelfMatch(t *testing.T) {
	n := olap.NewNormalizer(olap.NormalizerConfig{
		Prefixes: []string{"KABUPATEN"},
		Aliases: []olap.Alias{
			{Canonical: "Kepulauan Bangka Belitung", Match: []string{"BABEL"}},
		},
	})

	got := n.Normalize("Prov. Babel")
	assert.Equal(t, "KEPULAUAN BANGKA BELITUNG", got)
	assert.Equal(t, got, n.Normalize(got))
	assert.True(t, n.IsCanonical(got))
	assert.True(t, n.Equal("babel", "kepulauan bangka belitung"))
}

func TestLoadNormalizerConfig(t *testing.T) {
	t.Run("missing file keeps defaults", func(t *testing.T) {
		cfg, err := olap.LoadNormalizerConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, olap.DefaultNormalizerConfig(), cfg)
	})

	t.Run("file overrides aliases only", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.yaml")
		content := "aliases:\n" +
			"  - canonical: DAERAH ISTIMEWA YOGYAKARTA\n" +
			"    match: [YOGYAKARTA, JOGJAKARTA, DIY]\n" +
			"  - canonical: DKI JAKARTA\n" +
			"    match: [JAKARTA]\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := olap.LoadNormalizerConfig(path)
		require.NoError(t, err)
		assert.Equal(t, olap.DefaultNormalizerConfig().Prefixes, cfg.Prefixes)
		require.Len(t, cfg.Aliases, 2)

		n := olap.NewNormalizer(cfg)
		assert.Equal(t, "DKI JAKARTA", n.Normalize("Jakarta Selatan"))
		assert.Equal(t, "SLEMAN", n.Normalize("Kabupaten Sleman"))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("aliases: [unterminated"), 0o600))
		_, err := olap.LoadNormalizerConfig(path)
		assert.Error(t, err)
	})
}
