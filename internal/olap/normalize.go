package olap

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Alias - группа написаний, сводимых к одному каноническому имени
type Alias struct {
	Canonical string   `yaml:"canonical" json:"canonical"`
	Match     []string `yaml:"match" json:"match"`
}

// NormalizerConfig - таблица префиксов и алиасов (файл ALIAS_FILE)
type NormalizerConfig struct {
	Prefixes []string `yaml:"prefixes" json:"prefixes"`
	Aliases  []Alias  `yaml:"aliases" json:"aliases"`
}

// DefaultNormalizerConfig returns the built-in table: the three
// administrative prefixes and the Yogyakarta special region.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		Prefixes: []string{"DESA", "KELURAHAN", "KABUPATEN"},
		Aliases: []Alias{
			{Canonical: "DAERAH ISTIMEWA YOGYAKARTA", Match: []string{"YOGYAKARTA", "JOGJAKARTA"}},
		},
	}
}

// LoadNormalizerConfig reads the YAML table. An empty path or a missing file
// yields the defaults; sections absent from the file keep their defaults.
func LoadNormalizerConfig(path string) (NormalizerConfig, error) {
	cfg := DefaultNormalizerConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read alias file: %w", err)
	}

	var fileCfg NormalizerConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse alias file %s: %w", path, err)
	}
	if fileCfg.Prefixes != nil {
		cfg.Prefixes = fileCfg.Prefixes
	}
	if fileCfg.Aliases != nil {
		cfg.Aliases = fileCfg.Aliases
	}
	return cfg, nil
}

// Normalizer приводит названия из сервиса измерений, потока и полигонов к
// одному виду. Безопасен для конкурентного использования.
type Normalizer struct {
	lang     language.Tag
	prefixes []string
	aliases  []Alias
}

func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	n := &Normalizer{lang: language.Indonesian}
	for _, p := range cfg.Prefixes {
		if p = n.fold(p); p != "" {
			n.prefixes = append(n.prefixes, p+" ")
		}
	}
	for _, a := range cfg.Aliases {
		canonical := n.fold(a.Canonical)
		if canonical == "" {
			continue
		}
		alias := Alias{Canonical: canonical}
		selfMatched := false
		for _, m := range a.Match {
			if m = n.fold(m); m == "" {
				continue
			}
			alias.Match = append(alias.Match, m)
			if strings.Contains(canonical, m) {
				selfMatched = true
			}
		}
		// the canonical name must map to itself or Normalize is not idempotent
		if !selfMatched {
			alias.Match = append(alias.Match, canonical)
		}
		n.aliases = append(n.aliases, alias)
	}
	return n
}

// Normalize uppercases, trims, collapses whitespace, strips leading
// administrative prefixes and applies the alias table.
func (n *Normalizer) Normalize(s string) string {
	s = n.fold(s)
	if s == "" {
		return ""
	}
	if c, ok := n.alias(s); ok {
		return c
	}
	for stripped := true; stripped; {
		stripped = false
		for _, p := range n.prefixes {
			if len(s) > len(p) && strings.HasPrefix(s, p) {
				s = s[len(p):]
				stripped = true
			}
		}
	}
	if c, ok := n.alias(s); ok {
		return c
	}
	return s
}

// Equal compares two names after normalization.
func (n *Normalizer) Equal(a, b string) bool {
	return n.Normalize(a) == n.Normalize(b)
}

// Canonicals returns the canonical names of the alias table.
func (n *Normalizer) Canonicals() []string {
	out := make([]string, 0, len(n.aliases))
	for _, a := range n.aliases {
		out = append(out, a.Canonical)
	}
	return out
}

// IsCanonical reports whether name is one of the alias table's targets.
func (n *Normalizer) IsCanonical(name string) bool {
	for _, a := range n.aliases {
		if a.Canonical == name {
			return true
		}
	}
	return false
}

func (n *Normalizer) alias(s string) (string, bool) {
	if n.IsCanonical(s) {
		return s, true
	}
	for _, a := range n.aliases {
		for _, m := range a.Match {
			if strings.Contains(s, m) {
				return a.Canonical, true
			}
		}
	}
	return "", false
}

// fold uppercases with Indonesian rules and collapses whitespace. A Caser
// keeps state, so one is made per call.
func (n *Normalizer) fold(s string) string {
	s = cases.Upper(n.lang).String(s)
	return strings.Join(strings.Fields(s), " ")
}
