package analyzer

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// TierTable groups TLDs into value tiers for labeling and the heuristic
// valuation multiplier.
type TierTable struct {
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
}

// DefaultTiers returns the built-in tier table.
func DefaultTiers() TierTable {
	return TierTable{
		High:   []string{"com", "net", "org"},
		Medium: []string{"io", "co", "app", "dev"},
	}
}

// LoadTiers reads a tier table from a YAML file.
func LoadTiers(path string) (TierTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TierTable{}, eris.Wrapf(err, "tiers: read %s", path)
	}
	var t TierTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return TierTable{}, eris.Wrapf(err, "tiers: parse %s", path)
	}
	return t, nil
}

// Label renders the categorical TLD value for a domain, e.g. "High (.com)".
func (t TierTable) Label(domain string) string {
	tld := tldOf(domain)
	switch {
	case contains(t.High, tld):
		return fmt.Sprintf("High (.%s)", tld)
	case contains(t.Medium, tld):
		return fmt.Sprintf("Medium (.%s)", tld)
	default:
		return fmt.Sprintf("Standard (.%s)", tld)
	}
}

// Multiplier returns the valuation factor for a TLD. .com carries a premium
// over the rest of the high tier.
func (t TierTable) Multiplier(tld string) float64 {
	switch {
	case tld == "com":
		return 1.5
	case contains(t.High, tld):
		return 1.3
	case contains(t.Medium, tld):
		return 1.2
	default:
		return 1.0
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// tldOf returns the final label of the domain, lowercased.
func tldOf(domain string) string {
	parts := strings.Split(domain, ".")
	return strings.ToLower(parts[len(parts)-1])
}

// nameOf returns the left-most label of the domain.
func nameOf(domain string) string {
	return strings.SplitN(domain, ".", 2)[0]
}
