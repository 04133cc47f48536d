package staticsearch

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// RegionPolicy records, per country, whether its cities carry an admin1
// code. Once a country is set every later city must agree.
type RegionPolicy map[string]bool

// Check records hasRegion for the country, or fails if the country was
// already seen with the opposite value.
func (p RegionPolicy) Check(countryCode string, hasRegion bool) error {
	if prev, seen := p[countryCode]; seen && prev != hasRegion {
		return fmt.Errorf("%w: %s", ErrInconsistentCountry, countryCode)
	}
	p[countryCode] = hasRegion
	return nil
}

// CityNormalizer validates city records and cleans their region codes.
type CityNormalizer struct {
	regions Regions
	policy  RegionPolicy
	denied  map[string]bool
	log     zerolog.Logger

	// raw region presence of denied countries before they are cleared,
	// country -> [without region, with region]
	deniedSeen map[string]*[2]bool

	unresolved int
	cleared    int
}

// NewCityNormalizer returns a normalizer that checks against regions and
// records presence in policy.
func NewCityNormalizer(regions Regions, policy RegionPolicy, denied []string, log zerolog.Logger) *CityNormalizer {
	n := &CityNormalizer{
		regions:    regions,
		policy:     policy,
		denied:     make(map[string]bool, len(denied)),
		log:        log,
		deniedSeen: make(map[string]*[2]bool),
	}
	for _, cc := range denied {
		n.denied[cc] = true
	}
	return n
}

// Normalize returns a cleaned copy of city. The steps run in order:
// require a country, drop region codes that do not resolve, drop region
// codes of denied countries, then enforce the per-country policy.
func (n *CityNormalizer) Normalize(city CityRecord) (CityRecord, error) {
	if city.CountryCode == "" {
		return CityRecord{}, fmt.Errorf("%w: geonameid %s %q", ErrMissingCountry, city.ID, city.Name)
	}

	out := city
	if out.RegionCode != "" && !n.regions.Has(out.CountryCode, out.RegionCode) {
		n.log.Warn().
			Str("country", out.CountryCode).
			Str("region_code", out.RegionCode).
			Str("city", out.Name).
			Msg("region code not found, dropping it")
		out.RegionCode = ""
		n.unresolved++
	}

	if n.denied[out.CountryCode] {
		seen := n.deniedSeen[out.CountryCode]
		if seen == nil {
			seen = new([2]bool)
			n.deniedSeen[out.CountryCode] = seen
		}
		if out.HasRegion() {
			seen[1] = true
			n.cleared++
		} else {
			seen[0] = true
		}
		out.RegionCode = ""
	}

	if err := n.policy.Check(out.CountryCode, out.HasRegion()); err != nil {
		return CityRecord{}, fmt.Errorf("geonameid %s %q: %w", out.ID, out.Name, err)
	}
	return out, nil
}

// UnneededDenials returns denied countries whose cities never actually
// mixed formats, so their deny-list entry could be dropped. Countries
// with no cities at all are not reported.
func (n *CityNormalizer) UnneededDenials() []string {
	var out []string
	for cc, seen := range n.deniedSeen {
		if !(seen[0] && seen[1]) {
			out = append(out, cc)
		}
	}
	sort.Strings(out)
	return out
}
