package staticsearch

import "strings"

// DisplayName builds "City, Region, CC", or "City, CC" when the city has no
// region code. The record must have passed CityNormalizer, which guarantees
// that a present region code resolves.
func DisplayName(city CityRecord, regions Regions) string {
	if city.HasRegion() {
		region, _ := regions.Name(city.CountryCode, city.RegionCode)
		return strings.Join([]string{city.Name, region, city.CountryCode}, ", ")
	}
	return strings.Join([]string{city.Name, city.CountryCode}, ", ")
}
