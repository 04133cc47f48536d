package staticsearch

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// cityLine renders a 19 column GeoNames cities line.
func cityLine(id, name, lat, lng, country, admin1, pop string) string {
	fields := make([]string, cityFieldCount)
	fields[colID] = id
	fields[colName] = name
	fields[colASCIIName] = name
	fields[colLatitude] = lat
	fields[colLongitude] = lng
	fields[6] = "P"
	fields[7] = "PPL"
	fields[colCountry] = country
	fields[colAdmin1] = admin1
	fields[colPopulation] = pop
	fields[17] = "UTC"
	fields[18] = "2024-01-01"
	return strings.Join(fields, "\t")
}

// mustCity parses a cityLine.
func mustCity(t testing.TB, id, name, lat, lng, country, admin1, pop string) CityRecord {
	t.Helper()
	c, err := ParseCityRow(strings.Split(cityLine(id, name, lat, lng, country, admin1, pop), "\t"))
	if err != nil {
		t.Fatalf("ParseCityRow(%s): %v", name, err)
	}
	return c
}

const testRegionsTable = "US.MN\tMinnesota\tMinnesota\t5037779\n" +
	"US.IL\tIllinois\tIllinois\t4896861\n" +
	"US.MA\tMassachusetts\tMassachusetts\t6254926\n" +
	"NG.37\tOyo\tOyo\t2325190\n" +
	"MR.06\tTrarza\tTrarza\t2375742\n" +
	"FR.11\tÎle-de-France\tIle-de-France\t3012874\n"

func testRegionRows(t testing.TB) []RegionRow {
	t.Helper()
	rows, err := ParseRegionRows(strings.NewReader(testRegionsTable))
	if err != nil {
		t.Fatalf("ParseRegionRows: %v", err)
	}
	return rows
}

func testRegions(t testing.TB) Regions {
	t.Helper()
	r, err := ResolveRegions(testRegionRows(t))
	if err != nil {
		t.Fatalf("ResolveRegions: %v", err)
	}
	return r
}

func quietLogger() Option {
	return WithLogger(zerolog.Nop())
}
