package staticsearch

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RegionRow is one line of admin1CodesASCII.txt.
// Format: CC.CODE<tab>Name<tab>AsciiName<tab>GeonameId
type RegionRow struct {
	Code      string // "US.MN"
	Name      string // "Minnesota"
	ASCIIName string
	GeonameID string
}

// Regions maps country code -> admin1 code -> admin1 name.
// It is built once by ResolveRegions and only read afterwards.
type Regions map[string]map[string]string

// Name returns the region name for a country and region code.
func (r Regions) Name(countryCode, regionCode string) (string, bool) {
	divisions, ok := r[countryCode]
	if !ok {
		return "", false
	}
	name, ok := divisions[regionCode]
	return name, ok
}

// Has reports whether the region code resolves for the country.
func (r Regions) Has(countryCode, regionCode string) bool {
	_, ok := r.Name(countryCode, regionCode)
	return ok
}

// Count returns the total number of resolved regions.
func (r Regions) Count() int {
	n := 0
	for _, divisions := range r {
		n += len(divisions)
	}
	return n
}

// ParseRegionRows reads the tab separated admin1 table.
// Blank lines are skipped; any other line must have exactly four fields.
func ParseRegionRows(r io.Reader) ([]RegionRow, error) {
	var rows []RegionRow
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 4 {
			return nil, &RowError{
				Source: "regions",
				Line:   line,
				Err:    fmt.Errorf("%w: want 4 fields, got %d", ErrMalformedRow, len(fields)),
			}
		}
		rows = append(rows, RegionRow{
			Code:      fields[0],
			Name:      fields[1],
			ASCIIName: fields[2],
			GeonameID: fields[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading regions: %w", err)
	}
	return rows, nil
}

// ResolveRegions builds the country -> code -> name mapping.
//
// Two rows of one country that carry the same name make display names
// ambiguous by construction, so that is a fatal ErrDuplicateRegionName.
// A repeated code with a different name replaces the earlier name.
func ResolveRegions(rows []RegionRow) (Regions, error) {
	regions := make(Regions)
	// country -> name -> code, kept in step with regions
	names := make(map[string]map[string]string)

	for i, row := range rows {
		countryCode, regionCode, ok := strings.Cut(row.Code, ".")
		if !ok {
			return nil, &RowError{
				Source: "regions",
				Line:   i + 1,
				Field:  "code",
				Err:    fmt.Errorf("%w: %q", ErrMalformedRegionCode, row.Code),
			}
		}

		if regions[countryCode] == nil {
			regions[countryCode] = make(map[string]string)
			names[countryCode] = make(map[string]string)
		}

		if other, dup := names[countryCode][row.Name]; dup {
			return nil, &RowError{
				Source: "regions",
				Line:   i + 1,
				Field:  "name",
				Err: fmt.Errorf("%w: %s %q used by %s and %s",
					ErrDuplicateRegionName, countryCode, row.Name, other, regionCode),
			}
		}

		if old, exists := regions[countryCode][regionCode]; exists {
			delete(names[countryCode], old)
		}
		regions[countryCode][regionCode] = row.Name
		names[countryCode][row.Name] = regionCode
	}
	return regions, nil
}
