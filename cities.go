package staticsearch

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/klauspost/compress/zip"
)

// cityFieldCount is the number of tab separated columns in a GeoNames
// cities dump: geonameid, name, asciiname, alternatenames, latitude,
// longitude, feature class, feature code, country code, cc2, admin1-4,
// population, elevation, dem, timezone, modification date.
const cityFieldCount = 19

const (
	colID         = 0
	colName       = 1
	colASCIIName  = 2
	colLatitude   = 4
	colLongitude  = 5
	colCountry    = 8
	colAdmin1     = 10
	colPopulation = 14
)

// maxLineSize bounds a single cities line. alternatenames can get long.
const maxLineSize = 1 << 20

// CityRecord is one city row reduced to the columns the index uses.
// Numeric columns are parsed for comparison and also keep their source
// text, which is what ends up in the shards.
type CityRecord struct {
	ID          string
	Name        string
	ASCIIName   string
	Latitude    float64
	Longitude   float64
	Population  int64
	CountryCode string
	RegionCode  string // admin1 code, possibly empty

	LatitudeText   string
	LongitudeText  string
	PopulationText string
}

// HasRegion reports whether the record carries an admin1 code.
func (c CityRecord) HasRegion() bool { return c.RegionCode != "" }

// ParseCityRow converts the 19 columns of a cities line into a CityRecord.
// Coordinates must parse and lie on the globe; an empty population is 0.
func ParseCityRow(fields []string) (CityRecord, error) {
	if len(fields) != cityFieldCount {
		return CityRecord{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRow, cityFieldCount, len(fields))
	}

	lat, err := strconv.ParseFloat(fields[colLatitude], 64)
	if err != nil {
		return CityRecord{}, &RowError{Source: "cities", Field: "latitude", Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
	}
	lng, err := strconv.ParseFloat(fields[colLongitude], 64)
	if err != nil {
		return CityRecord{}, &RowError{Source: "cities", Field: "longitude", Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
	}
	if !s2.LatLngFromDegrees(lat, lng).IsValid() {
		return CityRecord{}, &RowError{
			Source: "cities",
			Field:  "latitude",
			Err:    fmt.Errorf("%w: coordinates %s,%s out of range", ErrMalformedRow, fields[colLatitude], fields[colLongitude]),
		}
	}

	popText := fields[colPopulation]
	if popText == "" {
		popText = "0"
	}
	pop, err := strconv.ParseInt(popText, 10, 64)
	if err != nil || pop < 0 {
		return CityRecord{}, &RowError{
			Source: "cities",
			Field:  "population",
			Err:    fmt.Errorf("%w: population %q", ErrMalformedRow, fields[colPopulation]),
		}
	}

	return CityRecord{
		ID:             fields[colID],
		Name:           fields[colName],
		ASCIIName:      fields[colASCIIName],
		Latitude:       lat,
		Longitude:      lng,
		Population:     pop,
		CountryCode:    fields[colCountry],
		RegionCode:     fields[colAdmin1],
		LatitudeText:   fields[colLatitude],
		LongitudeText:  fields[colLongitude],
		PopulationText: popText,
	}, nil
}

// ParseCityRows reads a tab separated cities dump. Blank lines are skipped.
// The first malformed line aborts the read with a *RowError.
func ParseCityRows(r io.Reader) ([]CityRecord, error) {
	var cities []CityRecord
	err := scanCityRows(r, func(c CityRecord) error {
		cities = append(cities, c)
		return nil
	})
	return cities, err
}

func scanCityRows(r io.Reader, fn func(CityRecord) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}

		c, err := ParseCityRow(strings.Split(text, "\t"))
		if err != nil {
			return withLine(err, line)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading cities: %w", err)
	}
	return nil
}

// withLine attaches a line number to a row error.
func withLine(err error, line int) error {
	if re, ok := err.(*RowError); ok {
		re.Line = line
		return re
	}
	return &RowError{Source: "cities", Line: line, Err: err}
}

// ReadCitiesZip reads every .txt entry of a GeoNames cities archive such
// as cities1000.zip.
func ReadCitiesZip(path string) ([]CityRecord, error) {
	rz, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening zip file: %w", err)
	}
	defer rz.Close()

	var cities []CityRecord
	for _, f := range rz.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".txt") {
			continue
		}
		// Only read into memory, never extracted to disk.
		rows, err := readZipEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		cities = append(cities, rows...)
	}
	return cities, nil
}

// readZipEntry is split out so the deferred Close runs per entry.
func readZipEntry(f *zip.File) ([]CityRecord, error) {
	fi, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening file in zip: %w", err)
	}
	defer fi.Close()
	return ParseCityRows(fi)
}
