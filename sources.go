package staticsearch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DataSourceID identifies a data source type.
type DataSourceID string

const (
	DataSourceGeonamesAdmin1 DataSourceID = "geonamesAdmin1Codes"
	DataSourceGeonamesCities DataSourceID = "geonamesCities1000"
)

// DataSource defines where an input table is downloaded from.
type DataSource struct {
	URL  string       // Download URL
	File string       // File name inside the data directory
	ID   DataSourceID // Identifier for processing logic
}

// DefaultDataSources are the GeoNames dumps the index is built from.
var DefaultDataSources = []DataSource{
	{URL: "https://download.geonames.org/export/dump/admin1CodesASCII.txt", File: "admin1CodesASCII.txt", ID: DataSourceGeonamesAdmin1},
	{URL: "https://download.geonames.org/export/dump/cities1000.zip", File: "cities1000.zip", ID: DataSourceGeonamesCities},
}

// LoadRegionsFile parses an admin1CodesASCII.txt file.
func LoadRegionsFile(path string) ([]RegionRow, error) {
	fi, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer fi.Close()
	return ParseRegionRows(fi)
}

// LoadCitiesFile parses a cities dump, either zipped or plain text.
func LoadCitiesFile(path string) ([]CityRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return ReadCitiesZip(path)
	}
	fi, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer fi.Close()
	return ParseCityRows(fi)
}

// BuildFromFiles parses both tables from disk and builds the index.
func BuildFromFiles(regionsPath, citiesPath string, opts ...Option) (*Index, error) {
	regionRows, err := LoadRegionsFile(regionsPath)
	if err != nil {
		return nil, fmt.Errorf("loading regions: %w", err)
	}
	cities, err := LoadCitiesFile(citiesPath)
	if err != nil {
		return nil, fmt.Errorf("loading cities: %w", err)
	}
	return Build(regionRows, cities, opts...)
}
