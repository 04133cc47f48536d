package staticsearch

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	. "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type PipelineSuite struct {
	regionRows []RegionRow
	cities     []CityRecord
}

var _ = Suite(&PipelineSuite{})

func (s *PipelineSuite) SetUpSuite(c *C) {
	rows, err := ParseRegionRows(strings.NewReader(testRegionsTable))
	c.Assert(err, IsNil)
	s.regionRows = rows

	lines := []string{
		cityLine("5068614", "Springfield", "44.23883", "-94.97582", "US", "MN", "8000"),
		cityLine("5068615", "Springfield", "44.25000", "-94.90000", "US", "MN", "3000"),
		cityLine("4250542", "Springfield", "39.80172", "-89.64371", "US", "IL", "116565"),
		cityLine("4951788", "Springfield", "42.10148", "-72.58981", "US", "MA", "155929"),
		cityLine("2325191", "Ui", "7.1", "3.9", "NG", "37", "1200"),
		cityLine("2377450", "Rosso", "16.51378", "-15.8050", "MR", "06", "48922"),
		cityLine("2377451", "Nouakchott", "18.08581", "-15.9785", "MR", "", "661400"),
		cityLine("2988507", "Paris", "48.85341", "2.3488", "FR", "11", "2138551"),
		cityLine("2988508", "Saint-Denis", "48.93564", "2.35387", "FR", "11", "111135"),
	}
	cities, err := ParseCityRows(strings.NewReader(strings.Join(lines, "\n")))
	c.Assert(err, IsNil)
	s.cities = cities
}

func (s *PipelineSuite) build(c *C) *Index {
	idx, err := Build(s.regionRows, s.cities, quietLogger())
	c.Assert(err, IsNil)
	return idx
}

func (s *PipelineSuite) TestSpringfieldScenario(c *C) {
	idx := s.build(c)

	e, ok := idx.Table.Get("Springfield, Minnesota, US")
	c.Assert(ok, Equals, true)
	c.Assert(e.Population, Equals, int64(8000))
	c.Assert(e.LatitudeText, Equals, "44.23883")

	for _, prefix := range []string{"spr", "min", "us"} {
		n := 0
		for _, se := range idx.Shards.Get(prefix) {
			if se.Name == "Springfield, Minnesota, US" {
				n++
				c.Assert(se.Pop, Equals, "8000")
			}
		}
		c.Assert(n, Equals, 1, Commentf("prefix %s", prefix))
	}

	c.Assert(idx.Stats.DuplicatesDropped, Equals, 1)
	c.Assert(idx.Stats.DuplicatesReplaced, Equals, 0)
	c.Assert(idx.Stats.Cities, Equals, 9)
	c.Assert(idx.Stats.Entries, Equals, 8)
}

func (s *PipelineSuite) TestShortTokenShard(c *C) {
	idx := s.build(c)
	ui := idx.Shards.Get("ui")
	c.Assert(ui, HasLen, 1)
	c.Assert(ui[0].Name, Equals, "Ui, Oyo, NG")
}

func (s *PipelineSuite) TestCountryFormatConsistency(c *C) {
	idx := s.build(c)

	withRegion := make(map[string]int)
	without := make(map[string]int)
	for _, e := range idx.Table.Entries() {
		parts := strings.Split(e.Name, ", ")
		cc := parts[len(parts)-1]
		if len(parts) == 3 {
			withRegion[cc]++
		} else {
			without[cc]++
		}
	}
	for cc := range withRegion {
		c.Assert(without[cc], Equals, 0, Commentf("country %s mixes formats", cc))
	}
	// MR is on the deny-list: no region even for Rosso.
	c.Assert(without["MR"], Equals, 2)
	c.Assert(idx.Policy["MR"], Equals, false)
	c.Assert(idx.Policy["US"], Equals, true)
}

func (s *PipelineSuite) TestDeterministicOutput(c *C) {
	first, err := s.build(c).Files()
	c.Assert(err, IsNil)
	second, err := s.build(c).Files()
	c.Assert(err, IsNil)

	c.Assert(len(first), Equals, len(second))
	for i := range first {
		c.Assert(first[i].Name, Equals, second[i].Name)
		c.Assert(bytes.Equal(first[i].Content, second[i].Content), Equals, true, Commentf("file %s", first[i].Name))
	}
	c.Assert(first[len(first)-1].Name, Equals, MetadataFile)
}

func (s *PipelineSuite) TestCollisionLogged(c *C) {
	var buf bytes.Buffer
	_, err := Build(s.regionRows, s.cities, WithLogger(zerolog.New(&buf)))
	c.Assert(err, IsNil)
	out := buf.String()
	c.Assert(strings.Contains(out, `"display_name":"Springfield, Minnesota, US"`), Equals, true)
	c.Assert(strings.Contains(out, `"population":3000`), Equals, true)
	c.Assert(strings.Contains(out, `"existing_population":8000`), Equals, true)
}

func (s *PipelineSuite) TestFatalErrorsAbort(c *C) {
	missing := append(append([]CityRecord(nil), s.cities...), CityRecord{ID: "9", Name: "Atlantis"})
	idx, err := Build(s.regionRows, missing, quietLogger())
	c.Assert(idx, IsNil)
	c.Assert(errors.Is(err, ErrMissingCountry), Equals, true)

	mixed := append(append([]CityRecord(nil), s.cities...), CityRecord{ID: "10", Name: "Nowhere", CountryCode: "US"})
	idx, err = Build(s.regionRows, mixed, quietLogger())
	c.Assert(idx, IsNil)
	c.Assert(errors.Is(err, ErrInconsistentCountry), Equals, true)

	dupRegions := append(append([]RegionRow(nil), s.regionRows...), RegionRow{Code: "US.XX", Name: "Minnesota"})
	idx, err = Build(dupRegions, s.cities, quietLogger())
	c.Assert(idx, IsNil)
	c.Assert(errors.Is(err, ErrDuplicateRegionName), Equals, true)
}

func (s *PipelineSuite) TestDenyListOption(c *C) {
	idx, err := Build(s.regionRows, s.cities, quietLogger(), WithDeniedCountries())
	c.Assert(err, NotNil)
	c.Assert(errors.Is(err, ErrInconsistentCountry), Equals, true)
	c.Assert(idx, IsNil)

	idx, err = Build(s.regionRows, s.cities, quietLogger(), WithDeniedCountries("MR", "FR"))
	c.Assert(err, IsNil)
	_, ok := idx.Table.Get("Paris, FR")
	c.Assert(ok, Equals, true)
}

func (s *PipelineSuite) TestTokenLengthOption(c *C) {
	idx, err := Build(s.regionRows, s.cities, quietLogger(), WithTokenLength(2))
	c.Assert(err, IsNil)
	c.Assert(idx.Metadata.TokenLength, Equals, 2)
	c.Assert(idx.Shards.Get("sp"), Not(HasLen), 0)
	c.Assert(idx.Shards.Get("spr"), HasLen, 0)
}

func (s *PipelineSuite) TestBuildFromFiles(c *C) {
	dir := c.MkDir()
	regionsPath := filepath.Join(dir, "admin1CodesASCII.txt")
	citiesPath := filepath.Join(dir, "cities1000.txt")
	c.Assert(os.WriteFile(regionsPath, []byte(testRegionsTable), 0644), IsNil)
	body := cityLine("1", "Springfield", "44.2", "-94.9", "US", "MN", "8000") + "\n"
	c.Assert(os.WriteFile(citiesPath, []byte(body), 0644), IsNil)

	idx, err := BuildFromFiles(regionsPath, citiesPath, quietLogger())
	c.Assert(err, IsNil)
	c.Assert(idx.Table.Len(), Equals, 1)

	_, err = BuildFromFiles(filepath.Join(dir, "missing.txt"), citiesPath, quietLogger())
	c.Assert(err, NotNil)
}

func (s *PipelineSuite) TestTextNormalizerOption(c *C) {
	keepCase := func(s string) string { return s }
	idx, err := Build(s.regionRows, s.cities, quietLogger(), WithTextNormalizer(keepCase))
	c.Assert(err, IsNil)
	c.Assert(idx.Shards.Get("Spr"), Not(HasLen), 0)
	c.Assert(idx.Shards.Get("spr"), HasLen, 0)
	c.Assert(idx.Shards.Get("Île"), Not(HasLen), 0)
}
