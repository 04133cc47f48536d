package staticsearch

import (
	"errors"
	"strings"
	"testing"
)

func TestParseRegionRows(t *testing.T) {
	rows := testRegionRows(t)
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	want := RegionRow{Code: "US.MN", Name: "Minnesota", ASCIIName: "Minnesota", GeonameID: "5037779"}
	if rows[0] != want {
		t.Errorf("rows[0] = %+v, want %+v", rows[0], want)
	}
}

func TestParseRegionRowsMalformed(t *testing.T) {
	_, err := ParseRegionRows(strings.NewReader("US.MN\tMinnesota\tMinnesota\t1\n\nUS.IL\tIllinois\n"))
	if !errors.Is(err, ErrMalformedRow) {
		t.Fatalf("err = %v, want ErrMalformedRow", err)
	}
	var re *RowError
	if !errors.As(err, &re) || re.Line != 3 {
		t.Errorf("err = %v, want a RowError on line 3", err)
	}
}

func TestResolveRegions(t *testing.T) {
	regions := testRegions(t)

	tests := []struct {
		country, code string
		want          string
		ok            bool
	}{
		{"US", "MN", "Minnesota", true},
		{"FR", "11", "Île-de-France", true},
		{"US", "TX", "", false},
		{"XX", "MN", "", false},
	}
	for _, tc := range tests {
		got, ok := regions.Name(tc.country, tc.code)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Name(%q, %q) = %q, %v; want %q, %v", tc.country, tc.code, got, ok, tc.want, tc.ok)
		}
	}
	if n := regions.Count(); n != 6 {
		t.Errorf("Count() = %d, want 6", n)
	}
}

func TestResolveRegionsDuplicateName(t *testing.T) {
	tests := []struct {
		name string
		rows []RegionRow
		fail bool
	}{
		{
			name: "same name in one country",
			rows: []RegionRow{{Code: "US.MN", Name: "Minnesota"}, {Code: "US.MX", Name: "Minnesota"}},
			fail: true,
		},
		{
			name: "same code and name repeated",
			rows: []RegionRow{{Code: "US.MN", Name: "Minnesota"}, {Code: "US.MN", Name: "Minnesota"}},
			fail: true,
		},
		{
			name: "same name in two countries",
			rows: []RegionRow{{Code: "US.GA", Name: "Georgia"}, {Code: "XX.01", Name: "Georgia"}},
		},
		{
			name: "renamed code frees the old name",
			rows: []RegionRow{{Code: "US.MN", Name: "Minn"}, {Code: "US.MN", Name: "Minnesota"}, {Code: "US.MX", Name: "Minn"}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveRegions(tc.rows)
			if tc.fail && !errors.Is(err, ErrDuplicateRegionName) {
				t.Errorf("err = %v, want ErrDuplicateRegionName", err)
			}
			if !tc.fail && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolveRegionsMalformedCode(t *testing.T) {
	_, err := ResolveRegions([]RegionRow{{Code: "USMN", Name: "Minnesota"}})
	if !errors.Is(err, ErrMalformedRegionCode) {
		t.Errorf("err = %v, want ErrMalformedRegionCode", err)
	}
}
