package staticsearch

import (
	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// earthRadiusKm is the mean Earth radius used to turn s2 angles into km.
const earthRadiusKm = 6371.0088

// collisionCellPrecision is the geohash length (~5km cells) under which two
// colliding records are considered the same place listed twice.
const collisionCellPrecision = 5

// DisplayEntry is the deduplicated city stored under a display name.
type DisplayEntry struct {
	Name       string
	Latitude   float64
	Longitude  float64
	Population int64

	LatitudeText   string
	LongitudeText  string
	PopulationText string
}

// NewDisplayEntry pairs a normalized city with its display name.
func NewDisplayEntry(name string, city CityRecord) DisplayEntry {
	return DisplayEntry{
		Name:           name,
		Latitude:       city.Latitude,
		Longitude:      city.Longitude,
		Population:     city.Population,
		LatitudeText:   city.LatitudeText,
		LongitudeText:  city.LongitudeText,
		PopulationText: city.PopulationText,
	}
}

// Collision describes two records that produced the same display name.
type Collision struct {
	Existing DisplayEntry // entry held before the insert
	Incoming DisplayEntry
	Replaced bool // Incoming won and is now stored
}

// Kept returns the entry left in the table.
func (c *Collision) Kept() DisplayEntry {
	if c.Replaced {
		return c.Incoming
	}
	return c.Existing
}

// Discarded returns the entry dropped from the table.
func (c *Collision) Discarded() DisplayEntry {
	if c.Replaced {
		return c.Existing
	}
	return c.Incoming
}

// DistanceKm is the great circle distance between the two records.
func (c *Collision) DistanceKm() float64 {
	a := s2.LatLngFromDegrees(c.Existing.Latitude, c.Existing.Longitude)
	b := s2.LatLngFromDegrees(c.Incoming.Latitude, c.Incoming.Longitude)
	return a.Distance(b).Radians() * earthRadiusKm
}

// SameCell reports whether both records fall in the same geohash cell.
func (c *Collision) SameCell() bool {
	return geohash.EncodeWithPrecision(c.Existing.Latitude, c.Existing.Longitude, collisionCellPrecision) ==
		geohash.EncodeWithPrecision(c.Incoming.Latitude, c.Incoming.Longitude, collisionCellPrecision)
}

// DisplayTable holds at most one entry per display name, in the order the
// names were first inserted. Replacing an entry keeps its slot, so
// iteration order depends only on input order.
type DisplayTable struct {
	order   []string
	entries map[string]DisplayEntry
}

// NewDisplayTable returns an empty table.
func NewDisplayTable() *DisplayTable {
	return &DisplayTable{entries: make(map[string]DisplayEntry)}
}

// Insert stores e unless an entry with the same name and an equal or
// higher population is already present. It returns nil when the name was
// new and a Collision otherwise. On equal populations the first one wins.
func (t *DisplayTable) Insert(e DisplayEntry) *Collision {
	existing, ok := t.entries[e.Name]
	if !ok {
		t.entries[e.Name] = e
		t.order = append(t.order, e.Name)
		return nil
	}

	c := &Collision{Existing: existing, Incoming: e}
	if e.Population > existing.Population {
		t.entries[e.Name] = e
		c.Replaced = true
	}
	return c
}

// Get returns the entry stored under name.
func (t *DisplayTable) Get(name string) (DisplayEntry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Len returns the number of distinct display names.
func (t *DisplayTable) Len() int { return len(t.order) }

// Entries returns the entries in first-insertion order.
func (t *DisplayTable) Entries() []DisplayEntry {
	out := make([]DisplayEntry, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.entries[name])
	}
	return out
}
