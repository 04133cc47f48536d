package staticsearch

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Stats summarizes a pipeline run.
type Stats struct {
	Regions            int
	Cities             int
	RegionsUnresolved  int // region codes dropped because they did not resolve
	RegionsDenied      int // region codes dropped because the country is denied
	DuplicatesReplaced int // collisions won by the later record
	DuplicatesDropped  int // collisions won by the earlier record
	Entries            int // distinct display names
	Shards             int
	ShardEntries       int
}

// Index is a completed, internally consistent search index.
type Index struct {
	Regions  Regions
	Policy   RegionPolicy
	Table    *DisplayTable
	Shards   *Shards
	Metadata Metadata
	Stats    Stats
}

// Files renders the shard and metadata files of the index.
func (idx *Index) Files() ([]File, error) {
	return Emit(idx.Shards, idx.Metadata)
}

// Pipeline owns the state of one index build: the resolved regions, the
// per-country region policy and the display table. A Pipeline must not be
// shared between builds.
type Pipeline struct {
	config *Config
	log    zerolog.Logger

	regions    Regions
	policy     RegionPolicy
	normalizer *CityNormalizer
	table      *DisplayTable
	stats      Stats
}

// NewPipeline resolves the region table and prepares an empty run.
//
// Example:
//
//	p, err := NewPipeline(regionRows, WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	for _, c := range cities {
//	    if err := p.Add(c); err != nil {
//	        return err
//	    }
//	}
//	idx := p.Finish()
func NewPipeline(regionRows []RegionRow, opts ...Option) (*Pipeline, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	regions, err := ResolveRegions(regionRows)
	if err != nil {
		return nil, fmt.Errorf("resolving regions: %w", err)
	}

	p := &Pipeline{
		config:  cfg,
		log:     cfg.Logger,
		regions: regions,
		policy:  make(RegionPolicy),
		table:   NewDisplayTable(),
	}
	p.normalizer = NewCityNormalizer(regions, p.policy, cfg.DeniedCountries, cfg.Logger)
	p.stats.Regions = regions.Count()
	return p, nil
}

// Add normalizes one city and files it under its display name. Any error
// is fatal for the whole run.
func (p *Pipeline) Add(city CityRecord) error {
	p.stats.Cities++
	clean, err := p.normalizer.Normalize(city)
	if err != nil {
		return err
	}

	name := DisplayName(clean, p.regions)
	if c := p.table.Insert(NewDisplayEntry(name, clean)); c != nil {
		p.logCollision(c)
		if c.Replaced {
			p.stats.DuplicatesReplaced++
		} else {
			p.stats.DuplicatesDropped++
		}
	}
	return nil
}

func (p *Pipeline) logCollision(c *Collision) {
	p.log.Warn().
		Str("display_name", c.Incoming.Name).
		Int64("population", c.Incoming.Population).
		Int64("existing_population", c.Existing.Population).
		Bool("replaced", c.Replaced).
		Float64("distance_km", c.DistanceKm()).
		Bool("same_cell", c.SameCell()).
		Msg("duplicate display name")
}

// Finish shards the display table and returns the index. The pipeline
// must not be used afterwards.
func (p *Pipeline) Finish() *Index {
	shards := IndexTable(p.table, p.config.TokenLength, p.config.Normalizer)

	p.stats.RegionsUnresolved = p.normalizer.unresolved
	p.stats.RegionsDenied = p.normalizer.cleared
	p.stats.Entries = p.table.Len()
	p.stats.Shards = shards.Len()
	p.stats.ShardEntries = shards.EntryCount()

	for _, cc := range p.normalizer.UnneededDenials() {
		p.log.Debug().Str("country", cc).Msg("denied country does not mix region formats")
	}
	p.log.Info().
		Int("regions", p.stats.Regions).
		Int("cities", p.stats.Cities).
		Int("regions_unresolved", p.stats.RegionsUnresolved).
		Int("regions_denied", p.stats.RegionsDenied).
		Int("duplicates_replaced", p.stats.DuplicatesReplaced).
		Int("duplicates_dropped", p.stats.DuplicatesDropped).
		Int("entries", p.stats.Entries).
		Int("shards", p.stats.Shards).
		Msg("index built")

	return &Index{
		Regions:  p.regions,
		Policy:   p.policy,
		Table:    p.table,
		Shards:   shards,
		Metadata: NewMetadata(p.config.TokenLength),
		Stats:    p.stats,
	}
}

// Build runs the whole pipeline over already parsed inputs.
func Build(regionRows []RegionRow, cities []CityRecord, opts ...Option) (*Index, error) {
	p, err := NewPipeline(regionRows, opts...)
	if err != nil {
		return nil, err
	}
	for _, c := range cities {
		if err := p.Add(c); err != nil {
			return nil, fmt.Errorf("normalizing cities: %w", err)
		}
	}
	return p.Finish(), nil
}
