package staticsearch

import (
	"bytes"
	"fmt"

	"github.com/armon/go-radix"
	"github.com/goccy/go-json"
)

// MetadataFile is the name of the index parameters file.
const MetadataFile = "index_metadata.json"

// ShardEntry is one city as written to a shard. Field order is part of the
// output format. Values are the source text of the city row.
type ShardEntry struct {
	Lat  string `json:"lat"`
	Lon  string `json:"lon"`
	Pop  string `json:"pop"`
	Name string `json:"name"`
}

// Metadata describes how the shards were cut.
type Metadata struct {
	Stopwords   []string `json:"stopwords"`
	TokenLength int      `json:"token_length"`
}

// NewMetadata returns the metadata for a given token length. The single
// empty stopword is what the client expects.
func NewMetadata(tokenLength int) Metadata {
	return Metadata{Stopwords: []string{""}, TokenLength: tokenLength}
}

// Shards maps token prefixes to their entries. Prefixes are held in a radix
// tree so they always come back in ascending order.
type Shards struct {
	tree    *radix.Tree
	entries int
}

type shard struct {
	entries []ShardEntry
}

// NewShards returns an empty prefix map.
func NewShards() *Shards {
	return &Shards{tree: radix.New()}
}

// Add appends e to the shard for prefix.
func (s *Shards) Add(prefix string, e ShardEntry) {
	v, ok := s.tree.Get(prefix)
	if !ok {
		v = &shard{}
		s.tree.Insert(prefix, v)
	}
	sh := v.(*shard)
	sh.entries = append(sh.entries, e)
	s.entries++
}

// Get returns the entries filed under prefix.
func (s *Shards) Get(prefix string) []ShardEntry {
	v, ok := s.tree.Get(prefix)
	if !ok {
		return nil
	}
	return v.(*shard).entries
}

// Len returns the number of shards.
func (s *Shards) Len() int { return s.tree.Len() }

// EntryCount returns the number of entries across all shards.
func (s *Shards) EntryCount() int { return s.entries }

// Prefixes returns all shard prefixes in ascending order.
func (s *Shards) Prefixes() []string {
	out := make([]string, 0, s.tree.Len())
	s.tree.Walk(func(key string, _ interface{}) bool {
		out = append(out, key)
		return false
	})
	return out
}

// Walk calls fn for every shard in ascending prefix order until fn
// returns false.
func (s *Shards) Walk(fn func(prefix string, entries []ShardEntry) bool) {
	s.tree.Walk(func(key string, v interface{}) bool {
		return !fn(key, v.(*shard).entries)
	})
}

// File is one output file handed to a persistence sink.
type File struct {
	Name    string
	Content []byte
}

// ShardFileName returns the file name of the shard for prefix.
func ShardFileName(prefix string) string {
	return prefix + ".json"
}

// Emit renders one file per shard, in ascending prefix order, followed by
// the metadata file. It never touches the filesystem.
func Emit(shards *Shards, meta Metadata) ([]File, error) {
	files := make([]File, 0, shards.Len()+1)

	var err error
	shards.Walk(func(prefix string, entries []ShardEntry) bool {
		var content []byte
		content, err = encodeJSON(entries)
		if err != nil {
			err = fmt.Errorf("encoding shard %q: %w", prefix, err)
			return false
		}
		files = append(files, File{Name: ShardFileName(prefix), Content: content})
		return true
	})
	if err != nil {
		return nil, err
	}

	content, err := encodeJSON(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	files = append(files, File{Name: MetadataFile, Content: content})
	return files, nil
}

// encodeJSON writes v as indented UTF-8 JSON without HTML escaping, so
// names such as "Saint-Louis & Co" stay readable.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
