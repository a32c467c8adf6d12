package schema

import (
	"io/fs"
	"path"
	"strings"

	"github.com/hyperpodlabs/hyperpod-cli/pkg/clierr"
	"github.com/hyperpodlabs/hyperpod-cli/pkg/templates"
)

// FetchFunc retrieves the raw schema.json body of one (family, version)
// sub-resource.
type FetchFunc func(family, version string) ([]byte, error)

type cacheKey struct {
	family  string
	version string
}

// Cache memoizes parsed schema documents per (family, version) for the
// lifetime of the process. Loading a schema dominated command startup
// latency historically; one CLI invocation never needs two readings of the
// same version, so there is no TTL and no invalidation.
//
// The CLI is single-threaded, so the cache is deliberately unsynchronized.
type Cache struct {
	entries map[cacheKey]*Document
	fetch   FetchFunc
}

// NewCache returns an empty cache backed by fetch.
func NewCache(fetch FetchFunc) *Cache {
	return &Cache{
		entries: make(map[cacheKey]*Document),
		fetch:   fetch,
	}
}

// Load returns the parsed schema document for (family, version), fetching
// and parsing at most once per process.
func (c *Cache) Load(family, version string) (*Document, error) {
	key := cacheKey{family: family, version: version}
	if doc, ok := c.entries[key]; ok {
		return doc, nil
	}

	raw, err := c.fetch(family, version)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	c.entries[key] = doc
	return doc, nil
}

// Default is the process-wide cache over the embedded template schemas.
var Default = NewCache(fetchEmbedded)

// Load loads (family, version) through the default cache.
func Load(family, version string) (*Document, error) {
	return Default.Load(family, version)
}

// fetchEmbedded reads schema.json from the versioned sub-resource named by
// convention "<family>.v<version with underscores>".
func fetchEmbedded(family, version string) ([]byte, error) {
	name := family + ".v" + strings.ReplaceAll(version, ".", "_")
	raw, err := fs.ReadFile(templates.Schemas, path.Join(templates.SchemaRoot, name, "schema.json"))
	if err != nil {
		return nil, &clierr.SchemaNotFound{Family: family, Version: version}
	}
	return raw, nil
}
