package fitting

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/rcliao/recall-fit/internal/model"
)

// Cache holds one encoded model per canonical presentation for the length of
// one corpus pass. Models handed out must be returned to their post-encoding
// state before the next trial uses them.
type Cache struct {
	build      Builder
	listLength int
	params     model.Parameters
	models     map[model.Kind]Model

	hits   int
	builds int
}

// NewCache returns an empty cache for lists of listLength positions.
func NewCache(build Builder, listLength int, p model.Parameters) *Cache {
	return &Cache{
		build:      build,
		listLength: listLength,
		params:     p,
		models:     make(map[model.Kind]Model, 2),
	}
}

// Get returns the model encoded with the canonical presentation of k,
// building it on first use.
func (c *Cache) Get(k model.Kind) (Model, error) {
	if m, ok := c.models[k]; ok {
		c.hits++
		return m, nil
	}
	canonical := k.Canonical(c.listLength)
	if len(canonical) == 0 {
		return nil, goerr.New("no canonical presentation", goerr.V("kind", k.String()), goerr.V("list_length", c.listLength))
	}
	m, err := c.build(k.ItemCount(c.listLength), c.listLength, c.params)
	if err != nil {
		return nil, goerr.Wrap(err, "build cached model", goerr.V("kind", k.String()))
	}
	if err := m.Experience(canonical); err != nil {
		return nil, goerr.Wrap(err, "encode cached model", goerr.V("kind", k.String()))
	}
	c.models[k] = m
	c.builds++
	return m, nil
}

// Builds returns how many models the cache has constructed.
func (c *Cache) Builds() int { return c.builds }

// Hits returns how many lookups were served by an existing model.
func (c *Cache) Hits() int { return c.hits }

// modelFor returns the model trial i of ds is scored against: the cached
// canonical model for cacheable trials, a freshly encoded one otherwise.
func modelFor(c *Cache, build Builder, ds model.Dataset, i int, p model.Parameters) (Model, bool, error) {
	v := ds.Variant(i)
	if !v.IsAdhoc() {
		m, err := c.Get(v.Kind)
		return m, true, err
	}
	pres := ds.Presentations[i]
	m, err := build(pres.ItemCount(), ds.ListLength, p)
	if err != nil {
		return nil, false, goerr.Wrap(err, "build trial model", goerr.V("trial", i))
	}
	if err := m.Experience(pres); err != nil {
		return nil, false, goerr.Wrap(err, "encode trial model", goerr.V("trial", i))
	}
	return m, false, nil
}
