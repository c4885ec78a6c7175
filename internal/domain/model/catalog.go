package model

import "sort"

// StackResource describes the single shared depletable counter.
type StackResource struct {
	ID             string  `json:"id" yaml:"id" validate:"required"`
	Capacity       int     `json:"capacity" yaml:"capacity" validate:"gt=0"`
	RefillInterval float64 `json:"refillInterval" yaml:"refillInterval" validate:"gt=0"`
	// ProviderJobID must be selected for consumers to be usable.
	ProviderJobID string `json:"providerJobId" yaml:"providerJobId" validate:"required"`
}

// Catalog indexes ability definitions.
type Catalog struct {
	abilities map[string]*Ability
	order     []string
	groups    map[string][]string
	stack     *StackResource
}

// NewCatalog builds a catalog. Later duplicates of an ability id replace earlier ones.
func NewCatalog(abilities []Ability, stack *StackResource) *Catalog {
	c := &Catalog{
		abilities: make(map[string]*Ability, len(abilities)),
		groups:    make(map[string][]string),
	}
	for i := range abilities {
		a := abilities[i]
		if _, dup := c.abilities[a.ID]; !dup {
			c.order = append(c.order, a.ID)
		}
		c.abilities[a.ID] = &a
	}
	for _, id := range c.order {
		if g := c.abilities[id].SharedCooldownGroup; g != "" {
			c.groups[g] = append(c.groups[g], id)
		}
	}
	if stack != nil {
		s := *stack
		c.stack = &s
	}
	return c
}

// Ability returns the definition for id.
func (c *Catalog) Ability(id string) (*Ability, bool) {
	a, ok := c.abilities[id]
	return a, ok
}

// IDs returns ability ids in catalogue order.
func (c *Catalog) IDs() []string {
	return c.order
}

// Group returns the members of a shared cooldown group in catalogue order.
func (c *Catalog) Group(key string) []string {
	return c.groups[key]
}

// Stack returns the stack resource definition, if any.
func (c *Catalog) Stack() (*StackResource, bool) {
	return c.stack, c.stack != nil
}

// Consumers returns the ids of abilities that consume the stack resource, sorted.
func (c *Catalog) Consumers() []string {
	var ids []string
	for _, id := range c.order {
		if c.abilities[id].ConsumesStack {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Providers returns the ids of abilities that refill the stack resource, sorted.
func (c *Catalog) Providers() []string {
	var ids []string
	for _, id := range c.order {
		if c.abilities[id].ProvidesStack {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
